package app

import (
	"context"
	"time"

	"github.com/brgy-egov/assets-api/internal/domain"
)

// CatalogRepository is the read side of the asset catalog. Mutation happens
// outside this engine (admin CRUD and seeding).
type CatalogRepository interface {
	GetAsset(ctx context.Context, id string) (domain.Asset, error)
	ListAssets(ctx context.Context) ([]domain.Asset, error)
	CommittedQuantity(ctx context.Context, assetID string, day time.Time) (int, error)
}

// AvailabilityCache is a best-effort store for display reads. A nil entry
// means a miss; errors are treated as misses too.
type AvailabilityCache interface {
	Get(ctx context.Context, assetID string, day time.Time) (*Availability, error)
	Set(ctx context.Context, assetID string, day time.Time, av Availability) error
}

// Availability is the remaining capacity for one (asset, date) key.
type Availability struct {
	AssetID   string `json:"asset_id"`
	Day       string `json:"day"`
	Stock     int    `json:"stock"`
	Committed int    `json:"committed"`
	Available int    `json:"available"`
}

type CatalogService struct {
	repo  CatalogRepository
	cache AvailabilityCache
}

func NewCatalogService(repo CatalogRepository, opts ...CatalogServiceOption) *CatalogService {
	svc := &CatalogService{repo: repo}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type CatalogServiceOption func(*CatalogService)

func WithAvailabilityCache(c AvailabilityCache) CatalogServiceOption {
	return func(s *CatalogService) {
		s.cache = c
	}
}

func (s *CatalogService) GetAsset(ctx context.Context, id string) (domain.Asset, error) {
	if id == "" {
		return domain.Asset{}, domain.ErrInvalidID
	}
	return s.repo.GetAsset(ctx, id)
}

func (s *CatalogService) ListAssets(ctx context.Context) ([]domain.Asset, error) {
	return s.repo.ListAssets(ctx)
}

// IsDateOpen reports open-date membership for one asset.
func (s *CatalogService) IsDateOpen(ctx context.Context, assetID string, day time.Time) (bool, error) {
	asset, err := s.repo.GetAsset(ctx, assetID)
	if err != nil {
		return false, err
	}
	return asset.IsDateOpen(day), nil
}

// Availability returns remaining capacity for display. Cache reads may be
// stale; reads that decide a commit never come through here.
func (s *CatalogService) Availability(ctx context.Context, assetID string, day time.Time) (Availability, error) {
	day = domain.DateOnly(day)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, assetID, day); err == nil && cached != nil {
			return *cached, nil
		}
	}

	asset, err := s.repo.GetAsset(ctx, assetID)
	if err != nil {
		return Availability{}, err
	}
	committed, err := s.repo.CommittedQuantity(ctx, assetID, day)
	if err != nil {
		return Availability{}, err
	}

	av := Availability{
		AssetID:   assetID,
		Day:       day.Format(time.DateOnly),
		Stock:     asset.Stock,
		Committed: committed,
		Available: asset.Stock - committed,
	}
	if av.Available < 0 {
		av.Available = 0
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, assetID, day, av)
	}
	return av, nil
}
