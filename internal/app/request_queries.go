package app

import (
	"context"

	"github.com/brgy-egov/assets-api/internal/domain"
)

// RequestQueryRepository is the read-only view of stored requests.
type RequestQueryRepository interface {
	GetRequest(ctx context.Context, id string) (domain.AssetRequest, error)
	ListRequestsByRequester(ctx context.Context, requesterID string) ([]domain.AssetRequest, error)
	ListRequests(ctx context.Context) ([]domain.AssetRequest, error)
}

// RequestQueryService serves resident and admin inspection reads. No business
// rules live here.
type RequestQueryService struct {
	repo RequestQueryRepository
}

func NewRequestQueryService(repo RequestQueryRepository) *RequestQueryService {
	return &RequestQueryService{repo: repo}
}

func (s *RequestQueryService) GetRequest(ctx context.Context, id string) (domain.AssetRequest, error) {
	if id == "" {
		return domain.AssetRequest{}, domain.ErrInvalidID
	}
	return s.repo.GetRequest(ctx, id)
}

func (s *RequestQueryService) ListByRequester(ctx context.Context, requesterID string) ([]domain.AssetRequest, error) {
	if requesterID == "" {
		return nil, domain.ErrRequesterRequired
	}
	return s.repo.ListRequestsByRequester(ctx, requesterID)
}

func (s *RequestQueryService) ListAll(ctx context.Context) ([]domain.AssetRequest, error) {
	return s.repo.ListRequests(ctx)
}
