package seed

import (
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/brgy-egov/assets-api/internal/domain"
)

// AssetUpserter persists catalog entries keyed by name.
type AssetUpserter interface {
	UpsertAsset(ctx context.Context, a domain.Asset) (string, error)
}

type catalogFile struct {
	Assets []assetEntry `yaml:"assets"`
}

type assetEntry struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Category    string   `yaml:"category"`
	UnitPrice   string   `yaml:"unit_price"`
	Stock       int      `yaml:"stock"`
	OpenDates   []string `yaml:"open_dates"`
}

// Apply loads a YAML catalog file and upserts every asset in it. Existing
// assets are matched by name, so re-running against the same file is safe.
func Apply(ctx context.Context, path string, store AssetUpserter) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read catalog seed: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return 0, fmt.Errorf("parse catalog seed: %w", err)
	}

	for i, entry := range file.Assets {
		asset, err := entry.toAsset()
		if err != nil {
			return 0, fmt.Errorf("catalog seed entry %d (%s): %w", i, entry.Name, err)
		}
		if _, err := store.UpsertAsset(ctx, asset); err != nil {
			return 0, fmt.Errorf("upsert %s: %w", entry.Name, err)
		}
	}
	return len(file.Assets), nil
}

func (e assetEntry) toAsset() (domain.Asset, error) {
	if e.Name == "" {
		return domain.Asset{}, fmt.Errorf("name is required")
	}
	if e.Stock < 0 {
		return domain.Asset{}, fmt.Errorf("stock must not be negative")
	}

	price, err := decimal.NewFromString(e.UnitPrice)
	if err != nil {
		return domain.Asset{}, fmt.Errorf("unit_price %q: %w", e.UnitPrice, err)
	}
	if price.IsNegative() {
		return domain.Asset{}, fmt.Errorf("unit_price must not be negative")
	}

	asset := domain.Asset{
		Name:        e.Name,
		Description: e.Description,
		Category:    e.Category,
		UnitPrice:   price,
		Stock:       e.Stock,
		Status:      domain.DeriveAssetStatus(e.Stock, 0),
	}
	for _, raw := range e.OpenDates {
		day, err := domain.ParseDate(raw)
		if err != nil {
			return domain.Asset{}, fmt.Errorf("open date %q: %w", raw, err)
		}
		asset.OpenDates = append(asset.OpenDates, day)
	}
	return asset, nil
}
