package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/brgy-egov/assets-api/internal/app"
	"github.com/brgy-egov/assets-api/internal/domain"
	"github.com/redis/go-redis/v9"
)

// AvailabilityStore keeps per-(asset, date) availability snapshots in redis
// for display reads. Entries are best effort: short TTL plus eviction on
// ledger mutation; a miss or redis failure just falls through to Postgres.
type AvailabilityStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewAvailabilityStore(rdb *redis.Client, ttl time.Duration) *AvailabilityStore {
	return &AvailabilityStore{rdb: rdb, ttl: ttl}
}

func availabilityKey(assetID string, day time.Time) string {
	return fmt.Sprintf("availability:%s:%s", assetID, domain.DateOnly(day).Format(time.DateOnly))
}

func (s *AvailabilityStore) Get(ctx context.Context, assetID string, day time.Time) (*app.Availability, error) {
	b, err := s.rdb.Get(ctx, availabilityKey(assetID, day)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var av app.Availability
	if err := json.Unmarshal(b, &av); err != nil {
		return nil, err
	}
	return &av, nil
}

func (s *AvailabilityStore) Set(ctx context.Context, assetID string, day time.Time, av app.Availability) error {
	b, err := json.Marshal(av)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, availabilityKey(assetID, day), b, s.ttl).Err()
}

// Invalidate evicts one key after a ledger mutation. Failures are logged and
// swallowed; the TTL bounds how long a stale entry can live.
func (s *AvailabilityStore) Invalidate(ctx context.Context, assetID string, day time.Time) {
	if err := s.rdb.Del(ctx, availabilityKey(assetID, day)).Err(); err != nil {
		log.Printf("WARN: evict availability %s: %v", availabilityKey(assetID, day), err)
	}
}
