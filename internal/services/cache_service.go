package services

import (
	"context"
	"time"

	"tokenride/internal/models"
	"tokenride/pkg/cache"
)

const (
	rideCacheKeyPrefix = "ride:"
	rideCacheTTL       = 5 * time.Minute
)

// CacheService keeps active rides in Redis for quick status lookups. Misses
// and failures fall through to the database.
type CacheService interface {
	SetRide(ctx context.Context, ride *models.Ride) error
	GetRide(ctx context.Context, id string) (*models.Ride, error)
	DeleteRide(ctx context.Context, id string) error
}

type redisCacheService struct {
	redis *cache.RedisCache
}

func NewCacheService(redis *cache.RedisCache) CacheService {
	return &redisCacheService{redis: redis}
}

func (s *redisCacheService) SetRide(ctx context.Context, ride *models.Ride) error {
	if ride.Status.Terminal() {
		return s.DeleteRide(ctx, ride.ID.Hex())
	}
	return s.redis.Set(ctx, rideCacheKeyPrefix+ride.ID.Hex(), ride, rideCacheTTL)
}

func (s *redisCacheService) GetRide(ctx context.Context, id string) (*models.Ride, error) {
	var ride models.Ride
	if err := s.redis.Get(ctx, rideCacheKeyPrefix+id, &ride); err != nil {
		return nil, err
	}
	return &ride, nil
}

func (s *redisCacheService) DeleteRide(ctx context.Context, id string) error {
	return s.redis.Delete(ctx, rideCacheKeyPrefix+id)
}
