package rules

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/mitrastore/backend-mitra/internal/discount"
	"github.com/mitrastore/backend-mitra/internal/lock"
	"github.com/mitrastore/backend-mitra/internal/obs"
)

// ForestCacheKey stores the assembled rule forest snapshot.
const ForestCacheKey = "discount:forest:v1"

// Loader supplies the flat rule rows; satisfied by Repo.
type Loader interface {
	LoadRuleRows(ctx context.Context) (RuleRows, error)
}

// Service serves assembled rule forests, caching snapshots in Redis and
// guarding rebuilds with a distributed lock so concurrent cache misses do
// not stampede the database.
type Service struct {
	Loader  Loader
	Cache   *Cache
	Lock    *lock.Locker
	LockTTL time.Duration
	Logger  zerolog.Logger
}

// Forest returns the current rule forest. The returned slice is a snapshot;
// callers must treat it as read-only for the duration of one evaluation.
func (s *Service) Forest(ctx context.Context) ([]discount.Group, error) {
	if s == nil || s.Loader == nil {
		return nil, errors.New("rules service not configured")
	}

	var forest []discount.Group
	if hit, err := s.cachedForest(ctx, &forest); err == nil && hit {
		obs.CountRuleCache("hit")
		return forest, nil
	} else if err != nil {
		s.Logger.Warn().Err(err).Msg("read rule cache")
	}
	obs.CountRuleCache("miss")

	rebuild := func(ctx context.Context) error {
		// Another caller may have rebuilt while we waited on the lock.
		if hit, err := s.cachedForest(ctx, &forest); err == nil && hit {
			return nil
		}
		rows, err := s.Loader.LoadRuleRows(ctx)
		if err != nil {
			return err
		}
		forest = BuildForest(rows)
		if err := s.Cache.SetJSON(ctx, ForestCacheKey, forest); err != nil {
			s.Logger.Warn().Err(err).Msg("store rule cache")
		}
		return nil
	}

	if s.Lock != nil {
		ttl := s.LockTTL
		if ttl <= 0 {
			ttl = 10 * time.Second
		}
		if err := s.Lock.WithLock(ctx, ForestCacheKey+":rebuild", ttl, rebuild); err != nil {
			return nil, err
		}
		return forest, nil
	}
	if err := rebuild(ctx); err != nil {
		return nil, err
	}
	return forest, nil
}

// Invalidate drops the cached snapshot; the next Forest call rebuilds it.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.Cache.Invalidate(ctx, ForestCacheKey)
}

func (s *Service) cachedForest(ctx context.Context, dst *[]discount.Group) (bool, error) {
	if s.Cache == nil {
		return false, nil
	}
	return s.Cache.GetJSON(ctx, ForestCacheKey, dst)
}
