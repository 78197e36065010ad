package rules

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mitrastore/backend-mitra/internal/lock"
)

type stubLoader struct {
	rows  RuleRows
	calls int
}

func (s *stubLoader) LoadRuleRows(ctx context.Context) (RuleRows, error) {
	s.calls++
	return s.rows, nil
}

func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func testRows() RuleRows {
	groupID := uuid.New()
	return RuleRows{
		Groups: []GroupRow{{ID: groupID, Name: "promo", Active: true, Operator: "and"}},
		Discounts: []DiscountRow{
			{ID: uuid.New(), GroupID: groupID, Name: "ten off", Kind: "percent", Value: 10, Active: true},
		},
	}
}

func TestForestLoadsAndCaches(t *testing.T) {
	client := testRedis(t)
	loader := &stubLoader{rows: testRows()}
	svc := &Service{
		Loader: loader,
		Cache:  NewCache(client, time.Minute),
		Logger: zerolog.Nop(),
	}

	forest, err := svc.Forest(context.Background())
	require.NoError(t, err)
	require.Len(t, forest, 1)
	require.Equal(t, "promo", forest[0].Name)
	require.Equal(t, 1, loader.calls)

	// Second read is served from the cache.
	again, err := svc.Forest(context.Background())
	require.NoError(t, err)
	require.Len(t, again, 1)
	require.Equal(t, 1, loader.calls)
}

func TestForestInvalidateForcesRebuild(t *testing.T) {
	client := testRedis(t)
	loader := &stubLoader{rows: testRows()}
	svc := &Service{
		Loader: loader,
		Cache:  NewCache(client, time.Minute),
		Logger: zerolog.Nop(),
	}

	_, err := svc.Forest(context.Background())
	require.NoError(t, err)
	require.NoError(t, svc.Invalidate(context.Background()))

	_, err = svc.Forest(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, loader.calls)
}

func TestForestWithRebuildLock(t *testing.T) {
	client := testRedis(t)
	loader := &stubLoader{rows: testRows()}
	svc := &Service{
		Loader:  loader,
		Cache:   NewCache(client, time.Minute),
		Lock:    &lock.Locker{R: client},
		LockTTL: time.Second,
		Logger:  zerolog.Nop(),
	}

	forest, err := svc.Forest(context.Background())
	require.NoError(t, err)
	require.Len(t, forest, 1)
	require.Equal(t, 1, loader.calls)
}

func TestForestWithoutCacheLoadsEveryTime(t *testing.T) {
	loader := &stubLoader{rows: testRows()}
	svc := &Service{Loader: loader, Logger: zerolog.Nop()}

	_, err := svc.Forest(context.Background())
	require.NoError(t, err)
	_, err = svc.Forest(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, loader.calls)
}

func TestForestRoundTripsThroughJSON(t *testing.T) {
	client := testRedis(t)
	rows := testRows()
	starts := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	rows.Groups[0].StartsAt = &starts
	rows.Conditions = []ConditionRow{{
		DiscountID: rows.Discounts[0].ID,
		Type:       "user_category",
		Operator:   "in",
		Value:      []byte(`["gold"]`),
	}}
	loader := &stubLoader{rows: rows}
	svc := &Service{Loader: loader, Cache: NewCache(client, time.Minute), Logger: zerolog.Nop()}

	_, err := svc.Forest(context.Background())
	require.NoError(t, err)

	cached, err := svc.Forest(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, loader.calls)
	require.Equal(t, starts, cached[0].StartsAt.UTC())
	require.Equal(t, []any{"gold"}, cached[0].Discounts[0].Conditions[0].Value)
}
