package quote

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	prices    map[int]float64
	err       error
	callCount int
}

func (f *fakeFetcher) FetchPrices(ctx context.Context, cmcIDs []int) (map[int]float64, error) {
	f.callCount++
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[int]float64, len(cmcIDs))
	for _, id := range cmcIDs {
		if p, ok := f.prices[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func TestCacheFetchesOnFirstCall(t *testing.T) {
	fetcher := &fakeFetcher{prices: map[int]float64{1: 65000}}
	cache := NewCache(fetcher, 5*time.Minute)

	prices, err := cache.Prices(context.Background(), []int{1})
	require.NoError(t, err)
	require.Equal(t, 65000.0, prices[1])
	require.Equal(t, 1, fetcher.callCount)
}

func TestCacheServesFromCacheWithinTTL(t *testing.T) {
	fetcher := &fakeFetcher{prices: map[int]float64{1: 65000}}
	cache := NewCache(fetcher, 5*time.Minute)

	now := time.Now()
	cache.SetClock(func() time.Time { return now })

	_, err := cache.Prices(context.Background(), []int{1})
	require.NoError(t, err)
	_, err = cache.Prices(context.Background(), []int{1})
	require.NoError(t, err)
	require.Equal(t, 1, fetcher.callCount)
}

func TestCacheRefetchesAfterTTLExpires(t *testing.T) {
	fetcher := &fakeFetcher{prices: map[int]float64{1: 65000}}
	cache := NewCache(fetcher, time.Minute)

	now := time.Now()
	cache.SetClock(func() time.Time { return now })

	_, err := cache.Prices(context.Background(), []int{1})
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = cache.Prices(context.Background(), []int{1})
	require.NoError(t, err)
	require.Equal(t, 2, fetcher.callCount)
}

func TestCacheFallsBackToLastCachedOnUpstreamFailure(t *testing.T) {
	fetcher := &fakeFetcher{prices: map[int]float64{1: 65000}}
	cache := NewCache(fetcher, time.Minute)

	now := time.Now()
	cache.SetClock(func() time.Time { return now })

	prices, err := cache.Prices(context.Background(), []int{1})
	require.NoError(t, err)
	require.Equal(t, 65000.0, prices[1])

	fetcher.err = errors.New("upstream down")
	now = now.Add(2 * time.Minute)

	prices, err = cache.Prices(context.Background(), []int{1})
	require.NoError(t, err)
	require.Equal(t, 65000.0, prices[1], "expected stale cached price on upstream failure")
}

func TestCacheErrorsWhenNoCacheAndUpstreamFails(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("upstream down")}
	cache := NewCache(fetcher, time.Minute)

	_, err := cache.Prices(context.Background(), []int{1})
	require.Error(t, err)
}
