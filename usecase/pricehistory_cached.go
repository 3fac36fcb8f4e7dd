package usecase

import (
	"context"
	"fmt"

	domainPriceHistory "github.com/souqtrack/souqtrack/domains/pricehistory"
	"github.com/souqtrack/souqtrack/infrastructure/cachemanager"
)

type cachedPriceHistory struct {
	inner      domainPriceHistory.IPriceHistoryUsecase
	cache      *cachemanager.Manager
	ttlSeconds int
}

// NewCachedPriceHistoryService caches the canonical all-history daily
// response under "price_history:{asin}:response". The key carries no window
// or interval, so only default-shaped requests are cached; everything else
// is computed fresh from the observation store.
func NewCachedPriceHistoryService(inner domainPriceHistory.IPriceHistoryUsecase, cache *cachemanager.Manager, ttlSeconds int) domainPriceHistory.IPriceHistoryUsecase {
	return &cachedPriceHistory{inner: inner, cache: cache, ttlSeconds: ttlSeconds}
}

func (service *cachedPriceHistory) GetPriceHistory(ctx context.Context, asin string, windowDays int, interval string) (domainPriceHistory.Stats, error) {
	canonical := windowDays == 0 && (interval == "" || interval == domainPriceHistory.IntervalDaily)
	if !canonical {
		return service.inner.GetPriceHistory(ctx, asin, windowDays, interval)
	}

	key := fmt.Sprintf("price_history:%s:response", asin)
	res, err := cachemanager.GetCachedOrFetch(ctx, service.cache, key, service.ttlSeconds,
		func(ctx context.Context) (domainPriceHistory.Stats, error) {
			return service.inner.GetPriceHistory(ctx, asin, windowDays, interval)
		}, "")
	return res.Data, err
}

func (service *cachedPriceHistory) IsNearAllTimeLow(ctx context.Context, asin string, thresholdPercent float64) (domainPriceHistory.NearLowResult, error) {
	return service.inner.IsNearAllTimeLow(ctx, asin, thresholdPercent)
}

func (service *cachedPriceHistory) GetPriceTrend(ctx context.Context, asin string, days int) (*int, error) {
	return service.inner.GetPriceTrend(ctx, asin, days)
}
