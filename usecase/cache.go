package usecase

import (
	"context"

	domainCache "github.com/souqtrack/souqtrack/domains/cache"
	"github.com/souqtrack/souqtrack/infrastructure/cachemanager"
	pkgError "github.com/souqtrack/souqtrack/pkg/error"
)

type serviceCache struct {
	manager *cachemanager.Manager
}

func NewCacheService(manager *cachemanager.Manager) domainCache.ICacheUsecase {
	return &serviceCache{manager: manager}
}

func (service *serviceCache) GetStats(ctx context.Context) (domainCache.Stats, error) {
	return service.manager.GetCacheStats(ctx), nil
}

func (service *serviceCache) Invalidate(ctx context.Context, pattern string) (int64, error) {
	if pattern == "" {
		return 0, pkgError.ValidationError("pattern is required")
	}
	return service.manager.InvalidateCache(ctx, pattern)
}
