package usecase

import (
	"context"
	"fmt"

	"github.com/souqtrack/souqtrack/core/config"
	domainCache "github.com/souqtrack/souqtrack/domains/cache"
	domainCatalog "github.com/souqtrack/souqtrack/domains/catalog"
	"github.com/souqtrack/souqtrack/infrastructure/cachemanager"
)

// CatalogFetcher is the upstream side of the catalog usecase, satisfied by
// the scraper client.
type CatalogFetcher interface {
	GetProduct(ctx context.Context, asin string) (domainCatalog.Product, error)
	Search(ctx context.Context, req domainCatalog.SearchRequest) (domainCatalog.SearchPage, error)
	GetCategory(ctx context.Context, req domainCatalog.CategoryRequest) (domainCatalog.CategoryPage, error)
	GetDeals(ctx context.Context, req domainCatalog.DealsRequest) (domainCatalog.DealsPage, error)
	GetReviews(ctx context.Context, asin string) (domainCatalog.ReviewsResult, error)
}

type serviceCatalog struct {
	cache   *cachemanager.Manager
	fetcher CatalogFetcher
	ttl     config.CacheTTLConfig
}

func NewCatalogService(cache *cachemanager.Manager, fetcher CatalogFetcher, ttl config.CacheTTLConfig) domainCatalog.ICatalogUsecase {
	return &serviceCatalog{cache: cache, fetcher: fetcher, ttl: ttl}
}

func (service *serviceCatalog) GetProduct(ctx context.Context, asin string) (domainCatalog.Product, domainCache.Meta, error) {
	key := fmt.Sprintf("product:%s:full", asin)
	res, err := cachemanager.GetCachedOrFetch(ctx, service.cache, key, service.ttl.Product,
		func(ctx context.Context) (domainCatalog.Product, error) {
			return service.fetcher.GetProduct(ctx, asin)
		}, "")
	return res.Data, res.Meta, err
}

func (service *serviceCatalog) Search(ctx context.Context, req domainCatalog.SearchRequest) (domainCatalog.SearchPage, domainCache.Meta, error) {
	key := fmt.Sprintf("search:%s:%d:%s", req.Query, req.Page, req.Sort)
	res, err := cachemanager.GetCachedOrFetch(ctx, service.cache, key, service.ttl.Search,
		func(ctx context.Context) (domainCatalog.SearchPage, error) {
			return service.fetcher.Search(ctx, req)
		}, "")
	return res.Data, res.Meta, err
}

func (service *serviceCatalog) GetCategory(ctx context.Context, req domainCatalog.CategoryRequest) (domainCatalog.CategoryPage, domainCache.Meta, error) {
	key := fmt.Sprintf("category:%s:%d:%s:%d", req.Slug, req.Page, req.Sort, req.Limit)
	res, err := cachemanager.GetCachedOrFetch(ctx, service.cache, key, service.ttl.Category,
		func(ctx context.Context) (domainCatalog.CategoryPage, error) {
			return service.fetcher.GetCategory(ctx, req)
		}, "")
	return res.Data, res.Meta, err
}

func (service *serviceCatalog) GetDeals(ctx context.Context, req domainCatalog.DealsRequest) (domainCatalog.DealsPage, domainCache.Meta, error) {
	category := req.Category
	if category == "" {
		category = "all"
	}
	key := fmt.Sprintf("deals:%s:%d:%d:%s", category, req.Page, req.MinDiscount, req.Sort)
	res, err := cachemanager.GetCachedOrFetch(ctx, service.cache, key, service.ttl.Deals,
		func(ctx context.Context) (domainCatalog.DealsPage, error) {
			return service.fetcher.GetDeals(ctx, req)
		}, "")
	return res.Data, res.Meta, err
}

func (service *serviceCatalog) GetReviews(ctx context.Context, asin string) (domainCatalog.ReviewsResult, domainCache.Meta, error) {
	key := fmt.Sprintf("reviews:%s", asin)
	res, err := cachemanager.GetCachedOrFetch(ctx, service.cache, key, service.ttl.Reviews,
		func(ctx context.Context) (domainCatalog.ReviewsResult, error) {
			return service.fetcher.GetReviews(ctx, asin)
		}, "")
	return res.Data, res.Meta, err
}
