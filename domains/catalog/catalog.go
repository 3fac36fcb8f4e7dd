package catalog

import (
	"context"

	domainCache "github.com/souqtrack/souqtrack/domains/cache"
)

// Product is a fully hydrated amazon.sa product page.
type Product struct {
	ASIN          string   `json:"asin"`
	Title         string   `json:"title"`
	Brand         string   `json:"brand,omitempty"`
	Description   string   `json:"description,omitempty"` // plain text, HTML stripped
	ImageURL      string   `json:"image_url,omitempty"`
	Link          string   `json:"link,omitempty"`
	Price         *float64 `json:"price"`
	OriginalPrice *float64 `json:"original_price"`
	DiscountPct   *int     `json:"discount_pct"`
	Currency      string   `json:"currency,omitempty"`
	Rating        *float64 `json:"rating"`
	RatingsTotal  *int     `json:"ratings_total"`
	Availability  *string  `json:"availability"`
	Categories    []string `json:"categories,omitempty"`
}

// SearchItem is a single result row from search or category listings.
type SearchItem struct {
	ASIN     string   `json:"asin"`
	Title    string   `json:"title"`
	ImageURL string   `json:"image_url,omitempty"`
	Link     string   `json:"link,omitempty"`
	Price    *float64 `json:"price"`
	Rating   *float64 `json:"rating"`
	Prime    bool     `json:"prime"`
}

type SearchPage struct {
	Query        string       `json:"query"`
	Page         int          `json:"page"`
	Sort         string       `json:"sort"`
	TotalResults int          `json:"total_results"`
	Items        []SearchItem `json:"items"`
}

type CategoryPage struct {
	Slug  string       `json:"slug"`
	Page  int          `json:"page"`
	Sort  string       `json:"sort"`
	Limit int          `json:"limit"`
	Items []SearchItem `json:"items"`
}

type Deal struct {
	ASIN          string   `json:"asin"`
	Title         string   `json:"title"`
	ImageURL      string   `json:"image_url,omitempty"`
	Link          string   `json:"link,omitempty"`
	Price         *float64 `json:"price"`
	OriginalPrice *float64 `json:"original_price"`
	DiscountPct   *int     `json:"discount_pct"`
}

type DealsPage struct {
	Category    string `json:"category"`
	Page        int    `json:"page"`
	MinDiscount int    `json:"min_discount"`
	Sort        string `json:"sort"`
	Deals       []Deal `json:"deals"`
}

type Review struct {
	ID               string  `json:"id"`
	Title            string  `json:"title"`
	Body             string  `json:"body"`
	Rating           float64 `json:"rating"`
	Author           string  `json:"author,omitempty"`
	Date             string  `json:"date,omitempty"`
	VerifiedPurchase bool    `json:"verified_purchase"`
}

type ReviewsResult struct {
	ASIN    string   `json:"asin"`
	Reviews []Review `json:"reviews"`
}

type SearchRequest struct {
	Query string
	Page  int
	Sort  string
}

type CategoryRequest struct {
	Slug  string
	Page  int
	Sort  string
	Limit int
}

type DealsRequest struct {
	Category    string // empty means "all"
	Page        int
	MinDiscount int
	Sort        string
}

// ICatalogUsecase serves catalog reads through the cache orchestrator.
// The Meta on each result reports which tier answered.
type ICatalogUsecase interface {
	GetProduct(ctx context.Context, asin string) (Product, domainCache.Meta, error)
	Search(ctx context.Context, req SearchRequest) (SearchPage, domainCache.Meta, error)
	GetCategory(ctx context.Context, req CategoryRequest) (CategoryPage, domainCache.Meta, error)
	GetDeals(ctx context.Context, req DealsRequest) (DealsPage, domainCache.Meta, error)
	GetReviews(ctx context.Context, asin string) (ReviewsResult, domainCache.Meta, error)
}
