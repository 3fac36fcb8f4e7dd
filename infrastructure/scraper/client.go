package scraper

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/souqtrack/souqtrack/core/config"
	"github.com/souqtrack/souqtrack/domains/catalog"
	domainUsage "github.com/souqtrack/souqtrack/domains/usage"
	pkgError "github.com/souqtrack/souqtrack/pkg/error"
)

// UsageRecorder receives one record per upstream call. Recording must
// never fail the request, so the method has no error return.
type UsageRecorder interface {
	RecordUsage(ctx context.Context, endpoint, status string, responseMs int)
}

// Client talks to the scraping provider. Every method issues exactly one
// billable request and reports it to the usage tracker.
type Client struct {
	http   *resty.Client
	domain string
	apiKey string
	usage  UsageRecorder
}

func NewClient(cfg config.ScraperConfig, usage UsageRecorder) *Client {
	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(500 * time.Millisecond)

	return &Client{
		http:   http,
		domain: cfg.Domain,
		apiKey: cfg.APIKey,
		usage:  usage,
	}
}

func (c *Client) GetProduct(ctx context.Context, asin string) (catalog.Product, error) {
	var out productResponse
	err := c.call(ctx, "product", map[string]string{"asin": asin}, &out)
	if err != nil {
		return catalog.Product{}, err
	}

	p := out.Product
	product := catalog.Product{
		ASIN:          p.ASIN,
		Title:         p.Title,
		Brand:         p.Brand,
		Description:   stripHTML(p.Description),
		ImageURL:      p.MainImage.Link,
		Link:          p.Link,
		Price:         p.BuyboxWinner.Price.Value,
		OriginalPrice: p.BuyboxWinner.RRP.Value,
		Currency:      p.BuyboxWinner.Price.Currency,
		Rating:        p.Rating,
		RatingsTotal:  p.RatingsTotal,
	}
	if raw := p.BuyboxWinner.Availability.Raw; raw != "" {
		product.Availability = &raw
	}
	for _, cat := range p.Categories {
		product.Categories = append(product.Categories, cat.Name)
	}
	product.DiscountPct = discountPct(product.Price, product.OriginalPrice)
	return product, nil
}

func (c *Client) Search(ctx context.Context, req catalog.SearchRequest) (catalog.SearchPage, error) {
	params := map[string]string{
		"search_term": req.Query,
		"page":        strconv.Itoa(req.Page),
	}
	if req.Sort != "" {
		params["sort_by"] = req.Sort
	}

	var out searchResponse
	if err := c.call(ctx, "search", params, &out); err != nil {
		return catalog.SearchPage{}, err
	}

	page := catalog.SearchPage{
		Query:        req.Query,
		Page:         req.Page,
		Sort:         req.Sort,
		TotalResults: out.Pagination.TotalResults,
		Items:        mapSearchItems(out.SearchResults),
	}
	return page, nil
}

func (c *Client) GetCategory(ctx context.Context, req catalog.CategoryRequest) (catalog.CategoryPage, error) {
	params := map[string]string{
		"category_id": req.Slug,
		"page":        strconv.Itoa(req.Page),
	}
	if req.Sort != "" {
		params["sort_by"] = req.Sort
	}

	var out categoryResponse
	if err := c.call(ctx, "category", params, &out); err != nil {
		return catalog.CategoryPage{}, err
	}

	items := mapSearchItems(out.CategoryResults)
	if req.Limit > 0 && len(items) > req.Limit {
		items = items[:req.Limit]
	}
	return catalog.CategoryPage{
		Slug:  req.Slug,
		Page:  req.Page,
		Sort:  req.Sort,
		Limit: req.Limit,
		Items: items,
	}, nil
}

func (c *Client) GetDeals(ctx context.Context, req catalog.DealsRequest) (catalog.DealsPage, error) {
	params := map[string]string{
		"page": strconv.Itoa(req.Page),
	}
	if req.Category != "" {
		params["category_id"] = req.Category
	}
	if req.Sort != "" {
		params["sort_by"] = req.Sort
	}

	var out dealsResponse
	if err := c.call(ctx, "deals", params, &out); err != nil {
		return catalog.DealsPage{}, err
	}

	category := req.Category
	if category == "" {
		category = "all"
	}
	page := catalog.DealsPage{
		Category:    category,
		Page:        req.Page,
		MinDiscount: req.MinDiscount,
		Sort:        req.Sort,
		Deals:       []catalog.Deal{},
	}
	for _, d := range out.DealsResults {
		pct := d.SavingsPct
		if pct == nil {
			pct = discountPct(d.DealPrice.Value, d.ListPrice.Value)
		}
		if req.MinDiscount > 0 && (pct == nil || *pct < req.MinDiscount) {
			continue
		}
		page.Deals = append(page.Deals, catalog.Deal{
			ASIN:          d.ASIN,
			Title:         d.Title,
			ImageURL:      d.Image,
			Link:          d.Link,
			Price:         d.DealPrice.Value,
			OriginalPrice: d.ListPrice.Value,
			DiscountPct:   pct,
		})
	}
	return page, nil
}

func (c *Client) GetReviews(ctx context.Context, asin string) (catalog.ReviewsResult, error) {
	var out reviewsResponse
	if err := c.call(ctx, "reviews", map[string]string{"asin": asin}, &out); err != nil {
		return catalog.ReviewsResult{}, err
	}

	result := catalog.ReviewsResult{ASIN: asin, Reviews: []catalog.Review{}}
	for _, r := range out.Reviews {
		result.Reviews = append(result.Reviews, catalog.Review{
			ID:               r.ID,
			Title:            r.Title,
			Body:             stripHTML(r.Body),
			Rating:           r.Rating,
			Author:           r.Profile.Name,
			Date:             r.Date.Raw,
			VerifiedPurchase: r.VerifiedPurchase,
		})
	}
	return result, nil
}

// call issues one provider request. out must embed a request_info block;
// the provider reports request-level failures inside a 200 body.
func (c *Client) call(ctx context.Context, requestType string, params map[string]string, out any) error {
	start := time.Now()

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("api_key", c.apiKey).
		SetQueryParam("type", requestType).
		SetQueryParam("amazon_domain", c.domain).
		SetQueryParams(params).
		SetResult(out).
		Get("")

	elapsed := int(time.Since(start).Milliseconds())

	if err != nil {
		c.record(ctx, requestType, false, elapsed)
		return pkgError.UpstreamError(fmt.Sprintf("scraper request %s failed: %v", requestType, err))
	}
	if resp.IsError() {
		c.record(ctx, requestType, false, elapsed)
		return pkgError.UpstreamError(fmt.Sprintf("scraper request %s returned HTTP %d", requestType, resp.StatusCode()))
	}
	if info := extractRequestInfo(out); info != nil && !info.Success {
		c.record(ctx, requestType, false, elapsed)
		return pkgError.UpstreamError(fmt.Sprintf("scraper request %s rejected: %s", requestType, info.Message))
	}

	c.record(ctx, requestType, true, elapsed)
	return nil
}

func (c *Client) record(ctx context.Context, endpoint string, success bool, elapsedMs int) {
	if c.usage == nil {
		return
	}
	status := domainUsage.StatusSuccess
	if !success {
		status = domainUsage.StatusError
	}
	c.usage.RecordUsage(ctx, endpoint, status, elapsedMs)
}

func extractRequestInfo(out any) *requestInfo {
	switch v := out.(type) {
	case *productResponse:
		return &v.RequestInfo
	case *searchResponse:
		return &v.RequestInfo
	case *categoryResponse:
		return &v.RequestInfo
	case *dealsResponse:
		return &v.RequestInfo
	case *reviewsResponse:
		return &v.RequestInfo
	}
	return nil
}

func mapSearchItems(rows []upstreamSearchItem) []catalog.SearchItem {
	items := make([]catalog.SearchItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, catalog.SearchItem{
			ASIN:     r.ASIN,
			Title:    r.Title,
			ImageURL: r.Image,
			Link:     r.Link,
			Price:    r.Price.Value,
			Rating:   r.Rating,
			Prime:    r.IsPrime,
		})
	}
	return items
}

func discountPct(price, original *float64) *int {
	if price == nil || original == nil || *original <= 0 || *price >= *original {
		return nil
	}
	pct := int((1 - *price / *original) * 100)
	if pct <= 0 {
		return nil
	}
	return &pct
}

// stripHTML flattens provider descriptions that arrive as markup. Plain
// text input passes through unchanged.
func stripHTML(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		logrus.Debugf("[SCRAPER] Description parse failed, keeping raw text: %v", err)
		return s
	}
	text := strings.TrimSpace(doc.Text())
	return strings.Join(strings.Fields(text), " ")
}
