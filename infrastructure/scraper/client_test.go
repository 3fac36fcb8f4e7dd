package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/souqtrack/souqtrack/core/config"
	"github.com/souqtrack/souqtrack/domains/catalog"
	pkgError "github.com/souqtrack/souqtrack/pkg/error"
)

type recordedCall struct {
	Endpoint string
	Status   string
}

type sinkRecorder struct {
	calls []recordedCall
}

func (s *sinkRecorder) RecordUsage(_ context.Context, endpoint, status string, _ int) {
	s.calls = append(s.calls, recordedCall{Endpoint: endpoint, Status: status})
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *sinkRecorder) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	sink := &sinkRecorder{}
	client := NewClient(config.ScraperConfig{
		BaseURL:    server.URL,
		APIKey:     "test-key",
		Timeout:    5 * time.Second,
		RetryCount: 0,
		Domain:     "amazon.sa",
	}, sink)
	return client, sink
}

func TestGetProductMapsUpstreamFields(t *testing.T) {
	client, sink := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "product", r.URL.Query().Get("type"))
		assert.Equal(t, "amazon.sa", r.URL.Query().Get("amazon_domain"))
		assert.Equal(t, "B0EXAMPLE1", r.URL.Query().Get("asin"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"request_info": {"success": true},
			"product": {
				"asin": "B0EXAMPLE1",
				"title": "Coffee Grinder",
				"brand": "Sawda",
				"description": "<p>Burr grinder with <b>40</b> settings</p>",
				"main_image": {"link": "https://img.example/1.jpg"},
				"buybox_winner": {
					"price": {"value": 150.0, "currency": "SAR"},
					"rrp": {"value": 200.0, "currency": "SAR"},
					"availability": {"raw": "In Stock"}
				},
				"rating": 4.5,
				"ratings_total": 320,
				"categories": [{"name": "Home"}, {"name": "Kitchen"}]
			}
		}`))
	})

	product, err := client.GetProduct(context.Background(), "B0EXAMPLE1")
	require.NoError(t, err)

	assert.Equal(t, "B0EXAMPLE1", product.ASIN)
	assert.Equal(t, "Burr grinder with 40 settings", product.Description)
	require.NotNil(t, product.Price)
	assert.Equal(t, 150.0, *product.Price)
	require.NotNil(t, product.DiscountPct)
	assert.Equal(t, 25, *product.DiscountPct)
	require.NotNil(t, product.Availability)
	assert.Equal(t, "In Stock", *product.Availability)
	assert.Equal(t, []string{"Home", "Kitchen"}, product.Categories)

	require.Len(t, sink.calls, 1)
	assert.Equal(t, recordedCall{Endpoint: "product", Status: "success"}, sink.calls[0])
}

func TestProviderRejectionBecomesUpstreamError(t *testing.T) {
	client, sink := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"request_info": {"success": false, "message": "invalid api key"}}`))
	})

	_, err := client.GetProduct(context.Background(), "B0EXAMPLE1")
	require.Error(t, err)
	var upstream pkgError.UpstreamError
	assert.ErrorAs(t, err, &upstream)
	assert.Contains(t, err.Error(), "invalid api key")

	require.Len(t, sink.calls, 1)
	assert.Equal(t, "error", sink.calls[0].Status)
}

func TestHTTPErrorBecomesUpstreamError(t *testing.T) {
	client, sink := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.GetProduct(context.Background(), "B0EXAMPLE1")
	require.Error(t, err)
	var upstream pkgError.UpstreamError
	assert.ErrorAs(t, err, &upstream)

	require.Len(t, sink.calls, 1)
	assert.Equal(t, "error", sink.calls[0].Status)
}

func TestGetDealsFiltersBelowMinDiscount(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"request_info": {"success": true},
			"deals_results": [
				{"asin": "A1", "title": "Big deal", "deal_price": {"value": 50}, "list_price": {"value": 100}, "savings_percent": 50},
				{"asin": "A2", "title": "Small deal", "deal_price": {"value": 95}, "list_price": {"value": 100}, "savings_percent": 5},
				{"asin": "A3", "title": "Derived deal", "deal_price": {"value": 60}, "list_price": {"value": 100}}
			]
		}`))
	})

	page, err := client.GetDeals(context.Background(), catalog.DealsRequest{Page: 1, MinDiscount: 30})
	require.NoError(t, err)

	assert.Equal(t, "all", page.Category)
	require.Len(t, page.Deals, 2)
	assert.Equal(t, "A1", page.Deals[0].ASIN)
	assert.Equal(t, "A3", page.Deals[1].ASIN)
	require.NotNil(t, page.Deals[1].DiscountPct)
	assert.Equal(t, 40, *page.Deals[1].DiscountPct)
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "plain text stays", stripHTML("plain text stays"))
	assert.Equal(t, "one two three", stripHTML("<p>one</p> <p>two</p> <p>three</p>"))
	assert.Equal(t, "", stripHTML(""))
}

func TestDiscountPct(t *testing.T) {
	price := func(v float64) *float64 { return &v }

	assert.Nil(t, discountPct(nil, price(100)))
	assert.Nil(t, discountPct(price(100), price(100)))
	assert.Nil(t, discountPct(price(120), price(100)))

	pct := discountPct(price(75), price(100))
	require.NotNil(t, pct)
	assert.Equal(t, 25, *pct)
}
