package usage

import (
	"context"
	"time"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Entry is one upstream API call in the append-only usage log.
type Entry struct {
	Endpoint   string
	Status     string
	ResponseMs int
	CreatedAt  time.Time
}

// MonthlySummary is recomputed from the log for the current calendar month.
// Only successful calls count toward usage.
type MonthlySummary struct {
	UsageCount      int            `json:"usage_count"`
	Quota           int            `json:"quota"`
	Remaining       int            `json:"remaining"`
	PctUsed         float64        `json:"pct_used"`
	IsNearLimit     bool           `json:"is_near_limit"`
	UsageByEndpoint map[string]int `json:"usage_by_endpoint"`
}

// DailySummary covers calls made since the start of today (UTC).
// AvgResponseMs averages over all calls, success and failure alike.
type DailySummary struct {
	Date          string  `json:"date"`
	TotalCalls    int     `json:"total_calls"`
	SuccessCalls  int     `json:"success_calls"`
	FailedCalls   int     `json:"failed_calls"`
	AvgResponseMs float64 `json:"avg_response_ms"`
}

// IUsageUsecase tracks scraping-API consumption against the monthly quota.
type IUsageUsecase interface {
	// RecordUsage is log-and-swallow: it never fails the caller.
	RecordUsage(ctx context.Context, endpoint, status string, responseMs int)
	GetMonthlyUsage(ctx context.Context) (MonthlySummary, error)
	GetDailyUsageSummary(ctx context.Context) (DailySummary, error)
	// CheckQuotaAndAlert fires the webhook every time it finds usage at or
	// above the alert threshold; there is deliberately no suppression.
	CheckQuotaAndAlert(ctx context.Context) (bool, error)
}

// LogRepository is the append-only storage contract for usage entries.
type LogRepository interface {
	Append(ctx context.Context, entry Entry) error
	// ListSince returns entries with CreatedAt >= since.
	ListSince(ctx context.Context, since time.Time) ([]Entry, error)
}
