package pricehistory

import (
	"context"
	"time"
)

// Supported aggregation intervals.
const (
	IntervalHourly = "hourly"
	IntervalDaily  = "daily"
	IntervalWeekly = "weekly"
)

// Observation is one append-only price reading for a product. Nil fields
// mean the value was missing upstream, not zero.
type Observation struct {
	ASIN          string
	Price         *float64
	OriginalPrice *float64
	DiscountPct   *int
	Availability  *string
	RecordedAt    time.Time
}

// PricePoint is one aggregated bucket of the history series.
type PricePoint struct {
	Timestamp     time.Time `json:"timestamp"`
	Price         *float64  `json:"price"`
	OriginalPrice *float64  `json:"original_price"`
	DiscountPct   *int      `json:"discount_pct"`
	Availability  *string   `json:"availability"`
}

// ExtremePoint carries an all-time low or high and the first date it occurred.
type ExtremePoint struct {
	Price float64   `json:"price"`
	Date  time.Time `json:"date"`
}

// Stats is computed on read and never persisted. Derived fields are nil
// (not zero) when there is not enough data to compute them.
type Stats struct {
	ASIN                string        `json:"asin"`
	TrackingStarted     bool          `json:"tracking_started"`
	CurrentPrice        *float64      `json:"current_price"`
	AllTimeLow          *ExtremePoint `json:"all_time_low"`
	AllTimeHigh         *ExtremePoint `json:"all_time_high"`
	Avg30d              *float64      `json:"avg_30d"`
	Avg90d              *float64      `json:"avg_90d"`
	PctChangeSinceStart *int          `json:"pct_change_since_start"`
	PctDropFromHigh     *int          `json:"pct_drop_from_high"`
	TrackingSince       *time.Time    `json:"tracking_since"`
	DataPointCount      int           `json:"data_point_count"`
	History             []PricePoint  `json:"history"`
}

// NearLowResult reports how close the current price is to the all-time low.
type NearLowResult struct {
	IsNear         bool     `json:"is_near"`
	AllTimeLow     *float64 `json:"all_time_low"`
	CurrentPrice   *float64 `json:"current_price"`
	PercentageDiff *float64 `json:"percentage_diff"`
}

// IPriceHistoryUsecase computes statistics over recorded observations.
type IPriceHistoryUsecase interface {
	// GetPriceHistory returns stats for the window. Supported windows are
	// 7, 30, 90 and 180 days; any other value means all history.
	GetPriceHistory(ctx context.Context, asin string, windowDays int, interval string) (Stats, error)
	IsNearAllTimeLow(ctx context.Context, asin string, thresholdPercent float64) (NearLowResult, error)
	// GetPriceTrend returns the rounded percentage change over the daily
	// bucketed series, or nil with fewer than two usable points.
	GetPriceTrend(ctx context.Context, asin string, days int) (*int, error)
}

// ObservationRepository is the storage contract for price observations.
type ObservationRepository interface {
	Append(ctx context.Context, obs Observation) error
	// ListSince returns observations with RecordedAt >= since, ascending.
	ListSince(ctx context.Context, asin string, since time.Time) ([]Observation, error)
	// EarliestRecordedAt returns nil when the product has no observations.
	EarliestRecordedAt(ctx context.Context, asin string) (*time.Time, error)
	// HasObservationOn reports whether an observation exists on the given
	// UTC calendar day; the sync job uses it to keep one row per day.
	HasObservationOn(ctx context.Context, asin string, day time.Time) (bool, error)
	// TrackedASINs lists every product that has at least one observation.
	TrackedASINs(ctx context.Context) ([]string, error)
}
