package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	domainPriceHistory "github.com/souqtrack/souqtrack/domains/pricehistory"
)

type servicePriceHistory struct {
	observations domainPriceHistory.ObservationRepository
}

func NewPriceHistoryService(observations domainPriceHistory.ObservationRepository) domainPriceHistory.IPriceHistoryUsecase {
	return &servicePriceHistory{observations: observations}
}

func (service *servicePriceHistory) GetPriceHistory(ctx context.Context, asin string, windowDays int, interval string) (domainPriceHistory.Stats, error) {
	now := time.Now().UTC()
	cutoff := windowCutoff(now, windowDays)

	observations, err := service.observations.ListSince(ctx, asin, cutoff)
	if err != nil {
		return domainPriceHistory.Stats{}, err
	}

	stats := domainPriceHistory.Stats{
		ASIN:    asin,
		History: []domainPriceHistory.PricePoint{},
	}
	if len(observations) == 0 {
		return stats, nil
	}
	stats.TrackingStarted = true
	stats.DataPointCount = len(observations)

	priced := pricedOnly(observations)
	if len(priced) > 0 {
		stats.AllTimeLow, stats.AllTimeHigh = priceExtremes(priced)

		current := *priced[len(priced)-1].Price
		stats.CurrentPrice = &current

		if first := *priced[0].Price; first != 0 {
			pct := roundPct((current - first) / first * 100)
			stats.PctChangeSinceStart = &pct
		}
		if high := stats.AllTimeHigh; high != nil && high.Price != 0 {
			pct := roundPct((high.Price - current) / high.Price * 100)
			stats.PctDropFromHigh = &pct
		}
	}

	// Trailing averages look at fixed sub-windows of now regardless of the
	// requested window, so they need their own read when the window is
	// narrower than 90 days.
	avgSource := observations
	if cutoff.After(now.AddDate(0, 0, -90)) {
		avgSource, err = service.observations.ListSince(ctx, asin, now.AddDate(0, 0, -90))
		if err != nil {
			return domainPriceHistory.Stats{}, err
		}
	}
	stats.Avg30d = trailingAverage(avgSource, now.AddDate(0, 0, -30))
	stats.Avg90d = trailingAverage(avgSource, now.AddDate(0, 0, -90))

	// Tracking start comes from the full history, not the windowed subset.
	stats.TrackingSince, err = service.observations.EarliestRecordedAt(ctx, asin)
	if err != nil {
		return domainPriceHistory.Stats{}, err
	}

	stats.History = bucketize(observations, interval)
	return stats, nil
}

func (service *servicePriceHistory) IsNearAllTimeLow(ctx context.Context, asin string, thresholdPercent float64) (domainPriceHistory.NearLowResult, error) {
	stats, err := service.GetPriceHistory(ctx, asin, 180, domainPriceHistory.IntervalDaily)
	if err != nil {
		return domainPriceHistory.NearLowResult{}, err
	}

	result := domainPriceHistory.NearLowResult{IsNear: false}
	if stats.AllTimeLow == nil || stats.CurrentPrice == nil {
		return result, nil
	}

	low := stats.AllTimeLow.Price
	result.AllTimeLow = &low
	result.CurrentPrice = stats.CurrentPrice
	if low == 0 {
		return result, nil
	}

	diff := round2((*stats.CurrentPrice - low) / low * 100)
	result.PercentageDiff = &diff
	result.IsNear = diff <= thresholdPercent
	return result, nil
}

func (service *servicePriceHistory) GetPriceTrend(ctx context.Context, asin string, days int) (*int, error) {
	stats, err := service.GetPriceHistory(ctx, asin, days, domainPriceHistory.IntervalDaily)
	if err != nil {
		return nil, err
	}

	history := stats.History
	if len(history) < 2 {
		return nil, nil
	}
	first := history[0].Price
	last := history[len(history)-1].Price
	if first == nil || last == nil || *first == 0 {
		return nil, nil
	}

	pct := roundPct((*last - *first) / *first * 100)
	return &pct, nil
}

func windowCutoff(now time.Time, windowDays int) time.Time {
	switch windowDays {
	case 7, 30, 90, 180:
		return now.AddDate(0, 0, -windowDays)
	default:
		return time.Unix(0, 0).UTC()
	}
}

func pricedOnly(observations []domainPriceHistory.Observation) []domainPriceHistory.Observation {
	priced := make([]domainPriceHistory.Observation, 0, len(observations))
	for _, obs := range observations {
		if obs.Price != nil {
			priced = append(priced, obs)
		}
	}
	return priced
}

// priceExtremes finds the windowed low and high. Input is chronological, so
// a stable sort by price keeps the earliest occurrence of a tied extreme in
// front.
func priceExtremes(priced []domainPriceHistory.Observation) (low, high *domainPriceHistory.ExtremePoint) {
	byPrice := make([]domainPriceHistory.Observation, len(priced))
	copy(byPrice, priced)

	sort.SliceStable(byPrice, func(i, j int) bool {
		return *byPrice[i].Price < *byPrice[j].Price
	})
	low = &domainPriceHistory.ExtremePoint{Price: *byPrice[0].Price, Date: byPrice[0].RecordedAt}

	sort.SliceStable(byPrice, func(i, j int) bool {
		return *byPrice[i].Price > *byPrice[j].Price
	})
	high = &domainPriceHistory.ExtremePoint{Price: *byPrice[0].Price, Date: byPrice[0].RecordedAt}
	return low, high
}

func trailingAverage(observations []domainPriceHistory.Observation, since time.Time) *float64 {
	var sum float64
	var count int
	for _, obs := range observations {
		if obs.Price == nil || obs.RecordedAt.Before(since) {
			continue
		}
		sum += *obs.Price
		count++
	}
	if count == 0 {
		return nil
	}
	avg := round2(sum / float64(count))
	return &avg
}

type bucket struct {
	priceSum    float64
	priceCount  int
	origSum     float64
	origCount   int
	discSum     float64
	discCount   int
	lastTime    time.Time
	lastAvail   *string
}

// bucketize groups chronological observations into hourly, daily or weekly
// buckets. Buckets appear in first-encounter order, which matches time order
// because the input is sorted ascending.
func bucketize(observations []domainPriceHistory.Observation, interval string) []domainPriceHistory.PricePoint {
	var order []string
	buckets := map[string]*bucket{}

	for _, obs := range observations {
		key := bucketKey(obs.RecordedAt, interval)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
			order = append(order, key)
		}
		if obs.Price != nil {
			b.priceSum += *obs.Price
			b.priceCount++
		}
		if obs.OriginalPrice != nil {
			b.origSum += *obs.OriginalPrice
			b.origCount++
		}
		if obs.DiscountPct != nil {
			b.discSum += float64(*obs.DiscountPct)
			b.discCount++
		}
		b.lastTime = obs.RecordedAt
		b.lastAvail = obs.Availability
	}

	points := make([]domainPriceHistory.PricePoint, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		point := domainPriceHistory.PricePoint{
			Timestamp:    b.lastTime,
			Availability: b.lastAvail,
		}
		if b.priceCount > 0 {
			avg := round2(b.priceSum / float64(b.priceCount))
			point.Price = &avg
		}
		if b.origCount > 0 {
			avg := round2(b.origSum / float64(b.origCount))
			point.OriginalPrice = &avg
		}
		if b.discCount > 0 {
			avg := roundPct(b.discSum / float64(b.discCount))
			point.DiscountPct = &avg
		}
		points = append(points, point)
	}
	return points
}

func bucketKey(ts time.Time, interval string) string {
	ts = ts.UTC()
	switch interval {
	case domainPriceHistory.IntervalHourly:
		return ts.Format("2006-01-02T15")
	case domainPriceHistory.IntervalWeekly:
		year, week := ts.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	default:
		return ts.Format("2006-01-02")
	}
}

// round2 rounds half away from zero to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// roundPct rounds half away from zero to the nearest whole percent.
func roundPct(v float64) int {
	return int(math.Round(v))
}
