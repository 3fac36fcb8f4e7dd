package usecase

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainPriceHistory "github.com/souqtrack/souqtrack/domains/pricehistory"
)

type fakeObservations struct {
	rows []domainPriceHistory.Observation
}

func (f *fakeObservations) Append(_ context.Context, obs domainPriceHistory.Observation) error {
	f.rows = append(f.rows, obs)
	return nil
}

func (f *fakeObservations) ListSince(_ context.Context, asin string, since time.Time) ([]domainPriceHistory.Observation, error) {
	var out []domainPriceHistory.Observation
	for _, row := range f.rows {
		if row.ASIN == asin && !row.RecordedAt.Before(since) {
			out = append(out, row)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RecordedAt.Before(out[j].RecordedAt) })
	return out, nil
}

func (f *fakeObservations) EarliestRecordedAt(_ context.Context, asin string) (*time.Time, error) {
	var earliest *time.Time
	for _, row := range f.rows {
		if row.ASIN != asin {
			continue
		}
		if earliest == nil || row.RecordedAt.Before(*earliest) {
			at := row.RecordedAt
			earliest = &at
		}
	}
	return earliest, nil
}

func (f *fakeObservations) HasObservationOn(_ context.Context, asin string, day time.Time) (bool, error) {
	dayStart := time.Date(day.UTC().Year(), day.UTC().Month(), day.UTC().Day(), 0, 0, 0, 0, time.UTC)
	for _, row := range f.rows {
		if row.ASIN == asin && !row.RecordedAt.Before(dayStart) && row.RecordedAt.Before(dayStart.AddDate(0, 0, 1)) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeObservations) TrackedASINs(_ context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, row := range f.rows {
		if !seen[row.ASIN] {
			seen[row.ASIN] = true
			out = append(out, row.ASIN)
		}
	}
	return out, nil
}

func fptr(v float64) *float64 { return &v }

func obsAt(asin string, price *float64, at time.Time) domainPriceHistory.Observation {
	return domainPriceHistory.Observation{ASIN: asin, Price: price, RecordedAt: at}
}

func TestPriceHistoryNoObservations(t *testing.T) {
	service := NewPriceHistoryService(&fakeObservations{})

	stats, err := service.GetPriceHistory(context.Background(), "B0EMPTY000", 30, domainPriceHistory.IntervalDaily)
	require.NoError(t, err)

	assert.False(t, stats.TrackingStarted)
	assert.Equal(t, 0, stats.DataPointCount)
	assert.Nil(t, stats.CurrentPrice)
	assert.Nil(t, stats.AllTimeLow)
	assert.Nil(t, stats.AllTimeHigh)
	assert.Nil(t, stats.Avg30d)
	assert.Nil(t, stats.Avg90d)
	assert.Nil(t, stats.PctChangeSinceStart)
	assert.Nil(t, stats.PctDropFromHigh)
	assert.Nil(t, stats.TrackingSince)
	assert.Empty(t, stats.History)
}

func TestPriceHistoryStats(t *testing.T) {
	const asin = "B0STATS000"
	now := time.Now().UTC()
	repo := &fakeObservations{}
	for i, price := range []float64{100, 90, 80, 82} {
		repo.rows = append(repo.rows, obsAt(asin, fptr(price), now.AddDate(0, 0, -(6 - 2*i))))
	}

	service := NewPriceHistoryService(repo)
	stats, err := service.GetPriceHistory(context.Background(), asin, 30, domainPriceHistory.IntervalDaily)
	require.NoError(t, err)

	assert.True(t, stats.TrackingStarted)
	assert.Equal(t, 4, stats.DataPointCount)
	require.NotNil(t, stats.CurrentPrice)
	assert.Equal(t, 82.0, *stats.CurrentPrice)
	require.NotNil(t, stats.AllTimeLow)
	assert.Equal(t, 80.0, stats.AllTimeLow.Price)
	require.NotNil(t, stats.AllTimeHigh)
	assert.Equal(t, 100.0, stats.AllTimeHigh.Price)
	require.NotNil(t, stats.Avg30d)
	assert.Equal(t, 88.0, *stats.Avg30d)
	require.NotNil(t, stats.PctChangeSinceStart)
	assert.Equal(t, -18, *stats.PctChangeSinceStart)
	require.NotNil(t, stats.PctDropFromHigh)
	assert.Equal(t, 18, *stats.PctDropFromHigh)
	require.NotNil(t, stats.TrackingSince)
	assert.Len(t, stats.History, 4)
}

func TestPriceHistoryExtremeTieBreakUsesFirstDate(t *testing.T) {
	const asin = "B0TIES0000"
	now := time.Now().UTC()
	firstLow := now.AddDate(0, 0, -5)
	repo := &fakeObservations{rows: []domainPriceHistory.Observation{
		obsAt(asin, fptr(90), now.AddDate(0, 0, -6)),
		obsAt(asin, fptr(70), firstLow),
		obsAt(asin, fptr(70), now.AddDate(0, 0, -3)),
		obsAt(asin, fptr(90), now.AddDate(0, 0, -1)),
	}}

	service := NewPriceHistoryService(repo)
	stats, err := service.GetPriceHistory(context.Background(), asin, 30, domainPriceHistory.IntervalDaily)
	require.NoError(t, err)

	require.NotNil(t, stats.AllTimeLow)
	assert.True(t, stats.AllTimeLow.Date.Equal(firstLow))
	require.NotNil(t, stats.AllTimeHigh)
	assert.True(t, stats.AllTimeHigh.Date.Equal(now.AddDate(0, 0, -6)), "tied high should keep its first date")
}

func TestPriceHistoryTrackingSinceIgnoresWindow(t *testing.T) {
	const asin = "B0SINCE000"
	now := time.Now().UTC()
	start := now.AddDate(0, 0, -200)
	repo := &fakeObservations{rows: []domainPriceHistory.Observation{
		obsAt(asin, fptr(120), start),
		obsAt(asin, fptr(100), now.AddDate(0, 0, -2)),
	}}

	service := NewPriceHistoryService(repo)
	stats, err := service.GetPriceHistory(context.Background(), asin, 7, domainPriceHistory.IntervalDaily)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.DataPointCount)
	require.NotNil(t, stats.TrackingSince)
	assert.True(t, stats.TrackingSince.Equal(start))
}

func TestDailyBucketAveragesSameDayObservations(t *testing.T) {
	const asin = "B0BUCKET00"
	day := time.Now().UTC().AddDate(0, 0, -1)
	morning := time.Date(day.Year(), day.Month(), day.Day(), 9, 0, 0, 0, time.UTC)
	evening := morning.Add(10 * time.Hour)
	repo := &fakeObservations{rows: []domainPriceHistory.Observation{
		obsAt(asin, fptr(100), morning),
		obsAt(asin, fptr(120), evening),
	}}

	service := NewPriceHistoryService(repo)
	stats, err := service.GetPriceHistory(context.Background(), asin, 7, domainPriceHistory.IntervalDaily)
	require.NoError(t, err)

	require.Len(t, stats.History, 1)
	point := stats.History[0]
	require.NotNil(t, point.Price)
	assert.Equal(t, 110.0, *point.Price)
	assert.True(t, point.Timestamp.Equal(evening), "bucket timestamp should be the last observation's")
}

func TestWeeklyBucketsCrossYearBoundary(t *testing.T) {
	// Dec 31 2024 falls in ISO week 1 of 2025, together with Jan 1-2.
	obs := []domainPriceHistory.Observation{
		obsAt("x", fptr(100), time.Date(2024, 12, 31, 12, 0, 0, 0, time.UTC)),
		obsAt("x", fptr(110), time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)),
		obsAt("x", fptr(120), time.Date(2025, 1, 2, 12, 0, 0, 0, time.UTC)),
	}

	points := bucketize(obs, domainPriceHistory.IntervalWeekly)
	require.Len(t, points, 1)
	require.NotNil(t, points[0].Price)
	assert.Equal(t, 110.0, *points[0].Price)
}

func TestHourlyBucketsSplitByHour(t *testing.T) {
	base := time.Date(2025, 6, 1, 10, 5, 0, 0, time.UTC)
	obs := []domainPriceHistory.Observation{
		obsAt("x", fptr(100), base),
		obsAt("x", fptr(102), base.Add(20*time.Minute)),
		obsAt("x", fptr(110), base.Add(time.Hour)),
	}

	points := bucketize(obs, domainPriceHistory.IntervalHourly)
	require.Len(t, points, 2)
	assert.Equal(t, 101.0, *points[0].Price)
	assert.Equal(t, 110.0, *points[1].Price)
}

func TestBucketSkipsMissingPrices(t *testing.T) {
	day := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	avail := "Out of Stock"
	obs := []domainPriceHistory.Observation{
		{ASIN: "x", Price: nil, Availability: &avail, RecordedAt: day},
	}

	points := bucketize(obs, domainPriceHistory.IntervalDaily)
	require.Len(t, points, 1)
	assert.Nil(t, points[0].Price)
	require.NotNil(t, points[0].Availability)
	assert.Equal(t, avail, *points[0].Availability)
}

func TestIsNearAllTimeLow(t *testing.T) {
	const asin = "B0NEARLOW0"
	now := time.Now().UTC()
	repo := &fakeObservations{}
	for i, price := range []float64{100, 90, 80, 82} {
		repo.rows = append(repo.rows, obsAt(asin, fptr(price), now.AddDate(0, 0, -(6 - 2*i))))
	}

	service := NewPriceHistoryService(repo)
	result, err := service.IsNearAllTimeLow(context.Background(), asin, 5)
	require.NoError(t, err)

	assert.True(t, result.IsNear)
	require.NotNil(t, result.PercentageDiff)
	assert.Equal(t, 2.5, *result.PercentageDiff)
	require.NotNil(t, result.AllTimeLow)
	assert.Equal(t, 80.0, *result.AllTimeLow)
	require.NotNil(t, result.CurrentPrice)
	assert.Equal(t, 82.0, *result.CurrentPrice)
}

func TestIsNearAllTimeLowWithoutData(t *testing.T) {
	service := NewPriceHistoryService(&fakeObservations{})

	result, err := service.IsNearAllTimeLow(context.Background(), "B0EMPTY000", 5)
	require.NoError(t, err)

	assert.False(t, result.IsNear)
	assert.Nil(t, result.AllTimeLow)
	assert.Nil(t, result.CurrentPrice)
	assert.Nil(t, result.PercentageDiff)
}

func TestPriceTrend(t *testing.T) {
	const asin = "B0TREND000"
	now := time.Now().UTC()
	repo := &fakeObservations{rows: []domainPriceHistory.Observation{
		obsAt(asin, fptr(100), now.AddDate(0, 0, -5)),
		obsAt(asin, fptr(105), now.AddDate(0, 0, -3)),
		obsAt(asin, fptr(110), now.AddDate(0, 0, -1)),
	}}

	service := NewPriceHistoryService(repo)
	trend, err := service.GetPriceTrend(context.Background(), asin, 7)
	require.NoError(t, err)

	require.NotNil(t, trend)
	assert.Equal(t, 10, *trend)
}

func TestPriceTrendNeedsTwoBuckets(t *testing.T) {
	const asin = "B0TREND001"
	repo := &fakeObservations{rows: []domainPriceHistory.Observation{
		obsAt(asin, fptr(100), time.Now().UTC().Add(-2*time.Hour)),
	}}

	service := NewPriceHistoryService(repo)
	trend, err := service.GetPriceTrend(context.Background(), asin, 7)
	require.NoError(t, err)
	assert.Nil(t, trend)
}
