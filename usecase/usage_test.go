package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/souqtrack/souqtrack/core/config"
	domainUsage "github.com/souqtrack/souqtrack/domains/usage"
)

type fakeUsageLogs struct {
	entries   []domainUsage.Entry
	appendErr error
}

func (f *fakeUsageLogs) Append(_ context.Context, entry domainUsage.Entry) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeUsageLogs) ListSince(_ context.Context, since time.Time) ([]domainUsage.Entry, error) {
	var out []domainUsage.Entry
	for _, entry := range f.entries {
		if !entry.CreatedAt.Before(since) {
			out = append(out, entry)
		}
	}
	return out, nil
}

func entryAt(endpoint, status string, responseMs int, at time.Time) domainUsage.Entry {
	return domainUsage.Entry{Endpoint: endpoint, Status: status, ResponseMs: responseMs, CreatedAt: at}
}

func TestRecordUsageSwallowsAppendFailure(t *testing.T) {
	logs := &fakeUsageLogs{appendErr: errors.New("db locked")}
	service := NewUsageService(logs, config.QuotaConfig{MonthlyLimit: 100})

	assert.NotPanics(t, func() {
		service.RecordUsage(context.Background(), "product", domainUsage.StatusSuccess, 120)
	})
}

func TestMonthlyUsageCountsSuccessOnly(t *testing.T) {
	now := time.Now().UTC()
	logs := &fakeUsageLogs{entries: []domainUsage.Entry{
		entryAt("product", domainUsage.StatusSuccess, 100, now.Add(-time.Hour)),
		entryAt("product", domainUsage.StatusSuccess, 100, now.Add(-2*time.Hour)),
		entryAt("search", domainUsage.StatusSuccess, 200, now.Add(-3*time.Hour)),
		entryAt("search", domainUsage.StatusError, 900, now.Add(-4*time.Hour)),
	}}

	service := NewUsageService(logs, config.QuotaConfig{MonthlyLimit: 100, AlertThreshold: 90})
	summary, err := service.GetMonthlyUsage(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.UsageCount)
	assert.Equal(t, 97, summary.Remaining)
	assert.Equal(t, 3.0, summary.PctUsed)
	assert.False(t, summary.IsNearLimit)
	assert.Equal(t, map[string]int{"product": 2, "search": 1}, summary.UsageByEndpoint)
}

func TestMonthlyUsageNearLimitIsAbsoluteCount(t *testing.T) {
	now := time.Now().UTC()
	logs := &fakeUsageLogs{}
	for i := 0; i < 9; i++ {
		logs.entries = append(logs.entries, entryAt("product", domainUsage.StatusSuccess, 100, now.Add(-time.Minute)))
	}

	service := NewUsageService(logs, config.QuotaConfig{MonthlyLimit: 10, AlertThreshold: 9})
	summary, err := service.GetMonthlyUsage(context.Background())
	require.NoError(t, err)
	assert.True(t, summary.IsNearLimit)
}

func TestDailySummaryAveragesAllCalls(t *testing.T) {
	now := time.Now().UTC()
	logs := &fakeUsageLogs{entries: []domainUsage.Entry{
		entryAt("product", domainUsage.StatusSuccess, 100, now.Add(-time.Minute)),
		entryAt("search", domainUsage.StatusError, 300, now.Add(-2*time.Minute)),
	}}

	service := NewUsageService(logs, config.QuotaConfig{MonthlyLimit: 100})
	summary, err := service.GetDailyUsageSummary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TotalCalls)
	assert.Equal(t, 1, summary.SuccessCalls)
	assert.Equal(t, 1, summary.FailedCalls)
	assert.Equal(t, 200.0, summary.AvgResponseMs)
	assert.Equal(t, now.Format("2006-01-02"), summary.Date)
}

func TestDailySummaryEmpty(t *testing.T) {
	service := NewUsageService(&fakeUsageLogs{}, config.QuotaConfig{MonthlyLimit: 100})

	summary, err := service.GetDailyUsageSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.TotalCalls)
	assert.Equal(t, 0.0, summary.AvgResponseMs)
}

func TestCheckQuotaAndAlertFiresEveryTime(t *testing.T) {
	now := time.Now().UTC()
	logs := &fakeUsageLogs{}
	for i := 0; i < 9; i++ {
		logs.entries = append(logs.entries, entryAt("product", domainUsage.StatusSuccess, 100, now.Add(-time.Minute)))
	}

	var posted [][]byte
	original := postAlertFn
	postAlertFn = func(_ string, body []byte) error {
		posted = append(posted, body)
		return nil
	}
	defer func() { postAlertFn = original }()

	service := NewUsageService(logs, config.QuotaConfig{MonthlyLimit: 10, AlertThreshold: 9, WebhookURL: "https://hooks.example/quota"})

	for i := 0; i < 2; i++ {
		triggered, err := service.CheckQuotaAndAlert(context.Background())
		require.NoError(t, err)
		assert.True(t, triggered)
	}
	require.Len(t, posted, 2, "no suppression between repeated checks")

	var payload map[string]any
	require.NoError(t, json.Unmarshal(posted[0], &payload))
	assert.Equal(t, "quota_near_limit", payload["alert"])
	assert.Contains(t, payload, "message")
	assert.Contains(t, payload, "stats")
}

func TestCheckQuotaAndAlertBelowThreshold(t *testing.T) {
	original := postAlertFn
	fired := false
	postAlertFn = func(string, []byte) error {
		fired = true
		return nil
	}
	defer func() { postAlertFn = original }()

	service := NewUsageService(&fakeUsageLogs{}, config.QuotaConfig{MonthlyLimit: 10, AlertThreshold: 9, WebhookURL: "https://hooks.example/quota"})

	triggered, err := service.CheckQuotaAndAlert(context.Background())
	require.NoError(t, err)
	assert.False(t, triggered)
	assert.False(t, fired)
}
