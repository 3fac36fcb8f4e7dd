package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"

	"github.com/souqtrack/souqtrack/core/config"
	domainUsage "github.com/souqtrack/souqtrack/domains/usage"
)

// postAlertFn is swapped out in tests.
var postAlertFn = postAlert

type serviceUsage struct {
	logs  domainUsage.LogRepository
	quota config.QuotaConfig
}

func NewUsageService(logs domainUsage.LogRepository, quota config.QuotaConfig) domainUsage.IUsageUsecase {
	return &serviceUsage{logs: logs, quota: quota}
}

func (service *serviceUsage) RecordUsage(ctx context.Context, endpoint, status string, responseMs int) {
	entry := domainUsage.Entry{
		Endpoint:   endpoint,
		Status:     status,
		ResponseMs: responseMs,
		CreatedAt:  time.Now().UTC(),
	}
	if err := service.logs.Append(ctx, entry); err != nil {
		logrus.Warnf("[USAGE] Failed to record %s call: %v", endpoint, err)
	}
}

func (service *serviceUsage) GetMonthlyUsage(ctx context.Context) (domainUsage.MonthlySummary, error) {
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	entries, err := service.logs.ListSince(ctx, monthStart)
	if err != nil {
		return domainUsage.MonthlySummary{}, err
	}

	summary := domainUsage.MonthlySummary{
		Quota:           service.quota.MonthlyLimit,
		UsageByEndpoint: map[string]int{},
	}
	for _, entry := range entries {
		if entry.Status != domainUsage.StatusSuccess {
			continue
		}
		summary.UsageCount++
		summary.UsageByEndpoint[entry.Endpoint]++
	}

	summary.Remaining = summary.Quota - summary.UsageCount
	if summary.Remaining < 0 {
		summary.Remaining = 0
	}
	if summary.Quota > 0 {
		summary.PctUsed = math.Round(float64(summary.UsageCount)/float64(summary.Quota)*10000) / 100
	}
	summary.IsNearLimit = summary.UsageCount >= service.quota.AlertThreshold
	return summary, nil
}

func (service *serviceUsage) GetDailyUsageSummary(ctx context.Context) (domainUsage.DailySummary, error) {
	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	entries, err := service.logs.ListSince(ctx, dayStart)
	if err != nil {
		return domainUsage.DailySummary{}, err
	}

	summary := domainUsage.DailySummary{Date: dayStart.Format("2006-01-02")}
	var totalMs int
	for _, entry := range entries {
		summary.TotalCalls++
		totalMs += entry.ResponseMs
		if entry.Status == domainUsage.StatusSuccess {
			summary.SuccessCalls++
		} else {
			summary.FailedCalls++
		}
	}
	if summary.TotalCalls > 0 {
		summary.AvgResponseMs = math.Round(float64(totalMs)/float64(summary.TotalCalls)*100) / 100
	}
	return summary, nil
}

// CheckQuotaAndAlert fires the webhook on every near-limit check. Repeated
// alerts for the same condition are intentional.
func (service *serviceUsage) CheckQuotaAndAlert(ctx context.Context) (bool, error) {
	summary, err := service.GetMonthlyUsage(ctx)
	if err != nil {
		return false, err
	}
	if !summary.IsNearLimit {
		return false, nil
	}

	if service.quota.WebhookURL == "" {
		logrus.Warnf("[USAGE] Quota near limit (%d/%d) but no webhook configured", summary.UsageCount, summary.Quota)
		return true, nil
	}

	body, err := json.Marshal(map[string]any{
		"alert":   "quota_near_limit",
		"message": fmt.Sprintf("API usage at %d of %d monthly calls (%.2f%%)", summary.UsageCount, summary.Quota, summary.PctUsed),
		"stats":   summary,
	})
	if err != nil {
		logrus.Warnf("[USAGE] Failed to marshal alert payload: %v", err)
		return true, nil
	}

	if err := postAlertFn(service.quota.WebhookURL, body); err != nil {
		logrus.Warnf("[USAGE] Quota alert webhook failed: %v", err)
	}
	return true, nil
}

func postAlert(url string, body []byte) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	if err := fasthttp.DoTimeout(req, resp, 10*time.Second); err != nil {
		return err
	}
	if code := resp.StatusCode(); code < 200 || code >= 300 {
		return fmt.Errorf("webhook returned status %d", code)
	}
	return nil
}
