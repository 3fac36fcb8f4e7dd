package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	domainPriceHistory "github.com/souqtrack/souqtrack/domains/pricehistory"
)

// SyncService walks every tracked product and appends at most one price
// observation per product per UTC calendar day.
type SyncService struct {
	observations domainPriceHistory.ObservationRepository
	fetcher      CatalogFetcher
}

func NewSyncService(observations domainPriceHistory.ObservationRepository, fetcher CatalogFetcher) *SyncService {
	return &SyncService{observations: observations, fetcher: fetcher}
}

// RunOnce executes a single sync pass. Per-product failures are logged and
// skipped; the pass itself only fails when the product list cannot be read.
func (service *SyncService) RunOnce(ctx context.Context) error {
	runID := uuid.NewString()
	log := logrus.WithField("run_id", runID)

	asins, err := service.observations.TrackedASINs(ctx)
	if err != nil {
		return err
	}
	log.Infof("[SYNC] Starting price sync for %d tracked products", len(asins))

	today := time.Now().UTC()
	var synced, skipped, failed int
	for _, asin := range asins {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		done, err := service.observations.HasObservationOn(ctx, asin, today)
		if err != nil {
			log.Warnf("[SYNC] Day check failed for %s: %v", asin, err)
			failed++
			continue
		}
		if done {
			skipped++
			continue
		}

		product, err := service.fetcher.GetProduct(ctx, asin)
		if err != nil {
			log.Warnf("[SYNC] Fetch failed for %s: %v", asin, err)
			failed++
			continue
		}

		obs := domainPriceHistory.Observation{
			ASIN:          asin,
			Price:         product.Price,
			OriginalPrice: product.OriginalPrice,
			DiscountPct:   product.DiscountPct,
			Availability:  product.Availability,
			RecordedAt:    time.Now().UTC(),
		}
		if err := service.observations.Append(ctx, obs); err != nil {
			log.Warnf("[SYNC] Observation write failed for %s: %v", asin, err)
			failed++
			continue
		}
		synced++
	}

	log.Infof("[SYNC] Finished: %d synced, %d skipped, %d failed", synced, skipped, failed)
	return nil
}

// RunForever repeats RunOnce on the given interval until the context ends.
func (service *SyncService) RunForever(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := service.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logrus.Errorf("[SYNC] Pass failed: %v", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
