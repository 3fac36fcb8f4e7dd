package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	domainHistory "github.com/souqtrack/souqtrack/domains/pricehistory"
)

type priceObservationModel struct {
	ID            uint      `gorm:"primaryKey"`
	ASIN          string    `gorm:"column:asin;size:10;not null;index:idx_obs_asin_recorded"`
	Price         *float64  `gorm:"column:price;type:decimal(10,2)"`
	OriginalPrice *float64  `gorm:"column:original_price;type:decimal(10,2)"`
	DiscountPct   *int      `gorm:"column:discount_pct"`
	Availability  *string   `gorm:"column:availability"`
	RecordedAt    time.Time `gorm:"column:recorded_at;not null;index:idx_obs_asin_recorded"`
}

func (priceObservationModel) TableName() string { return "price_observations" }

// PriceHistoryGormRepository implements domains/pricehistory.ObservationRepository.
// Observations are append-only; rows are never updated or deleted.
type PriceHistoryGormRepository struct {
	db *gorm.DB
}

func NewPriceHistoryGormRepository(db *gorm.DB) *PriceHistoryGormRepository {
	return &PriceHistoryGormRepository{db: db}
}

var _ domainHistory.ObservationRepository = (*PriceHistoryGormRepository)(nil)

func (r *PriceHistoryGormRepository) Init(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&priceObservationModel{})
}

func (r *PriceHistoryGormRepository) Append(ctx context.Context, obs domainHistory.Observation) error {
	m := priceObservationModel{
		ASIN:          obs.ASIN,
		Price:         obs.Price,
		OriginalPrice: obs.OriginalPrice,
		DiscountPct:   obs.DiscountPct,
		Availability:  obs.Availability,
		RecordedAt:    obs.RecordedAt.UTC(),
	}
	return r.db.WithContext(ctx).Create(&m).Error
}

func (r *PriceHistoryGormRepository) ListSince(ctx context.Context, asin string, since time.Time) ([]domainHistory.Observation, error) {
	var models []priceObservationModel
	err := r.db.WithContext(ctx).
		Where("asin = ? AND recorded_at >= ?", asin, since.UTC()).
		Order("recorded_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	out := make([]domainHistory.Observation, 0, len(models))
	for _, m := range models {
		out = append(out, domainHistory.Observation{
			ASIN:          m.ASIN,
			Price:         m.Price,
			OriginalPrice: m.OriginalPrice,
			DiscountPct:   m.DiscountPct,
			Availability:  m.Availability,
			RecordedAt:    m.RecordedAt,
		})
	}
	return out, nil
}

func (r *PriceHistoryGormRepository) EarliestRecordedAt(ctx context.Context, asin string) (*time.Time, error) {
	var m priceObservationModel
	err := r.db.WithContext(ctx).
		Where("asin = ?", asin).
		Order("recorded_at ASC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	t := m.RecordedAt
	return &t, nil
}

func (r *PriceHistoryGormRepository) HasObservationOn(ctx context.Context, asin string, day time.Time) (bool, error) {
	dayStart := time.Date(day.UTC().Year(), day.UTC().Month(), day.UTC().Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	var count int64
	err := r.db.WithContext(ctx).
		Model(&priceObservationModel{}).
		Where("asin = ? AND recorded_at >= ? AND recorded_at < ?", asin, dayStart, dayEnd).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PriceHistoryGormRepository) TrackedASINs(ctx context.Context) ([]string, error) {
	var asins []string
	err := r.db.WithContext(ctx).
		Model(&priceObservationModel{}).
		Distinct("asin").
		Order("asin ASC").
		Pluck("asin", &asins).Error
	if err != nil {
		return nil, err
	}
	return asins, nil
}
