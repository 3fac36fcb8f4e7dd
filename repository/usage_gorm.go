package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	domainUsage "github.com/souqtrack/souqtrack/domains/usage"
)

type apiUsageLogModel struct {
	ID         uint      `gorm:"primaryKey"`
	Endpoint   string    `gorm:"column:endpoint;not null;index"`
	Status     string    `gorm:"column:status;not null"`
	ResponseMs int       `gorm:"column:response_ms;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;not null;index"`
}

func (apiUsageLogModel) TableName() string { return "api_usage_logs" }

// UsageGormRepository implements domains/usage.LogRepository.
type UsageGormRepository struct {
	db *gorm.DB
}

func NewUsageGormRepository(db *gorm.DB) *UsageGormRepository {
	return &UsageGormRepository{db: db}
}

var _ domainUsage.LogRepository = (*UsageGormRepository)(nil)

func (r *UsageGormRepository) Init(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&apiUsageLogModel{})
}

func (r *UsageGormRepository) Append(ctx context.Context, entry domainUsage.Entry) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	m := apiUsageLogModel{
		Endpoint:   entry.Endpoint,
		Status:     entry.Status,
		ResponseMs: entry.ResponseMs,
		CreatedAt:  createdAt.UTC(),
	}
	return r.db.WithContext(ctx).Create(&m).Error
}

func (r *UsageGormRepository) ListSince(ctx context.Context, since time.Time) ([]domainUsage.Entry, error) {
	var models []apiUsageLogModel
	err := r.db.WithContext(ctx).
		Where("created_at >= ?", since.UTC()).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	out := make([]domainUsage.Entry, 0, len(models))
	for _, m := range models {
		out = append(out, domainUsage.Entry{
			Endpoint:   m.Endpoint,
			Status:     m.Status,
			ResponseMs: m.ResponseMs,
			CreatedAt:  m.CreatedAt,
		})
	}
	return out, nil
}
