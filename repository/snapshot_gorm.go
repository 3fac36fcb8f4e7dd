package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domainCache "github.com/souqtrack/souqtrack/domains/cache"
)

// --- Persistence Models ---

type apiCacheSnapshotModel struct {
	ID        uint      `gorm:"primaryKey"`
	CacheKey  string    `gorm:"column:cache_key;uniqueIndex;not null"`
	Payload   string    `gorm:"column:payload;type:text;not null"`
	SavedAt   time.Time `gorm:"column:saved_at;not null"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null;index"`
}

func (apiCacheSnapshotModel) TableName() string { return "api_cache_snapshots" }

// --- Repository Implementation ---

// SnapshotGormRepository implements domains/cache.SnapshotStore.
type SnapshotGormRepository struct {
	db *gorm.DB
}

func NewSnapshotGormRepository(db *gorm.DB) *SnapshotGormRepository {
	return &SnapshotGormRepository{db: db}
}

var _ domainCache.SnapshotStore = (*SnapshotGormRepository)(nil)

func (r *SnapshotGormRepository) Init(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&apiCacheSnapshotModel{})
}

func (r *SnapshotGormRepository) FindLatestUnexpired(ctx context.Context, cacheKey string) (*domainCache.Snapshot, error) {
	var m apiCacheSnapshotModel
	err := r.db.WithContext(ctx).
		Where("cache_key = ? AND expires_at > ?", cacheKey, time.Now().UTC()).
		Order("saved_at DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &domainCache.Snapshot{
		CacheKey:  m.CacheKey,
		Payload:   m.Payload,
		SavedAt:   m.SavedAt,
		ExpiresAt: m.ExpiresAt,
	}, nil
}

// Upsert writes the snapshot for a key, replacing any previous row. The
// snapshot expiry is decoupled from the key-value cache TTL: it stretches
// the payload's usable life so it can serve as a fallback long after the
// fast tier has expired.
func (r *SnapshotGormRepository) Upsert(ctx context.Context, cacheKey string, payload string, ttl time.Duration) error {
	now := time.Now().UTC()
	m := apiCacheSnapshotModel{
		CacheKey:  cacheKey,
		Payload:   payload,
		SavedAt:   now,
		ExpiresAt: now.Add(ttl),
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "cache_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "saved_at", "expires_at"}),
		}).
		Create(&m).Error
}
