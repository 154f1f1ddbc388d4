package pricecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/precolista/backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const lastUpdateMetaKey = "last_update"

// snapshotRow is the persisted form of a price snapshot. Offers are stored
// as a JSON blob; the store never inspects them.
type snapshotRow struct {
	Source    string    `gorm:"primaryKey;column:source"`
	Term      string    `gorm:"primaryKey;column:term"`
	Offers    string    `gorm:"column:offers"`
	FetchedAt time.Time `gorm:"column:fetched_at"`
}

func (snapshotRow) TableName() string { return "price_snapshots" }

type metaRow struct {
	Key   string `gorm:"primaryKey;column:key"`
	Value string `gorm:"column:value"`
}

func (metaRow) TableName() string { return "cache_meta" }

// SQLiteStore persists price snapshots in a local sqlite database.
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLiteStore opens (or creates) the snapshot database at path and runs
// migrations. Use ":memory:" for an ephemeral store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if err := db.AutoMigrate(&snapshotRow{}, &metaRow{}); err != nil {
		return nil, fmt.Errorf("migrating snapshot store: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Load returns every persisted snapshot. Rows with corrupt offer payloads
// are skipped rather than failing the whole warm-up.
func (s *SQLiteStore) Load(ctx context.Context) ([]domain.PriceSnapshot, error) {
	var rows []snapshotRow
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	snapshots := make([]domain.PriceSnapshot, 0, len(rows))
	for _, row := range rows {
		var offers []domain.Offer
		if err := json.Unmarshal([]byte(row.Offers), &offers); err != nil {
			continue
		}
		snapshots = append(snapshots, domain.PriceSnapshot{
			Source:    domain.Source(row.Source),
			Term:      row.Term,
			Offers:    offers,
			FetchedAt: row.FetchedAt,
		})
	}
	return snapshots, nil
}

// Save upserts one snapshot keyed by (source, term).
func (s *SQLiteStore) Save(ctx context.Context, snapshot domain.PriceSnapshot) error {
	offers, err := json.Marshal(snapshot.Offers)
	if err != nil {
		return fmt.Errorf("encoding offers: %w", err)
	}

	row := snapshotRow{
		Source:    string(snapshot.Source),
		Term:      snapshot.Term,
		Offers:    string(offers),
		FetchedAt: snapshot.FetchedAt,
	}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "source"}, {Name: "term"}},
		UpdateAll: true,
	}).Create(&row).Error; err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// SaveLastUpdate records the last full refresh timestamp.
func (s *SQLiteStore) SaveLastUpdate(ctx context.Context, at time.Time) error {
	row := metaRow{Key: lastUpdateMetaKey, Value: at.UTC().Format(time.RFC3339)}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		UpdateAll: true,
	}).Create(&row).Error; err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// LastUpdate returns the persisted refresh timestamp, or nil when no
// refresh has ever completed.
func (s *SQLiteStore) LastUpdate(ctx context.Context) (*time.Time, error) {
	var row metaRow
	err := s.db.WithContext(ctx).Where("key = ?", lastUpdateMetaKey).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	at, err := time.Parse(time.RFC3339, row.Value)
	if err != nil {
		return nil, nil
	}
	return &at, nil
}
