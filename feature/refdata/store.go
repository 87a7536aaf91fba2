package refdata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ticket-etl/core/database"
	"ticket-etl/core/sync"
)

// StoreAdapter exposes one local reference table as a sync.Store.
type StoreAdapter struct {
	db   *gorm.DB
	desc Descriptor

	// now is swapped in tests
	now func() time.Time
}

// NewStore creates a store over the descriptor's local table.
func NewStore(db *gorm.DB, desc Descriptor) *StoreAdapter {
	return &StoreAdapter{db: db, desc: desc, now: time.Now}
}

// Prepare migrates the table and verifies the bookkeeping column exists.
func (s *StoreAdapter) Prepare(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(s.desc.Model); err != nil {
		return fmt.Errorf("failed to migrate %s: %w", s.desc.Table, err)
	}
	ok, err := database.HasColumn(s.db, s.desc.Table, "etl_hash")
	if err != nil {
		return fmt.Errorf("failed to inspect %s: %w", s.desc.Table, err)
	}
	if !ok {
		return fmt.Errorf("table %s is missing the etl_hash column", s.desc.Table)
	}
	return nil
}

// storedRow is the slim projection read back for diffing.
type storedRow struct {
	SysID        string    `gorm:"column:sys_id"`
	Active       bool      `gorm:"column:active"`
	SysCreatedOn time.Time `gorm:"column:sys_created_on"`
	SysUpdatedOn time.Time `gorm:"column:sys_updated_on"`
	EtlHash      string    `gorm:"column:etl_hash"`
}

// Get returns the stored record for a key, or nil when absent. Only the
// diffing projection is populated; the field bag is not reconstructed.
func (s *StoreAdapter) Get(ctx context.Context, key string) (*sync.Record, error) {
	var row storedRow
	err := s.db.WithContext(ctx).
		Table(s.desc.Table).
		Select("sys_id, active, sys_created_on, sys_updated_on, etl_hash").
		Where("sys_id = ?", key).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s/%s: %w", s.desc.Table, key, err)
	}
	return &sync.Record{
		Key:             row.SysID,
		Active:          row.Active,
		RemoteCreatedAt: row.SysCreatedOn,
		RemoteUpdatedAt: row.SysUpdatedOn,
		Fingerprint:     row.EtlHash,
	}, nil
}

// GetMany returns stored fingerprints indexed by key.
func (s *StoreAdapter) GetMany(ctx context.Context, keys []string) (map[string]string, error) {
	result := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return result, nil
	}
	var rows []storedRow
	err := s.db.WithContext(ctx).
		Table(s.desc.Table).
		Select("sys_id, etl_hash").
		Where("sys_id IN ?", keys).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read fingerprints from %s: %w", s.desc.Table, err)
	}
	for _, row := range rows {
		result[row.SysID] = row.EtlHash
	}
	return result, nil
}

// UpsertBatch applies the batch in one transaction. Existing rows are
// overwritten with the remote state; etl_created_at survives updates.
func (s *StoreAdapter) UpsertBatch(ctx context.Context, records []sync.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	now := s.now()
	rows := make([]map[string]interface{}, 0, len(records))
	for _, rec := range records {
		rows = append(rows, s.toRow(rec, now))
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Table(s.desc.Table).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "sys_id"}},
				DoUpdates: clause.AssignmentColumns(s.updateColumns()),
			}).
			Create(&rows).Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to upsert batch into %s: %w", s.desc.Table, err)
	}
	return len(records), nil
}

// MaxModifiedSince returns the newest remote modification timestamp present
// locally, zero when the table is empty.
func (s *StoreAdapter) MaxModifiedSince(ctx context.Context) (time.Time, error) {
	var max sql.NullTime
	err := s.db.WithContext(ctx).
		Table(s.desc.Table).
		Select("MAX(sys_updated_on)").
		Scan(&max).Error
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read high-water mark of %s: %w", s.desc.Table, err)
	}
	if !max.Valid {
		return time.Time{}, nil
	}
	return max.Time, nil
}

func (s *StoreAdapter) toRow(rec sync.Record, now time.Time) map[string]interface{} {
	row := make(map[string]interface{}, len(s.desc.Fields)+3)
	for _, field := range s.desc.Fields {
		row[field] = rec.Fields[field]
	}
	row["sys_id"] = rec.Key
	row["active"] = rec.Active
	row["sys_created_on"] = rec.RemoteCreatedAt
	row["sys_updated_on"] = rec.RemoteUpdatedAt
	row["etl_hash"] = rec.Fingerprint
	row["etl_created_at"] = now
	row["etl_updated_at"] = now
	return row
}

func (s *StoreAdapter) updateColumns() []string {
	cols := make([]string, 0, len(s.desc.Fields)+2)
	for _, field := range s.desc.Fields {
		if field == "sys_id" {
			continue
		}
		cols = append(cols, field)
	}
	return append(cols, "etl_hash", "etl_updated_at")
}
