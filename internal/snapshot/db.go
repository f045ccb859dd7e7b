package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/finnvold/lineup-bingo/internal/game"
)

// The snapshot occupies a single row, overwritten wholesale per mutation,
// same contract as the file backend.
const snapshotRowID = 1

type snapshotRow struct {
	ID        uint   `gorm:"primaryKey"`
	Revision  uint64 `gorm:"not null"`
	Payload   []byte `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time
}

func (snapshotRow) TableName() string { return "snapshots" }

type lineupRow struct {
	ID        uint   `gorm:"primaryKey"`
	Payload   []byte `gorm:"type:jsonb;not null"`
	CreatedAt time.Time
}

func (lineupRow) TableName() string { return "lineup_records" }

// DBStore keeps the snapshot in Postgres. Useful when the data directory
// is ephemeral (containers) and a database is already around.
type DBStore struct {
	db *gorm.DB
}

// NewDBStore connects and migrates the two snapshot tables.
func NewDBStore(dsn string) (*DBStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}
	if err := db.AutoMigrate(&snapshotRow{}, &lineupRow{}); err != nil {
		return nil, fmt.Errorf("migrate snapshot tables: %w", err)
	}
	return &DBStore{db: db}, nil
}

func (d *DBStore) Load() (*game.Snapshot, error) {
	var row snapshotRow
	err := d.db.First(&row, snapshotRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot row: %w", err)
	}
	var snap game.Snapshot
	if err := json.Unmarshal(row.Payload, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

func (d *DBStore) Save(snap *game.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	row := snapshotRow{ID: snapshotRowID, Revision: snap.Revision, Payload: payload}
	err = d.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"revision", "payload", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("write snapshot row: %w", err)
	}
	return nil
}

func (d *DBStore) RecordLineup(lineup []string) error {
	payload, err := json.Marshal(lineup)
	if err != nil {
		return fmt.Errorf("encode lineup: %w", err)
	}
	if err := d.db.Create(&lineupRow{Payload: payload}).Error; err != nil {
		return fmt.Errorf("write lineup record: %w", err)
	}
	return nil
}
