package credstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type credentialSlot struct {
	Name      string `gorm:"primaryKey"`
	Value     string
	UpdatedAt time.Time
}

func (credentialSlot) TableName() string {
	return "credential_slots"
}

// SQLite stores credential slots in a local sqlite file so a terminal
// keeps its session across restarts.
type SQLite struct {
	db *gorm.DB
}

// OpenSQLite opens (and migrates) the slot table at the given path.
// Pass ":memory:" for an ephemeral store.
func OpenSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("store path is required")
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening credential store: %w", err)
	}
	if err := db.AutoMigrate(&credentialSlot{}); err != nil {
		return nil, fmt.Errorf("migrating credential store: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Get returns the value stored under the slot name.
func (s *SQLite) Get(ctx context.Context, slot string) (string, error) {
	var record credentialSlot
	err := s.db.WithContext(ctx).First(&record, "name = ?", slot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrSlotNotFound
		}
		return "", fmt.Errorf("reading slot %s: %w", slot, err)
	}
	return record.Value, nil
}

// Set upserts the slot value.
func (s *SQLite) Set(ctx context.Context, slot, value string) error {
	record := credentialSlot{Name: slot, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Save(&record).Error
	if err != nil {
		return fmt.Errorf("writing slot %s: %w", slot, err)
	}
	return nil
}

// Delete removes a single slot. Deleting an absent slot is not an error.
func (s *SQLite) Delete(ctx context.Context, slot string) error {
	err := s.db.WithContext(ctx).Delete(&credentialSlot{}, "name = ?", slot).Error
	if err != nil {
		return fmt.Errorf("deleting slot %s: %w", slot, err)
	}
	return nil
}

// ClearAll wipes every slot inside one transaction, so a crash can never
// leave a partially cleared session behind.
func (s *SQLite) ClearAll(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&credentialSlot{}).Error; err != nil {
			return fmt.Errorf("clearing credential slots: %w", err)
		}
		return nil
	})
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
