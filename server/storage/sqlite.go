package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/tkrehbiel/activitynode/server/telemetry"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// sqliteGateway stores records as JSON text in a single sqlite table, keyed by (collection, id)
type sqliteGateway struct {
	connection string
	db         *gorm.DB
	sqldb      *sql.DB
}

// storedRecord is the gorm model for a database row
type storedRecord struct {
	ID         uint
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Collection string `gorm:"uniqueIndex:idx_collection_record"`
	RecordID   string `gorm:"uniqueIndex:idx_collection_record"`
	Published  time.Time
	JSON       string
}

// gormWriter sends gorm's own log lines through telemetry
type gormWriter struct{}

func (gormWriter) Printf(format string, args ...any) {
	telemetry.Log(format, args...)
}

func (s *sqliteGateway) Open() error {
	if s.db != nil {
		s.Close()
	}
	newLogger := logger.New(
		gormWriter{},
		logger.Config{
			SlowThreshold:             time.Second,  // Slow SQL threshold
			LogLevel:                  logger.Error, // Log level
			IgnoreRecordNotFoundError: true,         // Ignore ErrRecordNotFound error for logger
			Colorful:                  false,        // Disable color
		},
	)
	db, err := gorm.Open(sqlite.Open(s.connection), &gorm.Config{
		Logger: newLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return fmt.Errorf("opening sqlite [%s]: %w", s.connection, err)
	}
	s.sqldb, err = db.DB()
	if err != nil {
		return err
	}
	s.db = db
	if err := s.db.AutoMigrate(&storedRecord{}); err != nil {
		return fmt.Errorf("migrating sqlite [%s]: %w", s.connection, err)
	}
	return nil
}

func (s *sqliteGateway) Close() {
	if s.db != nil {
		s.sqldb.Close()
		s.sqldb = nil
		s.db = nil
	}
}

// Put inserts the record or replaces the one already stored under the same id
func (s *sqliteGateway) Put(ctx context.Context, table string, item Record) error {
	if s.db == nil {
		return ErrNotOpen
	}
	id := item.ID()
	if id == "" {
		return ErrNoID
	}
	b, err := item.JSON()
	if err != nil {
		return fmt.Errorf("marshaling %s record %s: %w", table, id, err)
	}
	row := storedRecord{
		Collection: table,
		RecordID:   id,
		Published:  item.Timestamp(),
		JSON:       string(b),
	}
	tx := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "record_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"updated_at", "published", "json"}),
	}).Create(&row)
	if tx.Error != nil {
		return fmt.Errorf("error saving %s record %s: %w", table, id, tx.Error)
	}
	return nil
}

func (s *sqliteGateway) Get(ctx context.Context, table string, id string) (Record, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}
	if id == "" {
		return nil, nil
	}
	var row storedRecord
	tx := s.db.WithContext(ctx).Where(&storedRecord{Collection: table, RecordID: id}).First(&row)
	if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		// not found, not really an error
		return nil, nil
	} else if tx.Error != nil {
		return nil, fmt.Errorf("error finding %s record %s: %w", table, id, tx.Error)
	}
	return NewRecord([]byte(row.JSON))
}

func NewSQLiteGateway(connection string) Gateway {
	return &sqliteGateway{
		connection: connection,
	}
}
