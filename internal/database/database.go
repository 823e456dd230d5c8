package database

import (
	"context"
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/RaulAraujoSilva/SEI-sub000/internal/entities"
)

// Audit rows are written from background goroutines while requests read and
// sessions commit, so the file runs in WAL mode with a busy timeout. Transactions
// take the write lock up front so a read-then-write never fails on upgrade.
const dsnOptions = "?_journal=WAL&_busy_timeout=5000&_foreign_keys=on&_txlock=immediate"

// Database is the application's SQLite store: cases, audit trail and sessions.
type Database struct {
	DB *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath+dsnOptions), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return &Database{DB: db}, nil
}

// Migrate creates or updates every table the application owns.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&entities.Case{},
		&entities.CaseDocument{},
		&entities.CaseEvent{},
		&entities.AuditEvent{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Ping checks the underlying connection.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
