package database

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/shelflift/internal/entities"
)

type Database struct {
	DB *gorm.DB
}

// NewDatabase opens the SQLite database and prepares the schema.
//
// WAL mode and a busy timeout let concurrent request handlers share the file,
// and _txlock=immediate makes every explicit transaction take the write lock
// up front so checkout transactions queue instead of failing mid-flight.
func NewDatabase(dbPath string) (*Database, error) {
	dsn := dbPath + "?_journal=WAL&_busy_timeout=5000&_txlock=immediate"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate all entities
	err = db.AutoMigrate(
		&entities.User{},
		&entities.Author{},
		&entities.Book{},
		&entities.Wishlist{},
		&entities.WishlistBook{},
		&entities.HistoryEntry{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	database := &Database{DB: db}

	if err := database.ensureIndexes(); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return database, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ensureIndexes creates constraints GORM tags cannot express. The partial
// unique index is what guarantees at most one CREATED wishlist per user even
// under concurrent first-time requests; losers of the race get a duplicate
// key error and re-read the winner's row.
func (d *Database) ensureIndexes() error {
	return d.DB.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_wishlists_active
		 ON wishlists(user_id) WHERE status = 'created'`,
	).Error
}
