package database

import (
	"fmt"
	"log"

	"timeclock-backend/internal/config"
	"timeclock-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	// TranslateError turns driver-specific unique violations into
	// gorm.ErrDuplicatedKey, which the clock-in guard relies on.
	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Could not connect to the database: %v", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Database connection established. Migration complete.")
}

// Migrate runs AutoMigrate plus the raw-SQL pieces AutoMigrate cannot express.
// Shared with the test setup, which runs it against SQLite.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.LocationPerimeter{},
		&models.ClockRecord{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	// The "at most one open clock record per user" invariant. A read-then-write
	// check alone would race under concurrent clock-in requests; this partial
	// unique index makes the insert itself the arbiter.
	err = db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS uq_clock_records_open
		ON clock_records (user_id)
		WHERE clock_out_time IS NULL
	`).Error
	if err != nil {
		return fmt.Errorf("create open-record index: %w", err)
	}

	return nil
}
