// Package testsupport wires the handler and service tests to a real database:
// a throwaway SQLite file with the full migration applied, including the
// partial unique index the clock-in guard depends on.
package testsupport

import (
	"path/filepath"
	"testing"

	"timeclock-backend/internal/config"
	"timeclock-backend/internal/database"
	"timeclock-backend/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// SetupDB points the package-global database handle at a fresh throwaway
// database and migrates it.
func SetupDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "timeclock.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("could not open test database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		t.Fatalf("could not migrate test database: %v", err)
	}

	database.DB = db
	return db
}

// Config returns a config good enough for handler tests. No identity provider
// is configured, so only the local login paths are active.
func Config() *config.Config {
	return &config.Config{
		HTTPPort:        "0",
		JWTSecret:       "test-secret-test-secret-test-secret",
		CORSOrigins:     "http://localhost:3000",
		BaseURL:         "http://localhost:8080",
		FrontendBaseURL: "http://localhost:3000",
	}
}

func CreateUser(t *testing.T, name, email string, role models.UserRole) *models.User {
	t.Helper()

	user := &models.User{
		SubjectID: "test|" + email,
		Email:     email,
		Name:      name,
		Role:      role,
	}
	if err := database.DB.Create(user).Error; err != nil {
		t.Fatalf("could not create test user: %v", err)
	}
	return user
}

func CreatePerimeter(t *testing.T, name string, lat, lon, radius float64, createdBy uint) *models.LocationPerimeter {
	t.Helper()

	perimeter := &models.LocationPerimeter{
		Name:           name,
		Latitude:       lat,
		Longitude:      lon,
		RadiusInMeters: radius,
		CreatedBy:      createdBy,
	}
	if err := database.DB.Create(perimeter).Error; err != nil {
		t.Fatalf("could not create test perimeter: %v", err)
	}
	return perimeter
}
