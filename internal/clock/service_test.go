package clock_test

import (
	"testing"

	"timeclock-backend/internal/clock"
	"timeclock-backend/internal/database"
	"timeclock-backend/internal/geo"
	"timeclock-backend/internal/models"
	"timeclock-backend/internal/testsupport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestClockInAndOutLifecycle(t *testing.T) {
	testsupport.SetupDB(t)
	manager := testsupport.CreateUser(t, "Meg Manager", "meg@example.com", models.RoleManager)
	worker := testsupport.CreateUser(t, "Walt Worker", "walt@example.com", models.RoleCareworker)
	site := testsupport.CreatePerimeter(t, "Downtown Facility", 51.5074, -0.1278, 150, manager.ID)

	record, err := clock.ClockIn(worker.ID, geo.Point{Latitude: 51.5074, Longitude: -0.1278}, site.ID, "starting shift")
	require.NoError(t, err)
	require.NotNil(t, record)

	assert.True(t, record.Open())
	assert.Equal(t, worker.ID, record.UserID)
	assert.Equal(t, site.ID, record.LocationPerimeterID)
	assert.Equal(t, "starting shift", record.ClockInNote)
	assert.False(t, record.ClockInTime.IsZero())

	// Clock-out is accepted from anywhere, including far outside the perimeter.
	closed, err := clock.ClockOut(worker.ID, geo.Point{Latitude: 48.8566, Longitude: 2.3522}, "done")
	require.NoError(t, err)
	require.NotNil(t, closed.ClockOutTime)

	assert.Equal(t, record.ID, closed.ID)
	assert.Equal(t, site.ID, closed.LocationPerimeterID)
	assert.True(t, closed.ClockOutTime.After(closed.ClockInTime))
	require.NotNil(t, closed.ClockOutLatitude)
	assert.Equal(t, 48.8566, *closed.ClockOutLatitude)
	assert.Equal(t, "done", closed.ClockOutNote)

	// Clock-in fields untouched by the clock-out.
	var stored models.ClockRecord
	require.NoError(t, database.DB.First(&stored, "id = ?", record.ID).Error)
	assert.Equal(t, record.ClockInLatitude, stored.ClockInLatitude)
	assert.Equal(t, "starting shift", stored.ClockInNote)
	assert.False(t, stored.Open())
}

func TestClockInTwiceFails(t *testing.T) {
	testsupport.SetupDB(t)
	worker := testsupport.CreateUser(t, "Walt", "walt@example.com", models.RoleCareworker)
	site := testsupport.CreatePerimeter(t, "Site", 0, 0, 100, worker.ID)

	_, err := clock.ClockIn(worker.ID, geo.Point{}, site.ID, "")
	require.NoError(t, err)

	_, err = clock.ClockIn(worker.ID, geo.Point{}, site.ID, "")
	assert.ErrorIs(t, err, clock.ErrAlreadyClockedIn)

	var count int64
	database.DB.Model(&models.ClockRecord{}).Where("user_id = ?", worker.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestClockOutWithoutOpenRecord(t *testing.T) {
	testsupport.SetupDB(t)
	worker := testsupport.CreateUser(t, "Walt", "walt@example.com", models.RoleCareworker)

	_, err := clock.ClockOut(worker.ID, geo.Point{Latitude: 1, Longitude: 1}, "")
	assert.ErrorIs(t, err, clock.ErrNoOpenRecord)
}

func TestClockInOutsidePerimeterPersistsNothing(t *testing.T) {
	testsupport.SetupDB(t)
	worker := testsupport.CreateUser(t, "Walt", "walt@example.com", models.RoleCareworker)
	site := testsupport.CreatePerimeter(t, "Site", 0, 0, 100, worker.ID)

	// One degree of longitude at the equator is ~111 km away.
	_, err := clock.ClockIn(worker.ID, geo.Point{Latitude: 0, Longitude: 1}, site.ID, "")
	assert.ErrorIs(t, err, clock.ErrOutsidePerimeter)

	var count int64
	database.DB.Model(&models.ClockRecord{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestClockInPerimeterBoundaryIsInclusive(t *testing.T) {
	testsupport.SetupDB(t)
	worker := testsupport.CreateUser(t, "Walt", "walt@example.com", models.RoleCareworker)

	center := geo.Point{Latitude: 0, Longitude: 0}
	sample := geo.Point{Latitude: 0, Longitude: 0.0009}
	d, err := geo.Distance(sample, center)
	require.NoError(t, err)

	site := testsupport.CreatePerimeter(t, "Boundary Site", center.Latitude, center.Longitude, d, worker.ID)

	_, err = clock.ClockIn(worker.ID, sample, site.ID, "")
	assert.NoError(t, err, "a point exactly on the boundary must be accepted")
}

func TestClockInUnknownPerimeter(t *testing.T) {
	testsupport.SetupDB(t)
	worker := testsupport.CreateUser(t, "Walt", "walt@example.com", models.RoleCareworker)

	_, err := clock.ClockIn(worker.ID, geo.Point{}, 12345, "")
	assert.ErrorIs(t, err, clock.ErrPerimeterNotFound)
}

func TestClockInInvalidCoordinates(t *testing.T) {
	testsupport.SetupDB(t)
	worker := testsupport.CreateUser(t, "Walt", "walt@example.com", models.RoleCareworker)
	site := testsupport.CreatePerimeter(t, "Site", 0, 0, 100, worker.ID)

	_, err := clock.ClockIn(worker.ID, geo.Point{Latitude: 95, Longitude: 0}, site.ID, "")
	assert.ErrorIs(t, err, geo.ErrInvalidCoordinate)

	_, err = clock.ClockOut(worker.ID, geo.Point{Latitude: 0, Longitude: -200}, "")
	assert.ErrorIs(t, err, geo.ErrInvalidCoordinate)
}

// The database itself must reject a second open record even when the
// application-level check is bypassed: this is what closes the concurrent
// clock-in race.
func TestOpenRecordUniqueIndex(t *testing.T) {
	db := testsupport.SetupDB(t)
	worker := testsupport.CreateUser(t, "Walt", "walt@example.com", models.RoleCareworker)
	site := testsupport.CreatePerimeter(t, "Site", 0, 0, 100, worker.ID)

	first := models.ClockRecord{UserID: worker.ID, LocationPerimeterID: site.ID}
	require.NoError(t, db.Create(&first).Error)

	second := models.ClockRecord{UserID: worker.ID, LocationPerimeterID: site.ID}
	err := db.Create(&second).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
