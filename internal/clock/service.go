package clock

import (
	"errors"
	"time"

	"timeclock-backend/internal/database"
	"timeclock-backend/internal/geo"
	"timeclock-backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrAlreadyClockedIn  = errors.New("already clocked in")
	ErrPerimeterNotFound = errors.New("location perimeter not found")
	ErrOutsidePerimeter  = errors.New("outside the allowed perimeter")
	ErrNoOpenRecord      = errors.New("no active clock-in record")
)

// ClockIn opens a new clock record for the user, provided they are inside the
// chosen perimeter and have no open record.
//
// The existence check below is only a fast path for a friendly error. The
// invariant itself is enforced by the uq_clock_records_open partial unique
// index: two concurrent clock-ins may both pass the check, but only one
// insert can succeed, the other comes back as a duplicate key.
func ClockIn(userID uint, pos geo.Point, perimeterID uint, note string) (*models.ClockRecord, error) {
	if !pos.Valid() {
		return nil, geo.ErrInvalidCoordinate
	}

	var perimeter models.LocationPerimeter
	if err := database.DB.First(&perimeter, "id = ?", perimeterID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPerimeterNotFound
		}
		return nil, err
	}

	inside, err := geo.IsWithinPerimeter(pos, geo.Point{
		Latitude:  perimeter.Latitude,
		Longitude: perimeter.Longitude,
	}, perimeter.RadiusInMeters)
	if err != nil {
		return nil, err
	}
	if !inside {
		return nil, ErrOutsidePerimeter
	}

	var open int64
	if err := database.DB.Model(&models.ClockRecord{}).
		Where("user_id = ? AND clock_out_time IS NULL", userID).
		Count(&open).Error; err != nil {
		return nil, err
	}
	if open > 0 {
		return nil, ErrAlreadyClockedIn
	}

	record := models.ClockRecord{
		UserID:              userID,
		LocationPerimeterID: perimeter.ID,
		ClockInTime:         time.Now(),
		ClockInLatitude:     pos.Latitude,
		ClockInLongitude:    pos.Longitude,
		ClockInNote:         note,
	}

	if err := database.DB.Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyClockedIn
		}
		return nil, err
	}

	return &record, nil
}

// ClockOut closes the user's open record with the current time and the given
// position. Any location is accepted: clock-out is deliberately not gated by
// the perimeter. The update is conditional on the record still being open, so
// a concurrent double clock-out resolves to exactly one winner.
func ClockOut(userID uint, pos geo.Point, note string) (*models.ClockRecord, error) {
	if !pos.Valid() {
		return nil, geo.ErrInvalidCoordinate
	}

	var record models.ClockRecord
	err := database.DB.
		Where("user_id = ? AND clock_out_time IS NULL", userID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoOpenRecord
		}
		return nil, err
	}

	now := time.Now()
	res := database.DB.Model(&models.ClockRecord{}).
		Where("id = ? AND clock_out_time IS NULL", record.ID).
		Updates(map[string]interface{}{
			"clock_out_time":      now,
			"clock_out_latitude":  pos.Latitude,
			"clock_out_longitude": pos.Longitude,
			"clock_out_note":      note,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNoOpenRecord
	}

	record.ClockOutTime = &now
	lat, lon := pos.Latitude, pos.Longitude
	record.ClockOutLatitude = &lat
	record.ClockOutLongitude = &lon
	record.ClockOutNote = note

	return &record, nil
}
