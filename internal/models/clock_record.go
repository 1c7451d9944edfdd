package models

import "time"

// ClockRecord is one shift: created at clock-in, closed exactly once at
// clock-out, never deleted. The clock-out fields stay NULL while the shift is
// open. A partial unique index on (user_id) WHERE clock_out_time IS NULL
// guarantees at most one open record per user (see database.Migrate).
type ClockRecord struct {
	ID     uint `gorm:"primaryKey"`
	UserID uint `gorm:"index;not null"`
	User   *User

	// Perimeter used at clock-in. Kept as a plain reference on purpose:
	// later edits or deletes of the perimeter must not rewrite history.
	LocationPerimeterID uint `gorm:"index;not null"`

	ClockInTime      time.Time `gorm:"index;not null"`
	ClockInLatitude  float64   `gorm:"not null"`
	ClockInLongitude float64   `gorm:"not null"`
	ClockInNote      string    `gorm:"size:255"`

	ClockOutTime      *time.Time `gorm:"index"`
	ClockOutLatitude  *float64
	ClockOutLongitude *float64
	ClockOutNote      string `gorm:"size:255"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Open reports whether the worker is still clocked in on this record.
func (r *ClockRecord) Open() bool {
	return r.ClockOutTime == nil
}

// WorkedDuration is the closed shift length; zero while the record is open.
func (r *ClockRecord) WorkedDuration() time.Duration {
	if r.ClockOutTime == nil {
		return 0
	}
	return r.ClockOutTime.Sub(r.ClockInTime)
}
