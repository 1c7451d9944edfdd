package models

import "time"

// LocationPerimeter is a circular geofence a careworker must be inside to clock in.
type LocationPerimeter struct {
	ID             uint    `gorm:"primaryKey"`
	Name           string  `gorm:"size:100;not null"`
	Latitude       float64 `gorm:"not null"`
	Longitude      float64 `gorm:"not null"`
	RadiusInMeters float64 `gorm:"not null"`
	CreatedBy      uint    `gorm:"index;not null"`
	Creator        *User   `gorm:"foreignKey:CreatedBy"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
