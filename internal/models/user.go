package models

import "time"

type UserRole string

const (
	RoleCareworker UserRole = "careworker"
	RoleManager    UserRole = "manager"
)

type User struct {
	ID uint `gorm:"primaryKey"`
	// Identity provider subject ("sub" claim). Local accounts use "local|<email>".
	SubjectID    string   `gorm:"size:255;uniqueIndex;not null"`
	Email        string   `gorm:"size:100;uniqueIndex;not null"`
	Name         string   `gorm:"size:100;not null"`
	PasswordHash string   `gorm:"size:255"` // empty for SSO-only users
	Role         UserRole `gorm:"size:20;not null;default:careworker"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
