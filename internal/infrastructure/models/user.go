package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email           string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Name            string    `gorm:"type:varchar(100);not null"`
	FirstName       string    `gorm:"type:varchar(50)"`
	LastName        string    `gorm:"type:varchar(50)"`
	PasswordHash    string    `gorm:"type:varchar(255);not null"`
	Phone           *string   `gorm:"type:varchar(20)"`
	ProfileImage    *string   `gorm:"type:text"`
	Role            string    `gorm:"type:varchar(20);not null;default:'user'"`
	IsActive        bool      `gorm:"not null"`
	KYCStatus       string    `gorm:"column:kyc_status;type:varchar(20);not null;default:'unverified'"`
	IsEmailVerified bool      `gorm:"not null;default:false"`
	LastLoginAt     *time.Time
	LastActivityAt  *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
