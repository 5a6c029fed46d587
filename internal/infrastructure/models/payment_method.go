package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type PaymentMethod struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey"`
	UserID           uuid.UUID      `gorm:"type:uuid;not null;index"`
	CardType         string         `gorm:"type:varchar(20);not null"`
	CardNumberMasked string         `gorm:"type:varchar(25);not null"`
	CardFingerprint  string         `gorm:"type:varchar(64);not null;index"`
	CardHolderName   string         `gorm:"type:varchar(100);not null"`
	ExpiryMonth      int            `gorm:"not null"`
	ExpiryYear       int            `gorm:"not null"`
	CVVHash          string         `gorm:"column:cvv_hash;type:varchar(255);not null"`
	Currency         string         `gorm:"type:varchar(3);not null;default:'PKR'"`
	BillingAddress   datatypes.JSON `gorm:"type:jsonb"`
	IsDefault        bool           `gorm:"not null;default:false"`
	IsVerified       bool           `gorm:"not null;default:false"`
	Status           string         `gorm:"type:varchar(20);not null;default:'active'"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
