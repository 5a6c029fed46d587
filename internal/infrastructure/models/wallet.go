package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type UserWallet struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID           uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	AvailableBalance decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0"`
	TotalInvestment  decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0"`
	TotalTokens      int64           `gorm:"not null;default:0"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (UserWallet) TableName() string {
	return "user_wallets"
}

type WalletTransaction struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentMethodID uuid.UUID       `gorm:"type:uuid;not null"`
	TransactionType string          `gorm:"type:varchar(20);not null"`
	Amount          decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	Currency        string          `gorm:"type:varchar(3);not null"`
	ExchangeRate    decimal.Decimal `gorm:"type:numeric(18,6);not null"`
	AmountInBase    decimal.Decimal `gorm:"column:amount_in_pkr;type:numeric(20,2);not null"`
	Description     string          `gorm:"type:varchar(255)"`
	Status          string          `gorm:"type:varchar(20);not null;index"`
	OTPVerified     bool            `gorm:"column:otp_verified;not null;default:false"`
	ProcessedAt     *time.Time
	CreatedAt       time.Time `gorm:"index"`
	UpdatedAt       time.Time
}
