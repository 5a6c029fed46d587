package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Property struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Title            string          `gorm:"type:varchar(200);not null"`
	Slug             string          `gorm:"type:varchar(200);uniqueIndex;not null"`
	Description      string          `gorm:"type:text;not null"`
	ShortDescription string          `gorm:"type:varchar(500)"`
	Address          string          `gorm:"type:varchar(255)"`
	City             string          `gorm:"type:varchar(100);index"`
	State            string          `gorm:"type:varchar(100)"`
	Country          string          `gorm:"type:varchar(100)"`
	PropertyType     string          `gorm:"type:varchar(20);not null"`
	Status           string          `gorm:"type:varchar(20);not null;index"`
	TotalValue       decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0"`
	MarketValue      decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0"`
	ExpectedROI      decimal.Decimal `gorm:"column:expected_roi;type:numeric(6,2);not null;default:0"`
	MinInvestment    decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0"`
	TotalTokens      int64           `gorm:"not null"`
	AvailableTokens  int64           `gorm:"not null"`
	PricePerToken    decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	Images           datatypes.JSON  `gorm:"type:jsonb"`
	Features         datatypes.JSON  `gorm:"type:jsonb"`
	IsFeatured       bool            `gorm:"not null;default:false"`
	IsActive         bool            `gorm:"not null"`
	SortOrder        int             `gorm:"not null;default:0"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (Property) TableName() string {
	return "properties"
}

type Investment struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	PropertyID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	TokensPurchased  int64           `gorm:"not null"`
	InvestmentAmount decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	PricePerToken    decimal.Decimal `gorm:"type:numeric(20,8);not null"`
	PaymentMethod    string          `gorm:"type:varchar(20);not null"`
	PaymentStatus    string          `gorm:"type:varchar(20);not null"`
	Status           string          `gorm:"type:varchar(20);not null;index"`
	ConfirmedAt      *time.Time
	ActivatedAt      *time.Time
	CancelledAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Property *Property `gorm:"foreignKey:PropertyID;references:ID"`
	User     *User     `gorm:"foreignKey:UserID;references:ID"`
}
