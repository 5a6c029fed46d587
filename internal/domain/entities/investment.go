package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// PricePerTokenScale is the number of fractional digits kept for per-token prices.
const PricePerTokenScale = 8

// InvestmentStatus represents investment status
type InvestmentStatus string

const (
	InvestmentPending   InvestmentStatus = "pending"
	InvestmentActive    InvestmentStatus = "active"
	InvestmentCancelled InvestmentStatus = "cancelled"
)

// Cancellable reports whether an investment in status s can still be cancelled.
func (s InvestmentStatus) Cancellable() bool {
	return s == InvestmentActive || s == InvestmentPending
}

// PaymentStatus is the settlement state of an investment's funds.
type PaymentStatus string

const (
	PaymentCompleted PaymentStatus = "completed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// PaymentMethodKind is how an investment was paid for.
type PaymentMethodKind string

const (
	PayByBankTransfer PaymentMethodKind = "bank_transfer"
	PayByCreditCard   PaymentMethodKind = "credit_card"
	PayByDebitCard    PaymentMethodKind = "debit_card"
	PayByStripe       PaymentMethodKind = "stripe"
	PayByPaypal       PaymentMethodKind = "paypal"
	PayByWallet       PaymentMethodKind = "wallet"
)

// Valid reports whether k is an accepted payment method.
func (k PaymentMethodKind) Valid() bool {
	switch k {
	case PayByBankTransfer, PayByCreditCard, PayByDebitCard, PayByStripe, PayByPaypal, PayByWallet:
		return true
	}
	return false
}

// PropertySummary is the property projection embedded in investment responses.
type PropertySummary struct {
	ID            uuid.UUID       `json:"id"`
	Title         string          `json:"title"`
	Slug          string          `json:"slug"`
	City          string          `json:"city"`
	Image         string          `json:"image,omitempty"`
	Status        PropertyStatus  `json:"status"`
	PricePerToken decimal.Decimal `json:"pricePerToken"`
}

// Investment is a purchase of property tokens by a user
type Investment struct {
	ID               uuid.UUID         `json:"id"`
	UserID           uuid.UUID         `json:"userId"`
	PropertyID       uuid.UUID         `json:"propertyId"`
	TokensPurchased  int64             `json:"tokensPurchased"`
	InvestmentAmount decimal.Decimal   `json:"investmentAmount"`
	PricePerToken    decimal.Decimal   `json:"pricePerToken"`
	PaymentMethod    PaymentMethodKind `json:"paymentMethod"`
	PaymentStatus    PaymentStatus     `json:"paymentStatus"`
	Status           InvestmentStatus  `json:"status"`
	ConfirmedAt      null.Time         `json:"confirmedAt"`
	ActivatedAt      null.Time         `json:"activatedAt"`
	CancelledAt      null.Time         `json:"cancelledAt"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`

	Property *PropertySummary `json:"property,omitempty"`
	User     *UserSummary     `json:"user,omitempty"`
}

// UserSummary is the user projection embedded in admin investment listings.
type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// CreateInvestmentInput is the purchase request body.
type CreateInvestmentInput struct {
	PropertyID       string          `json:"propertyId"`
	TokensPurchased  int64           `json:"tokensPurchased"`
	InvestmentAmount decimal.Decimal `json:"investmentAmount"`
	PaymentMethod    string          `json:"paymentMethod"`
}

// InvestmentFilter narrows investment listings.
type InvestmentFilter struct {
	UserID     *uuid.UUID
	PropertyID *uuid.UUID
	Status     InvestmentStatus
}

// PortfolioSummary aggregates a user's investments.
type PortfolioSummary struct {
	TotalInvestments     int64           `json:"totalInvestments"`
	ActiveInvestments    int64           `json:"activeInvestments"`
	CancelledInvestments int64           `json:"cancelledInvestments"`
	TotalInvested        decimal.Decimal `json:"totalInvested"`
	TotalTokens          int64           `json:"totalTokens"`
	PropertiesCount      int64           `json:"propertiesCount"`
	CurrentValue         decimal.Decimal `json:"currentValue"`
}

// Holding is a user's active position in one property.
type Holding struct {
	PropertyID      uuid.UUID       `json:"propertyId"`
	Title           string          `json:"title"`
	Slug            string          `json:"slug"`
	City            string          `json:"city"`
	Image           string          `json:"image,omitempty"`
	TokensOwned     int64           `json:"tokensOwned"`
	AmountInvested  decimal.Decimal `json:"amountInvested"`
	InvestmentCount int64           `json:"investmentCount"`
	PricePerToken   decimal.Decimal `json:"pricePerToken"`
	CurrentValue    decimal.Decimal `json:"currentValue"`
}
