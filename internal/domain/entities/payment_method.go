package entities

import (
	"time"

	"github.com/google/uuid"
)

// CardType is the brand of a stored card
type CardType string

const (
	CardVisa       CardType = "visa"
	CardMastercard CardType = "mastercard"
)

// PaymentMethodStatus represents payment method status
type PaymentMethodStatus string

const (
	PaymentMethodActive   PaymentMethodStatus = "active"
	PaymentMethodInactive PaymentMethodStatus = "inactive"
)

// BillingAddress of a card holder
type BillingAddress struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
}

// PaymentMethod is a stored card. Only the masked number, a keyed fingerprint and
// a hash of the CVV are kept.
type PaymentMethod struct {
	ID               uuid.UUID           `json:"id"`
	UserID           uuid.UUID           `json:"userId"`
	CardType         CardType            `json:"cardType"`
	CardNumberMasked string              `json:"cardNumber"`
	CardFingerprint  string              `json:"-"`
	CardHolderName   string              `json:"cardHolderName"`
	ExpiryMonth      int                 `json:"expiryMonth"`
	ExpiryYear       int                 `json:"expiryYear"`
	CVVHash          string              `json:"-"`
	Currency         string              `json:"currency"`
	BillingAddress   *BillingAddress     `json:"billingAddress,omitempty"`
	IsDefault        bool                `json:"isDefault"`
	IsVerified       bool                `json:"isVerified"`
	Status           PaymentMethodStatus `json:"status"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt"`
}

// Usable reports whether the method can fund a deposit.
func (p *PaymentMethod) Usable() bool {
	return p.Status == PaymentMethodActive && p.IsVerified
}

// AddPaymentMethodInput is the card submission body.
type AddPaymentMethodInput struct {
	CardNumber     string          `json:"cardNumber" binding:"required"`
	CardHolderName string          `json:"cardHolderName" binding:"required,min=2,max=100"`
	ExpiryMonth    int             `json:"expiryMonth" binding:"required,min=1,max=12"`
	ExpiryYear     int             `json:"expiryYear" binding:"required"`
	CVV            string          `json:"cvv" binding:"required"`
	Currency       string          `json:"currency"`
	BillingAddress *BillingAddress `json:"billingAddress"`
	SetAsDefault   bool            `json:"setAsDefault"`
}

// VerifyOTPInput carries a one-time code.
type VerifyOTPInput struct {
	OTP string `json:"otp" binding:"required,len=6,numeric"`
}

// OTPChallenge describes an issued code without revealing it.
type OTPChallenge struct {
	Purpose   string    `json:"purpose"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AddPaymentMethodResult is the stored card plus the verification challenge sent for it.
type AddPaymentMethodResult struct {
	PaymentMethod *PaymentMethod `json:"paymentMethod"`
	OTP           *OTPChallenge  `json:"otp,omitempty"`
}
