package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// TransactionType of a wallet movement
type TransactionType string

const (
	TransactionDeposit    TransactionType = "deposit"
	TransactionWithdrawal TransactionType = "withdrawal"
)

// TransactionStatus of a wallet movement
type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
	TransactionExpired   TransactionStatus = "expired"
)

// WalletTransaction records a movement of funds into or out of a wallet. Rows are
// never edited after leaving pending.
type WalletTransaction struct {
	ID              uuid.UUID         `json:"id"`
	UserID          uuid.UUID         `json:"userId"`
	PaymentMethodID uuid.UUID         `json:"paymentMethodId"`
	TransactionType TransactionType   `json:"transactionType"`
	Amount          decimal.Decimal   `json:"amount"`
	Currency        string            `json:"currency"`
	ExchangeRate    decimal.Decimal   `json:"exchangeRate"`
	AmountInBase    decimal.Decimal   `json:"amountInPKR"`
	Description     string            `json:"description"`
	Status          TransactionStatus `json:"status"`
	OTPVerified     bool              `json:"otpVerified"`
	ProcessedAt     null.Time         `json:"processedAt"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// DepositInput is the deposit request body.
type DepositInput struct {
	PaymentMethodID string          `json:"paymentMethodId" binding:"required"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency" binding:"required"`
	Description     string          `json:"description" binding:"max=255"`
}

// DepositResult is returned by a deposit. RequiresOTP is set when the
// transaction stays pending until a code is verified.
type DepositResult struct {
	Transaction *WalletTransaction `json:"transaction"`
	Wallet      *Wallet            `json:"wallet,omitempty"`
	RequiresOTP bool               `json:"requiresOtp"`
	OTP         *OTPChallenge      `json:"otp,omitempty"`
}

// WalletTransactionFilter narrows transaction listings.
type WalletTransactionFilter struct {
	Type   TransactionType
	Status TransactionStatus
}
