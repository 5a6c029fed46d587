package usecases

import "github.com/shopspring/decimal"

// OTP purposes; each purpose has its own key space in the OTP store.
const (
	OTPPurposePaymentMethod = "payment_method"
	OTPPurposeDeposit       = "deposit"
)

const (
	FeaturedPropertiesLimit = 6
	RecentItemsLimit        = 5
	DefaultInvestCurrency   = "PKR"
)

// Purchase results reported to metrics.
const (
	purchaseSuccess             = "success"
	purchaseInvalid             = "invalid"
	purchaseNotFound            = "not_found"
	purchaseInsufficientTokens  = "insufficient_tokens"
	purchaseInsufficientBalance = "insufficient_balance"
	purchaseConflict            = "conflict"
	purchaseError               = "error"
)

// moneyScale is the number of fractional digits money columns store.
const moneyScale = 2

// wholeCents reports whether d is representable in a money column without rounding.
func wholeCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(moneyScale))
}
