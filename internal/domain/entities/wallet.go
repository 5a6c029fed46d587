package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet holds a user's balance and investment counters. One per user.
type Wallet struct {
	ID               uuid.UUID       `json:"id"`
	UserID           uuid.UUID       `json:"userId"`
	AvailableBalance decimal.Decimal `json:"availableBalance"`
	TotalInvestment  decimal.Decimal `json:"totalInvestment"`
	TotalTokens      int64           `json:"totalTokens"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// WalletAggregate is the investment total derived from active investments.
type WalletAggregate struct {
	UserID            uuid.UUID
	InvestedAmount    decimal.Decimal
	TotalTokens       int64
	ActiveInvestments int64
}

// Drifted reports whether the wallet counters disagree with the derived aggregate.
func (w *Wallet) Drifted(agg WalletAggregate) bool {
	return !w.TotalInvestment.Equal(agg.InvestedAmount) || w.TotalTokens != agg.TotalTokens
}

// WalletSummary is the wallet view returned to clients.
type WalletSummary struct {
	WalletID          uuid.UUID       `json:"walletId"`
	UserID            uuid.UUID       `json:"userId"`
	Currency          string          `json:"currency"`
	AvailableBalance  decimal.Decimal `json:"availableBalance"`
	InvestedAmount    decimal.Decimal `json:"investedAmount"`
	TotalTokens       int64           `json:"totalTokens"`
	ActiveInvestments int64           `json:"activeInvestments"`
	TotalValue        decimal.Decimal `json:"totalValue"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}
