package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"hmr-builders.backend/internal/domain/entities"
)

// WalletRepository defines wallet data operations. Every mutation is a single
// upsert or guarded update so concurrent writers never lose an increment.
type WalletRepository interface {
	// GetOrCreate inserts the wallet if missing and returns the stored row.
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*entities.Wallet, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.Wallet, error)
	// AddInvestment adjusts the investment counters; negative values reverse a purchase.
	AddInvestment(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, tokens int64) error
	Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error
	// Debit returns ErrInsufficientBalance when the available balance is short.
	Debit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error
	// SetCounters rewrites the investment counters only if they still hold the
	// values read into current; otherwise it returns ErrStaleCounters.
	SetCounters(ctx context.Context, current *entities.Wallet, invested decimal.Decimal, tokens int64) error
	List(ctx context.Context) ([]*entities.Wallet, error)
	TotalBalance(ctx context.Context) (decimal.Decimal, error)
}
