package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"hmr-builders.backend/internal/domain/entities"
	"hmr-builders.backend/pkg/utils"
)

// WalletTransactionRepository defines wallet ledger operations
type WalletTransactionRepository interface {
	Create(ctx context.Context, tx *entities.WalletTransaction) error
	GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*entities.WalletTransaction, error)
	List(ctx context.Context, userID uuid.UUID, filter entities.WalletTransactionFilter, page utils.PaginationParams) ([]*entities.WalletTransaction, int64, error)
	// Settle moves a pending transaction to status. Returns ErrInvalidState if it
	// already left pending.
	Settle(ctx context.Context, id uuid.UUID, status entities.TransactionStatus, otpVerified bool, at time.Time) error
	// ExpirePending marks pending transactions created before cutoff as expired.
	ExpirePending(ctx context.Context, cutoff time.Time, limit int) (int64, error)
}
