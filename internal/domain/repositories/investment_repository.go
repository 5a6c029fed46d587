package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"hmr-builders.backend/internal/domain/entities"
	"hmr-builders.backend/pkg/utils"
)

// InvestmentTotals is the platform wide investment rollup.
type InvestmentTotals struct {
	Total         int64
	Active        int64
	AmountActive  decimal.Decimal
	TokensSold    int64
	InvestorCount int64
}

// InvestmentRepository defines investment data operations
type InvestmentRepository interface {
	Create(ctx context.Context, investment *entities.Investment) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Investment, error)
	// GetByIDForUser hides investments owned by other users as ErrNotFound.
	GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*entities.Investment, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entities.Investment, error)
	List(ctx context.Context, filter entities.InvestmentFilter, page utils.PaginationParams) ([]*entities.Investment, int64, error)
	// MarkCancelled returns ErrInvalidState unless the investment is active or pending.
	MarkCancelled(ctx context.Context, id uuid.UUID, paymentStatus entities.PaymentStatus, at time.Time) error
	AggregateByUser(ctx context.Context, userID uuid.UUID) (entities.WalletAggregate, error)
	AggregateAll(ctx context.Context) (map[uuid.UUID]entities.WalletAggregate, error)
	Holdings(ctx context.Context, userID uuid.UUID) ([]*entities.Holding, error)
	Portfolio(ctx context.Context, userID uuid.UUID) (*entities.PortfolioSummary, error)
	PropertyTotals(ctx context.Context, propertyID uuid.UUID) (InvestmentTotals, error)
	Totals(ctx context.Context) (InvestmentTotals, error)
}
