package repositories

import (
	"context"

	"github.com/google/uuid"
	"hmr-builders.backend/internal/domain/entities"
)

// PaymentMethodRepository defines stored card operations
type PaymentMethodRepository interface {
	Create(ctx context.Context, method *entities.PaymentMethod) error
	GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*entities.PaymentMethod, error)
	ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*entities.PaymentMethod, error)
	CountActiveByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	FingerprintExists(ctx context.Context, userID uuid.UUID, fingerprint string) (bool, error)
	ClearDefault(ctx context.Context, userID uuid.UUID) error
	// SetDefault returns ErrNotFound when no active method matches.
	SetDefault(ctx context.Context, id, userID uuid.UUID) error
	MarkVerified(ctx context.Context, id, userID uuid.UUID) error
	Deactivate(ctx context.Context, id, userID uuid.UUID) error
	NewestActive(ctx context.Context, userID uuid.UUID) (*entities.PaymentMethod, error)
}
