package repositories

import (
	"context"

	"github.com/google/uuid"
	"hmr-builders.backend/internal/domain/entities"
	"hmr-builders.backend/pkg/utils"
)

// PropertyRepository defines property data operations
type PropertyRepository interface {
	Create(ctx context.Context, property *entities.Property) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Property, error)
	// GetByRef resolves an id or a slug. Inactive properties are hidden unless includeInactive.
	GetByRef(ctx context.Context, ref string, includeInactive bool) (*entities.Property, error)
	// GetByRefForUpdate resolves an active property and holds its row lock until the
	// surrounding transaction ends.
	GetByRefForUpdate(ctx context.Context, ref string) (*entities.Property, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entities.Property, error)
	List(ctx context.Context, filter entities.PropertyFilter, page utils.PaginationParams) ([]*entities.Property, int64, error)
	ListFeatured(ctx context.Context, limit int) ([]*entities.Property, error)
	Update(ctx context.Context, property *entities.Property) error
	// DecrementAvailable returns ErrInsufficientTokens when fewer than n tokens remain.
	DecrementAvailable(ctx context.Context, id uuid.UUID, n int64) error
	// IncrementAvailable never raises available tokens above the total supply.
	IncrementAvailable(ctx context.Context, id uuid.UUID, n int64) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	SlugExists(ctx context.Context, slug string) (bool, error)
	Counts(ctx context.Context) (total int64, active int64, err error)
}
