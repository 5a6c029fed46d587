package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"hmr-builders.backend/internal/domain/entities"
	"hmr-builders.backend/pkg/utils"
)

// UserRepository defines user data operations
type UserRepository interface {
	// Create returns ErrAlreadyExists when the email is taken.
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	UpdateProfile(ctx context.Context, user *entities.User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateStatus(ctx context.Context, id uuid.UUID, isActive bool) error
	UpdateKYCStatus(ctx context.Context, id uuid.UUID, status entities.KYCStatus) error
	TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	List(ctx context.Context, filter entities.UserFilter, page utils.PaginationParams) ([]*entities.User, int64, error)
	Count(ctx context.Context, filter entities.UserFilter) (int64, error)
}
