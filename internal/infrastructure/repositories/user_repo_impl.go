package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"hmr-builders.backend/internal/domain/entities"
	domainerrors "hmr-builders.backend/internal/domain/errors"
	"hmr-builders.backend/internal/infrastructure/models"
	"hmr-builders.backend/pkg/utils"
)

// UserRepository implements user data operations
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	if user.ID == uuid.Nil {
		user.ID = utils.GenerateUUIDv7()
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	m := &models.User{
		ID:              user.ID,
		Email:           entities.NormalizeEmail(user.Email),
		Name:            user.Name,
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		PasswordHash:    user.PasswordHash,
		Phone:           user.Phone.Ptr(),
		ProfileImage:    user.ProfileImage.Ptr(),
		Role:            string(user.Role),
		IsActive:        user.IsActive,
		KYCStatus:       string(user.KYCStatus),
		IsEmailVerified: user.IsEmailVerified,
		CreatedAt:       user.CreatedAt,
		UpdatedAt:       user.UpdatedAt,
	}

	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetByID gets a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	var m models.User
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toUserEntity(&m), nil
}

// GetByEmail gets a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	var m models.User
	if err := GetDB(ctx, r.db).Where("email = ?", entities.NormalizeEmail(email)).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toUserEntity(&m), nil
}

// UpdateProfile writes the editable profile fields.
func (r *UserRepository) UpdateProfile(ctx context.Context, user *entities.User) error {
	return r.updateColumns(ctx, user.ID, map[string]interface{}{
		"name":          user.Name,
		"first_name":    user.FirstName,
		"last_name":     user.LastName,
		"phone":         user.Phone.Ptr(),
		"profile_image": user.ProfileImage.Ptr(),
	})
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.updateColumns(ctx, id, map[string]interface{}{"password_hash": passwordHash})
}

func (r *UserRepository) UpdateStatus(ctx context.Context, id uuid.UUID, isActive bool) error {
	return r.updateColumns(ctx, id, map[string]interface{}{"is_active": isActive})
}

func (r *UserRepository) UpdateKYCStatus(ctx context.Context, id uuid.UUID, status entities.KYCStatus) error {
	return r.updateColumns(ctx, id, map[string]interface{}{"kyc_status": string(status)})
}

// TouchLogin records a successful login.
func (r *UserRepository) TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.updateColumns(ctx, id, map[string]interface{}{
		"last_login_at":    at,
		"last_activity_at": at,
	})
}

func (r *UserRepository) updateColumns(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	result := GetDB(ctx, r.db).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// List lists users matching filter, newest first
func (r *UserRepository) List(ctx context.Context, filter entities.UserFilter, page utils.PaginationParams) ([]*entities.User, int64, error) {
	query := r.filtered(ctx, filter)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page = page.Normalize()
	var rows []models.User
	if err := query.Session(&gorm.Session{}).
		Order("created_at DESC").
		Limit(page.Limit).
		Offset(page.CalculateOffset()).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	users := make([]*entities.User, 0, len(rows))
	for i := range rows {
		users = append(users, toUserEntity(&rows[i]))
	}
	return users, total, nil
}

// Count counts users matching filter
func (r *UserRepository) Count(ctx context.Context, filter entities.UserFilter) (int64, error) {
	var total int64
	err := r.filtered(ctx, filter).Count(&total).Error
	return total, err
}

func (r *UserRepository) filtered(ctx context.Context, filter entities.UserFilter) *gorm.DB {
	query := GetDB(ctx, r.db).Model(&models.User{})
	if s := strings.TrimSpace(filter.Search); s != "" {
		term := "%" + strings.ToLower(s) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", term, term)
	}
	if filter.Role != "" {
		query = query.Where("role = ?", string(filter.Role))
	}
	if filter.KYCStatus != "" {
		query = query.Where("kyc_status = ?", string(filter.KYCStatus))
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	return query
}

func toUserEntity(m *models.User) *entities.User {
	return &entities.User{
		ID:              m.ID,
		Email:           m.Email,
		Name:            m.Name,
		FirstName:       m.FirstName,
		LastName:        m.LastName,
		PasswordHash:    m.PasswordHash,
		Phone:           null.StringFromPtr(m.Phone),
		ProfileImage:    null.StringFromPtr(m.ProfileImage),
		Role:            entities.UserRole(m.Role),
		IsActive:        m.IsActive,
		KYCStatus:       entities.KYCStatus(m.KYCStatus),
		IsEmailVerified: m.IsEmailVerified,
		LastLoginAt:     null.TimeFromPtr(m.LastLoginAt),
		LastActivityAt:  null.TimeFromPtr(m.LastActivityAt),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
