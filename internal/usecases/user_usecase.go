package usecases

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"hmr-builders.backend/internal/domain/entities"
	domainerrors "hmr-builders.backend/internal/domain/errors"
	"hmr-builders.backend/internal/domain/repositories"
	"hmr-builders.backend/pkg/crypto"
	"hmr-builders.backend/pkg/logger"
)

// UserUsecase serves the signed-in user's own account.
type UserUsecase struct {
	userRepo       repositories.UserRepository
	investmentRepo repositories.InvestmentRepository
}

func NewUserUsecase(userRepo repositories.UserRepository, investmentRepo repositories.InvestmentRepository) *UserUsecase {
	return &UserUsecase{userRepo: userRepo, investmentRepo: investmentRepo}
}

func (u *UserUsecase) Profile(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	user, err := u.userRepo.GetByID(ctx, id)
	if errors.Is(err, domainerrors.ErrNotFound) {
		return nil, domainerrors.NotFound("User not found")
	}
	return user, err
}

// UpdateProfile applies the non-nil fields. A new name re-derives first and last
// name unless those are given too.
func (u *UserUsecase) UpdateProfile(ctx context.Context, id uuid.UUID, input *entities.UpdateProfileInput) (*entities.User, error) {
	user, err := u.Profile(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if len(name) < 2 {
			return nil, domainerrors.Validation("Invalid profile", domainerrors.FieldError{Field: "name", Message: "name must be at least 2 characters"})
		}
		user.Name = name
		user.FirstName, user.LastName = entities.SplitName(name)
	}
	if input.FirstName != nil {
		user.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		user.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Phone != nil {
		user.Phone = optionalString(*input.Phone)
	}
	if input.ProfileImage != nil {
		user.ProfileImage = optionalString(*input.ProfileImage)
	}

	if err := u.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func optionalString(s string) null.String {
	s = strings.TrimSpace(s)
	if s == "" {
		return null.String{}
	}
	return null.StringFrom(s)
}

// ChangePassword requires the current password.
func (u *UserUsecase) ChangePassword(ctx context.Context, id uuid.UUID, input *entities.ChangePasswordInput) error {
	user, err := u.Profile(ctx, id)
	if err != nil {
		return err
	}
	if !crypto.CheckPassword(input.CurrentPassword, user.PasswordHash) {
		return domainerrors.BusinessRule(domainerrors.CodeInvalidCredentials, "Current password is incorrect", domainerrors.ErrInvalidCredentials)
	}
	if !entities.PasswordIsStrong(input.NewPassword) {
		return domainerrors.Validation("Invalid password", domainerrors.FieldError{
			Field:   "newPassword",
			Message: "password must contain at least one uppercase letter, one lowercase letter and one number",
		})
	}

	hash, err := hashPassword(input.NewPassword)
	if err != nil {
		return err
	}
	if err := u.userRepo.UpdatePassword(ctx, id, hash); err != nil {
		return err
	}
	logger.Info(ctx, "Password changed", zap.String("user_id", id.String()))
	return nil
}

// Holdings lists the user's active positions per property.
func (u *UserUsecase) Holdings(ctx context.Context, id uuid.UUID) ([]*entities.Holding, error) {
	return u.investmentRepo.Holdings(ctx, id)
}

// SubmitKYC moves an unverified user to pending review.
func (u *UserUsecase) SubmitKYC(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	user, err := u.Profile(ctx, id)
	if err != nil {
		return nil, err
	}
	switch user.KYCStatus {
	case entities.KYCVerified:
		return nil, domainerrors.BusinessRule(domainerrors.CodeInvalidState, "KYC is already verified", domainerrors.ErrInvalidState)
	case entities.KYCPending:
		return user, nil
	}
	if err := u.userRepo.UpdateKYCStatus(ctx, id, entities.KYCPending); err != nil {
		return nil, err
	}
	user.KYCStatus = entities.KYCPending
	logger.Info(ctx, "KYC submitted", zap.String("user_id", id.String()))
	return user, nil
}
