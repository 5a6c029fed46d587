package usecases

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"hmr-builders.backend/internal/domain/entities"
	domainerrors "hmr-builders.backend/internal/domain/errors"
	"hmr-builders.backend/internal/domain/repositories"
	"hmr-builders.backend/pkg/crypto"
	"hmr-builders.backend/pkg/jwt"
	"hmr-builders.backend/pkg/logger"
	"hmr-builders.backend/pkg/utils"
)

// TokenIssuer signs and checks JWTs.
type TokenIssuer interface {
	GenerateTokenPair(userID uuid.UUID, email, role string) (*jwt.TokenPair, error)
	ValidateRefreshToken(token string) (*jwt.Claims, error)
}

// TokenDenylist tracks revoked refresh tokens by jti.
type TokenDenylist interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

var hashPassword = crypto.HashPassword

// AuthUsecase handles registration, login and token rotation.
type AuthUsecase struct {
	userRepo   repositories.UserRepository
	walletRepo repositories.WalletRepository
	uow        repositories.UnitOfWork
	tokens     TokenIssuer
	denylist   TokenDenylist
	cards      *PaymentMethodUsecase
}

func NewAuthUsecase(
	userRepo repositories.UserRepository,
	walletRepo repositories.WalletRepository,
	uow repositories.UnitOfWork,
	tokens TokenIssuer,
	denylist TokenDenylist,
	cards *PaymentMethodUsecase,
) *AuthUsecase {
	return &AuthUsecase{
		userRepo:   userRepo,
		walletRepo: walletRepo,
		uow:        uow,
		tokens:     tokens,
		denylist:   denylist,
		cards:      cards,
	}
}

// Register creates the user, the wallet and an optional card in one unit of work.
func (u *AuthUsecase) Register(ctx context.Context, input *entities.RegisterInput) (*entities.AuthResponse, error) {
	email := entities.NormalizeEmail(input.Email)
	name := strings.TrimSpace(input.Name)

	var details []domainerrors.FieldError
	if len(name) < 2 {
		details = append(details, domainerrors.FieldError{Field: "name", Message: "name must be at least 2 characters"})
	}
	if !entities.PasswordIsStrong(input.Password) {
		details = append(details, domainerrors.FieldError{
			Field:   "password",
			Message: "password must contain at least one uppercase letter, one lowercase letter and one number",
		})
	}
	if len(details) > 0 {
		return nil, domainerrors.Validation("Invalid registration details", details...)
	}

	if _, err := u.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, domainerrors.BusinessRule(domainerrors.CodeUserExists, "User with this email already exists", domainerrors.ErrAlreadyExists)
	} else if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	passwordHash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	firstName, lastName := entities.SplitName(name)
	user := &entities.User{
		ID:           utils.GenerateUUIDv7(),
		Email:        email,
		Name:         name,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: passwordHash,
		Role:         entities.UserRoleUser,
		IsActive:     true,
		KYCStatus:    entities.KYCUnverified,
	}
	if phone := strings.TrimSpace(input.Phone); phone != "" {
		user.Phone = null.StringFrom(phone)
	}

	var (
		wallet *entities.Wallet
		method *entities.PaymentMethod
	)
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.userRepo.Create(txCtx, user); err != nil {
			return err
		}
		var err error
		wallet, err = u.walletRepo.GetOrCreate(txCtx, user.ID)
		if err != nil {
			return err
		}
		if input.PaymentMethod != nil && u.cards != nil {
			method, err = u.cards.create(txCtx, user.ID, input.PaymentMethod)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		var appErr *domainerrors.AppError
		if !errors.As(err, &appErr) && errors.Is(err, domainerrors.ErrAlreadyExists) {
			// lost a race with a concurrent registration
			return nil, domainerrors.BusinessRule(domainerrors.CodeUserExists, "User with this email already exists", err)
		}
		return nil, err
	}

	if method != nil {
		if _, err := u.cards.issue(ctx, user.ID, method.ID); err != nil {
			logger.Warn(ctx, "Failed to issue payment method OTP", zap.String("payment_method_id", method.ID.String()), zap.Error(err))
		}
	}

	resp, err := u.authResponse(user)
	if err != nil {
		return nil, err
	}
	resp.Wallet = wallet
	resp.PaymentMethod = method

	logger.Info(ctx, "User registered", zap.String("user_id", user.ID.String()), zap.Bool("with_card", method != nil))
	return resp, nil
}

// Login checks credentials and issues a token pair.
func (u *AuthUsecase) Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error) {
	user, err := u.userRepo.GetByEmail(ctx, entities.NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !crypto.CheckPassword(input.Password, user.PasswordHash) {
		return nil, domainerrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, domainerrors.ErrAccountDeactivated
	}

	now := timeNow()
	if err := u.userRepo.TouchLogin(ctx, user.ID, now); err != nil {
		logger.Warn(ctx, "Failed to record login", zap.String("user_id", user.ID.String()), zap.Error(err))
	} else {
		user.LastLoginAt = null.TimeFrom(now)
	}

	return u.authResponse(user)
}

// Refresh rotates a refresh token. The presented token is revoked.
func (u *AuthUsecase) Refresh(ctx context.Context, refreshToken string) (*entities.AuthResponse, error) {
	claims, err := u.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, jwt.ErrExpiredToken) {
			return nil, domainerrors.Unauthorized(domainerrors.CodeTokenExpired, "Refresh token has expired")
		}
		return nil, domainerrors.Unauthorized(domainerrors.CodeTokenMalformed, "Invalid refresh token")
	}

	if u.denylist != nil {
		revoked, err := u.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, domainerrors.ErrTokenRevoked
		}
	}

	user, err := u.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.Unauthorized(domainerrors.CodeUserNotFound, "User not found")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, domainerrors.ErrAccountDeactivated
	}

	u.revoke(ctx, claims)
	return u.authResponse(user)
}

// Logout revokes the refresh token. Invalid tokens are ignored.
func (u *AuthUsecase) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	claims, err := u.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil
	}
	u.revoke(ctx, claims)
	return nil
}

func (u *AuthUsecase) revoke(ctx context.Context, claims *jwt.Claims) {
	if u.denylist == nil || claims.ExpiresAt == nil {
		return
	}
	if err := u.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		logger.Warn(ctx, "Failed to revoke refresh token", zap.String("jti", claims.ID), zap.Error(err))
	}
}

// GetUserByID resolves the user behind an access token.
func (u *AuthUsecase) GetUserByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	return u.userRepo.GetByID(ctx, id)
}

func (u *AuthUsecase) authResponse(user *entities.User) (*entities.AuthResponse, error) {
	pair, err := u.tokens.GenerateTokenPair(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}
	return &entities.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
		User:         user,
	}, nil
}
