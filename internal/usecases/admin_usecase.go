package usecases

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"hmr-builders.backend/internal/domain/entities"
	domainerrors "hmr-builders.backend/internal/domain/errors"
	"hmr-builders.backend/internal/domain/repositories"
	"hmr-builders.backend/pkg/logger"
	"hmr-builders.backend/pkg/utils"
)

// AdminUsecase backs the admin dashboard and user management.
type AdminUsecase struct {
	userRepo       repositories.UserRepository
	propertyRepo   repositories.PropertyRepository
	investmentRepo repositories.InvestmentRepository
	walletRepo     repositories.WalletRepository
}

func NewAdminUsecase(
	userRepo repositories.UserRepository,
	propertyRepo repositories.PropertyRepository,
	investmentRepo repositories.InvestmentRepository,
	walletRepo repositories.WalletRepository,
) *AdminUsecase {
	return &AdminUsecase{
		userRepo:       userRepo,
		propertyRepo:   propertyRepo,
		investmentRepo: investmentRepo,
		walletRepo:     walletRepo,
	}
}

// Dashboard collects platform totals and the most recent activity.
func (u *AdminUsecase) Dashboard(ctx context.Context) (*entities.DashboardStats, error) {
	active := true
	totalUsers, err := u.userRepo.Count(ctx, entities.UserFilter{})
	if err != nil {
		return nil, err
	}
	activeUsers, err := u.userRepo.Count(ctx, entities.UserFilter{IsActive: &active})
	if err != nil {
		return nil, err
	}
	pendingKYC, err := u.userRepo.Count(ctx, entities.UserFilter{KYCStatus: entities.KYCPending})
	if err != nil {
		return nil, err
	}
	totalProps, activeProps, err := u.propertyRepo.Counts(ctx)
	if err != nil {
		return nil, err
	}
	totals, err := u.investmentRepo.Totals(ctx)
	if err != nil {
		return nil, err
	}
	balances, err := u.walletRepo.TotalBalance(ctx)
	if err != nil {
		return nil, err
	}

	recent := utils.GetPaginationParams(1, RecentItemsLimit)
	recentUsers, _, err := u.userRepo.List(ctx, entities.UserFilter{}, recent)
	if err != nil {
		return nil, err
	}
	recentInvestments, _, err := u.investmentRepo.List(ctx, entities.InvestmentFilter{}, recent)
	if err != nil {
		return nil, err
	}

	return &entities.DashboardStats{
		TotalUsers:          totalUsers,
		ActiveUsers:         activeUsers,
		PendingKYC:          pendingKYC,
		TotalProperties:     totalProps,
		ActiveProperties:    activeProps,
		TotalInvestments:    totals.Total,
		ActiveInvestments:   totals.Active,
		TotalInvested:       totals.AmountActive,
		TotalTokensSold:     totals.TokensSold,
		RecentUsers:         recentUsers,
		RecentInvestments:   recentInvestments,
		TotalWalletBalances: balances,
	}, nil
}

func (u *AdminUsecase) ListUsers(ctx context.Context, filter entities.UserFilter, page utils.PaginationParams) ([]*entities.User, int64, error) {
	return u.userRepo.List(ctx, filter, page)
}

func (u *AdminUsecase) ListInvestments(ctx context.Context, filter entities.InvestmentFilter, page utils.PaginationParams) ([]*entities.Investment, int64, error) {
	return u.investmentRepo.List(ctx, filter, page)
}

// ListProperties includes inactive properties.
func (u *AdminUsecase) ListProperties(ctx context.Context, filter entities.PropertyFilter, page utils.PaginationParams) ([]*entities.Property, int64, error) {
	filter.IncludeInactive = true
	return u.propertyRepo.List(ctx, filter, page)
}

// UpdateUserStatus activates or deactivates a user. Admins cannot deactivate themselves.
func (u *AdminUsecase) UpdateUserStatus(ctx context.Context, actor *entities.User, id uuid.UUID, isActive bool) (*entities.User, error) {
	if actor.ID == id && !isActive {
		return nil, domainerrors.BusinessRule(domainerrors.CodeInvalidState, "You cannot deactivate your own account", domainerrors.ErrInvalidState)
	}
	if err := u.userRepo.UpdateStatus(ctx, id, isActive); err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("User not found")
		}
		return nil, err
	}
	logger.Info(ctx, "User status changed",
		zap.String("user_id", id.String()),
		zap.String("admin_id", actor.ID.String()),
		zap.Bool("is_active", isActive),
	)
	return u.userRepo.GetByID(ctx, id)
}

// UpdateKYC sets a user's KYC status.
func (u *AdminUsecase) UpdateKYC(ctx context.Context, actor *entities.User, id uuid.UUID, status entities.KYCStatus) (*entities.User, error) {
	if !status.Valid() {
		return nil, domainerrors.Validation("Invalid KYC status", domainerrors.FieldError{Field: "kycStatus", Message: "unknown status"})
	}
	if err := u.userRepo.UpdateKYCStatus(ctx, id, status); err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("User not found")
		}
		return nil, err
	}
	logger.Info(ctx, "KYC status changed",
		zap.String("user_id", id.String()),
		zap.String("admin_id", actor.ID.String()),
		zap.String("kyc_status", string(status)),
	)
	return u.userRepo.GetByID(ctx, id)
}
