package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"hmr-builders.backend/internal/domain/entities"
	"hmr-builders.backend/internal/interfaces/http/response"
	"hmr-builders.backend/internal/usecases"
)

type userService interface {
	Profile(ctx context.Context, id uuid.UUID) (*entities.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, input *entities.UpdateProfileInput) (*entities.User, error)
	ChangePassword(ctx context.Context, id uuid.UUID, input *entities.ChangePasswordInput) error
	Holdings(ctx context.Context, id uuid.UUID) ([]*entities.Holding, error)
	SubmitKYC(ctx context.Context, id uuid.UUID) (*entities.User, error)
}

type walletSummaryService interface {
	GetSummary(ctx context.Context, userID uuid.UUID) (*entities.WalletSummary, error)
}

// UserHandler handles the caller's profile, wallet and holdings
type UserHandler struct {
	userUsecase   userService
	walletUsecase walletSummaryService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userUsecase *usecases.UserUsecase, walletUsecase *usecases.WalletUsecase) *UserHandler {
	return &UserHandler{userUsecase: userUsecase, walletUsecase: walletUsecase}
}

// GetProfile
// GET /api/users/profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	profile, err := h.userUsecase.Profile(c.Request.Context(), user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "User profile retrieved successfully", gin.H{"user": profile})
}

// UpdateProfile
// PUT /api/users/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var input entities.UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	profile, err := h.userUsecase.UpdateProfile(c.Request.Context(), user.ID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Profile updated successfully", gin.H{"user": profile})
}

// ChangePassword
// PUT /api/users/change-password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var input entities.ChangePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	if err := h.userUsecase.ChangePassword(c.Request.Context(), user.ID, &input); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Password changed successfully", nil)
}

// GetWallet returns the caller's wallet, creating it on first access
// GET /api/users/wallet
func (h *UserHandler) GetWallet(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	summary, err := h.walletUsecase.GetSummary(c.Request.Context(), user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Wallet retrieved successfully", gin.H{"data": summary})
}

// GetHoldings lists tokens held per property
// GET /api/users/holdings
func (h *UserHandler) GetHoldings(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	holdings, err := h.userUsecase.Holdings(c.Request.Context(), user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if holdings == nil {
		holdings = []*entities.Holding{}
	}
	response.Success(c, http.StatusOK, "Holdings retrieved successfully", gin.H{"holdings": holdings})
}

// SubmitKYC moves the caller to KYC review
// POST /api/users/kyc
func (h *UserHandler) SubmitKYC(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	updated, err := h.userUsecase.SubmitKYC(c.Request.Context(), user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "KYC submitted for review", gin.H{"kycStatus": updated.KYCStatus})
}
