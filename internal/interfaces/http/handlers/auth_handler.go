package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"hmr-builders.backend/internal/domain/entities"
	domainerrors "hmr-builders.backend/internal/domain/errors"
	"hmr-builders.backend/internal/interfaces/http/response"
	"hmr-builders.backend/internal/usecases"
)

type authService interface {
	Register(ctx context.Context, input *entities.RegisterInput) (*entities.AuthResponse, error)
	Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*entities.AuthResponse, error)
	Logout(ctx context.Context, refreshToken string) error
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authUsecase authService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authUsecase *usecases.AuthUsecase) *AuthHandler {
	return &AuthHandler{authUsecase: authUsecase}
}

func authPayload(resp *entities.AuthResponse) gin.H {
	payload := gin.H{
		"user":         resp.User,
		"token":        resp.AccessToken,
		"refreshToken": resp.RefreshToken,
		"expiresIn":    resp.ExpiresIn,
	}
	if resp.Wallet != nil {
		payload["wallet"] = resp.Wallet
	}
	if resp.PaymentMethod != nil {
		payload["paymentMethod"] = resp.PaymentMethod
	}
	return payload
}

// Register handles user registration
// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var input entities.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	resp, err := h.authUsecase.Register(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "User registered successfully", authPayload(resp))
}

// Login handles user login
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var input entities.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	resp, err := h.authUsecase.Login(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Login successful", authPayload(resp))
}

// Refresh rotates a refresh token
// POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var input entities.RefreshInput
	if err := c.ShouldBindJSON(&input); err != nil || input.RefreshToken == "" {
		response.Error(c, domainerrors.Validation("Refresh token is required",
			domainerrors.FieldError{Field: "refreshToken", Message: "is required"}))
		return
	}

	resp, err := h.authUsecase.Refresh(c.Request.Context(), input.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Token refreshed successfully", authPayload(resp))
}

// Logout revokes the presented refresh token, if any
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var input entities.RefreshInput
	_ = c.ShouldBindJSON(&input)

	if input.RefreshToken != "" {
		if err := h.authUsecase.Logout(c.Request.Context(), input.RefreshToken); err != nil {
			response.Error(c, err)
			return
		}
	}

	response.Success(c, http.StatusOK, "Logout successful", nil)
}

// Me returns the authenticated user
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, "User profile retrieved successfully", gin.H{"user": user})
}
