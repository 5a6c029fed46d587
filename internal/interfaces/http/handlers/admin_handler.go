package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"hmr-builders.backend/internal/domain/entities"
	domainerrors "hmr-builders.backend/internal/domain/errors"
	"hmr-builders.backend/internal/interfaces/http/response"
	"hmr-builders.backend/internal/usecases"
	"hmr-builders.backend/pkg/utils"
)

type adminService interface {
	Dashboard(ctx context.Context) (*entities.DashboardStats, error)
	ListUsers(ctx context.Context, filter entities.UserFilter, page utils.PaginationParams) ([]*entities.User, int64, error)
	ListInvestments(ctx context.Context, filter entities.InvestmentFilter, page utils.PaginationParams) ([]*entities.Investment, int64, error)
	ListProperties(ctx context.Context, filter entities.PropertyFilter, page utils.PaginationParams) ([]*entities.Property, int64, error)
	UpdateUserStatus(ctx context.Context, actor *entities.User, id uuid.UUID, isActive bool) (*entities.User, error)
	UpdateKYC(ctx context.Context, actor *entities.User, id uuid.UUID, status entities.KYCStatus) (*entities.User, error)
}

// AdminHandler handles admin endpoints
type AdminHandler struct {
	adminUsecase adminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminUsecase *usecases.AdminUsecase) *AdminHandler {
	return &AdminHandler{adminUsecase: adminUsecase}
}

// GetDashboard
// GET /api/admin/dashboard
func (h *AdminHandler) GetDashboard(c *gin.Context) {
	stats, err := h.adminUsecase.Dashboard(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Dashboard statistics retrieved successfully", gin.H{"statistics": stats})
}

// ListUsers lists all users
// GET /api/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, ok := pageQuery(c)
	if !ok {
		return
	}
	isActive, ok := boolQuery(c, "isActive")
	if !ok {
		return
	}
	filter := entities.UserFilter{
		Search:    c.Query("search"),
		Role:      entities.UserRole(c.Query("role")),
		KYCStatus: entities.KYCStatus(c.Query("kycStatus")),
		IsActive:  isActive,
	}
	if filter.KYCStatus != "" && !filter.KYCStatus.Valid() {
		response.Error(c, domainerrors.Validation("Invalid filter",
			domainerrors.FieldError{Field: "kycStatus", Message: "must be one of: unverified pending verified"}))
		return
	}

	users, total, err := h.adminUsecase.ListUsers(c.Request.Context(), filter, page)
	if err != nil {
		response.Error(c, err)
		return
	}
	if users == nil {
		users = []*entities.User{}
	}
	response.Success(c, http.StatusOK, "Users retrieved successfully", paginated("users", users, total, page))
}

// ListInvestments lists investments across users
// GET /api/admin/investments
func (h *AdminHandler) ListInvestments(c *gin.Context) {
	page, ok := pageQuery(c)
	if !ok {
		return
	}
	status, ok := investmentStatusQuery(c)
	if !ok {
		return
	}
	userID, ok := uuidQuery(c, "userId")
	if !ok {
		return
	}
	propertyID, ok := uuidQuery(c, "propertyId")
	if !ok {
		return
	}

	items, total, err := h.adminUsecase.ListInvestments(c.Request.Context(), entities.InvestmentFilter{
		UserID:     userID,
		PropertyID: propertyID,
		Status:     status,
	}, page)
	if err != nil {
		response.Error(c, err)
		return
	}
	if items == nil {
		items = []*entities.Investment{}
	}
	response.Success(c, http.StatusOK, "Investments retrieved successfully", paginated("investments", items, total, page))
}

// ListProperties lists properties including inactive ones
// GET /api/admin/properties
func (h *AdminHandler) ListProperties(c *gin.Context) {
	page, ok := pageQuery(c)
	if !ok {
		return
	}
	filter, ok := propertyFilterQuery(c)
	if !ok {
		return
	}

	items, total, err := h.adminUsecase.ListProperties(c.Request.Context(), filter, page)
	if err != nil {
		response.Error(c, err)
		return
	}
	if items == nil {
		items = []*entities.Property{}
	}
	response.Success(c, http.StatusOK, "Properties retrieved successfully", paginated("properties", items, total, page))
}

// UpdateUserStatus activates or deactivates a user
// PATCH /api/admin/users/:id/status
func (h *AdminHandler) UpdateUserStatus(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "user")
	if !ok {
		return
	}
	var input entities.UpdateUserStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	user, err := h.adminUsecase.UpdateUserStatus(c.Request.Context(), actor, id, *input.IsActive)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "User status updated successfully", gin.H{"user": user})
}

// UpdateUserKYC sets a user's KYC status
// PATCH /api/admin/users/:id/kyc
func (h *AdminHandler) UpdateUserKYC(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "user")
	if !ok {
		return
	}
	var input entities.UpdateKYCInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	user, err := h.adminUsecase.UpdateKYC(c.Request.Context(), actor, id, input.KYCStatus)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "KYC status updated successfully", gin.H{"user": user})
}
