package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"hmr-builders.backend/internal/domain/entities"
	"hmr-builders.backend/internal/interfaces/http/middleware"
	"hmr-builders.backend/internal/interfaces/http/response"
	"hmr-builders.backend/internal/usecases"
	"hmr-builders.backend/pkg/utils"
)

type propertyService interface {
	List(ctx context.Context, filter entities.PropertyFilter, page utils.PaginationParams) ([]*entities.Property, int64, error)
	Featured(ctx context.Context) ([]*entities.Property, error)
	Get(ctx context.Context, ref string, includeInactive bool) (*entities.Property, error)
	Stats(ctx context.Context, ref string) (*entities.PropertyStats, error)
	Create(ctx context.Context, input *entities.CreatePropertyInput) (*entities.Property, error)
	Update(ctx context.Context, id uuid.UUID, input *entities.UpdatePropertyInput) (*entities.Property, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// PropertyHandler serves the property catalogue and its admin management
type PropertyHandler struct {
	propertyUsecase propertyService
}

// NewPropertyHandler creates a new property handler
func NewPropertyHandler(propertyUsecase *usecases.PropertyUsecase) *PropertyHandler {
	return &PropertyHandler{propertyUsecase: propertyUsecase}
}

// ListProperties lists active properties
// GET /api/properties
func (h *PropertyHandler) ListProperties(c *gin.Context) {
	page, ok := pageQuery(c)
	if !ok {
		return
	}
	filter, ok := propertyFilterQuery(c)
	if !ok {
		return
	}

	items, total, err := h.propertyUsecase.List(c.Request.Context(), filter, page)
	if err != nil {
		response.Error(c, err)
		return
	}
	if items == nil {
		items = []*entities.Property{}
	}

	response.Success(c, http.StatusOK, "Properties retrieved successfully", paginated("properties", items, total, page))
}

// ListFeatured lists up to six featured properties
// GET /api/properties/featured
func (h *PropertyHandler) ListFeatured(c *gin.Context) {
	items, err := h.propertyUsecase.Featured(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if items == nil {
		items = []*entities.Property{}
	}
	response.Success(c, http.StatusOK, "Featured properties retrieved successfully", gin.H{"properties": items})
}

// GetProperty returns a property by slug or id. Admins also see inactive ones.
// GET /api/properties/:slug
func (h *PropertyHandler) GetProperty(c *gin.Context) {
	includeInactive := false
	if user, ok := middleware.GetUser(c); ok && user.IsAdmin() {
		includeInactive = true
	}

	property, err := h.propertyUsecase.Get(c.Request.Context(), c.Param("slug"), includeInactive)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Property retrieved successfully", gin.H{"property": property})
}

// GetPropertyStats returns funding progress
// GET /api/properties/:slug/stats
func (h *PropertyHandler) GetPropertyStats(c *gin.Context) {
	stats, err := h.propertyUsecase.Stats(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Property statistics retrieved successfully", gin.H{"stats": stats})
}

// CreateProperty adds a property
// POST /api/admin/properties
func (h *PropertyHandler) CreateProperty(c *gin.Context) {
	var input entities.CreatePropertyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	property, err := h.propertyUsecase.Create(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Property created successfully", gin.H{"property": property})
}

// UpdateProperty edits a property
// PUT /api/admin/properties/:id
func (h *PropertyHandler) UpdateProperty(c *gin.Context) {
	id, ok := pathID(c, "id", "property")
	if !ok {
		return
	}
	var input entities.UpdatePropertyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	property, err := h.propertyUsecase.Update(c.Request.Context(), id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Property updated successfully", gin.H{"property": property})
}

// DeleteProperty soft-deletes a property
// DELETE /api/admin/properties/:id
func (h *PropertyHandler) DeleteProperty(c *gin.Context) {
	id, ok := pathID(c, "id", "property")
	if !ok {
		return
	}
	if err := h.propertyUsecase.Deactivate(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Property deactivated successfully", nil)
}
