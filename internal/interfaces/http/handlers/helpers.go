package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"hmr-builders.backend/internal/domain/entities"
	domainerrors "hmr-builders.backend/internal/domain/errors"
	"hmr-builders.backend/internal/interfaces/http/middleware"
	"hmr-builders.backend/internal/interfaces/http/response"
	"hmr-builders.backend/pkg/utils"
)

// currentUser returns the authenticated user or writes a 401.
func currentUser(c *gin.Context) (*entities.User, bool) {
	user, ok := middleware.GetUser(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized(domainerrors.CodeUnauthorized, "User not authenticated"))
		return nil, false
	}
	return user, true
}

// pathID parses a uuid path parameter or writes a 400.
func pathID(c *gin.Context, param, label string) (uuid.UUID, bool) {
	id, ok := utils.ParseUUID(c.Param(param))
	if !ok {
		response.Error(c, domainerrors.Validation("Invalid "+label+" ID",
			domainerrors.FieldError{Field: param, Message: "must be a valid UUID"}))
		return uuid.Nil, false
	}
	return id, true
}

// pageQuery binds page and limit, applying defaults and clamping.
func pageQuery(c *gin.Context) (utils.PaginationParams, bool) {
	var p utils.PaginationParams
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, domainerrors.Validation("Invalid pagination",
			domainerrors.FieldError{Field: "page", Message: "page and limit must be integers"}))
		return p, false
	}
	return p.Normalize(), true
}

func paginated(key string, items interface{}, total int64, page utils.PaginationParams) gin.H {
	return gin.H{
		key:          items,
		"pagination": utils.CalculateMeta(total, page.Page, page.Limit),
	}
}

// boolQuery reads an optional boolean query parameter.
func boolQuery(c *gin.Context, name string) (*bool, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		response.Error(c, domainerrors.Validation("Invalid filter",
			domainerrors.FieldError{Field: name, Message: "must be true or false"}))
		return nil, false
	}
	return &v, true
}

// uuidQuery reads an optional uuid query parameter.
func uuidQuery(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, ok := utils.ParseUUID(raw)
	if !ok {
		response.Error(c, domainerrors.Validation("Invalid filter",
			domainerrors.FieldError{Field: name, Message: "must be a valid UUID"}))
		return nil, false
	}
	return &id, true
}

// investmentStatusQuery reads the optional investment status filter.
func investmentStatusQuery(c *gin.Context) (entities.InvestmentStatus, bool) {
	status := entities.InvestmentStatus(c.Query("status"))
	switch status {
	case "", entities.InvestmentPending, entities.InvestmentActive, entities.InvestmentCancelled:
		return status, true
	}
	response.Error(c, domainerrors.Validation("Invalid filter",
		domainerrors.FieldError{Field: "status", Message: "must be one of: pending active cancelled"}))
	return "", false
}

// propertyFilterQuery reads status, type, city and featured.
func propertyFilterQuery(c *gin.Context) (entities.PropertyFilter, bool) {
	featured, ok := boolQuery(c, "featured")
	if !ok {
		return entities.PropertyFilter{}, false
	}
	return entities.PropertyFilter{
		Status:       entities.PropertyStatus(c.Query("status")),
		PropertyType: entities.PropertyType(c.Query("type")),
		City:         c.Query("city"),
		Featured:     featured,
	}, true
}
