package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"hmr-builders.backend/internal/domain/entities"
	domainerrors "hmr-builders.backend/internal/domain/errors"
	"hmr-builders.backend/internal/infrastructure/models"
	"hmr-builders.backend/pkg/utils"
)

type PropertyRepository struct {
	db *gorm.DB
}

func NewPropertyRepository(db *gorm.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

func (r *PropertyRepository) Create(ctx context.Context, p *entities.Property) error {
	if p.ID == uuid.Nil {
		p.ID = utils.GenerateUUIDv7()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	m := toPropertyModel(p)
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		if isCheckViolation(err) {
			return domainerrors.ErrInvalidInput
		}
		return err
	}
	return nil
}

func (r *PropertyRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Property, error) {
	return r.first(GetDB(ctx, r.db).Where("id = ?", id))
}

func (r *PropertyRepository) GetByRef(ctx context.Context, ref string, includeInactive bool) (*entities.Property, error) {
	query := r.byRef(GetDB(ctx, r.db), ref)
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	return r.first(query)
}

// GetByRefForUpdate takes the row lock used to serialise purchases of one property.
func (r *PropertyRepository) GetByRefForUpdate(ctx context.Context, ref string) (*entities.Property, error) {
	query := r.byRef(GetDB(ctx, r.db), ref).
		Where("is_active = ?", true).
		Clauses(clause.Locking{Strength: "UPDATE"})
	return r.first(query)
}

func (r *PropertyRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entities.Property, error) {
	query := GetDB(ctx, r.db).
		Where("id = ?", id).
		Clauses(clause.Locking{Strength: "UPDATE"})
	return r.first(query)
}

func (r *PropertyRepository) byRef(db *gorm.DB, ref string) *gorm.DB {
	ref = strings.TrimSpace(ref)
	if id, ok := utils.ParseUUID(ref); ok {
		return db.Where("(id = ? OR slug = ?)", id, ref)
	}
	return db.Where("slug = ?", ref)
}

func (r *PropertyRepository) first(query *gorm.DB) (*entities.Property, error) {
	var m models.Property
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toPropertyEntity(&m), nil
}

func (r *PropertyRepository) List(ctx context.Context, filter entities.PropertyFilter, page utils.PaginationParams) ([]*entities.Property, int64, error) {
	query := GetDB(ctx, r.db).Model(&models.Property{})
	if !filter.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.PropertyType != "" {
		query = query.Where("property_type = ?", string(filter.PropertyType))
	}
	if city := strings.TrimSpace(filter.City); city != "" {
		query = query.Where("LOWER(city) LIKE ?", "%"+strings.ToLower(city)+"%")
	}
	if filter.Featured != nil {
		query = query.Where("is_featured = ?", *filter.Featured)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page = page.Normalize()
	var rows []models.Property
	if err := query.Session(&gorm.Session{}).
		Order("sort_order ASC").
		Order("created_at DESC").
		Limit(page.Limit).
		Offset(page.CalculateOffset()).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return toPropertyEntities(rows), total, nil
}

func (r *PropertyRepository) ListFeatured(ctx context.Context, limit int) ([]*entities.Property, error) {
	var rows []models.Property
	if err := GetDB(ctx, r.db).
		Where("is_active = ? AND is_featured = ?", true, true).
		Order("sort_order ASC").
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toPropertyEntities(rows), nil
}

// Update writes the editable columns. Token supply columns are never touched here.
func (r *PropertyRepository) Update(ctx context.Context, p *entities.Property) error {
	images, features := marshalStrings(p.Images), marshalStrings(p.Features)
	result := GetDB(ctx, r.db).Model(&models.Property{}).
		Where("id = ?", p.ID).
		Updates(map[string]interface{}{
			"title":             p.Title,
			"description":       p.Description,
			"short_description": p.ShortDescription,
			"address":           p.Location.Address,
			"city":              p.Location.City,
			"state":             p.Location.State,
			"country":           p.Location.Country,
			"property_type":     string(p.PropertyType),
			"status":            string(p.Status),
			"total_value":       p.Pricing.TotalValue,
			"market_value":      p.Pricing.MarketValue,
			"expected_roi":      p.Pricing.ExpectedROI,
			"min_investment":    p.Pricing.MinInvestment,
			"price_per_token":   p.Tokenization.PricePerToken,
			"images":            images,
			"features":          features,
			"is_featured":       p.IsFeatured,
			"sort_order":        p.SortOrder,
			"updated_at":        time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// DecrementAvailable is guarded by available_tokens >= n so the counter can never go negative.
func (r *PropertyRepository) DecrementAvailable(ctx context.Context, id uuid.UUID, n int64) error {
	if n <= 0 {
		return domainerrors.ErrInvalidInput
	}
	result := GetDB(ctx, r.db).Model(&models.Property{}).
		Where("id = ? AND available_tokens >= ?", id, n).
		Updates(map[string]interface{}{
			"available_tokens": gorm.Expr("available_tokens - ?", n),
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		if isCheckViolation(result.Error) {
			return domainerrors.ErrInsufficientTokens
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrInsufficientTokens
	}
	return nil
}

func (r *PropertyRepository) IncrementAvailable(ctx context.Context, id uuid.UUID, n int64) error {
	if n <= 0 {
		return domainerrors.ErrInvalidInput
	}
	result := GetDB(ctx, r.db).Model(&models.Property{}).
		Where("id = ? AND available_tokens + ? <= total_tokens", id, n).
		Updates(map[string]interface{}{
			"available_tokens": gorm.Expr("available_tokens + ?", n),
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrSupplyExceeded
	}
	return nil
}

func (r *PropertyRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	result := GetDB(ctx, r.db).Model(&models.Property{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *PropertyRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&models.Property{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PropertyRepository) Counts(ctx context.Context) (int64, int64, error) {
	var total, active int64
	if err := GetDB(ctx, r.db).Model(&models.Property{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err := GetDB(ctx, r.db).Model(&models.Property{}).Where("is_active = ?", true).Count(&active).Error; err != nil {
		return 0, 0, err
	}
	return total, active, nil
}

func toPropertyModel(p *entities.Property) *models.Property {
	return &models.Property{
		ID:               p.ID,
		Title:            p.Title,
		Slug:             p.Slug,
		Description:      p.Description,
		ShortDescription: p.ShortDescription,
		Address:          p.Location.Address,
		City:             p.Location.City,
		State:            p.Location.State,
		Country:          p.Location.Country,
		PropertyType:     string(p.PropertyType),
		Status:           string(p.Status),
		TotalValue:       p.Pricing.TotalValue,
		MarketValue:      p.Pricing.MarketValue,
		ExpectedROI:      p.Pricing.ExpectedROI,
		MinInvestment:    p.Pricing.MinInvestment,
		TotalTokens:      p.Tokenization.TotalTokens,
		AvailableTokens:  p.Tokenization.AvailableTokens,
		PricePerToken:    p.Tokenization.PricePerToken,
		Images:           marshalStrings(p.Images),
		Features:         marshalStrings(p.Features),
		IsFeatured:       p.IsFeatured,
		IsActive:         p.IsActive,
		SortOrder:        p.SortOrder,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func toPropertyEntity(m *models.Property) *entities.Property {
	return &entities.Property{
		ID:               m.ID,
		Title:            m.Title,
		Slug:             m.Slug,
		Description:      m.Description,
		ShortDescription: m.ShortDescription,
		Location: entities.Location{
			Address: m.Address,
			City:    m.City,
			State:   m.State,
			Country: m.Country,
		},
		PropertyType: entities.PropertyType(m.PropertyType),
		Status:       entities.PropertyStatus(m.Status),
		Pricing: entities.Pricing{
			TotalValue:    m.TotalValue,
			MarketValue:   m.MarketValue,
			ExpectedROI:   m.ExpectedROI,
			MinInvestment: m.MinInvestment,
		},
		Tokenization: entities.Tokenization{
			TotalTokens:     m.TotalTokens,
			AvailableTokens: m.AvailableTokens,
			PricePerToken:   m.PricePerToken,
		},
		Images:     unmarshalStrings(m.Images),
		Features:   unmarshalStrings(m.Features),
		IsFeatured: m.IsFeatured,
		IsActive:   m.IsActive,
		SortOrder:  m.SortOrder,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func toPropertyEntities(rows []models.Property) []*entities.Property {
	items := make([]*entities.Property, 0, len(rows))
	for i := range rows {
		items = append(items, toPropertyEntity(&rows[i]))
	}
	return items
}

func marshalStrings(values []string) datatypes.JSON {
	if values == nil {
		values = []string{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(raw)
}

func unmarshalStrings(raw datatypes.JSON) []string {
	values := []string{}
	if len(raw) == 0 {
		return values
	}
	if err := json.Unmarshal(raw, &values); err != nil {
		return []string{}
	}
	return values
}
