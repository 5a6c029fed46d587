package usecases

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"hmr-builders.backend/internal/domain/entities"
	domainerrors "hmr-builders.backend/internal/domain/errors"
	"hmr-builders.backend/internal/domain/repositories"
	"hmr-builders.backend/pkg/logger"
	"hmr-builders.backend/pkg/utils"
)

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lower-cases s and joins its alphanumeric runs with dashes.
func Slugify(s string) string {
	return strings.Trim(slugInvalid.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// PropertyUsecase serves the public catalogue and admin property management.
type PropertyUsecase struct {
	propertyRepo   repositories.PropertyRepository
	investmentRepo repositories.InvestmentRepository
}

func NewPropertyUsecase(propertyRepo repositories.PropertyRepository, investmentRepo repositories.InvestmentRepository) *PropertyUsecase {
	return &PropertyUsecase{propertyRepo: propertyRepo, investmentRepo: investmentRepo}
}

// List returns active properties. IncludeInactive is honoured only for admin callers.
func (u *PropertyUsecase) List(ctx context.Context, filter entities.PropertyFilter, page utils.PaginationParams) ([]*entities.Property, int64, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, domainerrors.Validation("Invalid filter", domainerrors.FieldError{Field: "status", Message: "unknown status"})
	}
	if filter.PropertyType != "" && !filter.PropertyType.Valid() {
		return nil, 0, domainerrors.Validation("Invalid filter", domainerrors.FieldError{Field: "type", Message: "unknown property type"})
	}
	return u.propertyRepo.List(ctx, filter, page)
}

func (u *PropertyUsecase) Featured(ctx context.Context) ([]*entities.Property, error) {
	return u.propertyRepo.ListFeatured(ctx, FeaturedPropertiesLimit)
}

// Get resolves a property by slug or id.
func (u *PropertyUsecase) Get(ctx context.Context, ref string, includeInactive bool) (*entities.Property, error) {
	p, err := u.propertyRepo.GetByRef(ctx, ref, includeInactive)
	if errors.Is(err, domainerrors.ErrNotFound) {
		return nil, domainerrors.NotFound("Property not found")
	}
	return p, err
}

// Stats reports funding progress of one property.
func (u *PropertyUsecase) Stats(ctx context.Context, ref string) (*entities.PropertyStats, error) {
	p, err := u.Get(ctx, ref, false)
	if err != nil {
		return nil, err
	}
	totals, err := u.investmentRepo.PropertyTotals(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	funded := decimal.Zero
	if p.Tokenization.TotalTokens > 0 {
		funded = decimal.NewFromInt(p.TokensSold()).
			Mul(decimal.NewFromInt(100)).
			DivRound(decimal.NewFromInt(p.Tokenization.TotalTokens), 2)
	}
	return &entities.PropertyStats{
		PropertyID:      p.ID,
		TotalTokens:     p.Tokenization.TotalTokens,
		TokensSold:      p.TokensSold(),
		AvailableTokens: p.Tokenization.AvailableTokens,
		InvestorCount:   totals.InvestorCount,
		AmountRaised:    totals.AmountActive,
		FundedPercent:   funded,
	}, nil
}

// Create stores a new property with its full supply available.
func (u *PropertyUsecase) Create(ctx context.Context, input *entities.CreatePropertyInput) (*entities.Property, error) {
	var details []domainerrors.FieldError
	if !input.PropertyType.Valid() {
		details = append(details, domainerrors.FieldError{Field: "propertyType", Message: "unknown property type"})
	}
	status := input.Status
	if status == "" {
		status = entities.PropertyPlanning
	}
	if !status.Valid() {
		details = append(details, domainerrors.FieldError{Field: "status", Message: "unknown status"})
	}
	if input.TotalTokens <= 0 {
		details = append(details, domainerrors.FieldError{Field: "totalTokens", Message: "must be a positive integer"})
	}
	if !input.PricePerToken.IsPositive() {
		details = append(details, domainerrors.FieldError{Field: "pricePerToken", Message: "must be a positive amount"})
	} else if !wholeCents(input.PricePerToken) {
		details = append(details, domainerrors.FieldError{Field: "pricePerToken", Message: "must have at most 2 decimal places"})
	}
	if len(details) > 0 {
		return nil, domainerrors.Validation("Invalid property", details...)
	}

	slug, err := u.uniqueSlug(ctx, input.Slug, input.Title)
	if err != nil {
		return nil, err
	}

	p := &entities.Property{
		ID:               utils.GenerateUUIDv7(),
		Title:            strings.TrimSpace(input.Title),
		Slug:             slug,
		Description:      input.Description,
		ShortDescription: input.ShortDescription,
		Location:         input.Location,
		PropertyType:     input.PropertyType,
		Status:           status,
		Pricing: entities.Pricing{
			TotalValue:    input.TotalValue,
			MarketValue:   input.MarketValue,
			ExpectedROI:   input.ExpectedROI,
			MinInvestment: input.MinInvestment,
		},
		Tokenization: entities.Tokenization{
			TotalTokens:     input.TotalTokens,
			AvailableTokens: input.TotalTokens,
			PricePerToken:   input.PricePerToken,
		},
		Images:     input.Images,
		Features:   input.Features,
		IsFeatured: input.IsFeatured,
		IsActive:   true,
		SortOrder:  input.SortOrder,
	}
	if err := u.propertyRepo.Create(ctx, p); err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			return nil, domainerrors.Conflict(domainerrors.CodeConflict, "A property with this slug already exists", err)
		}
		return nil, err
	}

	logger.Info(ctx, "Property created", zap.String("property_id", p.ID.String()), zap.String("slug", p.Slug))
	return p, nil
}

func (u *PropertyUsecase) uniqueSlug(ctx context.Context, requested, title string) (string, error) {
	base := Slugify(requested)
	if base == "" {
		base = Slugify(title)
	}
	if base == "" {
		return "", domainerrors.Validation("Invalid property", domainerrors.FieldError{Field: "title", Message: "title must contain letters or digits"})
	}

	slug := base
	for i := 2; ; i++ {
		exists, err := u.propertyRepo.SlugExists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		if requested != "" {
			return "", domainerrors.Conflict(domainerrors.CodeConflict, "A property with this slug already exists", domainerrors.ErrAlreadyExists)
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

// Update applies the non-nil fields of input. Token supply cannot change.
func (u *PropertyUsecase) Update(ctx context.Context, id uuid.UUID, input *entities.UpdatePropertyInput) (*entities.Property, error) {
	if input.TotalTokens != nil {
		return nil, domainerrors.Validation("Invalid property update",
			domainerrors.FieldError{Field: "totalTokens", Message: "total tokens are immutable after creation"})
	}

	p, err := u.propertyRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("Property not found")
		}
		return nil, err
	}

	if input.Title != nil {
		p.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		p.Description = *input.Description
	}
	if input.ShortDescription != nil {
		p.ShortDescription = *input.ShortDescription
	}
	if input.Location != nil {
		p.Location = *input.Location
	}
	if input.PropertyType != nil {
		if !input.PropertyType.Valid() {
			return nil, domainerrors.Validation("Invalid property update", domainerrors.FieldError{Field: "propertyType", Message: "unknown property type"})
		}
		p.PropertyType = *input.PropertyType
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, domainerrors.Validation("Invalid property update", domainerrors.FieldError{Field: "status", Message: "unknown status"})
		}
		p.Status = *input.Status
	}
	if input.TotalValue != nil {
		p.Pricing.TotalValue = *input.TotalValue
	}
	if input.MarketValue != nil {
		p.Pricing.MarketValue = *input.MarketValue
	}
	if input.ExpectedROI != nil {
		p.Pricing.ExpectedROI = *input.ExpectedROI
	}
	if input.MinInvestment != nil {
		p.Pricing.MinInvestment = *input.MinInvestment
	}
	if input.PricePerToken != nil {
		if !input.PricePerToken.IsPositive() {
			return nil, domainerrors.Validation("Invalid property update", domainerrors.FieldError{Field: "pricePerToken", Message: "must be a positive amount"})
		}
		if !wholeCents(*input.PricePerToken) {
			return nil, domainerrors.Validation("Invalid property update", domainerrors.FieldError{Field: "pricePerToken", Message: "must have at most 2 decimal places"})
		}
		p.Tokenization.PricePerToken = *input.PricePerToken
	}
	if input.Images != nil {
		p.Images = input.Images
	}
	if input.Features != nil {
		p.Features = input.Features
	}
	if input.IsFeatured != nil {
		p.IsFeatured = *input.IsFeatured
	}
	if input.SortOrder != nil {
		p.SortOrder = *input.SortOrder
	}

	if err := u.propertyRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Deactivate hides a property from the catalogue. Existing investments are kept.
func (u *PropertyUsecase) Deactivate(ctx context.Context, id uuid.UUID) error {
	err := u.propertyRepo.Deactivate(ctx, id)
	if errors.Is(err, domainerrors.ErrNotFound) {
		return domainerrors.NotFound("Property not found")
	}
	if err == nil {
		logger.Info(ctx, "Property deactivated", zap.String("property_id", id.String()))
	}
	return err
}
