package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"hmr-builders.backend/internal/domain/entities"
	domainerrors "hmr-builders.backend/internal/domain/errors"
	domainRepos "hmr-builders.backend/internal/domain/repositories"
	"hmr-builders.backend/internal/infrastructure/models"
	"hmr-builders.backend/pkg/utils"
)

type InvestmentRepository struct {
	db *gorm.DB
}

func NewInvestmentRepository(db *gorm.DB) *InvestmentRepository {
	return &InvestmentRepository{db: db}
}

func (r *InvestmentRepository) Create(ctx context.Context, inv *entities.Investment) error {
	if inv.ID == uuid.Nil {
		inv.ID = utils.GenerateUUIDv7()
	}
	now := time.Now()
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = now
	}
	inv.UpdatedAt = now

	m := &models.Investment{
		ID:               inv.ID,
		UserID:           inv.UserID,
		PropertyID:       inv.PropertyID,
		TokensPurchased:  inv.TokensPurchased,
		InvestmentAmount: inv.InvestmentAmount,
		PricePerToken:    inv.PricePerToken,
		PaymentMethod:    string(inv.PaymentMethod),
		PaymentStatus:    string(inv.PaymentStatus),
		Status:           string(inv.Status),
		ConfirmedAt:      inv.ConfirmedAt.Ptr(),
		ActivatedAt:      inv.ActivatedAt.Ptr(),
		CancelledAt:      inv.CancelledAt.Ptr(),
		CreatedAt:        inv.CreatedAt,
		UpdatedAt:        inv.UpdatedAt,
	}
	if err := GetDB(ctx, r.db).Omit(clause.Associations).Create(m).Error; err != nil {
		if isCheckViolation(err) {
			return domainerrors.ErrInvalidInput
		}
		return err
	}
	return nil
}

func (r *InvestmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Investment, error) {
	return r.first(GetDB(ctx, r.db).Preload("Property").Where("id = ?", id))
}

func (r *InvestmentRepository) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*entities.Investment, error) {
	return r.first(GetDB(ctx, r.db).Preload("Property").Where("id = ? AND user_id = ?", id, userID))
}

func (r *InvestmentRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entities.Investment, error) {
	return r.first(GetDB(ctx, r.db).Where("id = ?", id).Clauses(clause.Locking{Strength: "UPDATE"}))
}

func (r *InvestmentRepository) first(query *gorm.DB) (*entities.Investment, error) {
	var m models.Investment
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toInvestmentEntity(&m), nil
}

func (r *InvestmentRepository) List(ctx context.Context, filter entities.InvestmentFilter, page utils.PaginationParams) ([]*entities.Investment, int64, error) {
	query := GetDB(ctx, r.db).Model(&models.Investment{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.PropertyID != nil {
		query = query.Where("property_id = ?", *filter.PropertyID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page = page.Normalize()
	find := query.Session(&gorm.Session{}).Preload("Property")
	if filter.UserID == nil {
		find = find.Preload("User")
	}
	var rows []models.Investment
	if err := find.
		Order("created_at DESC").
		Limit(page.Limit).
		Offset(page.CalculateOffset()).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	items := make([]*entities.Investment, 0, len(rows))
	for i := range rows {
		items = append(items, toInvestmentEntity(&rows[i]))
	}
	return items, total, nil
}

// MarkCancelled moves an active or pending investment to cancelled.
func (r *InvestmentRepository) MarkCancelled(ctx context.Context, id uuid.UUID, paymentStatus entities.PaymentStatus, at time.Time) error {
	result := GetDB(ctx, r.db).Model(&models.Investment{}).
		Where("id = ? AND status IN ?", id, []string{string(entities.InvestmentActive), string(entities.InvestmentPending)}).
		Updates(map[string]interface{}{
			"status":         string(entities.InvestmentCancelled),
			"payment_status": string(paymentStatus),
			"cancelled_at":   at,
			"updated_at":     at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrInvalidState
	}
	return nil
}

type aggregateRow struct {
	UserID   uuid.UUID
	Invested decimal.Decimal
	Tokens   int64
	Active   int64
}

const aggregateSelect = "COALESCE(SUM(investment_amount), 0) AS invested, " +
	"COALESCE(SUM(tokens_purchased), 0) AS tokens, COUNT(*) AS active"

// AggregateByUser sums the user's active investments.
func (r *InvestmentRepository) AggregateByUser(ctx context.Context, userID uuid.UUID) (entities.WalletAggregate, error) {
	var row aggregateRow
	err := GetDB(ctx, r.db).Model(&models.Investment{}).
		Select(aggregateSelect).
		Where("user_id = ? AND status = ?", userID, string(entities.InvestmentActive)).
		Scan(&row).Error
	if err != nil {
		return entities.WalletAggregate{}, err
	}
	return entities.WalletAggregate{
		UserID:            userID,
		InvestedAmount:    row.Invested,
		TotalTokens:       row.Tokens,
		ActiveInvestments: row.Active,
	}, nil
}

// AggregateAll sums active investments per user.
func (r *InvestmentRepository) AggregateAll(ctx context.Context) (map[uuid.UUID]entities.WalletAggregate, error) {
	var rows []aggregateRow
	err := GetDB(ctx, r.db).Model(&models.Investment{}).
		Select("user_id, "+aggregateSelect).
		Where("status = ?", string(entities.InvestmentActive)).
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]entities.WalletAggregate, len(rows))
	for _, row := range rows {
		out[row.UserID] = entities.WalletAggregate{
			UserID:            row.UserID,
			InvestedAmount:    row.Invested,
			TotalTokens:       row.Tokens,
			ActiveInvestments: row.Active,
		}
	}
	return out, nil
}

type holdingRow struct {
	PropertyID      uuid.UUID
	Title           string
	Slug            string
	City            string
	Images          datatypes.JSON
	PricePerToken   decimal.Decimal
	TokensOwned     int64
	AmountInvested  decimal.Decimal
	InvestmentCount int64
}

// Holdings groups the user's active investments by property.
func (r *InvestmentRepository) Holdings(ctx context.Context, userID uuid.UUID) ([]*entities.Holding, error) {
	var rows []holdingRow
	err := GetDB(ctx, r.db).Table("investments AS i").
		Select(`p.id AS property_id, p.title, p.slug, p.city, p.images, p.price_per_token,
			COALESCE(SUM(i.tokens_purchased), 0) AS tokens_owned,
			COALESCE(SUM(i.investment_amount), 0) AS amount_invested,
			COUNT(*) AS investment_count`).
		Joins("JOIN properties AS p ON p.id = i.property_id").
		Where("i.user_id = ? AND i.status = ?", userID, string(entities.InvestmentActive)).
		Group("p.id").
		Order("amount_invested DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	holdings := make([]*entities.Holding, 0, len(rows))
	for _, row := range rows {
		images := unmarshalStrings(row.Images)
		h := &entities.Holding{
			PropertyID:      row.PropertyID,
			Title:           row.Title,
			Slug:            row.Slug,
			City:            row.City,
			TokensOwned:     row.TokensOwned,
			AmountInvested:  row.AmountInvested,
			InvestmentCount: row.InvestmentCount,
			PricePerToken:   row.PricePerToken,
			CurrentValue:    row.PricePerToken.Mul(decimal.NewFromInt(row.TokensOwned)).Round(2),
		}
		if len(images) > 0 {
			h.Image = images[0]
		}
		holdings = append(holdings, h)
	}
	return holdings, nil
}

type portfolioRow struct {
	Total      int64
	Active     int64
	Cancelled  int64
	Invested   decimal.Decimal
	Tokens     int64
	Properties int64
}

func (r *InvestmentRepository) Portfolio(ctx context.Context, userID uuid.UUID) (*entities.PortfolioSummary, error) {
	var row portfolioRow
	err := GetDB(ctx, r.db).Model(&models.Investment{}).
		Select(`COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN status = 'active' THEN 1 ELSE 0 END), 0) AS active,
			COALESCE(SUM(CASE WHEN status = 'cancelled' THEN 1 ELSE 0 END), 0) AS cancelled,
			COALESCE(SUM(CASE WHEN status = 'active' THEN investment_amount ELSE 0 END), 0) AS invested,
			COALESCE(SUM(CASE WHEN status = 'active' THEN tokens_purchased ELSE 0 END), 0) AS tokens,
			COUNT(DISTINCT CASE WHEN status = 'active' THEN property_id END) AS properties`).
		Where("user_id = ?", userID).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &entities.PortfolioSummary{
		TotalInvestments:     row.Total,
		ActiveInvestments:    row.Active,
		CancelledInvestments: row.Cancelled,
		TotalInvested:        row.Invested,
		TotalTokens:          row.Tokens,
		PropertiesCount:      row.Properties,
		CurrentValue:         decimal.Zero,
	}, nil
}

type totalsRow struct {
	Total     int64
	Active    int64
	Amount    decimal.Decimal
	Tokens    int64
	Investors int64
}

const totalsSelect = `COUNT(*) AS total,
	COALESCE(SUM(CASE WHEN status = 'active' THEN 1 ELSE 0 END), 0) AS active,
	COALESCE(SUM(CASE WHEN status = 'active' THEN investment_amount ELSE 0 END), 0) AS amount,
	COALESCE(SUM(CASE WHEN status = 'active' THEN tokens_purchased ELSE 0 END), 0) AS tokens,
	COUNT(DISTINCT CASE WHEN status = 'active' THEN user_id END) AS investors`

func (r *InvestmentRepository) PropertyTotals(ctx context.Context, propertyID uuid.UUID) (domainRepos.InvestmentTotals, error) {
	return r.totals(GetDB(ctx, r.db).Model(&models.Investment{}).Where("property_id = ?", propertyID))
}

func (r *InvestmentRepository) Totals(ctx context.Context) (domainRepos.InvestmentTotals, error) {
	return r.totals(GetDB(ctx, r.db).Model(&models.Investment{}))
}

func (r *InvestmentRepository) totals(query *gorm.DB) (domainRepos.InvestmentTotals, error) {
	var row totalsRow
	if err := query.Select(totalsSelect).Scan(&row).Error; err != nil {
		return domainRepos.InvestmentTotals{}, err
	}
	return domainRepos.InvestmentTotals{
		Total:         row.Total,
		Active:        row.Active,
		AmountActive:  row.Amount,
		TokensSold:    row.Tokens,
		InvestorCount: row.Investors,
	}, nil
}

func toInvestmentEntity(m *models.Investment) *entities.Investment {
	inv := &entities.Investment{
		ID:               m.ID,
		UserID:           m.UserID,
		PropertyID:       m.PropertyID,
		TokensPurchased:  m.TokensPurchased,
		InvestmentAmount: m.InvestmentAmount,
		PricePerToken:    m.PricePerToken,
		PaymentMethod:    entities.PaymentMethodKind(m.PaymentMethod),
		PaymentStatus:    entities.PaymentStatus(m.PaymentStatus),
		Status:           entities.InvestmentStatus(m.Status),
		ConfirmedAt:      null.TimeFromPtr(m.ConfirmedAt),
		ActivatedAt:      null.TimeFromPtr(m.ActivatedAt),
		CancelledAt:      null.TimeFromPtr(m.CancelledAt),
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
	if m.Property != nil {
		summary := &entities.PropertySummary{
			ID:            m.Property.ID,
			Title:         m.Property.Title,
			Slug:          m.Property.Slug,
			City:          m.Property.City,
			Status:        entities.PropertyStatus(m.Property.Status),
			PricePerToken: m.Property.PricePerToken,
		}
		if images := unmarshalStrings(m.Property.Images); len(images) > 0 {
			summary.Image = images[0]
		}
		inv.Property = summary
	}
	if m.User != nil {
		inv.User = &entities.UserSummary{ID: m.User.ID, Name: m.User.Name, Email: m.User.Email}
	}
	return inv
}
