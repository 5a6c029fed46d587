package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"hmr-builders.backend/internal/domain/entities"
	domainerrors "hmr-builders.backend/internal/domain/errors"
	"hmr-builders.backend/internal/infrastructure/models"
	"hmr-builders.backend/pkg/utils"
)

type PaymentMethodRepository struct {
	db *gorm.DB
}

func NewPaymentMethodRepository(db *gorm.DB) *PaymentMethodRepository {
	return &PaymentMethodRepository{db: db}
}

func (r *PaymentMethodRepository) Create(ctx context.Context, pm *entities.PaymentMethod) error {
	if pm.ID == uuid.Nil {
		pm.ID = utils.GenerateUUIDv7()
	}
	now := time.Now()
	pm.CreatedAt = now
	pm.UpdatedAt = now
	if pm.Status == "" {
		pm.Status = entities.PaymentMethodActive
	}

	m := &models.PaymentMethod{
		ID:               pm.ID,
		UserID:           pm.UserID,
		CardType:         string(pm.CardType),
		CardNumberMasked: pm.CardNumberMasked,
		CardFingerprint:  pm.CardFingerprint,
		CardHolderName:   pm.CardHolderName,
		ExpiryMonth:      pm.ExpiryMonth,
		ExpiryYear:       pm.ExpiryYear,
		CVVHash:          pm.CVVHash,
		Currency:         pm.Currency,
		BillingAddress:   marshalBillingAddress(pm.BillingAddress),
		IsDefault:        pm.IsDefault,
		IsVerified:       pm.IsVerified,
		Status:           string(pm.Status),
		CreatedAt:        pm.CreatedAt,
		UpdatedAt:        pm.UpdatedAt,
	}
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			if isDefaultCardViolation(err) {
				return domainerrors.ErrDefaultCardTaken
			}
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *PaymentMethodRepository) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*entities.PaymentMethod, error) {
	var m models.PaymentMethod
	if err := GetDB(ctx, r.db).Where("id = ? AND user_id = ?", id, userID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toPaymentMethodEntity(&m), nil
}

func (r *PaymentMethodRepository) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*entities.PaymentMethod, error) {
	var rows []models.PaymentMethod
	if err := r.active(ctx, userID).
		Order("is_default DESC").
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]*entities.PaymentMethod, 0, len(rows))
	for i := range rows {
		items = append(items, toPaymentMethodEntity(&rows[i]))
	}
	return items, nil
}

func (r *PaymentMethodRepository) CountActiveByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.active(ctx, userID).Model(&models.PaymentMethod{}).Count(&count).Error
	return count, err
}

func (r *PaymentMethodRepository) FingerprintExists(ctx context.Context, userID uuid.UUID, fingerprint string) (bool, error) {
	var count int64
	err := r.active(ctx, userID).Model(&models.PaymentMethod{}).
		Where("card_fingerprint = ?", fingerprint).
		Count(&count).Error
	return count > 0, err
}

func (r *PaymentMethodRepository) ClearDefault(ctx context.Context, userID uuid.UUID) error {
	return GetDB(ctx, r.db).Model(&models.PaymentMethod{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Updates(map[string]interface{}{
			"is_default": false,
			"updated_at": time.Now(),
		}).Error
}

func (r *PaymentMethodRepository) SetDefault(ctx context.Context, id, userID uuid.UUID) error {
	return r.updateActive(ctx, id, userID, map[string]interface{}{"is_default": true})
}

func (r *PaymentMethodRepository) MarkVerified(ctx context.Context, id, userID uuid.UUID) error {
	return r.updateActive(ctx, id, userID, map[string]interface{}{"is_verified": true})
}

// Deactivate soft deletes a card. It also loses its default flag.
func (r *PaymentMethodRepository) Deactivate(ctx context.Context, id, userID uuid.UUID) error {
	return r.updateActive(ctx, id, userID, map[string]interface{}{
		"status":     string(entities.PaymentMethodInactive),
		"is_default": false,
	})
}

func (r *PaymentMethodRepository) NewestActive(ctx context.Context, userID uuid.UUID) (*entities.PaymentMethod, error) {
	var m models.PaymentMethod
	if err := r.active(ctx, userID).Order("created_at DESC").First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toPaymentMethodEntity(&m), nil
}

func (r *PaymentMethodRepository) active(ctx context.Context, userID uuid.UUID) *gorm.DB {
	return GetDB(ctx, r.db).Where("user_id = ? AND status = ?", userID, string(entities.PaymentMethodActive))
}

func (r *PaymentMethodRepository) updateActive(ctx context.Context, id, userID uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	result := GetDB(ctx, r.db).Model(&models.PaymentMethod{}).
		Where("id = ? AND user_id = ? AND status = ?", id, userID, string(entities.PaymentMethodActive)).
		Updates(updates)
	if result.Error != nil {
		if isUniqueViolation(result.Error) && isDefaultCardViolation(result.Error) {
			return domainerrors.ErrDefaultCardTaken
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func marshalBillingAddress(addr *entities.BillingAddress) datatypes.JSON {
	if addr == nil {
		return nil
	}
	raw, err := json.Marshal(addr)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

func toPaymentMethodEntity(m *models.PaymentMethod) *entities.PaymentMethod {
	pm := &entities.PaymentMethod{
		ID:               m.ID,
		UserID:           m.UserID,
		CardType:         entities.CardType(m.CardType),
		CardNumberMasked: m.CardNumberMasked,
		CardFingerprint:  m.CardFingerprint,
		CardHolderName:   m.CardHolderName,
		ExpiryMonth:      m.ExpiryMonth,
		ExpiryYear:       m.ExpiryYear,
		CVVHash:          m.CVVHash,
		Currency:         m.Currency,
		IsDefault:        m.IsDefault,
		IsVerified:       m.IsVerified,
		Status:           entities.PaymentMethodStatus(m.Status),
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
	if len(m.BillingAddress) > 0 {
		var addr entities.BillingAddress
		if err := json.Unmarshal(m.BillingAddress, &addr); err == nil {
			pm.BillingAddress = &addr
		}
	}
	return pm
}
