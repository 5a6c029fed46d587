package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"hmr-builders.backend/internal/domain/entities"
	domainerrors "hmr-builders.backend/internal/domain/errors"
)

func newCard(userID uuid.UUID, fingerprint string, isDefault bool) *entities.PaymentMethod {
	return &entities.PaymentMethod{
		UserID:           userID,
		CardType:         entities.CardVisa,
		CardNumberMasked: "************1111",
		CardFingerprint:  fingerprint,
		CardHolderName:   "Ayesha Khan",
		ExpiryMonth:      12,
		ExpiryYear:       time.Now().Year() + 2,
		CVVHash:          "cvv-hash",
		Currency:         "PKR",
		BillingAddress:   &entities.BillingAddress{City: "Lahore", Country: "PK"},
		IsDefault:        isDefault,
	}
}

func TestPaymentMethodRepository_DefaultSwap(t *testing.T) {
	db := newTestDB(t)
	createPaymentMethodTable(t, db)
	repo := NewPaymentMethodRepository(db)
	uow := NewUnitOfWork(db, 0)
	ctx := context.Background()
	userID := uuid.New()

	a := newCard(userID, "fp-a", true)
	b := newCard(userID, "fp-b", false)
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	err := uow.Do(ctx, func(ctx context.Context) error {
		if err := repo.ClearDefault(ctx, userID); err != nil {
			return err
		}
		return repo.SetDefault(ctx, b.ID, userID)
	})
	require.NoError(t, err)

	items, err := repo.ListActiveByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, b.ID, items[0].ID)
	require.True(t, items[0].IsDefault)
	require.False(t, items[1].IsDefault)
	require.Equal(t, "Lahore", items[0].BillingAddress.City)

	// unknown target rolls the clear back
	err = uow.Do(ctx, func(ctx context.Context) error {
		if err := repo.ClearDefault(ctx, userID); err != nil {
			return err
		}
		return repo.SetDefault(ctx, uuid.New(), userID)
	})
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	still, err := repo.GetByIDForUser(ctx, b.ID, userID)
	require.NoError(t, err)
	require.True(t, still.IsDefault)
}

func TestPaymentMethodRepository_SecondDefaultIsClassified(t *testing.T) {
	db := newTestDB(t)
	createPaymentMethodTable(t, db)
	mustExec(t, db, `CREATE UNIQUE INDEX uniq_payment_methods_default ON payment_methods (user_id) WHERE is_default AND status = 'active'`)
	mustExec(t, db, `CREATE UNIQUE INDEX uniq_payment_methods_fingerprint ON payment_methods (user_id, card_fingerprint) WHERE status = 'active'`)
	repo := NewPaymentMethodRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	first := newCard(userID, "fp-a", true)
	require.NoError(t, repo.Create(ctx, first))

	err := repo.Create(ctx, newCard(userID, "fp-b", true))
	require.ErrorIs(t, err, domainerrors.ErrDefaultCardTaken)
	require.NotErrorIs(t, err, domainerrors.ErrAlreadyExists)

	err = repo.Create(ctx, newCard(userID, "fp-a", false))
	require.ErrorIs(t, err, domainerrors.ErrAlreadyExists)

	second := newCard(userID, "fp-b", false)
	require.NoError(t, repo.Create(ctx, second))
	require.ErrorIs(t, repo.SetDefault(ctx, second.ID, userID), domainerrors.ErrDefaultCardTaken)

	// another user's default is independent
	require.NoError(t, repo.Create(ctx, newCard(uuid.New(), "fp-a", true)))
}

func TestPaymentMethodRepository_LifecycleQueries(t *testing.T) {
	db := newTestDB(t)
	createPaymentMethodTable(t, db)
	repo := NewPaymentMethodRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	a := newCard(userID, "fp-a", true)
	require.NoError(t, repo.Create(ctx, a))
	exists, err := repo.FingerprintExists(ctx, userID, "fp-a")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = repo.FingerprintExists(ctx, uuid.New(), "fp-a")
	require.NoError(t, err)
	require.False(t, exists)

	require.NoError(t, repo.MarkVerified(ctx, a.ID, userID))
	got, err := repo.GetByIDForUser(ctx, a.ID, userID)
	require.NoError(t, err)
	require.True(t, got.Usable())

	b := newCard(userID, "fp-b", false)
	require.NoError(t, repo.Create(ctx, b))
	count, err := repo.CountActiveByUser(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	require.NoError(t, repo.Deactivate(ctx, a.ID, userID))
	require.ErrorIs(t, repo.Deactivate(ctx, a.ID, userID), domainerrors.ErrNotFound)

	newest, err := repo.NewestActive(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, b.ID, newest.ID)

	exists, err = repo.FingerprintExists(ctx, userID, "fp-a")
	require.NoError(t, err)
	require.False(t, exists, "deactivated cards can be added again")

	_, err = repo.NewestActive(ctx, uuid.New())
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}
