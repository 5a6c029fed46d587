package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"hmr-builders.backend/internal/domain/entities"
	domainerrors "hmr-builders.backend/internal/domain/errors"
	"hmr-builders.backend/pkg/logger"
	"hmr-builders.backend/pkg/metrics"
)

type walletCounterStore interface {
	List(ctx context.Context) ([]*entities.Wallet, error)
	SetCounters(ctx context.Context, current *entities.Wallet, invested decimal.Decimal, tokens int64) error
}

type investmentAggregator interface {
	AggregateAll(ctx context.Context) (map[uuid.UUID]entities.WalletAggregate, error)
}

type summaryInvalidator interface {
	Invalidate(ctx context.Context, id string) error
}

// WalletReconcileJob repairs wallet investment counters that drifted from the
// sums of active investments.
type WalletReconcileJob struct {
	wallets     walletCounterStore
	investments investmentAggregator
	cache       summaryInvalidator
	schedule    string
	cron        *cron.Cron
}

func NewWalletReconcileJob(wallets walletCounterStore, investments investmentAggregator, cache summaryInvalidator, schedule string) *WalletReconcileJob {
	if schedule == "" {
		schedule = "@every 15m"
	}
	return &WalletReconcileJob{
		wallets:     wallets,
		investments: investments,
		cache:       cache,
		schedule:    schedule,
	}
}

// Start registers the schedule and runs until ctx is cancelled or Stop is called.
func (j *WalletReconcileJob) Start(ctx context.Context) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(j.schedule, func() { _, _ = j.Reconcile(ctx) }); err != nil {
		return fmt.Errorf("invalid reconcile schedule %q: %w", j.schedule, err)
	}
	j.cron = c
	c.Start()
	logger.Info(ctx, "Starting wallet reconciliation job", zap.String("schedule", j.schedule))

	go func() {
		<-ctx.Done()
		j.Stop()
	}()
	return nil
}

func (j *WalletReconcileJob) Stop() {
	if j.cron == nil {
		return
	}
	<-j.cron.Stop().Done()
}

// Reconcile compares every wallet against the derived aggregate and rewrites
// the counters of drifted ones. It returns how many wallets were repaired.
func (j *WalletReconcileJob) Reconcile(ctx context.Context) (int, error) {
	wallets, err := j.wallets.List(ctx)
	if err != nil {
		logger.Error(ctx, "Failed to list wallets for reconciliation", zap.Error(err))
		return 0, err
	}
	aggregates, err := j.investments.AggregateAll(ctx)
	if err != nil {
		logger.Error(ctx, "Failed to aggregate investments for reconciliation", zap.Error(err))
		return 0, err
	}

	repaired := 0
	for _, w := range wallets {
		agg, ok := aggregates[w.UserID]
		if !ok {
			agg = entities.WalletAggregate{UserID: w.UserID, InvestedAmount: decimal.Zero}
		}
		if !w.Drifted(agg) {
			continue
		}
		if err := j.wallets.SetCounters(ctx, w, agg.InvestedAmount, agg.TotalTokens); err != nil {
			if errors.Is(err, domainerrors.ErrStaleCounters) {
				// a purchase or cancel landed mid-run; the next run re-derives it
				logger.Debug(ctx, "Wallet changed during reconciliation, skipped", zap.String("user_id", w.UserID.String()))
				continue
			}
			logger.Error(ctx, "Failed to repair wallet counters", zap.String("user_id", w.UserID.String()), zap.Error(err))
			continue
		}
		if j.cache != nil {
			_ = j.cache.Invalidate(ctx, w.UserID.String())
		}
		logger.Warn(ctx, "Repaired drifted wallet counters",
			zap.String("user_id", w.UserID.String()),
			zap.String("stored_investment", w.TotalInvestment.StringFixed(2)),
			zap.String("derived_investment", agg.InvestedAmount.StringFixed(2)),
			zap.Int64("stored_tokens", w.TotalTokens),
			zap.Int64("derived_tokens", agg.TotalTokens),
		)
		repaired++
	}
	metrics.ObserveWalletRepairs(repaired)
	return repaired, nil
}
