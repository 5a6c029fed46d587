package usecases

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"hmr-builders.backend/pkg/logger"
)

// SummaryCache caches wallet summaries per user id.
type SummaryCache interface {
	Get(ctx context.Context, id string, dest interface{}) (bool, error)
	Set(ctx context.Context, id string, value interface{}) error
	Invalidate(ctx context.Context, id string) error
}

// invalidateSummary drops the cached summary; a stale entry only lives until its TTL.
func invalidateSummary(ctx context.Context, cache SummaryCache, userID uuid.UUID) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(ctx, userID.String()); err != nil {
		logger.Warn(ctx, "Failed to invalidate wallet summary", zap.String("user_id", userID.String()), zap.Error(err))
	}
}
