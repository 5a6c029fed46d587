package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	domainerrors "hmr-builders.backend/internal/domain/errors"
	"hmr-builders.backend/internal/interfaces/http/response"
	"hmr-builders.backend/pkg/logger"
	"hmr-builders.backend/pkg/redis"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	// ReplayHeader marks a response served from the idempotency store
	ReplayHeader = "X-Idempotency-Replayed"
	// LockDuration is the time we hold the lock while processing
	LockDuration = 30 * time.Second
	// RetentionDuration is how long we keep the response
	RetentionDuration = 24 * time.Hour

	processingMarker = "processing"
	maxKeyLength     = 128
)

var (
	redisGet   = redis.Get
	redisSet   = redis.Set
	redisSetNX = redis.SetNX
	redisDel   = redis.Del
)

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

type storedResponse struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

// IdempotencyMiddleware replays the stored response for a repeated
// Idempotency-Key and rejects a duplicate that arrives while the first is
// still running. Keys are scoped to the authenticated user and route.
func IdempotencyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxKeyLength {
			response.Abort(c, domainerrors.Validation("Idempotency-Key is too long",
				domainerrors.FieldError{Field: IdempotencyHeader, Message: fmt.Sprintf("must be at most %d characters", maxKeyLength)}))
			return
		}

		scope := "anonymous"
		if userID, ok := GetUserID(c); ok {
			scope = userID.String()
		}
		storageKey := fmt.Sprintf("idempotency:%s:%s:%s:%s", scope, c.Request.Method, c.FullPath(), key)
		ctx := c.Request.Context()

		val, err := redisGet(ctx, storageKey)
		switch {
		case err == nil:
			if val == processingMarker {
				response.Abort(c, domainerrors.Conflict(domainerrors.CodeIdempotencyConflict, "A request with this Idempotency-Key is already in progress", nil))
				return
			}
			var stored storedResponse
			if jsonErr := json.Unmarshal([]byte(val), &stored); jsonErr != nil {
				logger.Warn(ctx, "discarding unreadable idempotent response", zap.Error(jsonErr))
				_, _ = redisDel(ctx, storageKey)
				break
			}
			c.Header(ReplayHeader, "true")
			c.Data(stored.Status, "application/json; charset=utf-8", []byte(stored.Body))
			c.Abort()
			return
		case !redis.IsNil(err):
			// store unavailable: process without protection
			logger.Warn(ctx, "idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}

		acquired, err := redisSetNX(ctx, storageKey, processingMarker, LockDuration)
		if err != nil || !acquired {
			response.Abort(c, domainerrors.Conflict(domainerrors.CodeIdempotencyConflict, "A request with this Idempotency-Key is already in progress", nil))
			return
		}

		w := &responseWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		status := c.Writer.Status()
		if status >= http.StatusOK && status < http.StatusMultipleChoices {
			payload, _ := json.Marshal(storedResponse{Status: status, Body: w.body.String()})
			if err := redisSet(ctx, storageKey, string(payload), RetentionDuration); err != nil {
				logger.Warn(ctx, "failed to store idempotent response", zap.Error(err))
			}
			return
		}
		// failed attempts may be retried with the same key
		_, _ = redisDel(ctx, storageKey)
	}
}
