package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainerrors "hmr-builders.backend/internal/domain/errors"
	redispkg "hmr-builders.backend/pkg/redis"
)

func startMiniRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	srv, err := miniredis.Run()
	if err != nil {
		t.Skipf("skip: miniredis unavailable in this environment: %v", err)
	}
	t.Cleanup(srv.Close)

	cli := redisv9.NewClient(&redisv9.Options{Addr: srv.Addr()})
	redispkg.SetClient(cli)
	t.Cleanup(func() { _ = cli.Close() })
	return srv
}

func idempotentRouter(calls *int32, status int) *gin.Engine {
	r := gin.New()
	r.POST("/investments", IdempotencyMiddleware(), func(c *gin.Context) {
		n := atomic.AddInt32(calls, 1)
		c.JSON(status, gin.H{"call": n})
	})
	return r
}

func postWithKey(r *gin.Engine, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/investments", strings.NewReader(`{}`))
	if key != "" {
		req.Header.Set(IdempotencyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotencyMiddleware_NoHeaderPassthrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var calls int32
	r := idempotentRouter(&calls, http.StatusCreated)

	postWithKey(r, "")
	postWithKey(r, "")
	assert.Equal(t, int32(2), calls)
}

func TestIdempotencyMiddleware_ReplaysStoredResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	startMiniRedis(t)
	var calls int32
	r := idempotentRouter(&calls, http.StatusCreated)

	first := postWithKey(r, "purchase-1")
	require.Equal(t, http.StatusCreated, first.Code)

	second := postWithKey(r, "purchase-1")
	require.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get(ReplayHeader))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, int32(1), calls)

	postWithKey(r, "purchase-2")
	assert.Equal(t, int32(2), calls)
}

func TestIdempotencyMiddleware_FailedRequestCanRetry(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := startMiniRedis(t)
	var calls int32
	r := idempotentRouter(&calls, http.StatusConflict)

	postWithKey(r, "retry-me")
	postWithKey(r, "retry-me")
	assert.Equal(t, int32(2), calls)
	assert.Empty(t, srv.Keys())
}

func TestIdempotencyMiddleware_ProcessingConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := startMiniRedis(t)
	var calls int32
	r := idempotentRouter(&calls, http.StatusCreated)

	require.NoError(t, srv.Set("idempotency:anonymous:POST:/investments:busy", processingMarker))

	w := postWithKey(r, "busy")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), domainerrors.CodeIdempotencyConflict)
	assert.Zero(t, calls)
}

func TestIdempotencyMiddleware_LostLockRace(t *testing.T) {
	gin.SetMode(gin.TestMode)
	startMiniRedis(t)

	orig := redisSetNX
	t.Cleanup(func() { redisSetNX = orig })
	redisSetNX = func(context.Context, string, interface{}, time.Duration) (bool, error) { return false, nil }

	var calls int32
	w := postWithKey(idempotentRouter(&calls, http.StatusCreated), "raced")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Zero(t, calls)
}

func TestIdempotencyMiddleware_StoreDownPassthrough(t *testing.T) {
	gin.SetMode(gin.TestMode)

	orig := redisGet
	t.Cleanup(func() { redisGet = orig })
	redisGet = func(context.Context, string) (string, error) { return "", errors.New("dial tcp: connection refused") }

	var calls int32
	w := postWithKey(idempotentRouter(&calls, http.StatusCreated), "k")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, int32(1), calls)
}

func TestIdempotencyMiddleware_KeyTooLong(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var calls int32
	w := postWithKey(idempotentRouter(&calls, http.StatusCreated), strings.Repeat("k", maxKeyLength+1))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, calls)
}
