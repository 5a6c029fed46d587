package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainerrors "hmr-builders.backend/internal/domain/errors"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Success(c, http.StatusCreated, "Created", gin.H{"ok": true})
	assert.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Created", body["message"])
	assert.Equal(t, true, body["ok"])
}

func TestError_AppError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, domainerrors.NotFound("Property not found"))
	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decode(t, w)
	assert.Equal(t, "NotFoundError", body["error"])
	assert.Equal(t, domainerrors.CodeNotFound, body["code"])
	assert.Equal(t, "Property not found", body["message"])
	assert.NotContains(t, body, "details")
}

func TestError_WrappedSentinel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, fmt.Errorf("purchase: %w", domainerrors.ErrInsufficientTokens))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "BusinessRuleError", body["error"])
	assert.Equal(t, domainerrors.CodeInsufficientTokens, body["code"])
}

func TestError_RetryableSetsHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, fmt.Errorf("%w: canceling statement due to lock timeout", domainerrors.ErrLockTimeout))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, RetryAfterSeconds, w.Header().Get("Retry-After"))
	body := decode(t, w)
	assert.Equal(t, true, body["retryable"])
	assert.Equal(t, domainerrors.CodeTransactionConflict, body["code"])
}

func TestError_GenericErrorHidesCause(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

	Error(c, errors.New("pq: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
	assert.Equal(t, "internal server error", decode(t, w)["message"])
}

type bindTarget struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name" binding:"required,min=2"`
	Card  struct {
		CVV string `json:"cvv" binding:"required,len=3"`
	} `json:"card"`
}

func TestBindError_FieldDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"email":"nope","name":"A","card":{"cvv":"12"}}`))
	c.Request.Header.Set("Content-Type", "application/json")

	var in bindTarget
	err := c.ShouldBindJSON(&in)
	require.Error(t, err)
	BindError(c, err)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "ValidationError", body["error"])
	details, ok := body["details"].([]interface{})
	require.True(t, ok)
	require.Len(t, details, 3)

	fields := map[string]string{}
	for _, d := range details {
		m := d.(map[string]interface{})
		fields[m["field"].(string)] = m["message"].(string)
	}
	assert.Equal(t, "must be a valid email address", fields["email"])
	assert.Equal(t, "must be at least 2 characters", fields["name"])
	assert.Equal(t, "must be exactly 3 characters", fields["card.cvv"])
}

func TestValidationFromBinding_TypeMismatch(t *testing.T) {
	var in struct {
		Tokens int64 `json:"tokensPurchased"`
	}
	err := json.Unmarshal([]byte(`{"tokensPurchased":"five"}`), &in)
	require.Error(t, err)

	appErr := ValidationFromBinding(err)
	require.Len(t, appErr.Details, 1)
	assert.Equal(t, "tokensPurchased", appErr.Details[0].Field)
	assert.Equal(t, "must be a int64", appErr.Details[0].Message)

	plain := ValidationFromBinding(errors.New("EOF"))
	assert.Empty(t, plain.Details)
	assert.Equal(t, "Invalid request body", plain.Message)
}
