package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"hmr-builders.backend/internal/domain/entities"
	"hmr-builders.backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testInvestor() *entities.User {
	return &entities.User{
		ID:        uuid.New(),
		Email:     "investor@hmr.pk",
		Name:      "Ayesha Khan",
		Role:      entities.UserRoleUser,
		KYCStatus: entities.KYCVerified,
		IsActive:  true,
	}
}

func testAdmin() *entities.User {
	u := testInvestor()
	u.Email = "admin@hmr.pk"
	u.Role = entities.UserRoleAdmin
	return u
}

// newRouter returns an engine that injects user (when non-nil) the way the
// auth middleware does.
func newRouter(user *entities.User) *gin.Engine {
	r := gin.New()
	if user != nil {
		r.Use(func(c *gin.Context) {
			c.Set(middleware.UserKey, user)
			c.Set(middleware.UserIDKey, user.ID)
			c.Next()
		})
	}
	return r
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, status int) map[string]interface{} {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	return decodeBody(t, w)
}

func TestHelpers_ValidationErrors(t *testing.T) {
	r := newRouter(testInvestor())
	r.GET("/items/:id", func(c *gin.Context) {
		if _, ok := pathID(c, "id", "item"); !ok {
			return
		}
		c.Status(http.StatusNoContent)
	})
	r.GET("/page", func(c *gin.Context) {
		if _, ok := pageQuery(c); !ok {
			return
		}
		c.Status(http.StatusNoContent)
	})
	r.GET("/flag", func(c *gin.Context) {
		if _, ok := boolQuery(c, "featured"); !ok {
			return
		}
		c.Status(http.StatusNoContent)
	})

	body := requireStatus(t, doJSON(r, http.MethodGet, "/items/nope", nil), http.StatusBadRequest)
	require.Equal(t, "Invalid item ID", body["message"])

	requireStatus(t, doJSON(r, http.MethodGet, "/page?page=abc", nil), http.StatusBadRequest)
	body = requireStatus(t, doJSON(r, http.MethodGet, "/flag?featured=maybe", nil), http.StatusBadRequest)
	details := body["details"].([]interface{})
	require.Equal(t, "featured", details[0].(map[string]interface{})["field"])

	require.Equal(t, http.StatusNoContent, doJSON(r, http.MethodGet, "/items/"+uuid.NewString(), nil).Code)
	require.Equal(t, http.StatusNoContent, doJSON(r, http.MethodGet, "/page?page=2&limit=500", nil).Code)
	require.Equal(t, http.StatusNoContent, doJSON(r, http.MethodGet, "/flag?featured=true", nil).Code)
}

func TestCurrentUser_Missing(t *testing.T) {
	r := newRouter(nil)
	r.GET("/me", func(c *gin.Context) {
		if _, ok := currentUser(c); !ok {
			return
		}
		c.Status(http.StatusNoContent)
	})

	body := requireStatus(t, doJSON(r, http.MethodGet, "/me", nil), http.StatusUnauthorized)
	require.Equal(t, "UNAUTHORIZED", body["code"])
}
