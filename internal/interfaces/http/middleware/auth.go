package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"hmr-builders.backend/internal/domain/entities"
	domainerrors "hmr-builders.backend/internal/domain/errors"
	"hmr-builders.backend/internal/interfaces/http/response"
	"hmr-builders.backend/pkg/jwt"
	"hmr-builders.backend/pkg/logger"
)

const (
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// UserKey is the context key for the resolved user
	UserKey = "user"
	// UserIDKey is the context key for user ID
	UserIDKey = "userId"
)

// AccessTokenValidator checks access tokens.
type AccessTokenValidator interface {
	ValidateAccessToken(tokenString string) (*jwt.Claims, error)
}

// UserResolver loads the account behind a token.
type UserResolver interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
}

// AuthMiddleware requires a valid access token for an existing, active user.
func AuthMiddleware(tokens AccessTokenValidator, users UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := resolveUser(c, tokens, users)
		if err != nil {
			logger.Warn(c.Request.Context(), "authentication failed",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			response.Abort(c, err)
			return
		}
		setUser(c, user)
		c.Next()
	}
}

// OptionalAuthMiddleware resolves the user when a usable token is sent and
// continues anonymously otherwise.
func OptionalAuthMiddleware(tokens AccessTokenValidator, users UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(AuthorizationHeader) != "" {
			if user, err := resolveUser(c, tokens, users); err == nil {
				setUser(c, user)
			}
		}
		c.Next()
	}
}

func resolveUser(c *gin.Context, tokens AccessTokenValidator, users UserResolver) (*entities.User, error) {
	authHeader := c.GetHeader(AuthorizationHeader)
	if authHeader == "" {
		return nil, domainerrors.Unauthorized(domainerrors.CodeTokenMissing, "Access token is required")
	}
	if !strings.HasPrefix(authHeader, BearerPrefix) {
		return nil, domainerrors.Unauthorized(domainerrors.CodeTokenMalformed, "Invalid authorization format. Use: Bearer <token>")
	}

	claims, err := tokens.ValidateAccessToken(strings.TrimSpace(strings.TrimPrefix(authHeader, BearerPrefix)))
	if err != nil {
		if errors.Is(err, jwt.ErrExpiredToken) {
			return nil, domainerrors.Unauthorized(domainerrors.CodeTokenExpired, "Access token has expired")
		}
		return nil, domainerrors.Unauthorized(domainerrors.CodeTokenMalformed, "Invalid access token")
	}

	user, err := users.GetUserByID(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.Unauthorized(domainerrors.CodeUserNotFound, "User no longer exists")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, domainerrors.Unauthorized(domainerrors.CodeAccountDeactivated, "Account is deactivated")
	}
	return user, nil
}

func setUser(c *gin.Context, user *entities.User) {
	c.Set(UserKey, user)
	c.Set(UserIDKey, user.ID)
	c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), user.ID.String()))
}

// GetUser returns the authenticated user, if any.
func GetUser(c *gin.Context) (*entities.User, bool) {
	v, exists := c.Get(UserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*entities.User)
	return user, ok && user != nil
}

// GetUserID gets the user ID from context
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := userID.(uuid.UUID)
	return id, ok
}

// RequireRole creates a middleware that requires one of roles
func RequireRole(roles ...entities.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetUser(c)
		if !ok {
			response.Abort(c, domainerrors.Unauthorized(domainerrors.CodeUnauthorized, "Authentication required"))
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		response.Abort(c, domainerrors.Forbidden(domainerrors.CodeForbidden, "Insufficient permissions"))
	}
}

// RequireAdmin creates a middleware that requires admin role
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(entities.UserRoleAdmin)
}

// RequireKYC lets through verified users and admins.
func RequireKYC() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetUser(c)
		if !ok {
			response.Abort(c, domainerrors.Unauthorized(domainerrors.CodeUnauthorized, "Authentication required"))
			return
		}
		if user.KYCStatus != entities.KYCVerified && !user.IsAdmin() {
			response.Abort(c, domainerrors.Forbidden(domainerrors.CodeKYCRequired, "KYC verification required"))
			return
		}
		c.Next()
	}
}
