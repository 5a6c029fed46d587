package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type endpointDoc struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
	Auth        string `json:"auth"`
}

// DocsHandler serves a static endpoint catalogue
type DocsHandler struct {
	version string
}

// NewDocsHandler creates a new docs handler
func NewDocsHandler(version string) *DocsHandler {
	return &DocsHandler{version: version}
}

var endpointCatalogue = map[string][]endpointDoc{
	"auth": {
		{http.MethodPost, "/api/auth/register", "Register a user with an initial wallet", "public"},
		{http.MethodPost, "/api/auth/login", "Exchange credentials for a token pair", "public"},
		{http.MethodPost, "/api/auth/refresh", "Rotate a refresh token", "public"},
		{http.MethodPost, "/api/auth/logout", "Revoke a refresh token", "bearer"},
		{http.MethodGet, "/api/auth/me", "Current user", "bearer"},
	},
	"properties": {
		{http.MethodGet, "/api/properties", "List active properties", "public"},
		{http.MethodGet, "/api/properties/featured", "Featured properties", "public"},
		{http.MethodGet, "/api/properties/:slug", "Property by slug or id", "optional"},
		{http.MethodGet, "/api/properties/:slug/stats", "Funding progress", "public"},
	},
	"investments": {
		{http.MethodPost, "/api/investments", "Purchase tokens (Idempotency-Key supported)", "bearer"},
		{http.MethodGet, "/api/investments/my-investments", "List own investments", "bearer"},
		{http.MethodGet, "/api/investments/portfolio/summary", "Portfolio summary", "bearer"},
		{http.MethodGet, "/api/investments/:id", "Investment detail", "bearer"},
		{http.MethodPatch, "/api/investments/:id/cancel", "Cancel and refund", "bearer"},
	},
	"users": {
		{http.MethodGet, "/api/users/profile", "Profile", "bearer"},
		{http.MethodPut, "/api/users/profile", "Update profile", "bearer"},
		{http.MethodPut, "/api/users/change-password", "Change password", "bearer"},
		{http.MethodGet, "/api/users/wallet", "Wallet summary", "bearer"},
		{http.MethodGet, "/api/users/holdings", "Token holdings", "bearer"},
		{http.MethodPost, "/api/users/kyc", "Submit KYC for review", "bearer"},
	},
	"paymentMethods": {
		{http.MethodGet, "/api/payment-methods", "List cards", "bearer"},
		{http.MethodPost, "/api/payment-methods", "Add a card", "bearer"},
		{http.MethodPut, "/api/payment-methods/:id/default", "Make default", "bearer"},
		{http.MethodDelete, "/api/payment-methods/:id", "Remove a card", "bearer"},
		{http.MethodPost, "/api/payment-methods/:id/otp", "Send verification code", "bearer"},
		{http.MethodPost, "/api/payment-methods/:id/verify", "Verify a card", "bearer"},
	},
	"walletTransactions": {
		{http.MethodPost, "/api/wallet-transactions/deposit", "Deposit funds (Idempotency-Key supported)", "bearer"},
		{http.MethodGet, "/api/wallet-transactions", "Transaction history", "bearer"},
		{http.MethodGet, "/api/wallet-transactions/balance/current", "Current balance", "bearer"},
		{http.MethodGet, "/api/wallet-transactions/:id", "Transaction detail", "bearer"},
		{http.MethodPost, "/api/wallet-transactions/:id/otp", "Re-send the deposit code", "bearer"},
		{http.MethodPost, "/api/wallet-transactions/:id/verify-otp", "Settle a pending deposit", "bearer"},
	},
	"admin": {
		{http.MethodGet, "/api/admin/dashboard", "Platform statistics", "admin"},
		{http.MethodGet, "/api/admin/users", "List users", "admin"},
		{http.MethodPatch, "/api/admin/users/:id/status", "Activate or deactivate a user", "admin"},
		{http.MethodPatch, "/api/admin/users/:id/kyc", "Set KYC status", "admin"},
		{http.MethodGet, "/api/admin/investments", "List investments", "admin"},
		{http.MethodGet, "/api/admin/properties", "List properties", "admin"},
		{http.MethodPost, "/api/admin/properties", "Create a property", "admin"},
		{http.MethodPut, "/api/admin/properties/:id", "Update a property", "admin"},
		{http.MethodDelete, "/api/admin/properties/:id", "Deactivate a property", "admin"},
	},
}

// GetDocs
// GET /api/docs
func (h *DocsHandler) GetDocs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"title":       "HMR Builders API",
		"version":     h.version,
		"description": "Fractional real-estate investment platform",
		"endpoints":   endpointCatalogue,
		"authentication": gin.H{
			"type":   "Bearer",
			"header": "Authorization: Bearer <token>",
		},
		"responseFormat": gin.H{
			"success": gin.H{"message": "string", "...": "payload keys"},
			"error":   gin.H{"error": "category", "code": "string", "message": "string", "details": "[{field, message}]"},
		},
		"statusCodes": gin.H{
			"200": "OK",
			"201": "Created",
			"400": "Validation error or business rule violation",
			"401": "Unauthorized",
			"403": "Forbidden",
			"404": "Not found",
			"409": "Conflict",
			"429": "Too many requests",
			"500": "Internal server error",
		},
	})
}
