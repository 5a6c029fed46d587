package entities

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// UserRole represents user roles
type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// KYCStatus represents KYC verification status
type KYCStatus string

const (
	KYCUnverified KYCStatus = "unverified"
	KYCPending    KYCStatus = "pending"
	KYCVerified   KYCStatus = "verified"
)

// Valid reports whether s is a known status.
func (s KYCStatus) Valid() bool {
	switch s {
	case KYCUnverified, KYCPending, KYCVerified:
		return true
	}
	return false
}

// User represents a user entity
type User struct {
	ID              uuid.UUID   `json:"id"`
	Email           string      `json:"email"`
	Name            string      `json:"name"`
	FirstName       string      `json:"firstName"`
	LastName        string      `json:"lastName"`
	PasswordHash    string      `json:"-"`
	Phone           null.String `json:"phone"`
	ProfileImage    null.String `json:"profileImage"`
	Role            UserRole    `json:"role"`
	IsActive        bool        `json:"isActive"`
	KYCStatus       KYCStatus   `json:"kycStatus"`
	IsEmailVerified bool        `json:"isEmailVerified"`
	LastLoginAt     null.Time   `json:"lastLoginAt"`
	LastActivityAt  null.Time   `json:"lastActivityAt"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// SplitName splits a display name into first name and the remainder.
func SplitName(name string) (string, string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

// NormalizeEmail lower-cases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// PasswordIsStrong requires at least one upper-case letter, one lower-case letter and one digit.
func PasswordIsStrong(password string) bool {
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

// RegisterInput represents input for creating a user. A payment method may be
// attached in the same request.
type RegisterInput struct {
	Name          string                 `json:"name" binding:"required,min=2,max=50"`
	Email         string                 `json:"email" binding:"required,email"`
	Password      string                 `json:"password" binding:"required,min=6,max=128"`
	Phone         string                 `json:"phone" binding:"omitempty,max=20"`
	PaymentMethod *AddPaymentMethodInput `json:"paymentMethod"`
}

// LoginInput represents input for user login
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshInput carries a refresh token
type RefreshInput struct {
	RefreshToken string `json:"refreshToken"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	AccessToken   string         `json:"accessToken"`
	RefreshToken  string         `json:"refreshToken"`
	ExpiresIn     int64          `json:"expiresIn"`
	User          *User          `json:"user"`
	Wallet        *Wallet        `json:"wallet,omitempty"`
	PaymentMethod *PaymentMethod `json:"paymentMethod,omitempty"`
}

// UpdateProfileInput holds optional profile changes; nil fields are left as is.
type UpdateProfileInput struct {
	Name         *string `json:"name" binding:"omitempty,min=2,max=50"`
	FirstName    *string `json:"firstName" binding:"omitempty,max=50"`
	LastName     *string `json:"lastName" binding:"omitempty,max=50"`
	Phone        *string `json:"phone" binding:"omitempty,max=20"`
	ProfileImage *string `json:"profileImage" binding:"omitempty,url"`
}

// ChangePasswordInput represents input for changing user password.
type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6,max=128"`
}

// UserFilter narrows admin user listings.
type UserFilter struct {
	Search    string
	Role      UserRole
	KYCStatus KYCStatus
	IsActive  *bool
}
