package entities

import "github.com/shopspring/decimal"

// DashboardStats is the admin overview.
type DashboardStats struct {
	TotalUsers          int64           `json:"totalUsers"`
	ActiveUsers         int64           `json:"activeUsers"`
	PendingKYC          int64           `json:"pendingKyc"`
	TotalProperties     int64           `json:"totalProperties"`
	ActiveProperties    int64           `json:"activeProperties"`
	TotalInvestments    int64           `json:"totalInvestments"`
	ActiveInvestments   int64           `json:"activeInvestments"`
	TotalInvested       decimal.Decimal `json:"totalInvested"`
	TotalTokensSold     int64           `json:"totalTokensSold"`
	RecentUsers         []*User         `json:"recentUsers"`
	RecentInvestments   []*Investment   `json:"recentInvestments"`
	TotalWalletBalances decimal.Decimal `json:"totalWalletBalances"`
}

// UpdateUserStatusInput toggles a user's active flag.
type UpdateUserStatusInput struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

// UpdateKYCInput sets a user's KYC status.
type UpdateKYCInput struct {
	KYCStatus KYCStatus `json:"kycStatus" binding:"required"`
}
