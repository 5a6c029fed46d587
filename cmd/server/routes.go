package main

import (
	"github.com/gin-gonic/gin"
	"hmr-builders.backend/internal/interfaces/http/handlers"
	"hmr-builders.backend/internal/interfaces/http/middleware"
)

type routeDeps struct {
	authHandler              *handlers.AuthHandler
	propertyHandler          *handlers.PropertyHandler
	investmentHandler        *handlers.InvestmentHandler
	userHandler              *handlers.UserHandler
	paymentMethodHandler     *handlers.PaymentMethodHandler
	walletTransactionHandler *handlers.WalletTransactionHandler
	adminHandler             *handlers.AdminHandler
	docsHandler              *handlers.DocsHandler
	authMiddleware           gin.HandlerFunc
	optionalAuthMiddleware   gin.HandlerFunc
	authRateLimit            gin.HandlerFunc
	requireKYC               bool
}

func registerAPIRoutes(r *gin.Engine, d routeDeps) {
	api := r.Group("/api")
	{
		api.GET("/docs", d.docsHandler.GetDocs)

		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", d.authRateLimit, d.authHandler.Register)
			auth.POST("/login", d.authRateLimit, d.authHandler.Login)
			auth.POST("/refresh", d.authHandler.Refresh)
			auth.POST("/logout", d.authMiddleware, d.authHandler.Logout)
			auth.GET("/me", d.authMiddleware, d.authHandler.Me)
		}

		// Property catalogue (public, admins also see inactive)
		properties := api.Group("/properties")
		properties.Use(d.optionalAuthMiddleware)
		{
			properties.GET("", d.propertyHandler.ListProperties)
			properties.GET("/featured", d.propertyHandler.ListFeatured)
			properties.GET("/:slug", d.propertyHandler.GetProperty)
			properties.GET("/:slug/stats", d.propertyHandler.GetPropertyStats)
		}

		// Investment routes (protected)
		investments := api.Group("/investments")
		investments.Use(d.authMiddleware)
		{
			purchase := []gin.HandlerFunc{middleware.IdempotencyMiddleware()}
			if d.requireKYC {
				purchase = append([]gin.HandlerFunc{middleware.RequireKYC()}, purchase...)
			}
			investments.POST("", append(purchase, d.investmentHandler.CreateInvestment)...)
			investments.GET("/my-investments", d.investmentHandler.ListMyInvestments)
			investments.GET("/portfolio/summary", d.investmentHandler.GetPortfolioSummary)
			investments.GET("/:id", d.investmentHandler.GetInvestment)
			investments.PATCH("/:id/cancel", d.investmentHandler.CancelInvestment)
		}

		// User routes (protected)
		users := api.Group("/users")
		users.Use(d.authMiddleware)
		{
			users.GET("/profile", d.userHandler.GetProfile)
			users.PUT("/profile", d.userHandler.UpdateProfile)
			users.PUT("/change-password", d.userHandler.ChangePassword)
			users.GET("/wallet", d.userHandler.GetWallet)
			users.GET("/holdings", d.userHandler.GetHoldings)
			users.POST("/kyc", d.userHandler.SubmitKYC)
		}

		// Payment method routes (protected)
		paymentMethods := api.Group("/payment-methods")
		paymentMethods.Use(d.authMiddleware)
		{
			paymentMethods.GET("", d.paymentMethodHandler.ListPaymentMethods)
			paymentMethods.POST("", d.paymentMethodHandler.AddPaymentMethod)
			paymentMethods.PUT("/:id/default", d.paymentMethodHandler.SetDefaultPaymentMethod)
			paymentMethods.DELETE("/:id", d.paymentMethodHandler.DeletePaymentMethod)
			paymentMethods.POST("/:id/otp", d.paymentMethodHandler.RequestVerificationOTP)
			paymentMethods.POST("/:id/verify", d.paymentMethodHandler.VerifyPaymentMethod)
		}

		// Wallet transaction routes (protected)
		walletTx := api.Group("/wallet-transactions")
		walletTx.Use(d.authMiddleware)
		{
			walletTx.POST("/deposit", middleware.IdempotencyMiddleware(), d.walletTransactionHandler.Deposit)
			walletTx.GET("", d.walletTransactionHandler.ListTransactions)
			walletTx.GET("/balance/current", d.walletTransactionHandler.GetBalance)
			walletTx.GET("/:id", d.walletTransactionHandler.GetTransaction)
			walletTx.POST("/:id/otp", d.walletTransactionHandler.RequestDepositOTP)
			walletTx.POST("/:id/verify-otp", d.walletTransactionHandler.VerifyDepositOTP)
		}

		// Admin routes
		admin := api.Group("/admin")
		admin.Use(d.authMiddleware, middleware.RequireAdmin())
		{
			admin.GET("/dashboard", d.adminHandler.GetDashboard)
			admin.GET("/users", d.adminHandler.ListUsers)
			admin.PATCH("/users/:id/status", d.adminHandler.UpdateUserStatus)
			admin.PATCH("/users/:id/kyc", d.adminHandler.UpdateUserKYC)
			admin.GET("/investments", d.adminHandler.ListInvestments)
			admin.GET("/properties", d.adminHandler.ListProperties)
			admin.POST("/properties", d.propertyHandler.CreateProperty)
			admin.PUT("/properties/:id", d.propertyHandler.UpdateProperty)
			admin.DELETE("/properties/:id", d.propertyHandler.DeleteProperty)
		}
	}
}
