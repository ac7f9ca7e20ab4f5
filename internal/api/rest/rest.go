package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/feral-file/asset-registry/internal/api/middleware"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, authCfg middleware.AuthConfig) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Asset reads (public: the registry and its logs are auditable)
		v1.GET("/assets", handler.ListOwnerAssets)
		v1.GET("/assets/:id", handler.GetAsset)
		v1.GET("/assets/:id/exists", handler.AssetExists)
		v1.GET("/assets/:id/transfers", handler.ListTransfers)
		v1.GET("/assets/:id/transfers/:index", handler.GetTransfer)
		v1.GET("/assets/:id/verifications", handler.ListVerifications)
		v1.GET("/assets/:id/verifications/:index", handler.GetVerification)

		// Asset mutations (require a JWT whose subject is the caller)
		v1.POST("/assets", middleware.Auth(authCfg), handler.RegisterAsset)
		v1.PUT("/assets/:id", middleware.Auth(authCfg), handler.UpdateAsset)
		v1.POST("/assets/:id/transfer", middleware.Auth(authCfg), handler.TransferAsset)
		v1.POST("/assets/:id/deactivate", middleware.Auth(authCfg), handler.DeactivateAsset)
		v1.POST("/assets/:id/reactivate", middleware.Auth(authCfg), handler.ReactivateAsset)
		v1.POST("/assets/:id/verifications", middleware.Auth(authCfg), handler.AddVerification)

		// Webhook endpoints (requires API key authentication only)
		v1.POST("/webhooks/clients", middleware.APIKeyAuth(authCfg), handler.CreateWebhookClient)
	}
}
