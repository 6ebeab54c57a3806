package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/polkiloo/earnbot/internal/server/http/handlers"
	"github.com/polkiloo/earnbot/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.ServiceFacade, verifier middleware.KeyVerifier, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.LimitBody(middleware.MaxBodyBytes))
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	healthHandler := handlers.NewHealthHandler(facade)
	withdrawalHandler := handlers.NewWithdrawalHandler(facade)
	adminHandler := handlers.NewAdminHandler(facade)

	engine.GET("/healthz", healthHandler.Check)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	admin := engine.Group("/api/admin")
	admin.Use(middleware.AdminRequired(verifier, facade))
	admin.GET("/withdrawals/pending", withdrawalHandler.Pending)
	admin.POST("/withdrawals/:id/approve", withdrawalHandler.Approve)
	admin.POST("/withdrawals/:id/reject", withdrawalHandler.Reject)
	admin.POST("/giftcodes", adminHandler.GenerateGiftCodes)
	admin.GET("/users/:id/balance", adminHandler.Balance)
	admin.POST("/users/:id/adjust", adminHandler.AdjustBalance)
	admin.PUT("/settings/:key", adminHandler.UpdateSetting)

	return engine
}
