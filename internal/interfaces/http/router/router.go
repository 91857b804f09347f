package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/orderwatch/backend/internal/infrastructure/logger"
	"github.com/orderwatch/backend/internal/interfaces/http/handler"
)

// Setup registers middleware and all API routes on the engine
func Setup(engine *gin.Engine, syncHandler *handler.SyncHandler, log *zap.Logger) {
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	engine.GET("/healthz", syncHandler.Health)

	v1 := engine.Group("/api/v1")
	{
		sync := v1.Group("/sync")
		{
			sync.POST("/start", syncHandler.StartSync)
			sync.POST("/stop", syncHandler.StopSync)
			sync.POST("/check", syncHandler.ForceCheck)
			sync.GET("/status", syncHandler.SyncStatus)
		}

		v1.GET("/orders", syncHandler.ListOrders)
	}
}
