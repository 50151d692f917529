package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "admissions_backend/docs"
	"admissions_backend/internal/handlers"
	"admissions_backend/internal/logger"
)

// RegisterRoutes mounts every HTTP route. uploadsDir, when set, is served at /uploads.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	guards *handlers.Guards,
	uploadsDir string,
) {
	appHandlers.HealthHandler.RegisterRoutes(ginRouter)
	ginRouter.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if uploadsDir != "" {
		ginRouter.Static("/uploads", uploadsDir)
		logger.Info("Serving local uploads", "dir", uploadsDir)
	}

	api := ginRouter.Group("/api")
	{
		appHandlers.AuthHandler.RegisterRoutes(api, guards)
		appHandlers.StudentHandler.RegisterRoutes(api, guards)
		appHandlers.ApplicationHandler.RegisterRoutes(api, guards)
		appHandlers.DocumentHandler.RegisterRoutes(api, guards)
		appHandlers.PaymentHandler.RegisterRoutes(api, guards)
		appHandlers.MessageHandler.RegisterRoutes(api, guards)
		appHandlers.CatalogHandler.RegisterRoutes(api)
		appHandlers.AdminHandler.RegisterRoutes(api, guards)
	}
}
