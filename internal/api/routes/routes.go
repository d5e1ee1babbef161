package routes

import (
	"log"

	"job-board-api/internal/api/handlers"
	"job-board-api/internal/api/middleware"
	"job-board-api/internal/app"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes sets up the API routes by calling resource-specific registration functions
func RegisterRoutes(router *gin.Engine, app *app.Application) {
	apiV1 := router.Group("/api/v1")

	cvHandler := handlers.NewCVHandler(app.CVService, app.Config.Storage.MaxUploadBytes)
	jobHandler := handlers.NewJobHandler(app.JobService, app.Validator)
	appHandler := handlers.NewApplicationHandler(app.ApplicationService, app.Validator)

	authMiddleware := middleware.JWTAuthMiddleware(app.Config.JWT.Secret)

	RegisterCVRoutes(apiV1, cvHandler, authMiddleware)
	RegisterJobRoutes(apiV1, jobHandler, authMiddleware)
	RegisterApplicationRoutes(apiV1, appHandler, authMiddleware)

	if app.DBPool != nil {
		router.GET("/health", handlers.HealthCheck(app.DBPool))
	} else {
		router.GET("/health", handlers.HealthCheck(nil))
	}

	if app.Uploads != nil {
		log.Printf("Serving uploaded files at %s", app.Uploads.Prefix)
		router.StaticFS(app.Uploads.Prefix, app.Uploads.FS)
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
