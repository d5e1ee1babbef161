package routes

import (
	"job-board-api/internal/api/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterApplicationRoutes registers the application workflow routes.
func RegisterApplicationRoutes(
	rg *gin.RouterGroup,
	appHandler handlers.ApplicationHandlerInterface,
	authMiddleware gin.HandlerFunc,
) {
	rg.POST("/jobs/apply", authMiddleware, appHandler.ApplyToJob)
	rg.PATCH("/employer/applications/:id", authMiddleware, appHandler.UpdateApplicationStatus)

	apps := rg.Group("/applications")
	apps.Use(authMiddleware)
	{
		apps.GET("/my", appHandler.ListMyApplications)
		apps.GET("/:id", appHandler.GetApplicationByID)
	}
}
