package routes

import (
	"job-board-api/internal/api/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterCVRoutes registers CV upload and management routes.
func RegisterCVRoutes(
	rg *gin.RouterGroup,
	cvHandler handlers.CVHandlerInterface,
	authMiddleware gin.HandlerFunc,
) {
	cvs := rg.Group("/cvs")
	cvs.Use(authMiddleware)
	{
		cvs.POST("/upload", cvHandler.UploadCV)
		cvs.PATCH("/:id/deactivate", cvHandler.DeactivateCV)
	}
	rg.GET("/user/cvs", authMiddleware, cvHandler.ListMyCVs)
}
