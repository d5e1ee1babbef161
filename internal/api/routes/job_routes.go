package routes

import (
	"job-board-api/internal/api/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterJobRoutes registers the employer job management routes and the public job board.
// Employer routes require authentication; browsing does not.
func RegisterJobRoutes(
	rg *gin.RouterGroup, // Base group (e.g., /api/v1)
	jobHandler handlers.JobHandlerInterface,
	authMiddleware gin.HandlerFunc,
) {
	employer := rg.Group("/employer")
	employer.Use(authMiddleware)
	{
		employer.GET("/company", jobHandler.GetMyCompany)
		employer.GET("/jobs", jobHandler.ListCompanyJobs)
		employer.POST("/jobs", jobHandler.CreateJob)
		employer.PATCH("/jobs/:id/status", jobHandler.UpdateJobStatus)
		employer.DELETE("/jobs/:id", jobHandler.DeleteJob)
	}

	jobs := rg.Group("/jobs")
	{
		jobs.GET("", jobHandler.ListOpenJobs)
		jobs.GET("/:id", jobHandler.GetJobByID)
	}
}
