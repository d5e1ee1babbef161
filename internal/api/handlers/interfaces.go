package handlers

import "github.com/gin-gonic/gin"

// CVHandlerInterface defines the methods needed by the CV routes.
type CVHandlerInterface interface {
	UploadCV(c *gin.Context)
	ListMyCVs(c *gin.Context)
	DeactivateCV(c *gin.Context)
}

// JobHandlerInterface defines the methods needed by the employer and public job routes.
type JobHandlerInterface interface {
	GetMyCompany(c *gin.Context)
	CreateJob(c *gin.Context)
	ListCompanyJobs(c *gin.Context)
	UpdateJobStatus(c *gin.Context)
	DeleteJob(c *gin.Context)
	ListOpenJobs(c *gin.Context)
	GetJobByID(c *gin.Context)
}

// ApplicationHandlerInterface defines the methods needed by the application routes.
type ApplicationHandlerInterface interface {
	ApplyToJob(c *gin.Context)
	UpdateApplicationStatus(c *gin.Context)
	ListMyApplications(c *gin.Context)
	GetApplicationByID(c *gin.Context)
}

// Ensure handlers implement the interfaces (compile-time check)
var _ CVHandlerInterface = (*CVHandler)(nil)
var _ JobHandlerInterface = (*JobHandler)(nil)
var _ ApplicationHandlerInterface = (*ApplicationHandler)(nil)
