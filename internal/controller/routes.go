package controller

import (
	"github.com/gin-gonic/gin"

	"maturity-assessment-backend/internal/service"
	"maturity-assessment-backend/utilities"
)

// Services bundles everything the routes depend on.
type Services struct {
	Auth         service.AuthService
	Questions    service.QuestionService
	Assessments  service.AssessmentService
	Admin        service.AdminService
	Assistant    service.AssistantService
	ReportFiles  service.ReportFileService
	JWT          *utilities.JWTManager
	LoginLimiter *utilities.IPRateLimiter
	AdminSecret  string
}

// RegisterRoutes registers all route groups under r.
func RegisterRoutes(r gin.IRouter, s Services) {
	requireAuth := utilities.AuthMiddleware(s.JWT)

	// Auth routes.
	authCtrl := NewAuthController(s.Auth)
	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register", authCtrl.Register)
		if s.LoginLimiter != nil {
			authRoutes.POST("/login", s.LoginLimiter.Middleware(), authCtrl.Login)
		} else {
			authRoutes.POST("/login", authCtrl.Login)
		}
		authRoutes.GET("/me", requireAuth, authCtrl.Me)
	}

	// Question routes.
	questionCtrl := NewQuestionController(s.Questions, s.Auth)
	questionRoutes := r.Group("/questions")
	{
		questionRoutes.GET("", requireAuth, questionCtrl.GetQuestions)
		questionRoutes.GET("/categories", questionCtrl.GetCategories)
		questionRoutes.GET("/programs", questionCtrl.GetPrograms)
	}

	// Assessment routes.
	assessmentCtrl := NewAssessmentController(s.Assessments)
	assessRoutes := r.Group("/assessments", requireAuth)
	{
		assessRoutes.POST("", assessmentCtrl.CreateAssessment)
		assessRoutes.GET("", assessmentCtrl.ListAssessments)
		assessRoutes.GET("/progress", assessmentCtrl.GetProgress)
		assessRoutes.GET("/:id", assessmentCtrl.GetAssessment)
		assessRoutes.POST("/:id/submit", assessmentCtrl.SubmitAssessment)
		assessRoutes.GET("/:id/report", assessmentCtrl.GetReport)
		assessRoutes.GET("/:id/report.pdf", assessmentCtrl.DownloadReport)
	}

	// Assistant routes.
	assistantCtrl := NewAssistantController(s.Assistant)
	r.POST("/assistant/chat", assistantCtrl.Chat)

	// Admin routes.
	adminCtrl := NewAdminController(s.Admin, s.Auth, s.Assessments, s.ReportFiles)
	adminRoutes := r.Group("/admin", utilities.AdminKeyMiddleware(s.AdminSecret))
	{
		adminRoutes.GET("/organizations", adminCtrl.GetOrganizations)
		adminRoutes.DELETE("/organizations/:id", adminCtrl.DeleteOrganization)
		adminRoutes.GET("/stats", adminCtrl.GetStats)
		adminRoutes.POST("/reset-password", adminCtrl.ResetPassword)
		adminRoutes.GET("/assessments/:id", adminCtrl.GetAssessment)
		adminRoutes.DELETE("/assessments/:id", adminCtrl.DeleteAssessment)
		adminRoutes.GET("/assessments/:id/responses", adminCtrl.GetResponses)
		adminRoutes.POST("/assessments/:id/regenerate", adminCtrl.RegenerateReport)
		adminRoutes.GET("/assessments/:id/report.pdf", adminCtrl.DownloadReport)
	}
}
