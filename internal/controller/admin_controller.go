package controller

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"maturity-assessment-backend/internal/service"
)

type AdminController struct {
	AdminService      service.AdminService
	AuthService       service.AuthService
	AssessmentService service.AssessmentService
	ReportFiles       service.ReportFileService
}

func NewAdminController(
	adminService service.AdminService,
	authService service.AuthService,
	assessmentService service.AssessmentService,
	reportFiles service.ReportFileService,
) *AdminController {
	return &AdminController{
		AdminService:      adminService,
		AuthService:       authService,
		AssessmentService: assessmentService,
		ReportFiles:       reportFiles,
	}
}

func (ac *AdminController) GetOrganizations(c *gin.Context) {
	orgs, err := ac.AdminService.ListOrganizations(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"organizations": orgs, "total": len(orgs)})
}

func (ac *AdminController) GetStats(c *gin.Context) {
	stats, err := ac.AdminService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (ac *AdminController) GetAssessment(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	detail, err := ac.AdminService.AssessmentDetail(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (ac *AdminController) GetResponses(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	responses, err := ac.AdminService.DetailedResponses(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, responses)
}

func (ac *AdminController) ResetPassword(c *gin.Context) {
	var req struct {
		OrganizationID uint   `json:"organization_id" binding:"required"`
		NewPassword    string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "organization_id and new_password are required")
		return
	}
	org, err := ac.AuthService.ResetPassword(c.Request.Context(), req.OrganizationID, req.NewPassword)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"message":         "Password reset for " + org.Name,
		"organization_id": org.ID,
		"access_code":     org.AccessCode,
	})
}

func (ac *AdminController) DeleteAssessment(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := ac.AdminService.DeleteAssessment(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": fmt.Sprintf("Assessment %d deleted", id)})
}

func (ac *AdminController) DeleteOrganization(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := ac.AdminService.DeleteOrganization(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": fmt.Sprintf("Organization %d and its assessments deleted", id)})
}

func (ac *AdminController) RegenerateReport(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	assessment, err := ac.AssessmentService.RegenerateReport(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"message":        "Report regenerated",
		"maturity_level": assessment.MaturityLevel,
	})
}

// DownloadReport serves the archived PDF, writing it first when the
// listener has not produced it yet.
func (ac *AdminController) DownloadReport(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	path := ac.ReportFiles.ReportFilePath(id)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if path, err = ac.ReportFiles.GenerateReportFile(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
	}
	filename := fmt.Sprintf("assessment_%d.pdf", id)
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Header("Content-Type", "application/pdf")
	c.File(path)
}
