package controller

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"maturity-assessment-backend/internal/scoring"
	"maturity-assessment-backend/internal/service"
	"maturity-assessment-backend/utilities"
)

type AssessmentController struct {
	AssessmentService service.AssessmentService
}

func NewAssessmentController(assessmentService service.AssessmentService) *AssessmentController {
	return &AssessmentController{AssessmentService: assessmentService}
}

// CreateAssessment starts an assessment. The body is optional and defaults
// to the digital maturity program.
func (ac *AssessmentController) CreateAssessment(c *gin.Context) {
	var req struct {
		Program string `json:"program"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "invalid request body")
		return
	}
	orgID, _ := utilities.OrganizationID(c)
	assessment, err := ac.AssessmentService.CreateAssessment(c.Request.Context(), orgID, req.Program)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, assessment)
}

func (ac *AssessmentController) ListAssessments(c *gin.Context) {
	orgID, _ := utilities.OrganizationID(c)
	assessments, err := ac.AssessmentService.ListAssessments(c.Request.Context(), orgID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, assessments)
}

func (ac *AssessmentController) GetAssessment(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	orgID, _ := utilities.OrganizationID(c)
	assessment, err := ac.AssessmentService.GetAssessment(c.Request.Context(), orgID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, assessment)
}

func (ac *AssessmentController) SubmitAssessment(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var answers scoring.AnswerSet
	if err := c.ShouldBindJSON(&answers); err != nil {
		badRequest(c, "invalid answers payload")
		return
	}
	orgID, _ := utilities.OrganizationID(c)
	assessment, err := ac.AssessmentService.SubmitAssessment(c.Request.Context(), orgID, id, answers)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, assessment)
}

func (ac *AssessmentController) GetReport(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	orgID, _ := utilities.OrganizationID(c)
	view, err := ac.AssessmentService.GetReport(c.Request.Context(), orgID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// DownloadReport renders the PDF in memory so errors still produce a JSON
// response.
func (ac *AssessmentController) DownloadReport(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	orgID, _ := utilities.OrganizationID(c)
	var buf bytes.Buffer
	if err := ac.AssessmentService.WriteReportPDF(c.Request.Context(), orgID, id, &buf); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=assessment_%d.pdf", id))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

func (ac *AssessmentController) GetProgress(c *gin.Context) {
	orgID, _ := utilities.OrganizationID(c)
	progress, err := ac.AssessmentService.GetProgress(c.Request.Context(), orgID, c.Query("program"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}
