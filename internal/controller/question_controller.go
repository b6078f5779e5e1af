package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"maturity-assessment-backend/internal/service"
	"maturity-assessment-backend/utilities"
)

type QuestionController struct {
	QuestionService service.QuestionService
	AuthService     service.AuthService
}

func NewQuestionController(questionService service.QuestionService, authService service.AuthService) *QuestionController {
	return &QuestionController{QuestionService: questionService, AuthService: authService}
}

// GetQuestions lists the questions of a program visible to the caller's
// organization type.
func (qc *QuestionController) GetQuestions(c *gin.Context) {
	orgID, _ := utilities.OrganizationID(c)
	org, err := qc.AuthService.CurrentOrganization(c.Request.Context(), orgID)
	if err != nil {
		respondError(c, err)
		return
	}
	questions, err := qc.QuestionService.ListQuestions(c.Request.Context(), c.Query("program"), org.Type)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, questions)
}

func (qc *QuestionController) GetCategories(c *gin.Context) {
	categories, err := qc.QuestionService.Categories(c.Query("program"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (qc *QuestionController) GetPrograms(c *gin.Context) {
	programs, err := qc.QuestionService.Programs()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"programs": programs})
}
