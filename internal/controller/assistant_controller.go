package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"maturity-assessment-backend/internal/service"
)

type AssistantController struct {
	AssistantService service.AssistantService
}

func NewAssistantController(assistantService service.AssistantService) *AssistantController {
	return &AssistantController{AssistantService: assistantService}
}

func (ac *AssistantController) Chat(c *gin.Context) {
	var req service.AssistantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "question_text and user_message are required")
		return
	}
	c.JSON(http.StatusOK, gin.H{"response": ac.AssistantService.Chat(c.Request.Context(), req)})
}
