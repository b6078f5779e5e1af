package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"maturity-assessment-backend/internal/service"
	"maturity-assessment-backend/utilities"
)

type AuthController struct {
	AuthService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

func (ac *AuthController) Register(c *gin.Context) {
	var req service.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	token, err := ac.AuthService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, token)
}

func (ac *AuthController) Login(c *gin.Context) {
	var req struct {
		AccessCode string `json:"access_code" binding:"required"`
		Password   string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "access_code and password are required")
		return
	}
	token, err := ac.AuthService.Login(c.Request.Context(), req.AccessCode, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, token)
}

func (ac *AuthController) Me(c *gin.Context) {
	orgID, _ := utilities.OrganizationID(c)
	org, err := ac.AuthService.CurrentOrganization(c.Request.Context(), orgID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, org)
}
