package handlers

import (
	"net/http"

	"github.com/elzaeemwork/autoreply-backend/internal/models"
	"github.com/elzaeemwork/autoreply-backend/internal/services"
	"github.com/elzaeemwork/autoreply-backend/internal/utils"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	svc services.AdminService
}

func NewAdminHandler(svc services.AdminService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

func (h *AdminHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "AdminHandler.Login", "invalid request body", err))
		return
	}

	token, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.svc.ListUsers(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *AdminHandler) ListCodes(c *gin.Context) {
	codes, err := h.svc.ListCodes(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"codes": codes})
}

type CreateCodeRequest struct {
	Type        string `json:"type" binding:"required"` // temp|full
	Duration    int    `json:"duration"`                // days
	Description string `json:"description"`
}

func (h *AdminHandler) CreateCode(c *gin.Context) {
	var req CreateCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "AdminHandler.CreateCode", "invalid request body", err))
		return
	}

	code, err := h.svc.CreateCode(c.Request.Context(), services.CreateCodeInput{
		Type:        models.ActivationType(req.Type),
		Duration:    req.Duration,
		Description: req.Description,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, code)
}

func (h *AdminHandler) DeleteCode(c *gin.Context) {
	if err := h.svc.DeleteCode(c.Request.Context(), c.Param("code")); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
