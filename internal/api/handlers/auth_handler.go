package handlers

import (
	"net/http"

	"github.com/elzaeemwork/autoreply-backend/internal/models"
	"github.com/elzaeemwork/autoreply-backend/internal/services"
	"github.com/elzaeemwork/autoreply-backend/internal/utils"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	svc services.UserService
}

func NewAuthHandler(svc services.UserService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "AuthHandler.Register", "invalid request body", err))
		return
	}

	res, err := h.svc.Register(c.Request.Context(), services.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		Name:     req.Name,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{Token: res.Token, User: res.User})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "AuthHandler.Login", "invalid request body", err))
		return
	}

	res, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Token: res.Token, User: res.User})
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	u, err := h.svc.Get(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, u)
}

type ActivateRequest struct {
	Code string `json:"code" binding:"required"`
}

func (h *AuthHandler) Activate(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req ActivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "AuthHandler.Activate", "invalid request body", err))
		return
	}

	u, err := h.svc.Activate(c.Request.Context(), userID, req.Code)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, u)
}
