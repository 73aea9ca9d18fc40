package handlers

import (
	"net/http"
	"time"

	"github.com/elzaeemwork/autoreply-backend/internal/models"
	"github.com/elzaeemwork/autoreply-backend/internal/services"
	"github.com/elzaeemwork/autoreply-backend/internal/utils"
	"github.com/gin-gonic/gin"
)

type FacebookHandler struct {
	svc services.FacebookService
}

func NewFacebookHandler(svc services.FacebookService) *FacebookHandler {
	return &FacebookHandler{svc: svc}
}

type SaveConnectionRequest struct {
	FacebookID  string `json:"facebook_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	AccessToken string `json:"access_token" binding:"required"`
	ExpiresAt   int64  `json:"expires_at"` // unix seconds
	Accounts    []struct {
		ID               string         `json:"id" binding:"required"`
		Name             string         `json:"name"`
		AccessToken      string         `json:"access_token" binding:"required"`
		InstagramAccount map[string]any `json:"instagram_account"`
	} `json:"accounts" binding:"required"`
}

func (h *FacebookHandler) SaveConnection(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req SaveConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "FacebookHandler.SaveConnection", "invalid request body", err))
		return
	}

	accounts := make([]models.PageAccount, 0, len(req.Accounts))
	for _, a := range req.Accounts {
		accounts = append(accounts, models.PageAccount{
			ID:               a.ID,
			Name:             a.Name,
			AccessToken:      a.AccessToken,
			InstagramAccount: a.InstagramAccount,
		})
	}

	cred := &models.PageCredential{
		UserID:      userID,
		FacebookID:  req.FacebookID,
		Name:        req.Name,
		Email:       req.Email,
		AccessToken: req.AccessToken,
		Accounts:    accounts,
	}
	if req.ExpiresAt > 0 {
		cred.ExpiresAt = time.Unix(req.ExpiresAt, 0).UTC()
	}

	err := h.svc.SaveConnection(c.Request.Context(), cred)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"connected": true})
}

func (h *FacebookHandler) GetConnection(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	cred, err := h.svc.GetConnection(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, cred)
}

func (h *FacebookHandler) Disconnect(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.svc.Disconnect(c.Request.Context(), userID); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
