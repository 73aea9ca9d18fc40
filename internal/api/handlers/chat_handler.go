package handlers

import (
	"net/http"
	"time"

	"github.com/elzaeemwork/autoreply-backend/internal/models"
	"github.com/elzaeemwork/autoreply-backend/internal/services"
	"github.com/elzaeemwork/autoreply-backend/internal/utils"
	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	svc services.ChatService
}

func NewChatHandler(svc services.ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type ChatRequest struct {
	Message  string         `json:"message" binding:"required"`
	Channel  string         `json:"channel"`
	Metadata map[string]any `json:"metadata"`
}

type ChatResponse struct {
	Reply        string `json:"reply"`
	MessageID    string `json:"message_id"`
	Timestamp    string `json:"timestamp"`
	OrderSignal  string `json:"order_signal,omitempty"`
	OrderCreated bool   `json:"order_created"`
}

func (h *ChatHandler) Send(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ChatHandler.Send", "invalid request body", err))
		return
	}

	channel := models.Channel(req.Channel)
	switch channel {
	case models.ChannelFacebook, models.ChannelInstagram, models.ChannelTest:
	default:
		channel = models.ChannelTest
	}

	res, err := h.svc.HandleInboundMessage(c.Request.Context(), userID, channel, req.Message, req.Metadata)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, ChatResponse{
		Reply:        res.Reply,
		MessageID:    res.MessageID,
		Timestamp:    res.Timestamp.Format(time.RFC3339),
		OrderSignal:  string(res.OrderSignal),
		OrderCreated: res.OrderCreated,
	})
}

func (h *ChatHandler) History(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	msgs, err := h.svc.History(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

func (h *ChatHandler) Stats(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	stats, err := h.svc.Stats(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
