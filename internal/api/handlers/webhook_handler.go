package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/elzaeemwork/autoreply-backend/internal/workers"
)

// WebhookHandler receives Messenger platform callbacks. Events are acked
// immediately and processed asynchronously through a Redis stream so the
// platform never sees generation latency.
type WebhookHandler struct {
	redis       *redis.Client
	stream      string
	verifyToken string
	log         *logrus.Logger
}

func NewWebhookHandler(rdb *redis.Client, stream, verifyToken string, log *logrus.Logger) *WebhookHandler {
	if stream == "" {
		stream = workers.WebhookStream
	}
	return &WebhookHandler{redis: rdb, stream: stream, verifyToken: verifyToken, log: log}
}

// Verify answers the platform's subscription handshake.
func (h *WebhookHandler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && h.verifyToken != "" && token == h.verifyToken {
		c.String(http.StatusOK, challenge)
		return
	}
	c.String(http.StatusForbidden, "verification failed")
}

type webhookEvent struct {
	Object string `json:"object"`
	Entry  []struct {
		ID        string `json:"id"` // page id
		Messaging []struct {
			Sender struct {
				ID string `json:"id"`
			} `json:"sender"`
			Timestamp int64 `json:"timestamp"`
			Message   struct {
				MID  string `json:"mid"`
				Text string `json:"text"`
			} `json:"message"`
		} `json:"messaging"`
	} `json:"entry"`
}

// Receive acks the callback and enqueues every text message it carries.
func (h *WebhookHandler) Receive(c *gin.Context) {
	var ev webhookEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.String(http.StatusBadRequest, "invalid payload")
		return
	}
	if ev.Object != "page" {
		c.String(http.StatusNotFound, "unsupported object")
		return
	}

	// Ack first. Enqueue failures are logged, never surfaced to the
	// platform, which would retry the whole batch.
	c.String(http.StatusOK, "EVENT_RECEIVED")

	ctx := c.Request.Context()
	for _, entry := range ev.Entry {
		for _, m := range entry.Messaging {
			if m.Message.Text == "" || m.Sender.ID == "" {
				continue
			}
			err := h.redis.XAdd(ctx, &redis.XAddArgs{
				Stream: h.stream,
				Values: map[string]any{
					"page_id":   entry.ID,
					"sender_id": m.Sender.ID,
					"mid":       m.Message.MID,
					"text":      m.Message.Text,
					"timestamp": strconv.FormatInt(m.Timestamp, 10),
				},
			}).Err()
			if err != nil {
				h.log.WithError(err).WithFields(logrus.Fields{
					"page_id":   entry.ID,
					"sender_id": m.Sender.ID,
				}).Error("failed to enqueue webhook event")
			}
		}
	}
}
