package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/elzaeemwork/autoreply-backend/internal/models"
	"github.com/elzaeemwork/autoreply-backend/internal/services"
	"github.com/elzaeemwork/autoreply-backend/internal/utils"
)

// WSHandler is the dashboard chat tester: one frame in, one generated
// reply out, over a single authenticated socket.
type WSHandler struct {
	chat     services.ChatService
	users    services.UserService
	upgrader websocket.Upgrader
}

func NewWSHandler(chat services.ChatService, users services.UserService) *WSHandler {
	return &WSHandler{
		chat:  chat,
		users: users,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origin in prod
		},
	}
}

type wsChatRequest struct {
	Message string `json:"message"`
}

type wsChatResponse struct {
	Type         string `json:"type"`
	Reply        string `json:"reply,omitempty"`
	OrderStatus  string `json:"order_status,omitempty"`
	OrderCreated bool   `json:"order_created"`
	Timestamp    string `json:"timestamp,omitempty"`
}

type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) writeJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.c.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.c.WriteMessage(websocket.TextMessage, b)
}

func (w *wsConn) writeError(code utils.Code, msg string) {
	_ = w.writeJSON(gin.H{"type": "error", "code": code, "message": msg})
}

func (h *WSHandler) ChatWS(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrade already wrote response in most cases
		return
	}
	defer conn.Close()

	wc := &wsConn{c: conn}
	ctx := c.Request.Context()

	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, data, rerr := conn.ReadMessage()
		if rerr != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		var req wsChatRequest
		if err := json.Unmarshal(data, &req); err != nil {
			wc.writeError(utils.CodeInvalidArgument, "invalid json")
			continue
		}
		if req.Message == "" {
			wc.writeError(utils.CodeInvalidArgument, "message is required")
			continue
		}

		if err := h.users.ConsumeQuota(ctx, userID); err != nil {
			if utils.IsCode(err, utils.CodeForbidden) {
				wc.writeError(utils.CodeForbidden, "message quota exhausted, activation required")
				continue
			}
			wc.writeError(utils.CodeInternal, "quota check failed")
			continue
		}

		res, err := h.chat.HandleInboundMessage(ctx, userID, models.ChannelTest, req.Message, map[string]any{"via": "ws"})
		if err != nil {
			wc.writeError(utils.CodeUnavailable, "generation failed")
			continue
		}

		_ = wc.writeJSON(wsChatResponse{
			Type:         "reply",
			Reply:        res.Reply,
			OrderStatus:  string(res.OrderSignal),
			OrderCreated: res.OrderCreated,
			Timestamp:    res.Timestamp.Format(time.RFC3339),
		})
	}
}
