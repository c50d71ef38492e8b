package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"newsrag/internal/app"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler runs a chat conversation over a websocket: each text frame from
// the client is one question, each reply frame carries the full answer
// payload. The session id is fixed per connection.
type WSHandler struct {
	chatService *app.ChatService
	logger      *zap.Logger
}

type wsError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewWSHandler(chatService *app.ChatService, logger *zap.Logger) *WSHandler {
	return &WSHandler{chatService: chatService, logger: logger}
}

func (h *WSHandler) Chat(c *gin.Context) {
	sessionID := c.Param("session_id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("websocket read failed",
					zap.String("session_id", sessionID),
					zap.Error(err),
				)
			}
			return
		}

		result, err := h.chatService.HandleMessage(c.Request.Context(), sessionID, string(payload))
		if err != nil {
			if writeErr := conn.WriteJSON(wsError{Type: "error", Message: err.Error()}); writeErr != nil {
				return
			}
			continue
		}

		if err := conn.WriteJSON(result); err != nil {
			h.logger.Warn("websocket write failed",
				zap.String("session_id", sessionID),
				zap.Error(err),
			)
			return
		}
	}
}
