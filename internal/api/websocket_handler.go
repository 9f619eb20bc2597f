package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/mightystreet/pixel-painter/internal/middleware"
	ws "github.com/mightystreet/pixel-painter/internal/websocket"
	"go.uber.org/zap"
)

// WebSocketHandler WebSocket处理器
type WebSocketHandler struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewWebSocketHandler 创建WebSocket处理器
func NewWebSocketHandler(hub *ws.Hub, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// 画布对任意来源开放
				return true
			},
		},
		logger: logger,
	}
}

// CanvasWebSocket 画布WebSocket连接
// 无需预先认证即可连接并收到快照，身份通过authenticate消息绑定。
// 携带有效令牌握手时直接绑定令牌中的身份。
func (h *WebSocketHandler) CanvasWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("WebSocket升级失败",
			zap.String("ip", c.ClientIP()),
			zap.Error(err))
		return
	}

	client := ws.NewClient(h.hub, conn)

	if username, ok := middleware.GetUsername(c); ok {
		client.BindIdentity(username)
	}

	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	h.logger.Info("WebSocket连接建立",
		zap.String("client_id", client.ID),
		zap.String("ip", c.ClientIP()))
}

// OnlineCount 在线人数
func (h *WebSocketHandler) OnlineCount(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"connections":  h.hub.ClientCount(),
		"online_users": h.hub.OnlineCount(),
	})
}
