package websocket

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mightystreet/pixel-painter/internal/grid"
	"go.uber.org/zap"
)

// WebSocket配置
const (
	// 写超时
	writeWait = 10 * time.Second

	// 读取pong超时
	pongWait = 60 * time.Second

	// ping发送周期（必须小于pongWait）
	pingPeriod = (pongWait * 9) / 10

	// 最大消息大小
	maxMessageSize = 64 * 1024 // 64KB
)

// Client WebSocket客户端会话
type Client struct {
	ID       string          // 会话ID
	Username string          // 绑定的身份，未认证时为空
	Hub      *Hub            // Hub引用
	Conn     *websocket.Conn // WebSocket连接
	Send     chan []byte     // 发送队列，按入队顺序发出
}

// NewClient 创建新客户端会话
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		ID:   uuid.New().String(),
		Hub:  hub,
		Conn: conn,
		Send: make(chan []byte, hub.sendBufferSize),
	}
}

// ReadPump 读取并分发上行消息
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Error("WebSocket读取错误",
					zap.String("client_id", c.ID),
					zap.Error(err))
			}
			break
		}

		c.handleMessage(message)
	}
}

// WritePump 发送下行消息
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub关闭了通道
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage 处理上行消息
// 畸形消息丢弃但不断开连接，后续合法消息照常处理。
func (c *Client) handleMessage(data []byte) {
	env, err := ParseEnvelope(data)
	if err != nil {
		c.Hub.logger.Debug("丢弃畸形消息",
			zap.String("client_id", c.ID),
			zap.Error(err))
		return
	}

	switch env.Type {
	case MessageTypeAuthenticate:
		c.handleAuthenticate(env)

	case MessageTypeColorCell:
		c.handleColorCell(env)

	default:
		c.Hub.logger.Debug("丢弃未知类型消息",
			zap.String("client_id", c.ID),
			zap.String("type", env.Type))
	}
}

// handleAuthenticate 处理身份绑定
// 不发送确认；重复绑定会替换当前身份。
func (c *Client) handleAuthenticate(env *Envelope) {
	if env.Username == "" {
		c.Hub.logger.Debug("丢弃缺少用户名的认证消息",
			zap.String("client_id", c.ID))
		return
	}

	c.BindIdentity(env.Username)
}

// BindIdentity 绑定会话身份
// 已绑定时视为换绑：旧身份下线、新身份上线。
func (c *Client) BindIdentity(username string) {
	if username == "" {
		return
	}

	old := c.Username
	c.Username = username
	c.Hub.presence.Rebind(old, username)

	c.Hub.logger.Info("会话绑定身份",
		zap.String("client_id", c.ID),
		zap.String("username", username))
}

// handleColorCell 处理落子请求
// 消息层携带的用户名被直接信任；缺字段或坐标非法时静默丢弃。
func (c *Client) handleColorCell(env *Envelope) {
	key, err := grid.ParseKey(env.Key)
	if err != nil {
		c.Hub.logger.Debug("丢弃坐标非法的落子请求",
			zap.String("client_id", c.ID),
			zap.String("key", env.Key))
		return
	}

	if c.Hub.placer == nil {
		return
	}

	username := env.Username
	if username == "" {
		username = c.Username
	}

	c.Hub.placer.Place(context.Background(), grid.PlacementRequest{
		Key:      key,
		Color:    env.Color,
		Username: username,
	})
}
