package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/mightystreet/pixel-painter/internal/grid"
	"go.uber.org/zap"
)

// Placer 落子仲裁接口
type Placer interface {
	Place(ctx context.Context, req grid.PlacementRequest) bool
}

// PresenceTracker 在线状态接口
type PresenceTracker interface {
	Rebind(oldUsername, newUsername string)
	Offline(username string)
	OnlineCount() int
}

// Hub WebSocket连接管理中心
// 注册、注销、广播都由Run这一个goroutine串行处理：
// 新会话的快照和后续广播之间不会漏消息，
// 广播按接受顺序进入每个会话的发送队列。
type Hub struct {
	// 客户端连接池
	clients   map[string]*Client
	clientsMu sync.RWMutex

	// 广播通道
	broadcast chan []byte

	// 注册/注销通道
	register   chan *Client
	unregister chan *Client

	// 权威网格，注册时用于生成快照
	grid *grid.Grid

	// 落子仲裁
	placer Placer

	// 在线状态
	presence PresenceTracker

	// 发送缓冲区大小
	sendBufferSize int

	logger *zap.Logger
}

// HubOption Hub选项
type HubOption func(*Hub)

// WithSendBufferSize 设置每个会话的发送缓冲区大小
func WithSendBufferSize(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.sendBufferSize = n
		}
	}
}

// NewHub 创建Hub
// 落子仲裁与Hub互相引用，仲裁器通过SetPlacer在装配时挂载。
func NewHub(g *grid.Grid, presence PresenceTracker, logger *zap.Logger, opts ...HubOption) *Hub {
	h := &Hub{
		clients:        make(map[string]*Client),
		broadcast:      make(chan []byte, 256),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		grid:           g,
		presence:       presence,
		sendBufferSize: 256,
		logger:         logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// SetPlacer 挂载落子仲裁
func (h *Hub) SetPlacer(placer Placer) {
	h.placer = placer
}

// Run 运行Hub
// 在独立goroutine中调用，ctx取消后退出。
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case data := <-h.broadcast:
			h.broadcastFrame(data)

		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

// registerClient 注册客户端并下发全量快照
// 快照在广播串行点内生成：此前已排队的广播要么先于快照发出，
// 要么已体现在快照里，新会话不会漏掉任何落子。
func (h *Hub) registerClient(client *Client) {
	h.clientsMu.Lock()
	h.clients[client.ID] = client
	h.clientsMu.Unlock()

	h.logger.Info("WebSocket客户端连接",
		zap.String("client_id", client.ID))

	snapshot := h.grid.Snapshot()
	cells := make(map[string]CellValue, len(snapshot))
	for key, cell := range snapshot {
		cells[key.String()] = CellValue{Color: cell.Color, Username: cell.Owner}
	}

	data, err := json.Marshal(NewInitMessage(cells))
	if err != nil {
		h.logger.Error("序列化快照失败", zap.Error(err))
		return
	}

	select {
	case client.Send <- data:
	default:
		h.logger.Warn("客户端发送缓冲区满，丢弃快照",
			zap.String("client_id", client.ID))
	}
}

// unregisterClient 注销客户端
func (h *Hub) unregisterClient(client *Client) {
	h.clientsMu.Lock()
	_, ok := h.clients[client.ID]
	if ok {
		delete(h.clients, client.ID)
		close(client.Send)
	}
	h.clientsMu.Unlock()

	if !ok {
		return
	}

	if client.Username != "" {
		h.presence.Offline(client.Username)
	}

	h.logger.Info("WebSocket客户端断开",
		zap.String("client_id", client.ID),
		zap.String("username", client.Username))
}

// broadcastFrame 把一帧推给所有在线会话
func (h *Hub) broadcastFrame(data []byte) {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()

	for _, client := range h.clients {
		select {
		case client.Send <- data:
		default:
			// 消费过慢的会话丢帧，不阻塞其他会话
			h.logger.Warn("客户端发送缓冲区满，丢弃广播",
				zap.String("client_id", client.ID))
		}
	}
}

// closeAll 关闭所有会话
func (h *Hub) closeAll() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	for id, client := range h.clients {
		delete(h.clients, id)
		close(client.Send)
	}
}

// BroadcastPlacement 广播一次已接受的落子
// 由仲裁器在接受后同步调用，入队顺序即接受顺序。
func (h *Hub) BroadcastPlacement(key, color, username string) {
	data, err := json.Marshal(NewCellUpdateMessage(key, color, username))
	if err != nil {
		h.logger.Error("序列化落子广播失败", zap.Error(err))
		return
	}
	h.broadcast <- data
}

// Register 注册客户端
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister 注销客户端
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// ClientCount 当前连接数
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// OnlineCount 当前在线身份数
func (h *Hub) OnlineCount() int {
	return h.presence.OnlineCount()
}
