package presence

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// StatusWriter 在线状态落库接口
type StatusWriter interface {
	SetOnline(ctx context.Context, username string, online bool) error
}

// Tracker 在线状态跟踪器
// 同一身份可能有多个并发会话，引用计数归零才算下线。
// 内存是权威，落库写穿是尽力而为。
type Tracker struct {
	mu       sync.Mutex
	sessions map[string]int

	writer StatusWriter
	logger *zap.Logger
}

// NewTracker 创建在线状态跟踪器
func NewTracker(writer StatusWriter, logger *zap.Logger) *Tracker {
	return &Tracker{
		sessions: make(map[string]int),
		writer:   writer,
		logger:   logger,
	}
}

// Online 会话绑定身份上线
func (t *Tracker) Online(username string) {
	if username == "" {
		return
	}

	t.mu.Lock()
	t.sessions[username]++
	first := t.sessions[username] == 1
	t.mu.Unlock()

	if first {
		t.writeThrough(username, true)
		t.logger.Info("用户上线", zap.String("username", username))
	}
}

// Offline 会话解绑身份下线
// 只有该身份的最后一个会话断开才落库下线。
func (t *Tracker) Offline(username string) {
	if username == "" {
		return
	}

	t.mu.Lock()
	count, ok := t.sessions[username]
	if !ok {
		t.mu.Unlock()
		return
	}
	if count <= 1 {
		delete(t.sessions, username)
	} else {
		t.sessions[username] = count - 1
	}
	last := count <= 1
	t.mu.Unlock()

	if last {
		t.writeThrough(username, false)
		t.logger.Info("用户下线", zap.String("username", username))
	}
}

// Rebind 会话更换绑定身份
func (t *Tracker) Rebind(oldUsername, newUsername string) {
	if oldUsername == newUsername {
		return
	}
	t.Offline(oldUsername)
	t.Online(newUsername)
}

// IsOnline 查询身份是否在线
func (t *Tracker) IsOnline(username string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sessions[username] > 0
}

// OnlineCount 当前在线身份数
func (t *Tracker) OnlineCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}

// OnlineUsers 当前在线身份列表
func (t *Tracker) OnlineUsers() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	users := make([]string, 0, len(t.sessions))
	for username := range t.sessions {
		users = append(users, username)
	}
	return users
}

// writeThrough 在线状态写穿落库，失败只记日志
func (t *Tracker) writeThrough(username string, online bool) {
	if t.writer == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := t.writer.SetOnline(ctx, username, online); err != nil {
			t.logger.Warn("在线状态落库失败",
				zap.String("username", username),
				zap.Bool("online", online),
				zap.Error(err))
		}
	}()
}
