package grid

import (
	"context"
	"time"

	"github.com/mightystreet/pixel-painter/internal/models"
	"go.uber.org/zap"
)

// Store 持久化适配器接口（落子记录的追加与全量读取）
type Store interface {
	Append(ctx context.Context, placement *models.Placement) error
	LoadAll(ctx context.Context) ([]*models.Placement, error)
}

// Recorder 身份计数器接口（落子计数与活跃时间）
type Recorder interface {
	IncrementPlacementCount(ctx context.Context, username string) error
}

// Broadcaster 广播接口（向所有在线会话推送已接受的落子）
type Broadcaster interface {
	BroadcastPlacement(key, color, username string)
}

// PlacementRequest 落子请求
type PlacementRequest struct {
	Key      Key
	Color    string
	Username string
}

// Arbiter 落子仲裁器
// 决策规则是严格的先到先得：InsertIfAbsent成功即接受。
// 接受后的持久化、计数、广播都在临界区之外进行；
// 持久化失败只记日志，不回滚已接受的落子，也不抑制广播。
// 被拒绝的请求不产生任何回应。
type Arbiter struct {
	grid        *Grid
	store       Store
	recorder    Recorder
	broadcaster Broadcaster
	logger      *zap.Logger

	maxColorLen int
}

// ArbiterOption 仲裁器选项
type ArbiterOption func(*Arbiter)

// WithMaxColorLength 设置颜色字符串长度上限
func WithMaxColorLength(n int) ArbiterOption {
	return func(a *Arbiter) {
		if n > 0 {
			a.maxColorLen = n
		}
	}
}

// NewArbiter 创建仲裁器
func NewArbiter(g *Grid, store Store, recorder Recorder, broadcaster Broadcaster, logger *zap.Logger, opts ...ArbiterOption) *Arbiter {
	a := &Arbiter{
		grid:        g,
		store:       store,
		recorder:    recorder,
		broadcaster: broadcaster,
		logger:      logger,
		maxColorLen: 32,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Place 处理一次落子请求
// 返回是否被接受。无论拒绝原因是什么，调用方都不应向请求者回应。
func (a *Arbiter) Place(ctx context.Context, req PlacementRequest) bool {
	if !a.validate(req) {
		return false
	}

	cell := Cell{
		Color:    req.Color,
		Owner:    req.Username,
		PlacedAt: time.Now(),
	}

	// 临界区只有这一次条件写入，没有任何I/O
	if !a.grid.InsertIfAbsent(req.Key, cell) {
		a.logger.Debug("落子被拒绝：格子已被占用",
			zap.String("key", req.Key.String()),
			zap.String("username", req.Username))
		return false
	}

	// 广播入队保持接受顺序
	a.broadcaster.BroadcastPlacement(req.Key.String(), req.Color, req.Username)

	// 持久化与计数异步进行，失败不回滚
	go a.afterAccept(req.Key, cell)

	return true
}

// validate 校验落子请求
// 不合法的请求静默丢弃，只在调试级别记日志。
func (a *Arbiter) validate(req PlacementRequest) bool {
	if req.Username == "" {
		a.logger.Debug("落子被忽略：会话未绑定身份",
			zap.String("key", req.Key.String()))
		return false
	}

	if req.Color == "" || len(req.Color) > a.maxColorLen {
		a.logger.Debug("落子被忽略：颜色值无效",
			zap.String("key", req.Key.String()),
			zap.String("color", req.Color))
		return false
	}

	return true
}

// afterAccept 接受之后的异步处理
func (a *Arbiter) afterAccept(key Key, cell Cell) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	placement := &models.Placement{
		Key:      key.String(),
		X:        key.X,
		Y:        key.Y,
		Color:    cell.Color,
		Username: cell.Owner,
		PlacedAt: cell.PlacedAt,
	}

	if err := a.store.Append(ctx, placement); err != nil {
		// 持久化是尽力而为：内存状态仍然是权威
		a.logger.Error("落子持久化失败",
			zap.String("key", placement.Key),
			zap.Error(err))
	}

	if err := a.recorder.IncrementPlacementCount(ctx, cell.Owner); err != nil {
		a.logger.Warn("落子计数更新失败",
			zap.String("username", cell.Owner),
			zap.Error(err))
	}
}
