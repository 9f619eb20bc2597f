package grid

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mightystreet/pixel-painter/internal/errors"
)

// Key 格子坐标键，规范形式为 "x,y"（两个十进制整数，允许负数）
type Key struct {
	X int64
	Y int64
}

// String 返回规范形式的坐标键
func (k Key) String() string {
	return strconv.FormatInt(k.X, 10) + "," + strconv.FormatInt(k.Y, 10)
}

// ParseKey 解析坐标键
func ParseKey(s string) (Key, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Key{}, errors.Newf(errors.ErrInvalidCellKey, "坐标 %q 不是 x,y 形式", s)
	}

	x, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Key{}, errors.Newf(errors.ErrInvalidCellKey, "横坐标 %q 无法解析", parts[0])
	}

	y, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return Key{}, errors.Newf(errors.ErrInvalidCellKey, "纵坐标 %q 无法解析", parts[1])
	}

	return Key{X: x, Y: y}, nil
}

// Cell 一个已被占用的格子
// 一旦写入永不修改：没有更新和删除操作。
type Cell struct {
	Color    string
	Owner    string // 旧格式数据可为空
	PlacedAt time.Time
}

// Grid 权威网格状态
// 稀疏无界，键不存在即未被占用。唯一的修改入口是InsertIfAbsent，
// 快照读取与写入共用同一把锁，连接时不会看到撕裂状态。
type Grid struct {
	mu    sync.RWMutex
	cells map[Key]Cell
}

// New 创建空网格
func New() *Grid {
	return &Grid{
		cells: make(map[Key]Cell),
	}
}

// Get 查询格子
func (g *Grid) Get(key Key) (Cell, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	cell, ok := g.cells[key]
	return cell, ok
}

// InsertIfAbsent 条件写入：仅当格子未被占用时写入
// 返回是否写入成功。并发调用同一个key时至多一个返回true。
func (g *Grid) InsertIfAbsent(key Key, cell Cell) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.cells[key]; ok {
		return false
	}
	g.cells[key] = cell
	return true
}

// Snapshot 返回当前全部格子的拷贝
func (g *Grid) Snapshot() map[Key]Cell {
	g.mu.RLock()
	defer g.mu.RUnlock()

	snapshot := make(map[Key]Cell, len(g.cells))
	for key, cell := range g.cells {
		snapshot[key] = cell
	}
	return snapshot
}

// Len 返回已占用格子数
func (g *Grid) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.cells)
}
