package models

import (
	"time"
)

// Placement 落子记录表（只追加，不修改不删除）
// 网格重启时从这张表完整重建，Key列唯一保证单格只有一条记录。
type Placement struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Key      string    `gorm:"uniqueIndex;size:64;not null" json:"key"` // "x,y"
	X        int64     `gorm:"not null" json:"x"`
	Y        int64     `gorm:"not null" json:"y"`
	Color    string    `gorm:"size:32;not null" json:"color"`
	Username string    `gorm:"size:50;index" json:"username"` // 兼容旧数据可为空
	PlacedAt time.Time `gorm:"not null;index" json:"placed_at"`
}

// TableName 指定Placement表名
func (Placement) TableName() string {
	return "placements"
}
