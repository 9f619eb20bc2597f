package models

import (
	"time"
)

// User 用户账号表
type User struct {
	BaseModel
	Username       string     `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Password       string     `gorm:"size:255;not null" json:"-"`
	Nickname       string     `gorm:"size:100" json:"nickname"`
	Status         string     `gorm:"size:20;default:'active'" json:"status"` // active, frozen, banned
	PlacementCount int64      `gorm:"default:0" json:"placement_count"`
	IsOnline       bool       `gorm:"default:false" json:"is_online"`
	LastSeenAt     *time.Time `json:"last_seen_at,omitempty"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
	LastLoginIP    string     `gorm:"size:50" json:"last_login_ip"`
}

// TableName 指定User表名
func (User) TableName() string {
	return "users"
}

// IsActive 检查用户是否激活
func (u *User) IsActive() bool {
	return u.Status == "active"
}

// CanLogin 检查用户是否可以登录
func (u *User) CanLogin() bool {
	return u.Status == "active"
}

// UpdateLoginInfo 更新登录信息
func (u *User) UpdateLoginInfo(ip string) {
	now := time.Now()
	u.LastLoginAt = &now
	u.LastLoginIP = ip
}
