package service

import (
	"context"
	"time"

	"github.com/mightystreet/pixel-painter/internal/models"
)

// AuthService 认证服务接口
type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error)
	ValidateToken(ctx context.Context, token string) (*TokenClaims, error)
	Profile(ctx context.Context, userID uint) (*UserProfile, error)
}

// StatsService 画布统计服务接口
type StatsService interface {
	Leaderboard(ctx context.Context, limit int) ([]*LeaderboardEntry, error)
	RecentActivity(ctx context.Context, limit int) ([]*ActivityEntry, error)
	Overview(ctx context.Context) (*Overview, error)
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username        string `json:"username" binding:"required,min=3,max=20"`
	Password        string `json:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password"`
	Nickname        string `json:"nickname"`
	IP              string `json:"-"` // 客户端IP，由handler设置
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	IP       string `json:"-"`
}

// AuthResponse 认证响应
type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"`
	TokenType    string       `json:"token_type"`
}

// TokenClaims JWT Claims
type TokenClaims struct {
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// UserProfile 用户资料
type UserProfile struct {
	Username       string     `json:"username"`
	Nickname       string     `json:"nickname"`
	PlacementCount int64      `json:"placement_count"`
	IsOnline       bool       `json:"is_online"`
	LastSeenAt     *time.Time `json:"last_seen_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank           int    `json:"rank"`
	Username       string `json:"username"`
	Nickname       string `json:"nickname"`
	PlacementCount int64  `json:"placement_count"`
	IsOnline       bool   `json:"is_online"`
}

// ActivityEntry 活动流条目
type ActivityEntry struct {
	Key      string    `json:"key"`
	Color    string    `json:"color"`
	Username string    `json:"username,omitempty"`
	PlacedAt time.Time `json:"placed_at"`
}

// Overview 画布总览
type Overview struct {
	TotalPlacements int64 `json:"total_placements"`
	OnlineUsers     int   `json:"online_users"`
}
