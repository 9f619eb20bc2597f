package service

import (
	"time"

	"github.com/mightystreet/pixel-painter/internal/repository"
	"github.com/mightystreet/pixel-painter/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Config 服务配置
type Config struct {
	JWTSecret          string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		JWTSecret:          "your-secret-key-change-in-production",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 7 * 24 * time.Hour,
	}
}

// Services 服务集合
type Services struct {
	Auth  AuthService
	Stats StatsService

	JWTManager *utils.JWTManager
}

// NewServices 创建服务集合
func NewServices(db *gorm.DB, config *Config, online OnlineCounter, log *zap.Logger) *Services {
	userRepo := repository.NewUserRepository(db)
	placementRepo := repository.NewPlacementRepository(db)

	jwtManager := utils.NewJWTManager(
		config.JWTSecret,
		config.AccessTokenExpiry,
		config.RefreshTokenExpiry,
	)

	return &Services{
		Auth:       NewAuthService(db, userRepo, jwtManager, log),
		Stats:      NewStatsService(placementRepo, userRepo, online, log),
		JWTManager: jwtManager,
	}
}
