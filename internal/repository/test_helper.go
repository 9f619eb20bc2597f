package repository

import (
	"testing"
	"time"

	"github.com/mightystreet/pixel-painter/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB 为测试套件设置测试数据库
func SetupTestDB() *gorm.DB {
	// 使用内存数据库进行测试（更快，不需要文件系统，在所有环境中都能工作）
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(err)
	}

	// 自动迁移所有模型
	err = db.AutoMigrate(
		&models.User{},
		&models.Placement{},
	)
	if err != nil {
		panic(err)
	}

	return db
}

// CleanupTestDB 清理测试数据库
func CleanupTestDB(db *gorm.DB) {
	// 关闭数据库连接
	sqlDB, _ := db.DB()
	if sqlDB != nil {
		sqlDB.Close()
	}
}

// SeedTestUsers 创建测试用户
func SeedTestUsers(t *testing.T, db *gorm.DB) []models.User {
	users := []models.User{
		{
			Username: "alice",
			Password: "hashed-password-1",
			Nickname: "Alice",
			Status:   "active",
		},
		{
			Username: "bob",
			Password: "hashed-password-2",
			Nickname: "Bob",
			Status:   "active",
		},
	}
	err := db.Create(&users).Error
	require.NoError(t, err)
	return users
}

// CreateTestPlacement 创建测试落子记录
func CreateTestPlacement(key string, x, y int64, color, username string) *models.Placement {
	return &models.Placement{
		Key:      key,
		X:        x,
		Y:        y,
		Color:    color,
		Username: username,
		PlacedAt: time.Now(),
	}
}
