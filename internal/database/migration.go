package database

import (
	"fmt"

	"github.com/mightystreet/pixel-painter/internal/logger"
	"github.com/mightystreet/pixel-painter/internal/models"
	"go.uber.org/zap"
)

// AutoMigrate 自动迁移数据库表结构
func AutoMigrate() error {
	if DB == nil {
		return fmt.Errorf("数据库未初始化")
	}

	// 清理过期锁文件
	CleanupStaleLocks()

	// 获取迁移锁，避免多个进程同时迁移
	dbPath := getDBPath()
	if dbPath != "" {
		lockFile, err := acquireMigrationLock(dbPath)
		if err != nil {
			logger.Error("无法获取迁移锁", zap.Error(err))
			return fmt.Errorf("获取迁移锁失败: %w", err)
		}
		defer releaseMigrationLock(lockFile)
	}

	migrationModels := []interface{}{
		&models.User{},
		&models.Placement{},
	}

	// 执行迁移
	logger.Info("开始数据库迁移...")

	for _, model := range migrationModels {
		if err := DB.AutoMigrate(model); err != nil {
			logger.Error("迁移失败",
				zap.String("model", fmt.Sprintf("%T", model)),
				zap.Error(err),
			)
			return err
		}
		logger.Debug("迁移成功", zap.String("model", fmt.Sprintf("%T", model)))
	}

	// 创建索引
	if err := createIndexes(); err != nil {
		return err
	}

	logger.Info("数据库迁移完成")
	return nil
}

// createIndexes 创建数据库索引
func createIndexes() error {
	// 用户表索引
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_users_placement_count ON users(placement_count)").Error; err != nil {
		logger.Warn("创建索引失败", zap.String("index", "idx_users_placement_count"), zap.Error(err))
	}

	// 落子记录表索引
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_placements_username ON placements(username)").Error; err != nil {
		logger.Warn("创建索引失败", zap.String("index", "idx_placements_username"), zap.Error(err))
	}

	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_placements_placed_at ON placements(placed_at)").Error; err != nil {
		logger.Warn("创建索引失败", zap.String("index", "idx_placements_placed_at"), zap.Error(err))
	}

	logger.Info("数据库索引创建完成")
	return nil
}
