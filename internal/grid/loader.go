package grid

import (
	"context"

	"github.com/mightystreet/pixel-painter/internal/errors"
	"go.uber.org/zap"
)

// Load 从持久化存储重建网格
// 记录按写入顺序回放；key唯一保证回放是幂等的，重复key保留最早一条。
// 读取失败视为致命错误，由调用方决定终止启动。
func Load(ctx context.Context, store Store, g *Grid, logger *zap.Logger) (int, error) {
	records, err := store.LoadAll(ctx)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrGridLoadFailed)
	}

	restored := 0
	for _, record := range records {
		key, err := ParseKey(record.Key)
		if err != nil {
			// 旧记录key列异常时退回坐标列
			key = Key{X: record.X, Y: record.Y}
		}

		cell := Cell{
			Color:    record.Color,
			Owner:    record.Username,
			PlacedAt: record.PlacedAt,
		}

		if g.InsertIfAbsent(key, cell) {
			restored++
		} else {
			logger.Warn("忽略重复的落子记录",
				zap.String("key", record.Key),
				zap.Uint("id", record.ID))
		}
	}

	logger.Info("网格历史重建完成",
		zap.Int("total_records", len(records)),
		zap.Int("restored", restored))

	return restored, nil
}
