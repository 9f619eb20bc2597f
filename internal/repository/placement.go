package repository

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/mightystreet/pixel-painter/internal/errors"
	"github.com/mightystreet/pixel-painter/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PlacementRepository 落子记录仓储接口
// 这是网格的持久化适配器：只有追加和全量读取，没有更新和删除。
type PlacementRepository interface {
	BaseRepository
	Append(ctx context.Context, placement *models.Placement) error
	LoadAll(ctx context.Context) ([]*models.Placement, error)
	FindByKey(ctx context.Context, key string) (*models.Placement, error)
	FindRecent(ctx context.Context, limit int) ([]*models.Placement, error)
	CountByUsername(ctx context.Context, username string) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// placementRepo 落子记录仓储实现
type placementRepo struct {
	*BaseRepo
}

// NewPlacementRepository 创建落子记录仓储
func NewPlacementRepository(db *gorm.DB) PlacementRepository {
	return &placementRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// Append 追加一条落子记录
// Key列唯一，同一格子的重复写入冲突视为幂等成功（仲裁器保证单写者）。
func (r *placementRepo) Append(ctx context.Context, placement *models.Placement) error {
	if placement.PlacedAt.IsZero() {
		placement.PlacedAt = time.Now()
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoNothing: true,
		}).
		Create(placement).Error
	if err != nil {
		return errors.Wrap(err, errors.ErrDatabaseInsert, "追加落子记录失败")
	}
	return nil
}

// LoadAll 按写入顺序读取全部落子记录（用于启动重建）
func (r *placementRepo) LoadAll(ctx context.Context) ([]*models.Placement, error) {
	var placements []*models.Placement
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&placements).Error
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabaseQuery, "读取落子历史失败")
	}
	return placements, nil
}

// FindByKey 根据格子坐标查找记录
func (r *placementRepo) FindByKey(ctx context.Context, key string) (*models.Placement, error) {
	var placement models.Placement
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&placement).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.ErrNotFound, "落子记录不存在")
		}
		return nil, errors.Wrap(err, errors.ErrDatabaseQuery)
	}
	return &placement, nil
}

// FindRecent 查找最近的落子记录（活动流）
func (r *placementRepo) FindRecent(ctx context.Context, limit int) ([]*models.Placement, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var placements []*models.Placement
	err := r.db.WithContext(ctx).
		Order("placed_at DESC").
		Limit(limit).
		Find(&placements).Error
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabaseQuery)
	}
	return placements, nil
}

// CountByUsername 统计用户的落子总数
func (r *placementRepo) CountByUsername(ctx context.Context, username string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Placement{}).
		Where("username = ?", username).
		Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrDatabaseQuery)
	}
	return count, nil
}

// Count 统计落子总数
func (r *placementRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Placement{}).
		Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrDatabaseQuery)
	}
	return count, nil
}

// WithTx 使用事务
func (r *placementRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &placementRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}
