package repository

import (
	"context"

	"gorm.io/gorm"

	"campus-timetable/backend/internal/model"
)

// AllocationRepository 分配记录数据访问接口
type AllocationRepository interface {
	Create(ctx context.Context, allocation *model.Allocation) error
	Exists(ctx context.Context, studentID, sessionID string) (bool, error)
	// ListWithJoins 全量查询并预载学生与节次（冲突检测学生趟使用）
	ListWithJoins(ctx context.Context) ([]model.Allocation, error)
	ListBySession(ctx context.Context, sessionID string) ([]model.Allocation, error)
	GetByStudentAndSession(ctx context.Context, studentID, sessionID string) (*model.Allocation, error)
	DeleteByStudentAndSession(ctx context.Context, studentID, sessionID string) error
	// MoveToSession 保留分配记录但换绑节次（学生冲突人工处置）
	MoveToSession(ctx context.Context, allocation *model.Allocation, newSessionID string) error
}

type allocationRepo struct {
	db *gorm.DB
}

func NewAllocationRepo(db *gorm.DB) AllocationRepository {
	return &allocationRepo{db: db}
}

func (r *allocationRepo) Create(ctx context.Context, allocation *model.Allocation) error {
	return r.db.WithContext(ctx).Create(allocation).Error
}

func (r *allocationRepo) Exists(ctx context.Context, studentID, sessionID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Allocation{}).
		Where("student_id = ? AND session_id = ?", studentID, sessionID).
		Count(&count).Error
	return count > 0, err
}

func (r *allocationRepo) ListWithJoins(ctx context.Context) ([]model.Allocation, error) {
	var allocations []model.Allocation
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Session").Preload("Session.Module").
		Order("assigned_at ASC").
		Find(&allocations).Error
	return allocations, err
}

func (r *allocationRepo) ListBySession(ctx context.Context, sessionID string) ([]model.Allocation, error) {
	var allocations []model.Allocation
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("session_id = ?", sessionID).
		Order("assigned_at ASC").
		Find(&allocations).Error
	return allocations, err
}

func (r *allocationRepo) GetByStudentAndSession(ctx context.Context, studentID, sessionID string) (*model.Allocation, error) {
	var allocation model.Allocation
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND session_id = ?", studentID, sessionID).
		First(&allocation).Error
	if err != nil {
		return nil, err
	}
	return &allocation, nil
}

func (r *allocationRepo) DeleteByStudentAndSession(ctx context.Context, studentID, sessionID string) error {
	return r.db.WithContext(ctx).
		Where("student_id = ? AND session_id = ?", studentID, sessionID).
		Delete(&model.Allocation{}).Error
}

func (r *allocationRepo) MoveToSession(ctx context.Context, allocation *model.Allocation, newSessionID string) error {
	err := r.db.WithContext(ctx).
		Model(allocation).
		Where("allocation_id = ?", allocation.AllocationID).
		Update("session_id", newSessionID).Error
	if err != nil {
		return err
	}
	allocation.SessionID = newSessionID
	return nil
}
