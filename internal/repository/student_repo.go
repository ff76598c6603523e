package repository

import (
	"context"

	"gorm.io/gorm"

	"campus-timetable/backend/internal/model"
)

// StudentRepository 学生数据访问接口
type StudentRepository interface {
	Create(ctx context.Context, student *model.Student) error
	GetByID(ctx context.Context, id string) (*model.Student, error)
	List(ctx context.Context, offset, limit int) ([]model.Student, int64, error)
	// ListByModule 查询选修指定课程的全部学生（经 student_modules 桥表）
	ListByModule(ctx context.Context, moduleID string) ([]model.Student, error)
	Enroll(ctx context.Context, studentID, moduleID string) error
}

type studentRepo struct {
	db *gorm.DB
}

func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) Create(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepo) GetByID(ctx context.Context, id string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Where("student_id = ?", id).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) List(ctx context.Context, offset, limit int) ([]model.Student, int64, error) {
	var students []model.Student
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Student{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Offset(offset).Limit(limit).
		Order("student_number ASC").
		Find(&students).Error
	return students, total, err
}

func (r *studentRepo) ListByModule(ctx context.Context, moduleID string) ([]model.Student, error) {
	var students []model.Student
	err := r.db.WithContext(ctx).
		Joins("JOIN student_modules sm ON sm.student_id = students.student_id").
		Where("sm.module_id = ?", moduleID).
		Order("students.student_number ASC").
		Find(&students).Error
	return students, err
}

func (r *studentRepo) Enroll(ctx context.Context, studentID, moduleID string) error {
	return r.db.WithContext(ctx).Create(&model.StudentModule{
		StudentID: studentID,
		ModuleID:  moduleID,
	}).Error
}
