package repository

import (
	"context"

	"gorm.io/gorm"

	"campus-timetable/backend/internal/model"
	pkgerrors "campus-timetable/backend/pkg/errors"
)

// SessionRepository 节次数据访问接口
type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	BatchCreate(ctx context.Context, sessions []model.Session) error
	GetByID(ctx context.Context, id string) (*model.Session, error)
	ListByModule(ctx context.Context, moduleID string) ([]model.Session, error)
	ListAll(ctx context.Context) ([]model.Session, error)
	// UpdateVenue 将节次改到另一场地（冲突处置使用，乐观锁保护）
	UpdateVenue(ctx context.Context, session *model.Session, venueID string) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type sessionRepo struct {
	db *gorm.DB
}

func NewSessionRepo(db *gorm.DB) SessionRepository {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) Create(ctx context.Context, session *model.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepo) BatchCreate(ctx context.Context, sessions []model.Session) error {
	if len(sessions) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&sessions).Error
}

func (r *sessionRepo) GetByID(ctx context.Context, id string) (*model.Session, error) {
	var session model.Session
	err := r.db.WithContext(ctx).
		Preload("Module").
		Preload("Venue").Preload("Venue.Building").
		Where("session_id = ?", id).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) ListByModule(ctx context.Context, moduleID string) ([]model.Session, error) {
	var sessions []model.Session
	err := r.db.WithContext(ctx).
		Preload("Module").
		Preload("Venue").
		Where("module_id = ?", moduleID).
		Order("weekday ASC, start_time ASC").
		Find(&sessions).Error
	return sessions, err
}

func (r *sessionRepo) ListAll(ctx context.Context) ([]model.Session, error) {
	var sessions []model.Session
	err := r.db.WithContext(ctx).
		Preload("Module").
		Preload("Venue").Preload("Venue.Building").
		Order("weekday ASC, start_time ASC").
		Find(&sessions).Error
	return sessions, err
}

func (r *sessionRepo) UpdateVenue(ctx context.Context, session *model.Session, venueID string) error {
	oldVersion := session.Version
	result := r.db.WithContext(ctx).
		Model(session).
		Where("session_id = ? AND version = ?", session.SessionID, oldVersion).
		Updates(map[string]interface{}{
			"venue_id": venueID,
			"version":  oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	session.VenueID = venueID
	session.Version = oldVersion + 1
	return nil
}

func (r *sessionRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Session{}).
			Where("session_id = ?", id).
			Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		return tx.Where("session_id = ?", id).Delete(&model.Session{}).Error
	})
}
