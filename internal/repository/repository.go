package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Student      StudentRepository
	Module       ModuleRepository
	Venue        VenueRepository
	Session      SessionRepository
	Allocation   AllocationRepository
	Demmie       DemmieRepository
	Conflict     ConflictRepository
	Notification NotificationRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Student:      NewStudentRepo(db),
		Module:       NewModuleRepo(db),
		Venue:        NewVenueRepo(db),
		Session:      NewSessionRepo(db),
		Allocation:   NewAllocationRepo(db),
		Demmie:       NewDemmieRepo(db),
		Conflict:     NewConflictRepo(db),
		Notification: NewNotificationRepo(db),
	}
}
