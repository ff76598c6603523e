package service

import (
	"math/rand"
	"time"

	"go.uber.org/zap"

	"campus-timetable/backend/config"
	"campus-timetable/backend/internal/repository"
)

// Service 所有业务服务的聚合入口
type Service struct {
	Allocation   AllocationService
	Conflict     ConflictService
	Demmie       DemmieService
	Session      SessionService
	Catalog      CatalogService
	Notification NotificationService
}

// NewService 创建 Service 聚合
func NewService(repo *repository.Repository, locker Locker, cfg *config.Config, logger *zap.Logger) *Service {
	notification := NewNotificationService(repo, logger)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Service{
		Allocation:   NewAllocationService(repo, rng, logger),
		Conflict:     NewConflictService(repo, locker, notification, logger),
		Demmie:       NewDemmieService(repo, locker, notification, cfg, logger),
		Session:      NewSessionService(repo, logger),
		Catalog:      NewCatalogService(repo, logger),
		Notification: notification,
	}
}
