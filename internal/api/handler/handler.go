package handler

import "campus-timetable/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Allocation   *AllocationHandler
	Conflict     *ConflictHandler
	Session      *SessionHandler
	Demmie       *DemmieHandler
	Catalog      *CatalogHandler
	Notification *NotificationHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Allocation:   NewAllocationHandler(svc.Allocation),
		Conflict:     NewConflictHandler(svc.Conflict),
		Session:      NewSessionHandler(svc.Session),
		Demmie:       NewDemmieHandler(svc.Demmie),
		Catalog:      NewCatalogHandler(svc.Catalog),
		Notification: NewNotificationHandler(svc.Notification),
	}
}
