package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"campus-timetable/backend/internal/dto"
	"campus-timetable/backend/internal/model"
	"campus-timetable/backend/internal/repository"
)

// NotificationService 通知业务接口
// 对调用方为发后不理：投递失败由调用方决定是否忽略，不影响已提交的业务变更
type NotificationService interface {
	Send(ctx context.Context, recipientID, title, content, category, relatedType, relatedID string) error
	List(ctx context.Context, recipientID string, page *dto.PaginationRequest) ([]dto.NotificationResponse, int64, error)
	MarkRead(ctx context.Context, id, recipientID string) error
}

type notificationService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewNotificationService 创建 NotificationService 实例
func NewNotificationService(repo *repository.Repository, logger *zap.Logger) NotificationService {
	return &notificationService{repo: repo, logger: logger}
}

func (s *notificationService) Send(ctx context.Context, recipientID, title, content, category, relatedType, relatedID string) error {
	notification := &model.Notification{
		RecipientID: recipientID,
		Title:       title,
		Content:     content,
		Category:    category,
	}
	if relatedType != "" {
		notification.RelatedType = &relatedType
	}
	if relatedID != "" {
		notification.RelatedID = &relatedID
	}
	return s.repo.Notification.Create(ctx, notification)
}

func (s *notificationService) List(ctx context.Context, recipientID string, page *dto.PaginationRequest) ([]dto.NotificationResponse, int64, error) {
	notifications, total, err := s.repo.Notification.ListByRecipient(ctx, recipientID, page.GetOffset(), page.GetPageSize())
	if err != nil {
		s.logger.Error("查询通知失败", zap.Error(err))
		return nil, 0, err
	}
	result := make([]dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		n := &notifications[i]
		item := dto.NotificationResponse{
			ID:        n.NotificationID,
			Title:     n.Title,
			Content:   n.Content,
			Category:  n.Category,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt.Format(time.RFC3339),
		}
		if n.RelatedType != nil {
			item.RelatedType = *n.RelatedType
		}
		if n.RelatedID != nil {
			item.RelatedID = *n.RelatedID
		}
		result = append(result, item)
	}
	return result, total, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id, recipientID string) error {
	return s.repo.Notification.MarkRead(ctx, id, recipientID)
}
