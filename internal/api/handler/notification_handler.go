package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"campus-timetable/backend/internal/dto"
	"campus-timetable/backend/internal/service"
	"campus-timetable/backend/pkg/response"
)

// NotificationHandler 通知模块 HTTP 处理器
type NotificationHandler struct {
	notificationSvc service.NotificationService
}

// NewNotificationHandler 创建 NotificationHandler
func NewNotificationHandler(notificationSvc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationSvc: notificationSvc}
}

// List 分页获取某接收者的通知
// GET /api/v1/notifications?recipient_id=xxx
func (h *NotificationHandler) List(c *gin.Context) {
	recipientID := c.Query("recipient_id")
	if recipientID == "" {
		response.BadRequest(c, 16001, "recipient_id不能为空")
		return
	}

	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, 16001, "参数校验失败")
		return
	}

	items, total, err := h.notificationSvc.List(c.Request.Context(), recipientID, &page)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, items, total, page.GetPage(), page.GetPageSize())
}

// MarkRead 标记通知已读
// PUT /api/v1/notifications/:id/read?recipient_id=xxx
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id := c.Param("id")
	recipientID := c.Query("recipient_id")
	if id == "" || recipientID == "" {
		response.BadRequest(c, 16001, "通知ID和recipient_id不能为空")
		return
	}

	if err := h.notificationSvc.MarkRead(c.Request.Context(), id, recipientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, 16101, "通知不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"read": true})
}
