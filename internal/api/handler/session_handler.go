package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"campus-timetable/backend/internal/dto"
	"campus-timetable/backend/internal/service"
	pkgerrors "campus-timetable/backend/pkg/errors"
	"campus-timetable/backend/pkg/response"
)

// maxICSFileSize ICS 导入文件大小上限
const maxICSFileSize = 2 << 20

// SessionHandler 节次模块 HTTP 处理器
type SessionHandler struct {
	sessionSvc service.SessionService
}

// NewSessionHandler 创建 SessionHandler
func NewSessionHandler(sessionSvc service.SessionService) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc}
}

// Create 创建节次
// POST /api/v1/sessions
func (h *SessionHandler) Create(c *gin.Context) {
	var req dto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "参数校验失败")
		return
	}

	session, err := h.sessionSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.Created(c, session)
}

// Get 获取节次详情
// GET /api/v1/sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 13001, "节次ID不能为空")
		return
	}

	session, err := h.sessionSvc.Get(c.Request.Context(), id)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OK(c, session)
}

// ListByModule 获取课程模块下的节次
// GET /api/v1/modules/:id/sessions
func (h *SessionHandler) ListByModule(c *gin.Context) {
	moduleID := c.Param("id")
	if moduleID == "" {
		response.BadRequest(c, 13001, "课程模块ID不能为空")
		return
	}

	items, err := h.sessionSvc.ListByModule(c.Request.Context(), moduleID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OK(c, gin.H{"list": items})
}

// UpdateVenue 调整节次场地（乐观锁）
// PUT /api/v1/sessions/:id/venue
func (h *SessionHandler) UpdateVenue(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 13001, "节次ID不能为空")
		return
	}

	var req dto.UpdateSessionVenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "参数校验失败")
		return
	}

	session, err := h.sessionSvc.UpdateVenue(c.Request.Context(), id, &req)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OK(c, session)
}

// Delete 删除节次
// DELETE /api/v1/sessions/:id
func (h *SessionHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 13001, "节次ID不能为空")
		return
	}

	operator := c.GetHeader("X-Operator-ID")

	if err := h.sessionSvc.Delete(c.Request.Context(), id, operator); err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.OK(c, gin.H{"deleted": true})
}

// ImportICS 从 ICS 日历文件批量导入节次
// POST /api/v1/sessions/import-ics (multipart/form-data)
func (h *SessionHandler) ImportICS(c *gin.Context) {
	moduleID := c.PostForm("module_id")
	venueID := c.PostForm("venue_id")
	sessionType := c.PostForm("type")
	if moduleID == "" || venueID == "" {
		response.BadRequest(c, 13001, "module_id和venue_id不能为空")
		return
	}
	if sessionType == "" {
		sessionType = "lecture"
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 13001, "请上传ICS文件")
		return
	}
	if fileHeader.Size > maxICSFileSize {
		response.BadRequest(c, 13002, "ICS文件过大")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.InternalError(c)
		return
	}
	defer file.Close()

	result, err := h.sessionSvc.ImportICS(c.Request.Context(), moduleID, venueID, sessionType, file)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	response.Created(c, result)
}

// handleSessionError 统一处理节次模块业务错误
func (h *SessionHandler) handleSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(c, 13101, "节次不存在")
	case errors.Is(err, service.ErrModuleNotFound):
		response.NotFound(c, 13102, "课程模块不存在")
	case errors.Is(err, service.ErrVenueNotFound):
		response.NotFound(c, 13103, "场地不存在")
	case errors.Is(err, service.ErrInvalidTimeRange):
		response.BadRequest(c, 13104, "开始时间必须早于结束时间")
	case errors.Is(err, service.ErrInvalidWeekday):
		response.BadRequest(c, 13105, "星期取值必须在周一至周五之间")
	case errors.Is(err, service.ErrInvalidICSFormat):
		response.BadRequest(c, 13106, "ICS文件格式无效")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 13107, "节次已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
