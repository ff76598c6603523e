package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"campus-timetable/backend/internal/dto"
	"campus-timetable/backend/internal/service"
	pkgerrors "campus-timetable/backend/pkg/errors"
	"campus-timetable/backend/pkg/response"
)

// DemmieHandler 助教模块 HTTP 处理器
type DemmieHandler struct {
	demmieSvc service.DemmieService
}

// NewDemmieHandler 创建 DemmieHandler
func NewDemmieHandler(demmieSvc service.DemmieService) *DemmieHandler {
	return &DemmieHandler{demmieSvc: demmieSvc}
}

// Create 创建助教
// POST /api/v1/demmies
func (h *DemmieHandler) Create(c *gin.Context) {
	var req dto.CreateDemmieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14001, "参数校验失败")
		return
	}

	demmie, err := h.demmieSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleDemmieError(c, err)
		return
	}

	response.Created(c, demmie)
}

// List 获取助教列表
// GET /api/v1/demmies
func (h *DemmieHandler) List(c *gin.Context) {
	items, err := h.demmieSvc.List(c.Request.Context())
	if err != nil {
		h.handleDemmieError(c, err)
		return
	}

	response.OK(c, gin.H{"list": items})
}

// Assign 指派助教到节次
// POST /api/v1/demmies/assignments
func (h *DemmieHandler) Assign(c *gin.Context) {
	var req dto.AssignDemmieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14001, "参数校验失败")
		return
	}

	if err := h.demmieSvc.Assign(c.Request.Context(), &req); err != nil {
		h.handleDemmieError(c, err)
		return
	}

	response.Created(c, gin.H{"assigned": true})
}

// Unassign 解除助教与节次的指派
// DELETE /api/v1/demmies/:id/sessions/:sessionId
func (h *DemmieHandler) Unassign(c *gin.Context) {
	demmieID := c.Param("id")
	sessionID := c.Param("sessionId")
	if demmieID == "" || sessionID == "" {
		response.BadRequest(c, 14001, "助教ID和节次ID不能为空")
		return
	}

	if err := h.demmieSvc.Unassign(c.Request.Context(), demmieID, sessionID); err != nil {
		h.handleDemmieError(c, err)
		return
	}

	response.OK(c, gin.H{"unassigned": true})
}

// ListAssignments 获取全部助教指派
// GET /api/v1/demmies/assignments
func (h *DemmieHandler) ListAssignments(c *gin.Context) {
	items, err := h.demmieSvc.ListAssignments(c.Request.Context())
	if err != nil {
		h.handleDemmieError(c, err)
		return
	}

	response.OK(c, gin.H{"list": items})
}

// LogHours 登记本周工时
// POST /api/v1/demmies/:id/hours
func (h *DemmieHandler) LogHours(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 14001, "助教ID不能为空")
		return
	}

	var req dto.LogHoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14001, "参数校验失败")
		return
	}

	result, err := h.demmieSvc.LogHours(c.Request.Context(), id, &req)
	if err != nil {
		h.handleDemmieError(c, err)
		return
	}

	if result.OverLimit {
		response.OKWithWarning(c, result, "本周工时已超过上限")
		return
	}
	response.OK(c, result)
}

// ResetWeeklyHours 清零所有助教本周工时
// POST /api/v1/demmies/reset-hours
func (h *DemmieHandler) ResetWeeklyHours(c *gin.Context) {
	affected, err := h.demmieSvc.ResetWeeklyHours(c.Request.Context())
	if err != nil {
		h.handleDemmieError(c, err)
		return
	}

	response.OK(c, gin.H{"affected": affected})
}

// ListCandidates 查询可接手指定节次的空闲助教
// GET /api/v1/sessions/:id/demmie-candidates
func (h *DemmieHandler) ListCandidates(c *gin.Context) {
	sessionID := c.Param("id")
	if sessionID == "" {
		response.BadRequest(c, 14001, "节次ID不能为空")
		return
	}

	items, err := h.demmieSvc.ListCandidates(c.Request.Context(), sessionID)
	if err != nil {
		h.handleDemmieError(c, err)
		return
	}

	response.OK(c, gin.H{"list": items})
}

// SaveAvailability 保存助教可用时段
// POST /api/v1/demmies/:id/availabilities
func (h *DemmieHandler) SaveAvailability(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 14001, "助教ID不能为空")
		return
	}

	var req dto.AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14001, "参数校验失败")
		return
	}

	if err := h.demmieSvc.SaveAvailability(c.Request.Context(), id, &req); err != nil {
		h.handleDemmieError(c, err)
		return
	}

	response.OK(c, gin.H{"saved": true})
}

// handleDemmieError 统一处理助教模块业务错误
func (h *DemmieHandler) handleDemmieError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDemmieNotFound):
		response.NotFound(c, 14101, "助教不存在")
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(c, 14102, "节次不存在")
	case errors.Is(err, service.ErrDemmieAlreadyLinked):
		response.Conflict(c, 14103, "助教已被指派到该节次")
	case errors.Is(err, service.ErrDemmieNotLinked):
		response.BadRequest(c, 14104, "助教未被指派到该节次")
	case errors.Is(err, service.ErrDemmieEmailTaken):
		response.Conflict(c, 14105, "该邮箱已被其他助教使用")
	case errors.Is(err, pkgerrors.ErrLockNotAcquired):
		response.TooManyRequests(c, 14106, "助教正被其他操作占用，请稍后重试")
	default:
		response.InternalError(c)
	}
}
