package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"campus-timetable/backend/internal/dto"
	"campus-timetable/backend/internal/service"
	"campus-timetable/backend/pkg/response"
)

// AllocationHandler 分配模块 HTTP 处理器
type AllocationHandler struct {
	allocationSvc service.AllocationService
}

// NewAllocationHandler 创建 AllocationHandler
func NewAllocationHandler(allocationSvc service.AllocationService) *AllocationHandler {
	return &AllocationHandler{allocationSvc: allocationSvc}
}

// Preview 预览分配结果（不落库）
// POST /api/v1/allocations/preview
func (h *AllocationHandler) Preview(c *gin.Context) {
	var req dto.ComputePreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 11001, "参数校验失败")
		return
	}

	result, err := h.allocationSvc.ComputePreview(c.Request.Context(), &req)
	if err != nil {
		h.handleAllocationError(c, err)
		return
	}

	response.OK(c, result)
}

// Confirm 确认并保存分配结果
// POST /api/v1/allocations/confirm
func (h *AllocationHandler) Confirm(c *gin.Context) {
	var req dto.ConfirmAllocationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 11001, "参数校验失败")
		return
	}

	result, err := h.allocationSvc.SaveAllocations(c.Request.Context(), &req)
	if err != nil {
		h.handleAllocationError(c, err)
		return
	}

	response.Created(c, result)
}

// ListBySession 查询某节次的学生分配
// GET /api/v1/sessions/:id/allocations
func (h *AllocationHandler) ListBySession(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 11001, "节次ID不能为空")
		return
	}

	items, err := h.allocationSvc.ListBySession(c.Request.Context(), id)
	if err != nil {
		h.handleAllocationError(c, err)
		return
	}

	response.OK(c, gin.H{"list": items})
}

// handleAllocationError 统一处理分配模块业务错误
func (h *AllocationHandler) handleAllocationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownStrategy):
		response.BadRequest(c, 11101, "不支持的分配策略")
	case errors.Is(err, service.ErrModuleNotFound):
		response.NotFound(c, 11102, "课程模块不存在")
	case errors.Is(err, service.ErrVenueNotFound):
		response.NotFound(c, 11103, "场地不存在")
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(c, 11104, "节次不存在")
	case errors.Is(err, service.ErrCapacityExceeded):
		response.Conflict(c, 11105, "场地容量已满")
	default:
		response.InternalError(c)
	}
}
