package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"campus-timetable/backend/internal/dto"
	"campus-timetable/backend/internal/service"
	"campus-timetable/backend/pkg/response"
)

// CatalogHandler 基础数据模块 HTTP 处理器（学生、课程、教学楼、场地）
type CatalogHandler struct {
	catalogSvc service.CatalogService
}

// NewCatalogHandler 创建 CatalogHandler
func NewCatalogHandler(catalogSvc service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogSvc: catalogSvc}
}

// CreateStudent 创建学生
// POST /api/v1/students
func (h *CatalogHandler) CreateStudent(c *gin.Context) {
	var req dto.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 15001, "参数校验失败")
		return
	}

	student, err := h.catalogSvc.CreateStudent(c.Request.Context(), &req)
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}

	response.Created(c, student)
}

// ListStudents 分页获取学生列表
// GET /api/v1/students
func (h *CatalogHandler) ListStudents(c *gin.Context) {
	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, 15001, "参数校验失败")
		return
	}

	items, total, err := h.catalogSvc.ListStudents(c.Request.Context(), &page)
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}

	response.OKPage(c, items, total, page.GetPage(), page.GetPageSize())
}

// Enroll 学生选修课程
// POST /api/v1/students/:id/enrollments
func (h *CatalogHandler) Enroll(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 15001, "学生ID不能为空")
		return
	}

	var req dto.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 15001, "参数校验失败")
		return
	}

	if err := h.catalogSvc.Enroll(c.Request.Context(), id, &req); err != nil {
		h.handleCatalogError(c, err)
		return
	}

	response.Created(c, gin.H{"enrolled": true})
}

// CreateModule 创建课程模块
// POST /api/v1/modules
func (h *CatalogHandler) CreateModule(c *gin.Context) {
	var req dto.CreateModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 15001, "参数校验失败")
		return
	}

	module, err := h.catalogSvc.CreateModule(c.Request.Context(), &req)
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}

	response.Created(c, module)
}

// ListModules 获取课程模块列表
// GET /api/v1/modules
func (h *CatalogHandler) ListModules(c *gin.Context) {
	items, err := h.catalogSvc.ListModules(c.Request.Context())
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}

	response.OK(c, gin.H{"list": items})
}

// CreateBuilding 创建教学楼
// POST /api/v1/buildings
func (h *CatalogHandler) CreateBuilding(c *gin.Context) {
	var req dto.CreateBuildingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 15001, "参数校验失败")
		return
	}

	building, err := h.catalogSvc.CreateBuilding(c.Request.Context(), &req)
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}

	response.Created(c, building)
}

// ListBuildings 获取教学楼及其场地
// GET /api/v1/buildings
func (h *CatalogHandler) ListBuildings(c *gin.Context) {
	items, err := h.catalogSvc.ListBuildings(c.Request.Context())
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}

	response.OK(c, gin.H{"list": items})
}

// CreateVenue 创建场地
// POST /api/v1/venues
func (h *CatalogHandler) CreateVenue(c *gin.Context) {
	var req dto.CreateVenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 15001, "参数校验失败")
		return
	}

	venue, err := h.catalogSvc.CreateVenue(c.Request.Context(), &req)
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}

	response.Created(c, venue)
}

// ListVenues 获取场地列表
// GET /api/v1/venues
func (h *CatalogHandler) ListVenues(c *gin.Context) {
	items, err := h.catalogSvc.ListVenues(c.Request.Context())
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}

	response.OK(c, gin.H{"list": items})
}

// handleCatalogError 统一处理基础数据模块业务错误
func (h *CatalogHandler) handleCatalogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 15101, "学生不存在")
	case errors.Is(err, service.ErrModuleNotFound):
		response.NotFound(c, 15102, "课程模块不存在")
	case errors.Is(err, service.ErrBuildingNotFound):
		response.NotFound(c, 15103, "教学楼不存在")
	case errors.Is(err, service.ErrStudentNumberTaken):
		response.Conflict(c, 15104, "学号或邮箱已被占用")
	case errors.Is(err, service.ErrModuleCodeTaken):
		response.Conflict(c, 15105, "课程代码已存在")
	case errors.Is(err, service.ErrStudentAlreadyInMod):
		response.Conflict(c, 15106, "学生已选修该课程")
	default:
		response.InternalError(c)
	}
}
