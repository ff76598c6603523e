package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-timetable/backend/internal/dto"
	"campus-timetable/backend/internal/model"
	"campus-timetable/backend/internal/repository"
)

// ── 基础数据模块业务错误 ──

var (
	ErrStudentNotFound     = errors.New("学生不存在")
	ErrStudentNumberTaken  = errors.New("学号或邮箱已被占用")
	ErrModuleCodeTaken     = errors.New("课程代码已存在")
	ErrStudentAlreadyInMod = errors.New("学生已选修该课程")
	ErrBuildingNotFound    = errors.New("教学楼不存在")
)

// CatalogService 基础数据业务接口：学生、课程、教学楼、场地
type CatalogService interface {
	CreateStudent(ctx context.Context, req *dto.CreateStudentRequest) (*dto.StudentResponse, error)
	ListStudents(ctx context.Context, page *dto.PaginationRequest) ([]dto.StudentResponse, int64, error)
	Enroll(ctx context.Context, studentID string, req *dto.EnrollRequest) error

	CreateModule(ctx context.Context, req *dto.CreateModuleRequest) (*dto.ModuleResponse, error)
	ListModules(ctx context.Context) ([]dto.ModuleResponse, error)

	CreateBuilding(ctx context.Context, req *dto.CreateBuildingRequest) (*model.Building, error)
	ListBuildings(ctx context.Context) ([]model.Building, error)
	CreateVenue(ctx context.Context, req *dto.CreateVenueRequest) (*dto.VenueResponse, error)
	ListVenues(ctx context.Context) ([]dto.VenueResponse, error)
}

type catalogService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCatalogService 创建 CatalogService 实例
func NewCatalogService(repo *repository.Repository, logger *zap.Logger) CatalogService {
	return &catalogService{repo: repo, logger: logger}
}

func toStudentResponse(student *model.Student) dto.StudentResponse {
	return dto.StudentResponse{
		ID:            student.StudentID,
		StudentNumber: student.StudentNumber,
		FullName:      student.FullName(),
		Email:         student.Email,
		DegreeProgram: student.DegreeProgram,
	}
}

func (s *catalogService) CreateStudent(ctx context.Context, req *dto.CreateStudentRequest) (*dto.StudentResponse, error) {
	student := &model.Student{
		StudentNumber: req.StudentNumber,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		DegreeProgram: req.DegreeProgram,
	}
	if err := s.repo.Student.Create(ctx, student); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrStudentNumberTaken
		}
		s.logger.Error("创建学生失败", zap.Error(err))
		return nil, err
	}
	resp := toStudentResponse(student)
	return &resp, nil
}

func (s *catalogService) ListStudents(ctx context.Context, page *dto.PaginationRequest) ([]dto.StudentResponse, int64, error) {
	students, total, err := s.repo.Student.List(ctx, page.GetOffset(), page.GetPageSize())
	if err != nil {
		s.logger.Error("查询学生失败", zap.Error(err))
		return nil, 0, err
	}
	result := make([]dto.StudentResponse, 0, len(students))
	for i := range students {
		result = append(result, toStudentResponse(&students[i]))
	}
	return result, total, nil
}

func (s *catalogService) Enroll(ctx context.Context, studentID string, req *dto.EnrollRequest) error {
	if _, err := s.repo.Student.GetByID(ctx, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		return err
	}
	if _, err := s.repo.Module.GetByID(ctx, req.ModuleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrModuleNotFound
		}
		return err
	}
	if err := s.repo.Student.Enroll(ctx, studentID, req.ModuleID); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrStudentAlreadyInMod
		}
		s.logger.Error("学生选课失败", zap.Error(err))
		return err
	}
	return nil
}

func (s *catalogService) CreateModule(ctx context.Context, req *dto.CreateModuleRequest) (*dto.ModuleResponse, error) {
	module := &model.Module{Code: req.Code, Name: req.Name}
	if err := s.repo.Module.Create(ctx, module); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrModuleCodeTaken
		}
		s.logger.Error("创建课程失败", zap.Error(err))
		return nil, err
	}
	return &dto.ModuleResponse{ID: module.ModuleID, Code: module.Code, Name: module.Name}, nil
}

func (s *catalogService) ListModules(ctx context.Context) ([]dto.ModuleResponse, error) {
	modules, err := s.repo.Module.List(ctx)
	if err != nil {
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.ModuleResponse, 0, len(modules))
	for i := range modules {
		result = append(result, dto.ModuleResponse{
			ID:   modules[i].ModuleID,
			Code: modules[i].Code,
			Name: modules[i].Name,
		})
	}
	return result, nil
}

func (s *catalogService) CreateBuilding(ctx context.Context, req *dto.CreateBuildingRequest) (*model.Building, error) {
	building := &model.Building{Name: req.Name}
	if err := s.repo.Venue.CreateBuilding(ctx, building); err != nil {
		s.logger.Error("创建教学楼失败", zap.Error(err))
		return nil, err
	}
	return building, nil
}

func (s *catalogService) ListBuildings(ctx context.Context) ([]model.Building, error) {
	return s.repo.Venue.ListBuildings(ctx)
}

func (s *catalogService) CreateVenue(ctx context.Context, req *dto.CreateVenueRequest) (*dto.VenueResponse, error) {
	buildings, err := s.repo.Venue.ListBuildings(ctx)
	if err != nil {
		return nil, err
	}
	found := false
	for i := range buildings {
		if buildings[i].BuildingID == req.BuildingID {
			found = true
			break
		}
	}
	if !found {
		return nil, ErrBuildingNotFound
	}

	venue := &model.Venue{
		Name:       req.Name,
		Capacity:   req.Capacity,
		BuildingID: req.BuildingID,
	}
	if err := s.repo.Venue.Create(ctx, venue); err != nil {
		s.logger.Error("创建场地失败", zap.Error(err))
		return nil, err
	}
	return &dto.VenueResponse{
		ID:         venue.VenueID,
		Name:       venue.Name,
		Capacity:   venue.Capacity,
		BuildingID: venue.BuildingID,
	}, nil
}

func (s *catalogService) ListVenues(ctx context.Context) ([]dto.VenueResponse, error) {
	venues, err := s.repo.Venue.List(ctx)
	if err != nil {
		s.logger.Error("查询场地失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.VenueResponse, 0, len(venues))
	for i := range venues {
		item := dto.VenueResponse{
			ID:         venues[i].VenueID,
			Name:       venues[i].Name,
			Capacity:   venues[i].Capacity,
			BuildingID: venues[i].BuildingID,
		}
		if venues[i].Building != nil {
			item.BuildingName = venues[i].Building.Name
		}
		result = append(result, item)
	}
	return result, nil
}
