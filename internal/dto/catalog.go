package dto

// ── 基础数据 DTO ──

// CreateStudentRequest 创建学生
type CreateStudentRequest struct {
	StudentNumber string `json:"student_number" binding:"required,max=10"`
	FirstName     string `json:"first_name"     binding:"required,max=50"`
	LastName      string `json:"last_name"      binding:"required,max=50"`
	Email         string `json:"email"          binding:"required,email"`
	DegreeProgram string `json:"degree_program" binding:"omitempty,max=100"`
}

// StudentResponse 学生响应
type StudentResponse struct {
	ID            string `json:"id"`
	StudentNumber string `json:"student_number"`
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	DegreeProgram string `json:"degree_program,omitempty"`
}

// EnrollRequest 学生选课
type EnrollRequest struct {
	ModuleID string `json:"module_id" binding:"required,uuid"`
}

// CreateModuleRequest 创建课程
type CreateModuleRequest struct {
	Code string `json:"code" binding:"required,max=20"`
	Name string `json:"name" binding:"required,max=200"`
}

// ModuleResponse 课程响应
type ModuleResponse struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// CreateBuildingRequest 创建教学楼
type CreateBuildingRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// CreateVenueRequest 创建场地
type CreateVenueRequest struct {
	Name       string `json:"name"        binding:"required,max=100"`
	Capacity   int    `json:"capacity"    binding:"required,min=1"`
	BuildingID string `json:"building_id" binding:"required,uuid"`
}

// VenueResponse 场地响应
type VenueResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Capacity     int    `json:"capacity"`
	BuildingID   string `json:"building_id"`
	BuildingName string `json:"building_name,omitempty"`
}
