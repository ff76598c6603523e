package dto

// ── 助教（demmie）DTO ──

// CreateDemmieRequest 创建助教
type CreateDemmieRequest struct {
	FirstName       string `json:"first_name"        binding:"required,max=50"`
	LastName        string `json:"last_name"         binding:"required,max=50"`
	Email           string `json:"email"             binding:"required,email"`
	WeeklyHourLimit *int   `json:"weekly_hour_limit" binding:"omitempty,min=1,max=40"`
}

// AssignDemmieRequest 将助教指派到节次
type AssignDemmieRequest struct {
	DemmieID  string `json:"demmie_id"  binding:"required,uuid"`
	SessionID string `json:"session_id" binding:"required,uuid"`
}

// DemmieResponse 助教响应
type DemmieResponse struct {
	ID                  string `json:"id"`
	FullName            string `json:"full_name"`
	Email               string `json:"email"`
	WeeklyHourLimit     int    `json:"weekly_hour_limit"`
	HoursWorkedThisWeek int    `json:"hours_worked_this_week"`
	IsAssigned          bool   `json:"is_assigned"`
}

// DemmieAssignmentResponse 指派明细（含节次信息）
type DemmieAssignmentResponse struct {
	DemmieID   string       `json:"demmie_id"`
	DemmieName string       `json:"demmie_name"`
	Session    SessionBrief `json:"session"`
}

// LogHoursRequest 记录工时
type LogHoursRequest struct {
	Hours int `json:"hours" binding:"required,gt=0,lte=24"`
}

// LogHoursResponse 记录工时结果
type LogHoursResponse struct {
	HoursWorkedThisWeek int  `json:"hours_worked_this_week"`
	WeeklyHourLimit     int  `json:"weekly_hour_limit"`
	OverLimit           bool `json:"over_limit"`
}

// AvailabilityRequest 可用时段
type AvailabilityRequest struct {
	Weekday     int    `json:"weekday"      binding:"required,min=1,max=5"`
	StartTime   string `json:"start_time"   binding:"required,len=5"`
	EndTime     string `json:"end_time"     binding:"required,len=5"`
	IsAvailable bool   `json:"is_available"`
}
