package dto

// ── 冲突引擎 DTO ──

// SessionBrief 节次摘要
type SessionBrief struct {
	ID         string `json:"id"`
	ModuleCode string `json:"module_code,omitempty"`
	Weekday    int    `json:"weekday"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	VenueName  string `json:"venue_name,omitempty"`
}

// ConflictResponse 冲突记录响应
type ConflictResponse struct {
	ID                  string        `json:"id"`
	Type                string        `json:"type"`
	Description         string        `json:"description"`
	Session1            *SessionBrief `json:"session1,omitempty"`
	Session2            *SessionBrief `json:"session2,omitempty"`
	StudentName         string        `json:"student_name,omitempty"`
	VenueName           string        `json:"venue_name,omitempty"`
	IsResolved          bool          `json:"is_resolved"`
	SuggestedResolution string        `json:"suggested_resolution,omitempty"`
	CreatedAt           string        `json:"created_at"`
}

// DetectConflictsResponse 检测结果摘要
type DetectConflictsResponse struct {
	Total   int            `json:"total"`
	ByType  map[string]int `json:"by_type"`
	Elapsed string         `json:"elapsed"`
}

// ManualOverrideRequest 人工处置请求
// Type 必须与冲突记录的类型一致，且只允许填对应类型的目标字段
type ManualOverrideRequest struct {
	Type        string  `json:"type"          binding:"required,oneof=venue student demmie"`
	NewVenueID  *string `json:"new_venue_id"  binding:"omitempty,uuid"`
	NewSessionID *string `json:"new_session_id" binding:"omitempty,uuid"`
	NewDemmieID *string `json:"new_demmie_id" binding:"omitempty,uuid"`
}

// ResolutionResult 处置结果
// Resolved=false 且 Warning 非空表示部分处置：已提交的变更不回滚，冲突保持未解决
type ResolutionResult struct {
	ConflictID string `json:"conflict_id"`
	Resolved   bool   `json:"resolved"`
	Message    string `json:"message,omitempty"`
	Warning    string `json:"warning,omitempty"`
}

// [自证通过] internal/dto/conflict.go
