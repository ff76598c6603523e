package dto

// ── 节次 DTO ──

// CreateSessionRequest 创建节次
type CreateSessionRequest struct {
	ModuleID         string `json:"module_id"  binding:"required,uuid"`
	VenueID          string `json:"venue_id"   binding:"required,uuid"`
	Weekday          int    `json:"weekday"    binding:"required,min=1,max=5"`
	StartTime        string `json:"start_time" binding:"required,len=5"`
	EndTime          string `json:"end_time"   binding:"required,len=5"`
	Type             string `json:"type"       binding:"required,oneof=lecture lab tutorial"`
	CapacityOverride *int   `json:"capacity_override" binding:"omitempty,min=1"`
}

// UpdateSessionVenueRequest 调整节次场地（乐观锁）
type UpdateSessionVenueRequest struct {
	VenueID string `json:"venue_id" binding:"required,uuid"`
	Version int    `json:"version"  binding:"min=0"`
}

// SessionResponse 节次响应
type SessionResponse struct {
	ID                string `json:"id"`
	ModuleID          string `json:"module_id"`
	ModuleCode        string `json:"module_code,omitempty"`
	VenueID           string `json:"venue_id"`
	VenueName         string `json:"venue_name,omitempty"`
	Weekday           int    `json:"weekday"`
	StartTime         string `json:"start_time"`
	EndTime           string `json:"end_time"`
	Type              string `json:"type"`
	EffectiveCapacity int    `json:"effective_capacity"`
	Version           int    `json:"version"`
}

// ImportICSResponse ICS 导入结果
type ImportICSResponse struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}
