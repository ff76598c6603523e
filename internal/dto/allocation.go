package dto

// ── 分配引擎 DTO ──

// ComputePreviewRequest 计算分配预览请求
type ComputePreviewRequest struct {
	ModuleID       string   `json:"module_id"        binding:"required,uuid"`
	VenueIDs       []string `json:"venue_ids"        binding:"required,dive,uuid"`
	Strategy       string   `json:"strategy"         binding:"required"`
	GroupSizeLimit int      `json:"group_size_limit" binding:"omitempty,min=0"`
}

// PreviewEntry 预览中的单个学生条目
type PreviewEntry struct {
	StudentID string `json:"student_id"`
	FullName  string `json:"full_name"`
	VenueName string `json:"venue_name"`
}

// PreviewResponse 分配预览响应
// Buckets 的键为场地名或未分配哨兵桶名；空桶不出现
type PreviewResponse struct {
	Strategy      string                    `json:"strategy"`
	TotalStudents int                       `json:"total_students"`
	Buckets       map[string][]PreviewEntry `json:"buckets"`
}

// ConfirmAllocationsRequest 提交分配请求（幂等）
type ConfirmAllocationsRequest struct {
	SessionID string         `json:"session_id" binding:"required,uuid"`
	Entries   []PreviewEntry `json:"entries"    binding:"required,dive"`
}

// ConfirmAllocationsResponse 提交分配响应
type ConfirmAllocationsResponse struct {
	Saved   int `json:"saved"`   // 实际新建条数
	Skipped int `json:"skipped"` // 已存在而跳过的条数
}
