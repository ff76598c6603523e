package model

import "time"

// Allocation 学生-节次分配记录 — 对应 allocations
// (student_id, session_id) 唯一约束保证提交幂等
type Allocation struct {
	AllocationID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"   json:"allocation_id"`
	StudentID    string    `gorm:"type:uuid;not null;uniqueIndex:uq_student_session" json:"student_id"`
	SessionID    string    `gorm:"type:uuid;not null;uniqueIndex:uq_student_session" json:"session_id"`
	AssignedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"                json:"assigned_at"`

	// 关联（展示字段一律由关联按需推导，不做冗余缓存）
	Student *Student `gorm:"foreignKey:StudentID;references:StudentID" json:"student,omitempty"`
	Session *Session `gorm:"foreignKey:SessionID;references:SessionID" json:"session,omitempty"`
}

func (Allocation) TableName() string { return "allocations" }
