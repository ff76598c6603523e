package model

// Session 每周固定时段的教学节次 — 对应 sessions
// StartTime/EndTime 为 "HH:mm" 格式，区间左闭右开：
// 一节课的结束时刻等于另一节的开始时刻时不算重叠
type Session struct {
	SessionID        string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"session_id"`
	ModuleID         string  `gorm:"type:uuid;not null"                             json:"module_id"`
	Weekday          int     `gorm:"type:smallint;not null"                         json:"weekday"` // 1=周一 … 5=周五
	StartTime        string  `gorm:"type:varchar(5);not null"                       json:"start_time"`
	EndTime          string  `gorm:"type:varchar(5);not null"                       json:"end_time"`
	Type             string  `gorm:"type:varchar(30)"                               json:"type,omitempty"` // lecture | tutorial | practical
	VenueID          string  `gorm:"type:uuid;not null"                             json:"venue_id"`
	CapacityOverride *int    `json:"capacity_override,omitempty"`
	VersionedModel

	// 关联
	Module *Module `gorm:"foreignKey:ModuleID;references:ModuleID" json:"module,omitempty"`
	Venue  *Venue  `gorm:"foreignKey:VenueID;references:VenueID"   json:"venue,omitempty"`
}

func (Session) TableName() string { return "sessions" }

// EffectiveCapacity 节次有效容量：有覆盖值用覆盖值，否则用场地容量
func (s *Session) EffectiveCapacity() int {
	if s.CapacityOverride != nil {
		return *s.CapacityOverride
	}
	if s.Venue != nil {
		return s.Venue.Capacity
	}
	return 0
}
