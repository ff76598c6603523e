package model

import "time"

// Demmie 助教表 — 对应 demmies
// HoursWorkedThisWeek 允许超过 WeeklyHourLimit（超限仅触发通知，不拒绝）；
// 每周一由外部定时任务清零
type Demmie struct {
	DemmieID            string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"demmie_id"`
	FirstName           string     `gorm:"type:varchar(50);not null"                      json:"first_name"`
	LastName            string     `gorm:"type:varchar(50);not null"                      json:"last_name"`
	Email               string     `gorm:"type:varchar(100);not null;uniqueIndex"         json:"email"`
	WeeklyHourLimit     int        `gorm:"not null;default:10"                            json:"weekly_hour_limit"`
	HoursWorkedThisWeek int        `gorm:"not null;default:0"                             json:"hours_worked_this_week"`
	IsAssigned          bool       `gorm:"not null;default:false"                         json:"is_assigned"`
	AssignedAt          *time.Time `json:"assigned_at,omitempty"`
	VersionedModel

	// 关联
	Sessions       []DemmieSession      `gorm:"foreignKey:DemmieID" json:"sessions,omitempty"`
	ModuleLinks    []DemmieModule       `gorm:"foreignKey:DemmieID" json:"module_links,omitempty"`
	Availabilities []DemmieAvailability `gorm:"foreignKey:DemmieID" json:"availabilities,omitempty"`
}

func (Demmie) TableName() string { return "demmies" }

// FullName 展示用全名
func (d *Demmie) FullName() string { return d.FirstName + " " + d.LastName }

// DemmieSession 助教-节次桥表 — 对应 demmie_sessions
// (demmie_id, session_id) 唯一
type DemmieSession struct {
	ID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"  json:"id"`
	DemmieID  string    `gorm:"type:uuid;not null;uniqueIndex:uq_demmie_session" json:"demmie_id"`
	SessionID string    `gorm:"type:uuid;not null;uniqueIndex:uq_demmie_session" json:"session_id"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"               json:"created_at"`

	Demmie  *Demmie  `gorm:"foreignKey:DemmieID;references:DemmieID"   json:"demmie,omitempty"`
	Session *Session `gorm:"foreignKey:SessionID;references:SessionID" json:"session,omitempty"`
}

func (DemmieSession) TableName() string { return "demmie_sessions" }

// DemmieModule 助教-课程桥表 — 对应 demmie_modules
// 不变式：当且仅当该助教对该课程存在至少一条节次桥记录时存在
type DemmieModule struct {
	ID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	DemmieID  string    `gorm:"type:uuid;not null;uniqueIndex:uq_demmie_module" json:"demmie_id"`
	ModuleID  string    `gorm:"type:uuid;not null;uniqueIndex:uq_demmie_module" json:"module_id"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"              json:"created_at"`

	Demmie *Demmie `gorm:"foreignKey:DemmieID;references:DemmieID" json:"demmie,omitempty"`
	Module *Module `gorm:"foreignKey:ModuleID;references:ModuleID" json:"module,omitempty"`
}

func (DemmieModule) TableName() string { return "demmie_modules" }

// DemmieAvailability 助教可用时间窗口 — 对应 demmie_availabilities
type DemmieAvailability struct {
	ID          string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	DemmieID    string    `gorm:"type:uuid;not null"                             json:"demmie_id"`
	Weekday     int       `gorm:"type:smallint;not null"                         json:"weekday"` // 1-5
	StartTime   string    `gorm:"type:varchar(5);not null"                       json:"start_time"`
	EndTime     string    `gorm:"type:varchar(5);not null"                       json:"end_time"`
	IsAvailable bool      `gorm:"not null;default:true"                          json:"is_available"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
}

func (DemmieAvailability) TableName() string { return "demmie_availabilities" }

// Covers 判断窗口是否完整覆盖 [start, end) 且可用
func (a *DemmieAvailability) Covers(weekday int, start, end string) bool {
	return a.IsAvailable && a.Weekday == weekday && a.StartTime <= start && a.EndTime >= end
}

// [自证通过] internal/model/demmie.go
