package model

// Module 课程表 — 对应 modules
type Module struct {
	ModuleID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"module_id"`
	Code     string `gorm:"type:varchar(20);not null;uniqueIndex"          json:"code"`
	Name     string `gorm:"type:varchar(200);not null"                     json:"name"`
	BaseModel

	// 关联
	Sessions []Session `gorm:"foreignKey:ModuleID" json:"sessions,omitempty"`
}

func (Module) TableName() string { return "modules" }
