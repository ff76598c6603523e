package model

// Building 教学楼表 — 对应 buildings
type Building struct {
	BuildingID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"building_id"`
	Name       string `gorm:"type:varchar(100);not null"                     json:"name"`
	BaseModel

	Venues []Venue `gorm:"foreignKey:BuildingID" json:"venues,omitempty"`
}

func (Building) TableName() string { return "buildings" }

// Venue 场地表 — 对应 venues
type Venue struct {
	VenueID    string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"venue_id"`
	Name       string `gorm:"type:varchar(100);not null"                     json:"name"`
	Capacity   int    `gorm:"not null"                                       json:"capacity"` // >= 1
	BuildingID string `gorm:"type:uuid;not null"                             json:"building_id"`
	BaseModel

	Building *Building `gorm:"foreignKey:BuildingID;references:BuildingID" json:"building,omitempty"`
}

func (Venue) TableName() string { return "venues" }
