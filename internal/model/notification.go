package model

import "time"

// Notification 通知消息表 — 对应 notifications
// 引擎视角下为单向写入的消息槽；投递失败不回滚已提交的业务变更
type Notification struct {
	NotificationID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"notification_id"`
	RecipientID    string  `gorm:"type:uuid;not null"                             json:"recipient_id"`
	Title          string  `gorm:"type:varchar(200);not null"                     json:"title"`
	Content        string  `gorm:"type:text;not null"                             json:"content"`
	Category       string  `gorm:"type:varchar(50);not null;default:'General'"    json:"category"` // General | Assignment | Workload | Conflict
	IsRead         bool    `gorm:"not null;default:false"                         json:"is_read"`
	RelatedType    *string `gorm:"type:varchar(20)"                               json:"related_type,omitempty"` // session | conflict | demmie
	RelatedID      *string `gorm:"type:uuid"                                      json:"related_id,omitempty"`
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"           json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
