package model

import (
	"time"
)

// NotificationModel 站内通知
type NotificationModel struct {
	Id        string    `json:"id" gorm:"primaryKey;size:36"`
	CreatedAt time.Time `json:"created_at"`

	UserId  int64  `json:"user_id" gorm:"not null;index"`
	Type    string `json:"type" gorm:"size:50;not null"`
	Title   string `json:"title" gorm:"size:200"`
	Message string `json:"message" gorm:"type:text"`

	BountyId int64      `json:"bounty_id" gorm:"index"`
	LinkTo   string     `json:"link_to" gorm:"size:500"`
	ReadAt   *time.Time `json:"read_at"`
}

// NotificationType 通知类型
type NotificationType string

const (
	NotificationTypeBountyFunded   NotificationType = "bounty_funded"   // 赏金托管完成
	NotificationTypeBountyRefunded NotificationType = "bounty_refunded" // 赏金已退款
)

// TableName 自定义表名
func (NotificationModel) TableName() string {
	return "notification"
}
