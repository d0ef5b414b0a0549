package logic

import (
	"fmt"

	"github.com/bountydotnew/bounty.new-sub002/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationLogic 站内通知业务逻辑
type NotificationLogic struct {
	db *gorm.DB
}

// NewNotificationLogic 创建站内通知业务逻辑
func NewNotificationLogic(db *gorm.DB) *NotificationLogic {
	return &NotificationLogic{db: db}
}

// CreateNotification 创建站内通知
func (n *NotificationLogic) CreateNotification(userId int64, typ model.NotificationType, title, message string, bountyId int64, linkTo string) (*model.NotificationModel, error) {
	notification := model.NotificationModel{
		Id:       uuid.NewString(),
		UserId:   userId,
		Type:     string(typ),
		Title:    title,
		Message:  message,
		BountyId: bountyId,
		LinkTo:   linkTo,
	}
	if err := n.db.Create(&notification).Error; err != nil {
		return nil, fmt.Errorf("创建通知失败: %w", err)
	}
	return &notification, nil
}
