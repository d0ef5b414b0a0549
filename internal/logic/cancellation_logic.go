package logic

import (
	"errors"
	"fmt"
	"time"

	"github.com/bountydotnew/bounty.new-sub002/internal/logger"
	"github.com/bountydotnew/bounty.new-sub002/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CancellationLogic 取消请求业务逻辑
type CancellationLogic struct {
	db *gorm.DB
}

// NewCancellationLogic 创建取消请求业务逻辑
func NewCancellationLogic(db *gorm.DB) *CancellationLogic {
	return &CancellationLogic{db: db}
}

// ApproveForRefund 退款到账后批准待处理的取消请求
//
// 没有待处理请求不算错误：退款可以在没有取消请求的情况下发生
// （例如支付平台侧直接退款），此时返回 nil 请求，调用方跳过
// 取消相关的后续动作。
func (c *CancellationLogic) ApproveForRefund(bountyId int64, refundAmount decimal.Decimal) (*model.CancellationRequestModel, error) {
	var request model.CancellationRequestModel
	err := c.db.Where("bounty_id = ? AND status = ?", bountyId, model.CancellationStatusPending).
		First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询取消请求失败: %w", err)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":        string(model.CancellationStatusApproved),
		"refund_amount": refundAmount,
		"processed_at":  &now,
	}
	if err := c.db.Model(&request).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("更新取消请求失败: %w", err)
	}

	logger.Info("Cancellation request %d approved for bounty %d, refund %s",
		request.Id, bountyId, refundAmount.String())
	return &request, nil
}

// GetPendingRequest 查询赏金的待处理取消请求
func (c *CancellationLogic) GetPendingRequest(bountyId int64) (*model.CancellationRequestModel, error) {
	var request model.CancellationRequestModel
	err := c.db.Where("bounty_id = ? AND status = ?", bountyId, model.CancellationStatusPending).
		First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询取消请求失败: %w", err)
	}
	return &request, nil
}
