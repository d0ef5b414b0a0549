package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CancellationRequestModel 赏金取消请求
type CancellationRequestModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	BountyId int64  `json:"bounty_id" gorm:"not null;index"`
	Status   string `json:"status" gorm:"size:20;default:'pending';index"` // pending, approved, withdrawn
	Reason   string `json:"reason" gorm:"type:text"`

	// 退款到账后回填
	RefundAmount decimal.Decimal `json:"refund_amount" gorm:"type:decimal(20,2)"`
	ProcessedAt  *time.Time      `json:"processed_at"`
}

// CancellationStatus 取消请求状态
type CancellationStatus string

const (
	CancellationStatusPending   CancellationStatus = "pending"   // 待处理
	CancellationStatusApproved  CancellationStatus = "approved"  // 已批准（退款完成）
	CancellationStatusWithdrawn CancellationStatus = "withdrawn" // 已撤回
)

// TableName 自定义表名
func (CancellationRequestModel) TableName() string {
	return "cancellation_request"
}
