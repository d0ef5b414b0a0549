package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BountyModel 赏金任务
type BountyModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title    string          `json:"title" gorm:"not null"`
	Amount   decimal.Decimal `json:"amount" gorm:"type:decimal(20,2);not null"`
	Currency string          `json:"currency" gorm:"size:10;default:'usd'"`

	Status        string `json:"status" gorm:"size:20;default:'draft';index"`         // draft, open, in_progress, completed, cancelled
	PaymentStatus string `json:"payment_status" gorm:"size:20;default:'unset';index"` // unset, pending, held, released, refunded, failed

	// 支付平台引用，每次发起托管支付时写入，之后不再变更
	ProviderPaymentRef  string `json:"provider_payment_ref" gorm:"size:100;index"`
	ProviderCheckoutRef string `json:"provider_checkout_ref" gorm:"size:100"`

	CreatorId    int64  `json:"creator_id" gorm:"not null;index"`
	CreatorName  string `json:"creator_name" gorm:"size:100"`
	CreatorEmail string `json:"creator_email" gorm:"size:200"`

	// issue 追踪集成信息，仅从外部 issue 创建的赏金才有
	InstallationId  int64  `json:"installation_id"`
	RepoOwner       string `json:"repo_owner" gorm:"size:100"`
	RepoName        string `json:"repo_name" gorm:"size:100"`
	IssueNumber     int    `json:"issue_number"`
	FundedCommentId int64  `json:"funded_comment_id"`
}

// BountyStatus 赏金状态
type BountyStatus string

const (
	BountyStatusDraft      BountyStatus = "draft"       // 草稿
	BountyStatusOpen       BountyStatus = "open"        // 已开放（资金托管完成）
	BountyStatusInProgress BountyStatus = "in_progress" // 进行中
	BountyStatusCompleted  BountyStatus = "completed"   // 已完成
	BountyStatusCancelled  BountyStatus = "cancelled"   // 已取消
)

// PaymentStatus 支付状态
type PaymentStatus string

const (
	PaymentStatusUnset    PaymentStatus = "unset"    // 未发起支付
	PaymentStatusPending  PaymentStatus = "pending"  // 支付进行中
	PaymentStatusHeld     PaymentStatus = "held"     // 资金已托管
	PaymentStatusReleased PaymentStatus = "released" // 资金已发放
	PaymentStatusRefunded PaymentStatus = "refunded" // 已退款
	PaymentStatusFailed   PaymentStatus = "failed"   // 支付失败
)

// TableName 自定义表名
func (BountyModel) TableName() string {
	return "bounty"
}

// HasIssueIntegration 是否关联了外部 issue
func (b *BountyModel) HasIssueIntegration() bool {
	return b.RepoOwner != "" && b.RepoName != "" && b.IssueNumber > 0
}
