package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntryModel 支付操作台账，按支付平台操作ID去重
type LedgerEntryModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	// 支付平台分配的操作ID（payment intent / transfer / refund），幂等键
	OperationRef string `json:"operation_ref" gorm:"size:100;not null;uniqueIndex"`

	BountyId   int64           `json:"bounty_id" gorm:"not null;index"`
	Kind       string          `json:"kind" gorm:"size:20;not null"` // payment_intent, transfer, refund
	Amount     decimal.Decimal `json:"amount" gorm:"type:decimal(20,2);not null"`
	RecordedAt time.Time       `json:"recorded_at"`
}

// LedgerKind 台账操作类型
type LedgerKind string

const (
	LedgerKindPaymentIntent LedgerKind = "payment_intent" // 支付意向
	LedgerKindTransfer      LedgerKind = "transfer"       // 转账发放
	LedgerKindRefund        LedgerKind = "refund"         // 退款
)

// TableName 自定义表名
func (LedgerEntryModel) TableName() string {
	return "ledger_entry"
}
