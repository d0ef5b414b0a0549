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

// 引擎错误分类，handler 依据类别决定响应码
var (
	ErrUnknownBounty      = errors.New("赏金不存在")
	ErrAlreadyProcessed   = errors.New("操作已处理，幂等跳过")
	ErrTransitionConflict = errors.New("当前支付状态不允许该转换")
)

// FundingLogic 赏金资金状态机业务逻辑
//
// 所有状态变更都在单个数据库事务内完成：先做幂等检查（目标状态 +
// 台账），再一并写入状态转换和台账记录。operation_ref 上的唯一索引
// 是并发重试下的最后一道防线，命中唯一冲突时同样按幂等跳过处理。
type FundingLogic struct {
	db *gorm.DB
}

// NewFundingLogic 创建资金状态机业务逻辑
func NewFundingLogic(db *gorm.DB) *FundingLogic {
	return &FundingLogic{db: db}
}

// RefundOutcome 退款转换结果
type RefundOutcome struct {
	Bounty         *model.BountyModel
	RefundedAmount decimal.Decimal
	OriginalAmount decimal.Decimal
}

// ApplyFundingSucceeded 处理托管支付成功类事件（checkout 完成或支付成功）
//
// checkout-completed 和 payment-succeeded 两类事件都会宣告同一笔托管
// 成功，到达顺序不固定：先到的一方完成转换并写台账，后到的一方被
// 幂等检查吸收。
func (l *FundingLogic) ApplyFundingSucceeded(bountyId int64, opRef, paymentRef, checkoutRef string, amount decimal.Decimal) (*model.BountyModel, error) {
	var bounty model.BountyModel

	err := l.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&bounty, bountyId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnknownBounty
			}
			return fmt.Errorf("查询赏金失败: %w", err)
		}

		// 幂等检查：已到目标状态或台账已有该操作
		if bounty.PaymentStatus == string(model.PaymentStatusHeld) {
			return ErrAlreadyProcessed
		}
		if applied, err := l.operationApplied(tx, opRef); err != nil {
			return err
		} else if applied {
			return ErrAlreadyProcessed
		}

		// 终态吸收
		if isTerminalPaymentStatus(bounty.PaymentStatus) {
			return ErrAlreadyProcessed
		}
		if !isAwaitingFunding(bounty.PaymentStatus) {
			return ErrTransitionConflict
		}

		updates := map[string]interface{}{
			"payment_status": string(model.PaymentStatusHeld),
			"status":         string(model.BountyStatusOpen),
		}
		if paymentRef != "" {
			updates["provider_payment_ref"] = paymentRef
		}
		if checkoutRef != "" {
			updates["provider_checkout_ref"] = checkoutRef
		}
		if err := tx.Model(&bounty).Updates(updates).Error; err != nil {
			return fmt.Errorf("更新赏金支付状态失败: %w", err)
		}

		return l.recordOperation(tx, opRef, bounty.Id, model.LedgerKindPaymentIntent, amount)
	})
	if err != nil {
		return &bounty, err
	}

	logger.Info("Bounty %d funded, operation %s", bounty.Id, opRef)
	return &bounty, nil
}

// ApplyFundingFailed 处理支付失败事件
func (l *FundingLogic) ApplyFundingFailed(bountyId int64, opRef string, amount decimal.Decimal) (*model.BountyModel, error) {
	return l.applyFundingTerminated(bountyId, opRef, amount, model.PaymentStatusFailed)
}

// ApplyFundingCanceled 处理支付取消事件，资金从未被扣取
func (l *FundingLogic) ApplyFundingCanceled(bountyId int64, opRef string, amount decimal.Decimal) (*model.BountyModel, error) {
	return l.applyFundingTerminated(bountyId, opRef, amount, model.PaymentStatusRefunded)
}

// applyFundingTerminated 支付中断类转换（失败/取消），仅对未完成托管的赏金生效
func (l *FundingLogic) applyFundingTerminated(bountyId int64, opRef string, amount decimal.Decimal, target model.PaymentStatus) (*model.BountyModel, error) {
	var bounty model.BountyModel

	err := l.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&bounty, bountyId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnknownBounty
			}
			return fmt.Errorf("查询赏金失败: %w", err)
		}

		if bounty.PaymentStatus == string(target) {
			return ErrAlreadyProcessed
		}
		if applied, err := l.operationApplied(tx, opRef); err != nil {
			return err
		} else if applied {
			return ErrAlreadyProcessed
		}
		if isTerminalPaymentStatus(bounty.PaymentStatus) {
			return ErrAlreadyProcessed
		}
		if !isAwaitingFunding(bounty.PaymentStatus) {
			// 已托管的资金不会因失败/取消事件回退
			return ErrTransitionConflict
		}

		if err := tx.Model(&bounty).Update("payment_status", string(target)).Error; err != nil {
			return fmt.Errorf("更新赏金支付状态失败: %w", err)
		}

		return l.recordOperation(tx, opRef, bounty.Id, model.LedgerKindPaymentIntent, amount)
	})
	if err != nil {
		return &bounty, err
	}

	logger.Info("Bounty %d funding terminated to %s, operation %s", bounty.Id, target, opRef)
	return &bounty, nil
}

// ApplyRefund 处理退款成功事件
//
// 赏金通过支付平台的 payment 引用反查。退款金额以事件载荷为准，
// 不从原始金额反推。charge 级和 refund 对象级两种事件形态描述的是
// 同一笔逻辑退款：后到的形态即使携带不同的操作ID，也会被目标状态
// 检查吸收，不会产生第二条台账。
func (l *FundingLogic) ApplyRefund(paymentRef, opRef string, refundedAmount decimal.Decimal) (*RefundOutcome, error) {
	outcome := &RefundOutcome{RefundedAmount: refundedAmount}

	err := l.db.Transaction(func(tx *gorm.DB) error {
		var bounty model.BountyModel
		if err := tx.Where("provider_payment_ref = ?", paymentRef).First(&bounty).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnknownBounty
			}
			return fmt.Errorf("查询赏金失败: %w", err)
		}
		outcome.Bounty = &bounty
		outcome.OriginalAmount = bounty.Amount

		if bounty.PaymentStatus == string(model.PaymentStatusRefunded) {
			return ErrAlreadyProcessed
		}
		if applied, err := l.operationApplied(tx, opRef); err != nil {
			return err
		} else if applied {
			return ErrAlreadyProcessed
		}

		// 仅已托管/已发放的资金可退
		if bounty.PaymentStatus != string(model.PaymentStatusHeld) &&
			bounty.PaymentStatus != string(model.PaymentStatusReleased) {
			return ErrTransitionConflict
		}

		updates := map[string]interface{}{
			"payment_status": string(model.PaymentStatusRefunded),
			"status":         string(model.BountyStatusCancelled),
		}
		if err := tx.Model(&bounty).Updates(updates).Error; err != nil {
			return fmt.Errorf("更新赏金支付状态失败: %w", err)
		}

		return l.recordOperation(tx, opRef, bounty.Id, model.LedgerKindRefund, refundedAmount)
	})
	if err != nil {
		return outcome, err
	}

	logger.Info("Bounty %d refunded %s, operation %s", outcome.Bounty.Id, refundedAmount.String(), opRef)
	return outcome, nil
}

// ApplyTransfer 处理转账发放事件，托管资金发放给猎手
func (l *FundingLogic) ApplyTransfer(bountyId int64, opRef string, amount decimal.Decimal) (*model.BountyModel, error) {
	var bounty model.BountyModel

	err := l.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&bounty, bountyId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnknownBounty
			}
			return fmt.Errorf("查询赏金失败: %w", err)
		}

		if bounty.PaymentStatus == string(model.PaymentStatusReleased) {
			return ErrAlreadyProcessed
		}
		if applied, err := l.operationApplied(tx, opRef); err != nil {
			return err
		} else if applied {
			return ErrAlreadyProcessed
		}
		if bounty.PaymentStatus != string(model.PaymentStatusHeld) {
			return ErrTransitionConflict
		}

		if err := tx.Model(&bounty).Update("payment_status", string(model.PaymentStatusReleased)).Error; err != nil {
			return fmt.Errorf("更新赏金支付状态失败: %w", err)
		}

		return l.recordOperation(tx, opRef, bounty.Id, model.LedgerKindTransfer, amount)
	})
	if err != nil {
		return &bounty, err
	}

	logger.Info("Bounty %d released, transfer %s", bounty.Id, opRef)
	return &bounty, nil
}

// SetFundedCommentId 记录 issue 线程里托管公告评论的ID
func (l *FundingLogic) SetFundedCommentId(bountyId, commentId int64) error {
	if err := l.db.Model(&model.BountyModel{}).Where("id = ?", bountyId).
		Update("funded_comment_id", commentId).Error; err != nil {
		return fmt.Errorf("更新公告评论ID失败: %w", err)
	}
	return nil
}

// GetBountyByPaymentRef 按支付平台 payment 引用查询赏金
func (l *FundingLogic) GetBountyByPaymentRef(paymentRef string) (*model.BountyModel, error) {
	var bounty model.BountyModel
	if err := l.db.Where("provider_payment_ref = ?", paymentRef).First(&bounty).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownBounty
		}
		return nil, fmt.Errorf("查询赏金失败: %w", err)
	}
	return &bounty, nil
}

// operationApplied 台账中是否已存在该操作
func (l *FundingLogic) operationApplied(tx *gorm.DB, opRef string) (bool, error) {
	var count int64
	if err := tx.Model(&model.LedgerEntryModel{}).Where("operation_ref = ?", opRef).Count(&count).Error; err != nil {
		return false, fmt.Errorf("查询台账失败: %w", err)
	}
	return count > 0, nil
}

// recordOperation 写入台账记录，唯一冲突按幂等跳过处理
func (l *FundingLogic) recordOperation(tx *gorm.DB, opRef string, bountyId int64, kind model.LedgerKind, amount decimal.Decimal) error {
	entry := model.LedgerEntryModel{
		OperationRef: opRef,
		BountyId:     bountyId,
		Kind:         string(kind),
		Amount:       amount,
		RecordedAt:   time.Now(),
	}
	if err := tx.Create(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyProcessed
		}
		return fmt.Errorf("创建台账记录失败: %w", err)
	}
	return nil
}

// isAwaitingFunding 是否处于可完成托管的状态
func isAwaitingFunding(status string) bool {
	return status == string(model.PaymentStatusUnset) || status == string(model.PaymentStatusPending)
}

// isTerminalPaymentStatus 是否为终态
func isTerminalPaymentStatus(status string) bool {
	return status == string(model.PaymentStatusRefunded) || status == string(model.PaymentStatusFailed)
}
