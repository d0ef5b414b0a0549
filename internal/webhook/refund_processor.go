package webhook

import (
	"encoding/json"
	"fmt"

	"github.com/bountydotnew/bounty.new-sub002/internal/logger"
	"github.com/bountydotnew/bounty.new-sub002/internal/logic"
	"github.com/stripe/stripe-go/v74"
)

// RefundProcessor 退款事件处理器
//
// 同一笔逻辑退款会以两种形态到达：charge 级（charge.refunded）和
// refund 对象级（refund.updated）。两者都通过底层 payment 引用反查
// 赏金，由状态机的幂等检查保证只应用一次。
type RefundProcessor struct {
	fundingLogic *logic.FundingLogic
	effects      Effects
}

// NewRefundProcessor 创建退款事件处理器
func NewRefundProcessor(fundingLogic *logic.FundingLogic, effects Effects) *RefundProcessor {
	return &RefundProcessor{
		fundingLogic: fundingLogic,
		effects:      effects,
	}
}

// GetEventTypes 处理的事件类型
func (p *RefundProcessor) GetEventTypes() []string {
	return []string{
		"charge.refunded",
		"refund.updated",
	}
}

// Process 处理退款事件
func (p *RefundProcessor) Process(event *stripe.Event) (*Result, error) {
	var paymentRef, opRef string
	var amountCents int64

	switch event.Type {
	case "charge.refunded":
		var charge stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			return nil, fmt.Errorf("解析 charge 失败: %w", err)
		}
		if charge.PaymentIntent != nil {
			paymentRef = charge.PaymentIntent.ID
		}
		// 优先取 refund 对象ID做幂等键，两种事件形态可以在台账层互相去重
		opRef = charge.ID
		if charge.Refunds != nil && len(charge.Refunds.Data) > 0 {
			opRef = charge.Refunds.Data[0].ID
		}
		amountCents = charge.AmountRefunded

	case "refund.updated":
		var refund stripe.Refund
		if err := json.Unmarshal(event.Data.Raw, &refund); err != nil {
			return nil, fmt.Errorf("解析 refund 失败: %w", err)
		}
		if string(refund.Status) != "succeeded" {
			logger.Info("Refund %s status %s, waiting for completion", refund.ID, refund.Status)
			return &Result{NoOp: "refund not succeeded"}, nil
		}
		if refund.PaymentIntent != nil {
			paymentRef = refund.PaymentIntent.ID
		}
		opRef = refund.ID
		amountCents = refund.Amount

	default:
		return &Result{NoOp: "unhandled event type"}, nil
	}

	if paymentRef == "" {
		logger.Warn("Refund event %s carries no payment reference", event.ID)
		return &Result{NoOp: "missing payment reference"}, nil
	}

	outcome, err := p.fundingLogic.ApplyRefund(paymentRef, opRef, amountFromCents(amountCents))
	result, err := resolveOutcome(event.ID, event.Type, err)
	if err != nil {
		return nil, err
	}

	if result.Applied {
		p.effects.BountyRefunded(outcome)
	}
	return result, nil
}
