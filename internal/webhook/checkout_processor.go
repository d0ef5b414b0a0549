package webhook

import (
	"encoding/json"
	"fmt"

	"github.com/bountydotnew/bounty.new-sub002/internal/logger"
	"github.com/bountydotnew/bounty.new-sub002/internal/logic"
	"github.com/stripe/stripe-go/v74"
)

// CheckoutProcessor 托管下单完成事件处理器
type CheckoutProcessor struct {
	fundingLogic *logic.FundingLogic
	effects      Effects
}

// NewCheckoutProcessor 创建托管下单事件处理器
func NewCheckoutProcessor(fundingLogic *logic.FundingLogic, effects Effects) *CheckoutProcessor {
	return &CheckoutProcessor{
		fundingLogic: fundingLogic,
		effects:      effects,
	}
}

// GetEventTypes 处理的事件类型
func (p *CheckoutProcessor) GetEventTypes() []string {
	return []string{"checkout.session.completed"}
}

// Process 处理托管下单完成事件
//
// 只有底层扣款已经成功的 session 才算托管完成；异步支付方式下
// session 先完成、扣款后成功，届时由支付成功事件完成转换。
func (p *CheckoutProcessor) Process(event *stripe.Event) (*Result, error) {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, fmt.Errorf("解析 checkout session 失败: %w", err)
	}

	if session.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		logger.Info("Checkout session %s not paid yet, waiting for payment event", session.ID)
		return &Result{NoOp: "checkout not paid"}, nil
	}

	bountyId, ok := bountyIdFromMetadata(session.Metadata)
	if !ok {
		logger.Warn("Checkout session %s carries no bounty reference", session.ID)
		return &Result{NoOp: "missing bounty reference"}, nil
	}

	paymentRef := ""
	if session.PaymentIntent != nil {
		paymentRef = session.PaymentIntent.ID
	}
	if paymentRef == "" {
		logger.Warn("Checkout session %s carries no payment intent", session.ID)
		return &Result{NoOp: "missing payment intent"}, nil
	}

	bounty, err := p.fundingLogic.ApplyFundingSucceeded(
		bountyId, paymentRef, paymentRef, session.ID, amountFromCents(session.AmountTotal))
	result, err := resolveOutcome(event.ID, event.Type, err)
	if err != nil {
		return nil, err
	}

	if result.Applied {
		p.effects.BountyFunded(bounty)
	}
	return result, nil
}
