package webhook

import (
	"encoding/json"
	"fmt"

	"github.com/bountydotnew/bounty.new-sub002/internal/logger"
	"github.com/bountydotnew/bounty.new-sub002/internal/logic"
	"github.com/bountydotnew/bounty.new-sub002/internal/model"
	"github.com/stripe/stripe-go/v74"
)

// PaymentIntentProcessor 支付意向事件处理器
type PaymentIntentProcessor struct {
	fundingLogic *logic.FundingLogic
	effects      Effects
}

// NewPaymentIntentProcessor 创建支付意向事件处理器
func NewPaymentIntentProcessor(fundingLogic *logic.FundingLogic, effects Effects) *PaymentIntentProcessor {
	return &PaymentIntentProcessor{
		fundingLogic: fundingLogic,
		effects:      effects,
	}
}

// GetEventTypes 处理的事件类型
func (p *PaymentIntentProcessor) GetEventTypes() []string {
	return []string{
		"payment_intent.succeeded",
		"payment_intent.payment_failed",
		"payment_intent.canceled",
	}
}

// Process 处理支付意向事件
func (p *PaymentIntentProcessor) Process(event *stripe.Event) (*Result, error) {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return nil, fmt.Errorf("解析 payment intent 失败: %w", err)
	}

	bountyId, ok := bountyIdFromMetadata(intent.Metadata)
	if !ok {
		logger.Warn("Payment intent %s carries no bounty reference", intent.ID)
		return &Result{NoOp: "missing bounty reference"}, nil
	}

	amount := amountFromCents(intent.Amount)

	var (
		bounty *model.BountyModel
		err    error
	)
	switch event.Type {
	case "payment_intent.succeeded":
		bounty, err = p.fundingLogic.ApplyFundingSucceeded(bountyId, intent.ID, intent.ID, "", amount)
	case "payment_intent.payment_failed":
		bounty, err = p.fundingLogic.ApplyFundingFailed(bountyId, intent.ID, amount)
	case "payment_intent.canceled":
		bounty, err = p.fundingLogic.ApplyFundingCanceled(bountyId, intent.ID, amount)
	default:
		return &Result{NoOp: "unhandled event type"}, nil
	}

	result, err := resolveOutcome(event.ID, event.Type, err)
	if err != nil {
		return nil, err
	}

	if result.Applied && event.Type == "payment_intent.succeeded" {
		p.effects.BountyFunded(bounty)
	}
	return result, nil
}
