package webhook

import (
	"encoding/json"
	"fmt"

	"github.com/bountydotnew/bounty.new-sub002/internal/logger"
	"github.com/bountydotnew/bounty.new-sub002/internal/logic"
	"github.com/stripe/stripe-go/v74"
)

// TransferProcessor 转账发放事件处理器，托管资金发放给猎手时记账
type TransferProcessor struct {
	fundingLogic *logic.FundingLogic
}

// NewTransferProcessor 创建转账事件处理器
func NewTransferProcessor(fundingLogic *logic.FundingLogic) *TransferProcessor {
	return &TransferProcessor{fundingLogic: fundingLogic}
}

// GetEventTypes 处理的事件类型
func (p *TransferProcessor) GetEventTypes() []string {
	return []string{
		"transfer.created",
		"transfer.updated",
	}
}

// Process 处理转账事件
func (p *TransferProcessor) Process(event *stripe.Event) (*Result, error) {
	var transfer stripe.Transfer
	if err := json.Unmarshal(event.Data.Raw, &transfer); err != nil {
		return nil, fmt.Errorf("解析 transfer 失败: %w", err)
	}

	bountyId, ok := bountyIdFromMetadata(transfer.Metadata)
	if !ok {
		logger.Info("Transfer %s carries no bounty reference, ignoring", transfer.ID)
		return &Result{NoOp: "missing bounty reference"}, nil
	}

	_, err := p.fundingLogic.ApplyTransfer(bountyId, transfer.ID, amountFromCents(transfer.Amount))
	return resolveOutcome(event.ID, event.Type, err)
}
