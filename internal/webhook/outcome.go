package webhook

import (
	"errors"
	"strconv"

	"github.com/bountydotnew/bounty.new-sub002/internal/logger"
	"github.com/bountydotnew/bounty.new-sub002/internal/logic"
	"github.com/bountydotnew/bounty.new-sub002/internal/model"
	"github.com/shopspring/decimal"
)

// Effects 状态转换成功后的副作用入口
type Effects interface {
	BountyFunded(bounty *model.BountyModel)
	BountyRefunded(outcome *logic.RefundOutcome)
}

var centsFactor = decimal.NewFromInt(100)

// amountFromCents 支付平台以最小货币单位（分）表示金额，入口处统一转为定点数
func amountFromCents(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(centsFactor)
}

// bountyIdFromMetadata 从事件元数据解析赏金ID
func bountyIdFromMetadata(metadata map[string]string) (int64, bool) {
	raw, ok := metadata["bounty_id"]
	if !ok || raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// resolveOutcome 将状态机的错误分类映射为处理结果
//
// 幂等跳过、转换冲突和赏金缺失都按无操作确认，只有持久化失败会
// 向上传播并促使支付平台重试。
func resolveOutcome(eventId, eventType string, err error) (*Result, error) {
	switch {
	case err == nil:
		return &Result{Applied: true}, nil
	case errors.Is(err, logic.ErrAlreadyProcessed):
		logger.Info("Event %s (%s) already processed, skipping", eventId, eventType)
		return &Result{NoOp: "already processed"}, nil
	case errors.Is(err, logic.ErrTransitionConflict):
		logger.Warn("Event %s (%s) conflicts with current payment status, skipping", eventId, eventType)
		return &Result{NoOp: "transition conflict"}, nil
	case errors.Is(err, logic.ErrUnknownBounty):
		logger.Warn("Event %s (%s) references unknown bounty, skipping", eventId, eventType)
		return &Result{NoOp: "unknown bounty"}, nil
	default:
		return nil, err
	}
}
