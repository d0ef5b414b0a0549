package scheduler

import (
	"time"

	"github.com/bountydotnew/bounty.new-sub002/internal/config"
	"github.com/bountydotnew/bounty.new-sub002/internal/logger"
	"github.com/bountydotnew/bounty.new-sub002/internal/model"
	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// FundingExpiryJob 支付超时清理任务
//
// 发起托管支付后长时间停留在 pending 的赏金（下单页被放弃）扫为
// failed，发布者可以重新发起支付。已有台账记录的操作不受影响。
type FundingExpiryJob struct {
	db     *gorm.DB
	config *config.Config
}

// NewFundingExpiryJob 创建支付超时清理任务
func NewFundingExpiryJob(db *gorm.DB, cfg *config.Config) *FundingExpiryJob {
	return &FundingExpiryJob{
		db:     db,
		config: cfg,
	}
}

// GetName 获取任务名称
func (j *FundingExpiryJob) GetName() string {
	return "funding_expiry_sweeper"
}

// GetSchedule 获取调度配置
func (j *FundingExpiryJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Scheduler.Interval) * time.Second)
}

// Execute 执行任务
func (j *FundingExpiryJob) Execute() {
	expiry := time.Duration(j.config.Scheduler.PendingExpiryHours) * time.Hour
	cutoff := time.Now().Add(-expiry)

	result := j.db.Model(&model.BountyModel{}).
		Where("payment_status = ? AND updated_at < ?", model.PaymentStatusPending, cutoff).
		Update("payment_status", string(model.PaymentStatusFailed))
	if result.Error != nil {
		logger.Error("Failed to sweep expired funding attempts: %v", result.Error)
		return
	}

	if result.RowsAffected > 0 {
		logger.Info("Swept %d expired funding attempts to failed", result.RowsAffected)
	}
}
