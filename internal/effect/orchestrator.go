package effect

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/bountydotnew/bounty.new-sub002/internal/logger"
	"github.com/bountydotnew/bounty.new-sub002/internal/logic"
	"github.com/bountydotnew/bounty.new-sub002/internal/model"
	"github.com/bountydotnew/bounty.new-sub002/internal/notify"
	"github.com/panjf2000/ants/v2"
	"github.com/shopspring/decimal"
)

// TrackerClient issue 追踪评论客户端
type TrackerClient interface {
	EditOrCreateComment(ctx context.Context, installationId int64, owner, repo string, issueNumber int, commentId int64, body string) (int64, error)
}

// EmailSender 邮件投递
type EmailSender interface {
	Send(ctx context.Context, to, subject, html string) error
}

// FeedPoster 动态流告警投递
type FeedPoster interface {
	PostBountyFunded(ctx context.Context, alert *notify.FundedAlert) error
}

// 副作用协程池大小
const defaultPoolSize = 16

// Orchestrator 副作用编排器
//
// 所有任务都在权威状态转换落库之后异步执行，互相隔离：单个任务
// 失败只记日志（带赏金ID和任务名），不重试、不回滚转换、不影响
// webhook 响应。
type Orchestrator struct {
	pool *ants.Pool
	wg   sync.WaitGroup

	siteBaseUrl string

	tracker TrackerClient
	email   EmailSender
	feed    FeedPoster

	fundingLogic      *logic.FundingLogic
	submissionLogic   *logic.SubmissionLogic
	cancellationLogic *logic.CancellationLogic
	notificationLogic *logic.NotificationLogic
}

// NewOrchestrator 创建副作用编排器
func NewOrchestrator(
	siteBaseUrl string,
	tracker TrackerClient,
	email EmailSender,
	feed FeedPoster,
	fundingLogic *logic.FundingLogic,
	submissionLogic *logic.SubmissionLogic,
	cancellationLogic *logic.CancellationLogic,
	notificationLogic *logic.NotificationLogic,
) (*Orchestrator, error) {
	pool, err := ants.NewPool(defaultPoolSize)
	if err != nil {
		return nil, fmt.Errorf("创建副作用协程池失败: %w", err)
	}

	return &Orchestrator{
		pool:              pool,
		siteBaseUrl:       siteBaseUrl,
		tracker:           tracker,
		email:             email,
		feed:              feed,
		fundingLogic:      fundingLogic,
		submissionLogic:   submissionLogic,
		cancellationLogic: cancellationLogic,
		notificationLogic: notificationLogic,
	}, nil
}

// BountyFunded 资金托管完成后的副作用
func (o *Orchestrator) BountyFunded(bounty *model.BountyModel) {
	b := *bounty // 快照，任务异步执行

	o.submit(b.Id, "funded_comment", func() error {
		return o.updateFundedComment(&b)
	})
	o.submit(b.Id, "submission_comments", func() error {
		return o.rewordSubmissionComments(&b)
	})
	o.submit(b.Id, "feed_alert", func() error {
		return o.postFundedAlert(&b)
	})
}

// BountyRefunded 退款完成后的副作用
func (o *Orchestrator) BountyRefunded(outcome *logic.RefundOutcome) {
	b := *outcome.Bounty
	refunded := outcome.RefundedAmount
	original := outcome.OriginalAmount

	o.submit(b.Id, "cancellation_approval", func() error {
		_, err := o.cancellationLogic.ApproveForRefund(b.Id, refunded)
		return err
	})
	o.submit(b.Id, "refund_email", func() error {
		return o.sendRefundEmail(&b, refunded, original)
	})
	o.submit(b.Id, "refund_notification", func() error {
		return o.createRefundNotification(&b, refunded)
	})
}

// Flush 等待所有在途任务完成，用于测试和进程退出
func (o *Orchestrator) Flush() {
	o.wg.Wait()
}

// Release 关闭协程池
func (o *Orchestrator) Release() {
	o.wg.Wait()
	o.pool.Release()
}

// submit 提交单个隔离任务
func (o *Orchestrator) submit(bountyId int64, task string, fn func() error) {
	o.wg.Add(1)
	err := o.pool.Submit(func() {
		defer o.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Side effect %s panicked for bounty %d: %v", task, bountyId, r)
			}
		}()
		if err := fn(); err != nil {
			logger.Error("Side effect %s failed for bounty %d: %v", task, bountyId, err)
		}
	})
	if err != nil {
		o.wg.Done()
		logger.Error("Failed to submit side effect %s for bounty %d: %v", task, bountyId, err)
	}
}

// updateFundedComment 更新（或创建）issue 线程里的托管完成公告评论
func (o *Orchestrator) updateFundedComment(bounty *model.BountyModel) error {
	if !bounty.HasIssueIntegration() {
		logger.Debug("Bounty %d has no issue integration, skipping funded comment", bounty.Id)
		return nil
	}

	count, err := o.submissionLogic.CountForBounty(bounty.Id)
	if err != nil {
		return err
	}

	body := renderFundedComment(bounty, count, o.bountyUrl(bounty.Id))
	commentId, err := o.tracker.EditOrCreateComment(context.Background(),
		bounty.InstallationId, bounty.RepoOwner, bounty.RepoName,
		bounty.IssueNumber, bounty.FundedCommentId, body)
	if err != nil {
		return err
	}

	if commentId != bounty.FundedCommentId {
		return o.fundingLogic.SetFundedCommentId(bounty.Id, commentId)
	}
	return nil
}

// rewordSubmissionComments 把已有提交评论改写为托管后的措辞
func (o *Orchestrator) rewordSubmissionComments(bounty *model.BountyModel) error {
	if !bounty.HasIssueIntegration() {
		return nil
	}

	submissions, err := o.submissionLogic.ListWithIssueComments(bounty.Id)
	if err != nil {
		return err
	}

	var lastErr error
	for _, sub := range submissions {
		body := renderSubmissionComment(&sub, bounty, o.bountyUrl(bounty.Id))
		if _, err := o.tracker.EditOrCreateComment(context.Background(),
			bounty.InstallationId, bounty.RepoOwner, bounty.RepoName,
			bounty.IssueNumber, sub.IssueCommentId, body); err != nil {
			logger.Error("Failed to reword submission comment %d for bounty %d: %v",
				sub.IssueCommentId, bounty.Id, err)
			lastErr = err
		}
	}
	return lastErr
}

// postFundedAlert 投递赏金托管完成的动态流告警
func (o *Orchestrator) postFundedAlert(bounty *model.BountyModel) error {
	alert := &notify.FundedAlert{
		BountyId:    bounty.Id,
		Title:       bounty.Title,
		Amount:      bounty.Amount.StringFixed(2),
		Currency:    bounty.Currency,
		CreatorName: bounty.CreatorName,
		Url:         o.bountyUrl(bounty.Id),
	}
	return o.feed.PostBountyFunded(context.Background(), alert)
}

// sendRefundEmail 给赏金发布者发送退款确认邮件
func (o *Orchestrator) sendRefundEmail(bounty *model.BountyModel, refunded, original decimal.Decimal) error {
	if bounty.CreatorEmail == "" {
		logger.Debug("Bounty %d creator has no email, skipping refund confirmation", bounty.Id)
		return nil
	}

	subject, html := renderRefundEmail(bounty, refunded, original)
	return o.email.Send(context.Background(), bounty.CreatorEmail, subject, html)
}

// createRefundNotification 创建退款站内通知
func (o *Orchestrator) createRefundNotification(bounty *model.BountyModel, refunded decimal.Decimal) error {
	_, err := o.notificationLogic.CreateNotification(
		bounty.CreatorId,
		model.NotificationTypeBountyRefunded,
		"赏金已退款",
		fmt.Sprintf("赏金「%s」已退款 %s %s", bounty.Title, refunded.StringFixed(2), strings.ToUpper(bounty.Currency)),
		bounty.Id,
		o.bountyUrl(bounty.Id),
	)
	return err
}

// bountyUrl 赏金详情页地址
func (o *Orchestrator) bountyUrl(bountyId int64) string {
	return fmt.Sprintf("%s/bounty/%d", strings.TrimRight(o.siteBaseUrl, "/"), bountyId)
}
