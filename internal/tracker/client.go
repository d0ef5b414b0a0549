package tracker

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bountydotnew/bounty.new-sub002/internal/config"
	"github.com/bountydotnew/bounty.new-sub002/internal/logger"
	"github.com/go-resty/resty/v2"
)

// Client issue 追踪平台评论客户端
type Client struct {
	http *resty.Client
}

// NewClient 创建 issue 追踪客户端
func NewClient(cfg config.TrackerConfig) *Client {
	c := resty.New().
		SetBaseURL(cfg.ApiBaseUrl).
		SetTimeout(time.Duration(cfg.Timeout) * time.Second).
		SetHeader("Accept", "application/vnd.github+json").
		SetAuthToken(cfg.Token)

	return &Client{http: c}
}

type commentRequest struct {
	Body string `json:"body"`
}

type commentResponse struct {
	Id int64 `json:"id"`
}

// EditOrCreateComment 编辑 issue 评论，评论不存在时改为新建
//
// installationId 仅用于排障日志关联，认证统一走配置的令牌。
// 返回最终的评论ID。
func (c *Client) EditOrCreateComment(ctx context.Context, installationId int64, owner, repo string, issueNumber int, commentId int64, body string) (int64, error) {
	if commentId > 0 {
		resp, err := c.http.R().
			SetContext(ctx).
			SetBody(commentRequest{Body: body}).
			SetResult(&commentResponse{}).
			Patch(fmt.Sprintf("/repos/%s/%s/issues/comments/%d", owner, repo, commentId))
		if err != nil {
			return 0, fmt.Errorf("编辑 issue 评论失败: %w", err)
		}
		if resp.StatusCode() == http.StatusNotFound {
			// 评论被删除，退回新建
			logger.Warn("Comment %d on %s/%s#%d is gone, creating a new one (installation %d)",
				commentId, owner, repo, issueNumber, installationId)
		} else if resp.IsError() {
			return 0, fmt.Errorf("编辑 issue 评论返回错误: %s", resp.Status())
		} else {
			return resp.Result().(*commentResponse).Id, nil
		}
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(commentRequest{Body: body}).
		SetResult(&commentResponse{}).
		Post(fmt.Sprintf("/repos/%s/%s/issues/%d/comments", owner, repo, issueNumber))
	if err != nil {
		return 0, fmt.Errorf("创建 issue 评论失败: %w", err)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("创建 issue 评论返回错误: %s", resp.Status())
	}
	return resp.Result().(*commentResponse).Id, nil
}
