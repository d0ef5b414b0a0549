package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/bountydotnew/bounty.new-sub002/internal/config"
	"github.com/go-resty/resty/v2"
)

// FundedAlert 赏金托管完成的动态流告警
type FundedAlert struct {
	BountyId    int64  `json:"bounty_id"`
	Title       string `json:"title"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	CreatorName string `json:"creator_name"`
	Url         string `json:"url"`
}

// FeedPoster 动态流webhook投递客户端，即发即忘
type FeedPoster struct {
	http *resty.Client
	url  string
}

// NewFeedPoster 创建动态流投递客户端
func NewFeedPoster(cfg config.NotifyConfig) *FeedPoster {
	c := resty.New().
		SetTimeout(time.Duration(cfg.Timeout) * time.Second)

	return &FeedPoster{
		http: c,
		url:  cfg.FeedWebhookUrl,
	}
}

// Configured 是否配置了投递地址
func (f *FeedPoster) Configured() bool {
	return f.url != ""
}

// PostBountyFunded 投递赏金托管完成告警
func (f *FeedPoster) PostBountyFunded(ctx context.Context, alert *FundedAlert) error {
	if f.url == "" {
		return nil
	}

	resp, err := f.http.R().
		SetContext(ctx).
		SetBody(alert).
		Post(f.url)
	if err != nil {
		return fmt.Errorf("动态流投递请求失败: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("动态流投递返回错误: %s", resp.Status())
	}
	return nil
}
