package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/bountydotnew/bounty.new-sub002/internal/config"
	"github.com/go-resty/resty/v2"
)

// EmailSender 邮件投递客户端，走HTTP投递API
type EmailSender struct {
	http *resty.Client
	url  string
	from string
}

// NewEmailSender 创建邮件投递客户端
func NewEmailSender(cfg config.NotifyConfig) *EmailSender {
	c := resty.New().
		SetTimeout(time.Duration(cfg.Timeout) * time.Second).
		SetAuthToken(cfg.EmailApiKey)

	return &EmailSender{
		http: c,
		url:  cfg.EmailApiUrl,
		from: cfg.EmailFrom,
	}
}

type emailRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Html    string `json:"html"`
}

// Send 投递一封邮件
func (s *EmailSender) Send(ctx context.Context, to, subject, html string) error {
	if s.url == "" {
		return fmt.Errorf("邮件投递API未配置")
	}

	resp, err := s.http.R().
		SetContext(ctx).
		SetBody(emailRequest{
			From:    s.from,
			To:      to,
			Subject: subject,
			Html:    html,
		}).
		Post(s.url)
	if err != nil {
		return fmt.Errorf("邮件投递请求失败: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("邮件投递返回错误: %s", resp.Status())
	}
	return nil
}
