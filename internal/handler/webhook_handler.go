package handler

import (
	"io"
	"net/http"

	"github.com/bountydotnew/bounty.new-sub002/internal/logger"
	"github.com/bountydotnew/bounty.new-sub002/internal/webhook"
	"github.com/gin-gonic/gin"
)

// 通知体大小上限
const maxWebhookBodyBytes = 1 << 20

// WebhookHandler 支付平台通知处理器
//
// 响应约定：签名校验失败或内部持久化失败返回 400（支付平台会重试）；
// 其余一切已评估的结果（含无操作）返回 200 {received: true}，避免
// 平台对已理解的事件无限重试。
type WebhookHandler struct {
	verifier *webhook.Verifier
	router   *webhook.Router
}

// NewWebhookHandler 创建支付通知处理器
func NewWebhookHandler(verifier *webhook.Verifier, router *webhook.Router) *WebhookHandler {
	return &WebhookHandler{
		verifier: verifier,
		router:   router,
	}
}

// HandlePaymentWebhook 处理支付平台通知
func (h *WebhookHandler) HandlePaymentWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		logger.Warn("Failed to read webhook body: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "invalid request")
		return
	}

	// 先验签再解析，验签必须针对原始字节
	event, err := h.verifier.VerifyAndParse(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		logger.Warn("Webhook signature verification failed: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "invalid signature")
		return
	}

	result, err := h.router.Process(event)
	if err != nil {
		// 持久化失败，让支付平台重试是安全的：事务未提交任何内容
		logger.Error("Failed to process event %s (%s): %v", event.ID, event.Type, err)
		ErrorResponse(c, http.StatusBadRequest, "internal error")
		return
	}

	if result.NoOp != "" {
		logger.Info("Event %s (%s) acknowledged as no-op: %s", event.ID, event.Type, result.NoOp)
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
