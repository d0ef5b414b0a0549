package webhook

import (
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"
)

// ErrInvalidSignature 通知签名校验失败
var ErrInvalidSignature = errors.New("通知签名校验失败")

// Verifier 通知签名校验器
//
// 签名必须针对未解析的原始字节逐字校验，校验通过前不做任何反序列化，
// 避免重新序列化差异造成的签名绕过。
type Verifier struct {
	secret string
}

// NewVerifier 创建签名校验器
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: secret}
}

// VerifyAndParse 校验签名并反序列化为类型化事件
func (v *Verifier) VerifyAndParse(payload []byte, sigHeader string) (*stripe.Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, v.secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return &event, nil
}
