package webhook

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v74"
)

type stubProcessor struct {
	types  []string
	called int
	result *Result
}

func (s *stubProcessor) GetEventTypes() []string {
	return s.types
}

func (s *stubProcessor) Process(event *stripe.Event) (*Result, error) {
	s.called++
	return s.result, nil
}

func TestRouterDispatch(t *testing.T) {
	r := NewRouter()
	p := &stubProcessor{
		types:  []string{"payment_intent.succeeded", "payment_intent.payment_failed"},
		result: &Result{Applied: true},
	}
	r.Register(p)

	result, err := r.Process(&stripe.Event{ID: "evt_1", Type: "payment_intent.succeeded"})
	require.NoError(t, err)
	require.True(t, result.Applied)
	require.Equal(t, 1, p.called)

	result, err = r.Process(&stripe.Event{ID: "evt_2", Type: "payment_intent.payment_failed"})
	require.NoError(t, err)
	require.True(t, result.Applied)
	require.Equal(t, 2, p.called)
}

func TestRouterUnknownEventType(t *testing.T) {
	r := NewRouter()

	// 未注册的事件类型按无操作确认，不报错
	result, err := r.Process(&stripe.Event{ID: "evt_1", Type: "customer.created"})
	require.NoError(t, err)
	require.False(t, result.Applied)
	require.NotEmpty(t, result.NoOp)
}

func TestRouterSupportedEventTypes(t *testing.T) {
	r := NewRouter()
	r.Register(&stubProcessor{types: []string{"charge.refunded", "refund.updated"}})

	require.ElementsMatch(t, []string{"charge.refunded", "refund.updated"}, r.GetSupportedEventTypes())
}
