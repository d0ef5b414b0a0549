package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bountydotnew/bounty.new-sub002/internal/config"
	"github.com/stretchr/testify/require"
)

func TestEmailSenderSend(t *testing.T) {
	var got emailRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "Bearer re_test_key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := NewEmailSender(config.NotifyConfig{
		EmailApiUrl: server.URL,
		EmailApiKey: "re_test_key",
		EmailFrom:   "bounty@example.com",
		Timeout:     5,
	})

	err := s.Send(context.Background(), "alice@example.com", "退款确认", "<p>ok</p>")
	require.NoError(t, err)
	require.Equal(t, "bounty@example.com", got.From)
	require.Equal(t, "alice@example.com", got.To)
	require.Equal(t, "退款确认", got.Subject)
}

func TestEmailSenderNotConfigured(t *testing.T) {
	s := NewEmailSender(config.NotifyConfig{Timeout: 5})
	require.Error(t, s.Send(context.Background(), "alice@example.com", "subject", "body"))
}

func TestFeedPosterPostBountyFunded(t *testing.T) {
	var got FundedAlert
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	f := NewFeedPoster(config.NotifyConfig{FeedWebhookUrl: server.URL, Timeout: 5})
	require.True(t, f.Configured())

	err := f.PostBountyFunded(context.Background(), &FundedAlert{
		BountyId:    7,
		Title:       "修复内存泄漏",
		Amount:      "100.00",
		Currency:    "usd",
		CreatorName: "alice",
		Url:         "https://bounty.example.com/bounty/7",
	})
	require.NoError(t, err)
	require.EqualValues(t, 7, got.BountyId)
	require.Equal(t, "100.00", got.Amount)
}

func TestFeedPosterNotConfigured(t *testing.T) {
	f := NewFeedPoster(config.NotifyConfig{Timeout: 5})
	require.False(t, f.Configured())

	// 未配置投递地址时即发即忘直接跳过
	require.NoError(t, f.PostBountyFunded(context.Background(), &FundedAlert{BountyId: 1}))
}
