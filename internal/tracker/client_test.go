package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bountydotnew/bounty.new-sub002/internal/config"
	"github.com/stretchr/testify/require"
)

func newTestClient(serverUrl string) *Client {
	return NewClient(config.TrackerConfig{
		ApiBaseUrl: serverUrl,
		Token:      "ghs_test",
		Timeout:    5,
	})
}

func TestCreateComment(t *testing.T) {
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/repos/acme/widgets/issues/42/comments", r.URL.Path)
		require.Equal(t, "Bearer ghs_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id": 900}`)
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	id, err := c.EditOrCreateComment(context.Background(), 11, "acme", "widgets", 42, 0, "bounty funded")
	require.NoError(t, err)
	require.EqualValues(t, 900, id)
	require.Equal(t, "bounty funded", gotBody["body"])
}

func TestEditComment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/repos/acme/widgets/issues/comments/333", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id": 333}`)
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	id, err := c.EditOrCreateComment(context.Background(), 11, "acme", "widgets", 42, 333, "updated wording")
	require.NoError(t, err)
	require.EqualValues(t, 333, id)
}

func TestEditCommentGoneFallsBackToCreate(t *testing.T) {
	var patched, posted bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodPatch:
			patched = true
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message": "Not Found"}`)
		case http.MethodPost:
			posted = true
			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, `{"id": 901}`)
		}
	}))
	defer server.Close()

	// 原评论被删除时退回新建
	c := newTestClient(server.URL)
	id, err := c.EditOrCreateComment(context.Background(), 11, "acme", "widgets", 42, 333, "recreated")
	require.NoError(t, err)
	require.EqualValues(t, 901, id)
	require.True(t, patched)
	require.True(t, posted)
}

func TestCreateCommentServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	_, err := c.EditOrCreateComment(context.Background(), 11, "acme", "widgets", 42, 0, "body")
	require.Error(t, err)
}
