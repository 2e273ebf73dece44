package slack

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-signing-secret"

func signedRequest(t *testing.T, target, body, contentType string, now time.Time) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	ts := strconv.FormatInt(now.Unix(), 10)
	req.Header.Set("X-Slack-Request-Timestamp", ts)
	req.Header.Set("X-Slack-Signature", signBody(testSecret, ts, []byte(body)))
	req.Header.Set("Content-Type", contentType)
	return req
}

func TestHandleEventsURLVerification(t *testing.T) {
	now := time.Unix(1700000000, 0)
	h := NewWebhookHandler(testSecret, nil, nil, nil, nil).WithClock(func() time.Time { return now })

	body, _ := json.Marshal(map[string]string{
		"type":      "url_verification",
		"challenge": "challenge-token",
	})

	rec := httptest.NewRecorder()
	h.HandleEvents(rec, signedRequest(t, "/slack/events", string(body), "application/json", now))

	require.Equal(t, http.StatusOK, rec.Code)
	resp, _ := io.ReadAll(rec.Body)
	assert.Equal(t, "challenge-token", string(resp))
}

func TestHandleEventsRejectsBadSignature(t *testing.T) {
	now := time.Unix(1700000000, 0)
	h := NewWebhookHandler(testSecret, nil, nil, nil, nil).WithClock(func() time.Time { return now })

	req := httptest.NewRequest(http.MethodPost, "/slack/events", strings.NewReader("{}"))
	req.Header.Set("X-Slack-Request-Timestamp", strconv.FormatInt(now.Unix(), 10))
	req.Header.Set("X-Slack-Signature", "v0=deadbeef")

	rec := httptest.NewRecorder()
	h.HandleEvents(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleEventsDispatchesCallback(t *testing.T) {
	now := time.Unix(1700000000, 0)
	var wg sync.WaitGroup
	wg.Add(1)
	var got CallbackEvent

	h := NewWebhookHandler(testSecret, func(_ context.Context, ev CallbackEvent) {
		got = ev
		wg.Done()
	}, nil, nil, nil).WithClock(func() time.Time { return now })

	body, _ := json.Marshal(map[string]any{
		"type": "event_callback",
		"event": map[string]string{
			"type":    "message",
			"user":    "U1",
			"text":    "hello",
			"channel": "C1",
		},
	})

	rec := httptest.NewRecorder()
	h.HandleEvents(rec, signedRequest(t, "/slack/events", string(body), "application/json", now))
	wg.Wait()

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello", got.Text)
	assert.Equal(t, "U1", got.User)
}

func TestHandleCommands(t *testing.T) {
	now := time.Unix(1700000000, 0)
	var wg sync.WaitGroup
	wg.Add(1)
	var got SlashCommand

	h := NewWebhookHandler(testSecret, nil, func(_ context.Context, cmd SlashCommand) {
		got = cmd
		wg.Done()
	}, nil, nil).WithClock(func() time.Time { return now })

	form := url.Values{
		"command":      {"/refund"},
		"text":         {"ch_abc123"},
		"user_id":      {"U1"},
		"channel_id":   {"C1"},
		"response_url": {"https://hooks.slack.com/commands/T/1/abc"},
	}

	rec := httptest.NewRecorder()
	h.HandleCommands(rec, signedRequest(t, "/slack/commands", form.Encode(), "application/x-www-form-urlencoded", now))
	wg.Wait()

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/refund", got.Command)
	assert.Equal(t, "ch_abc123", got.Text)
	assert.Equal(t, "https://hooks.slack.com/commands/T/1/abc", got.ResponseURL)
}

func TestHandleInteractions(t *testing.T) {
	now := time.Unix(1700000000, 0)
	var wg sync.WaitGroup
	wg.Add(1)
	var got InteractionPayload

	h := NewWebhookHandler(testSecret, nil, nil, func(_ context.Context, p InteractionPayload) {
		got = p
		wg.Done()
	}, nil).WithClock(func() time.Time { return now })

	payload, _ := json.Marshal(map[string]any{
		"type":       "block_actions",
		"trigger_id": "trig-1",
		"user":       map[string]string{"id": "U1"},
		"actions":    []map[string]string{{"action_id": "request_refund_btn", "value": "request_refund"}},
	})
	form := url.Values{"payload": {string(payload)}}

	rec := httptest.NewRecorder()
	h.HandleInteractions(rec, signedRequest(t, "/slack/interactions", form.Encode(), "application/x-www-form-urlencoded", now))
	wg.Wait()

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, got.Actions, 1)
	assert.Equal(t, "request_refund_btn", got.Actions[0].ActionID)
	assert.Equal(t, "trig-1", got.TriggerID)
}
