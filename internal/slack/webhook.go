package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/oakpay/refundbot/pkg/logging"
)

// WebhookHandler terminates Slack's HTTP delivery surfaces: the Events API,
// slash commands and interactivity posts. Every request is verified against
// the signing secret, acknowledged, and then handed to a callback on its own
// goroutine so slow work never delays the ack.
type WebhookHandler struct {
	signingSecret string
	onEvent       func(ctx context.Context, ev CallbackEvent)
	onCommand     func(ctx context.Context, cmd SlashCommand)
	onInteraction func(ctx context.Context, payload InteractionPayload)
	logger        *logging.Logger
	now           func() time.Time
}

// NewWebhookHandler creates a webhook handler for HTTP (non-socket) mode.
func NewWebhookHandler(
	signingSecret string,
	onEvent func(ctx context.Context, ev CallbackEvent),
	onCommand func(ctx context.Context, cmd SlashCommand),
	onInteraction func(ctx context.Context, payload InteractionPayload),
	logger *logging.Logger,
) *WebhookHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &WebhookHandler{
		signingSecret: signingSecret,
		onEvent:       onEvent,
		onCommand:     onCommand,
		onInteraction: onInteraction,
		logger:        logger,
		now:           time.Now,
	}
}

// WithClock overrides the verification clock (for testing).
func (h *WebhookHandler) WithClock(now func() time.Time) *WebhookHandler {
	h.now = now
	return h
}

// HandleEvents handles Events API posts, including the URL verification
// challenge Slack sends when the endpoint is registered.
func (h *WebhookHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	body, ok := h.verifiedBody(w, r)
	if !ok {
		return
	}

	var envelope EventsAPIEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	switch envelope.Type {
	case "url_verification":
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, envelope.Challenge)
	case "event_callback":
		// Ack before processing so Slack does not retry.
		w.WriteHeader(http.StatusOK)
		if h.onEvent != nil {
			go h.onEvent(context.WithoutCancel(r.Context()), envelope.Event)
		}
	default:
		w.WriteHeader(http.StatusOK)
	}
}

// HandleCommands handles slash-command posts.
func (h *WebhookHandler) HandleCommands(w http.ResponseWriter, r *http.Request) {
	body, ok := h.verifiedBody(w, r)
	if !ok {
		return
	}

	values, err := url.ParseQuery(string(body))
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	cmd := ParseSlashCommand(values)

	w.WriteHeader(http.StatusOK)
	if h.onCommand != nil {
		go h.onCommand(context.WithoutCancel(r.Context()), cmd)
	}
}

// HandleInteractions handles block actions and view submissions, which Slack
// posts as a form with a single "payload" JSON field.
func (h *WebhookHandler) HandleInteractions(w http.ResponseWriter, r *http.Request) {
	body, ok := h.verifiedBody(w, r)
	if !ok {
		return
	}

	values, err := url.ParseQuery(string(body))
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	var payload InteractionPayload
	if err := json.Unmarshal([]byte(values.Get("payload")), &payload); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusOK)
	if h.onInteraction != nil {
		go h.onInteraction(context.WithoutCancel(r.Context()), payload)
	}
}

// verifiedBody reads the body and checks the request signature, writing the
// error response itself when verification fails.
func (h *WebhookHandler) verifiedBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return nil, false
	}

	timestamp := r.Header.Get("X-Slack-Request-Timestamp")
	signature := r.Header.Get("X-Slack-Signature")
	if !VerifySignature(h.signingSecret, timestamp, body, signature, h.now()) {
		h.logger.Warn("rejected slack webhook", "reason", "bad signature")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return nil, false
	}
	return body, true
}
