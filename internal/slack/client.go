package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/oakpay/refundbot/pkg/logging"
)

var tracer = otel.Tracer("refundbot.internal.slack")

const (
	defaultBaseURL   = "https://slack.com/api"
	defaultUserAgent = "refundbot-slack/0.1"
)

// Config controls how the Slack Web API client behaves.
type Config struct {
	BaseURL    string
	BotToken   string
	AppToken   string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logging.Logger
	UserAgent  string
}

// Client wraps the Slack Web API endpoints the bot needs.
type Client struct {
	botToken   string
	appToken   string
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
	userAgent  string
}

// New creates a configured Client with sane defaults.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BotToken) == "" {
		return nil, errors.New("slack: bot token is required")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Client{
		botToken:   cfg.BotToken,
		appToken:   cfg.AppToken,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
		userAgent:  userAgent,
	}, nil
}

// ChatMessage is an outbound channel or DM message.
type ChatMessage struct {
	Channel string  `json:"channel"`
	Text    string  `json:"text,omitempty"`
	Blocks  []Block `json:"blocks,omitempty"`
}

// ephemeralMessage adds the target user to a chat message.
type ephemeralMessage struct {
	ChatMessage
	User string `json:"user"`
}

// viewsOpenRequest is the body of views.open.
type viewsOpenRequest struct {
	TriggerID string    `json:"trigger_id"`
	View      ModalView `json:"view"`
}

// apiResponse is the common Web API response shell.
type apiResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// PostMessage posts a message to a channel, or to a user's DM when the
// channel is a user id.
func (c *Client) PostMessage(ctx context.Context, msg ChatMessage) error {
	ctx, span := tracer.Start(ctx, "slack.chat_post_message")
	defer span.End()
	span.SetAttributes(attribute.String("slack.channel", msg.Channel))

	return c.call(ctx, "chat.postMessage", msg)
}

// PostEphemeral posts a message visible only to one user in a channel.
func (c *Client) PostEphemeral(ctx context.Context, channel, user string, msg ChatMessage) error {
	ctx, span := tracer.Start(ctx, "slack.chat_post_ephemeral")
	defer span.End()
	span.SetAttributes(
		attribute.String("slack.channel", channel),
		attribute.String("slack.user", user),
	)

	msg.Channel = channel
	return c.call(ctx, "chat.postEphemeral", ephemeralMessage{ChatMessage: msg, User: user})
}

// OpenView opens a modal against an interaction's trigger id.
func (c *Client) OpenView(ctx context.Context, triggerID string, view ModalView) error {
	ctx, span := tracer.Start(ctx, "slack.views_open")
	defer span.End()
	span.SetAttributes(attribute.String("slack.callback_id", view.CallbackID))

	return c.call(ctx, "views.open", viewsOpenRequest{TriggerID: triggerID, View: view})
}

// ResponseMessage is a message delivered through a response_url.
type ResponseMessage struct {
	ResponseType    string  `json:"response_type,omitempty"` // "ephemeral" or "in_channel"
	ReplaceOriginal bool    `json:"replace_original,omitempty"`
	Text            string  `json:"text,omitempty"`
	Blocks          []Block `json:"blocks,omitempty"`
}

// Respond delivers a message through an interaction's response_url. Unlike
// Web API methods, response_url posts carry no token and reply with plain
// "ok" rather than a JSON shell.
func (c *Client) Respond(ctx context.Context, responseURL string, msg ResponseMessage) error {
	ctx, span := tracer.Start(ctx, "slack.respond")
	defer span.End()

	if responseURL == "" {
		return errors.New("slack: respond: missing response url")
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("slack: respond marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, responseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: respond request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("slack: respond http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("slack: respond status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// socketConnection is the apps.connections.open response.
type socketConnection struct {
	apiResponse
	URL string `json:"url"`
}

// OpenSocketConnection requests a Socket Mode websocket URL. It authorizes
// with the app-level token, not the bot token.
func (c *Client) OpenSocketConnection(ctx context.Context) (string, error) {
	if strings.TrimSpace(c.appToken) == "" {
		return "", errors.New("slack: app token is required for socket mode")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/apps.connections.open", nil)
	if err != nil {
		return "", fmt.Errorf("slack: connections.open request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.appToken)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("slack: connections.open http: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	var parsed socketConnection
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("slack: connections.open decode: %w", err)
	}
	if !parsed.OK {
		return "", fmt.Errorf("slack: connections.open: api error %q", parsed.Error)
	}
	if parsed.URL == "" {
		return "", errors.New("slack: connections.open: response missing url")
	}
	return parsed.URL, nil
}

// call posts a JSON body to a Web API method and checks the ok shell.
func (c *Client) call(ctx context.Context, method string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("slack: %s marshal: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: %s request: %w", method, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.botToken)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("slack: %s http: %w", method, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("slack: %s status %d: %s", method, resp.StatusCode, string(respBody))
	}

	var parsed apiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return fmt.Errorf("slack: %s decode: %w", method, err)
	}
	if !parsed.OK {
		c.logger.Error("slack api call failed", "method", method, "error", parsed.Error)
		return fmt.Errorf("slack: %s: api error %q", method, parsed.Error)
	}
	return nil
}
