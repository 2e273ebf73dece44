package slack

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"

	"github.com/oakpay/refundbot/pkg/logging"
)

// EnvelopeHandler processes one Socket Mode envelope after it has been acked.
type EnvelopeHandler func(ctx context.Context, env SocketEnvelope)

// SocketClient maintains a Socket Mode connection and feeds envelopes to a
// handler. Each envelope is acked on the read loop before the handler runs,
// so slow work never risks Slack's ack window.
type SocketClient struct {
	api       *Client
	dialer    *websocket.Dialer
	handler   EnvelopeHandler
	logger    *logging.Logger
	reconnect time.Duration
}

// NewSocketClient creates a Socket Mode client.
func NewSocketClient(api *Client, handler EnvelopeHandler, logger *logging.Logger) *SocketClient {
	if logger == nil {
		logger = logging.Default()
	}
	return &SocketClient{
		api:       api,
		dialer:    websocket.DefaultDialer,
		handler:   handler,
		logger:    logger,
		reconnect: 3 * time.Second,
	}
}

// Run connects and processes envelopes until ctx is canceled. Disconnects
// (including Slack's periodic refresh disconnects) trigger a reconnect.
func (c *SocketClient) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := c.runOnce(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			c.logger.Warn("socket mode connection ended", "error", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.reconnect):
		}
	}
}

func (c *SocketClient) runOnce(ctx context.Context) error {
	wssURL, err := c.api.OpenSocketConnection(ctx)
	if err != nil {
		return err
	}

	conn, _, err := c.dialer.DialContext(ctx, wssURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Close the connection when ctx ends so ReadMessage unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		var env SocketEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.logger.Error("failed to decode socket envelope", "error", err)
			continue
		}

		// Ack first; the dispatch work (Stripe calls) may be slow.
		if env.EnvelopeID != "" {
			if err := conn.WriteJSON(SocketAck{EnvelopeID: env.EnvelopeID}); err != nil {
				return err
			}
		}

		switch env.Type {
		case "hello":
			c.logger.Info("socket mode connected")
		case "disconnect":
			c.logger.Info("socket mode disconnect requested", "reason", env.Reason)
			return nil
		case "events_api", "slash_commands", "interactive":
			go c.handler(context.WithoutCancel(ctx), env)
		default:
			c.logger.Debug("ignoring socket envelope", "type", env.Type)
		}
	}
}
