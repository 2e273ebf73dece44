package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/oakpay/refundbot/internal/observability/metrics"
	"github.com/oakpay/refundbot/internal/receipt"
	"github.com/oakpay/refundbot/internal/refund"
	"github.com/oakpay/refundbot/internal/slack"
	"github.com/oakpay/refundbot/pkg/logging"
)

// ChatClient is the outbound Slack surface handlers use.
type ChatClient interface {
	PostMessage(ctx context.Context, msg slack.ChatMessage) error
	PostEphemeral(ctx context.Context, channel, user string, msg slack.ChatMessage) error
	OpenView(ctx context.Context, triggerID string, view slack.ModalView) error
	Respond(ctx context.Context, responseURL string, msg slack.ResponseMessage) error
}

// RefundExecutor runs validated refunds against the payment processor.
type RefundExecutor interface {
	ExecuteFullRefund(ctx context.Context, req refund.FullRefundRequest) refund.Outcome
	ExecutePartialOrFullRefund(ctx context.Context, req refund.PartialRefundRequest) refund.Outcome
}

// Bot wires the dispatch table to its handlers.
type Bot struct {
	router    *Router
	chat      ChatClient
	refunds   RefundExecutor
	formatter *receipt.Formatter
	logger    *logging.Logger
	metrics   *metrics.BotMetrics
}

// New creates the bot and registers every trigger it reacts to.
func New(chat ChatClient, refunds RefundExecutor, formatter *receipt.Formatter, logger *logging.Logger, m *metrics.BotMetrics) *Bot {
	if logger == nil {
		logger = logging.Default()
	}
	b := &Bot{
		router:    NewRouter(logger, m),
		chat:      chat,
		refunds:   refunds,
		formatter: formatter,
		logger:    logger,
		metrics:   m,
	}

	b.router.OnMessage("hello", b.handleHello)
	b.router.OnCommand("/support", b.handleSupport)
	b.router.OnCommand("/refund", b.handleRefundCommand)
	b.router.OnAction(ActionAskQuestion, b.handleAskQuestion)
	b.router.OnAction(ActionRequestRefund, b.handleRefundButton)
	b.router.OnViewSubmission(CallbackQuestionModal, b.handleQuestionSubmission)
	b.router.OnViewSubmission(CallbackRefundModal, b.handleRefundSubmission)

	return b
}

// Dispatch routes one normalized event.
func (b *Bot) Dispatch(ctx context.Context, ev Event) bool {
	return b.router.Dispatch(ctx, ev)
}

func (b *Bot) handleHello(ctx context.Context, ev Event) error {
	return b.chat.PostMessage(ctx, slack.ChatMessage{
		Channel: ev.ChannelID,
		Text:    fmt.Sprintf("Hey there <@%s>! 👋", ev.UserID),
	})
}

func (b *Bot) handleSupport(ctx context.Context, ev Event) error {
	return b.chat.Respond(ctx, ev.ResponseURL, slack.ResponseMessage{
		ResponseType: "ephemeral",
		Text:         "Welcome to AI Support!",
		Blocks:       SupportPrompt(),
	})
}

func (b *Bot) handleRefundCommand(ctx context.Context, ev Event) error {
	chargeID := strings.TrimSpace(ev.CommandText)
	if chargeID == "" {
		return b.chat.Respond(ctx, ev.ResponseURL, slack.ResponseMessage{
			ResponseType: "ephemeral",
			Text:         "Please provide a charge ID.",
			Blocks:       []slack.Block{slack.Section("❌ Please provide a charge ID.\n\n" + receipt.RefundUsage)},
		})
	}
	if !strings.HasPrefix(chargeID, "ch_") {
		// Caught here so the channel never sees a processing placeholder
		// for input that cannot possibly succeed.
		return b.chat.Respond(ctx, ev.ResponseURL, slack.ResponseMessage{
			ResponseType: "ephemeral",
			Text:         "Invalid charge ID format.",
			Blocks:       []slack.Block{slack.Section("❌ Invalid charge ID format. Charge IDs must start with `ch_`.\n\n" + receipt.RefundUsage)},
		})
	}

	// Placeholder goes out before the (slow) Stripe call; the final receipt
	// replaces it in place.
	if err := b.chat.Respond(ctx, ev.ResponseURL, slack.ResponseMessage{
		ResponseType: "in_channel",
		Text:         "Processing refund...",
		Blocks:       []slack.Block{slack.Section("⏳ Processing refund...")},
	}); err != nil {
		return err
	}

	outcome := b.refunds.ExecuteFullRefund(ctx, refund.FullRefundRequest{
		ChargeID:    chargeID,
		RequestedBy: ev.UserID,
		ChannelID:   ev.ChannelID,
	})
	b.metrics.ObserveRefund(outcomeLabel(outcome))

	if !outcome.Success {
		rc := b.formatter.CommandError(outcome)
		return b.chat.Respond(ctx, ev.ResponseURL, slack.ResponseMessage{
			ResponseType:    "ephemeral",
			ReplaceOriginal: true,
			Text:            rc.Text,
			Blocks:          rc.Blocks,
		})
	}

	rc := b.formatter.CommandReceipt(outcome)
	return b.chat.Respond(ctx, ev.ResponseURL, slack.ResponseMessage{
		ResponseType:    "in_channel",
		ReplaceOriginal: true,
		Text:            rc.Text,
		Blocks:          rc.Blocks,
	})
}

func (b *Bot) handleAskQuestion(ctx context.Context, ev Event) error {
	return b.chat.OpenView(ctx, ev.TriggerID, QuestionModal())
}

func (b *Bot) handleRefundButton(ctx context.Context, ev Event) error {
	return b.chat.OpenView(ctx, ev.TriggerID, RefundModal())
}

// handleQuestionSubmission sends the fixed placeholder reply; AI-powered
// answering is not integrated.
func (b *Bot) handleQuestionSubmission(ctx context.Context, ev Event) error {
	question := ev.Submission[FieldQuestion]
	response := fmt.Sprintf(
		"Thank you for your question: '%s'\n\nI'm currently being set up to provide AI-powered responses. Once the training data is available, I'll be able to help with support questions!",
		question,
	)
	return b.chat.PostMessage(ctx, slack.ChatMessage{Channel: ev.UserID, Text: response})
}

// RefundSubmission is the refund modal's entered values, assembled once at
// the boundary.
type RefundSubmission struct {
	PaymentIntentID string
	Amount          string
	Reason          string
}

func (b *Bot) handleRefundSubmission(ctx context.Context, ev Event) error {
	sub := RefundSubmission{
		PaymentIntentID: ev.Submission[FieldPaymentIntentID],
		Amount:          ev.Submission[FieldAmount],
		Reason:          ev.Submission[FieldReason],
	}

	outcome := b.refunds.ExecutePartialOrFullRefund(ctx, refund.PartialRefundRequest{
		PaymentIntentID: sub.PaymentIntentID,
		Amount:          sub.Amount,
		Reason:          sub.Reason,
		RequestedBy:     ev.UserID,
		ChannelID:       ev.ChannelID,
	})
	b.metrics.ObserveRefund(outcomeLabel(outcome))

	if !outcome.Success {
		rc := b.formatter.Error(outcome)
		return b.chat.PostMessage(ctx, slack.ChatMessage{Channel: ev.UserID, Text: rc.Text})
	}

	rc := b.formatter.ModalReceipt(outcome)
	if err := b.chat.PostMessage(ctx, slack.ChatMessage{
		Channel: ev.UserID,
		Text:    rc.Text,
		Blocks:  rc.Blocks,
	}); err != nil {
		return err
	}

	if ev.ChannelID != "" {
		ann := b.formatter.Announcement(ev.UserID, outcome)
		if err := b.chat.PostMessage(ctx, slack.ChatMessage{
			Channel: ev.ChannelID,
			Text:    ann.Text,
			Blocks:  ann.Blocks,
		}); err != nil {
			// The requester already has the receipt; the announcement is
			// best-effort.
			b.logger.Warn("channel announcement failed", "channel_id", ev.ChannelID, "error", err)
		}
	}
	return nil
}

func outcomeLabel(o refund.Outcome) string {
	if o.Success {
		return "success"
	}
	return string(o.Category)
}
