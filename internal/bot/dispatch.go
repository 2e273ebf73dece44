package bot

import (
	"context"
	"encoding/json"

	"github.com/oakpay/refundbot/internal/slack"
)

// Glue between Slack's delivery surfaces and the dispatch table. Socket Mode
// envelopes and HTTP webhook callbacks both funnel into Bot.Dispatch with a
// normalized Event; acking has already happened by the time these run.

// HandleEnvelope processes one Socket Mode envelope.
func (b *Bot) HandleEnvelope(ctx context.Context, env slack.SocketEnvelope) {
	switch env.Type {
	case "events_api":
		var envelope slack.EventsAPIEnvelope
		if err := json.Unmarshal(env.Payload, &envelope); err != nil {
			b.logger.Error("failed to decode events_api payload", "error", err)
			return
		}
		b.HandleCallbackEvent(ctx, envelope.Event)
	case "slash_commands":
		var cmd slack.SlashCommand
		if err := json.Unmarshal(env.Payload, &cmd); err != nil {
			b.logger.Error("failed to decode slash_commands payload", "error", err)
			return
		}
		b.HandleSlashCommand(ctx, cmd)
	case "interactive":
		var payload slack.InteractionPayload
		if err := json.Unmarshal(env.Payload, &payload); err != nil {
			b.logger.Error("failed to decode interactive payload", "error", err)
			return
		}
		b.HandleInteraction(ctx, payload)
	}
}

// HandleCallbackEvent processes an Events API callback.
func (b *Bot) HandleCallbackEvent(ctx context.Context, ev slack.CallbackEvent) {
	if ev.Type != "message" {
		return
	}
	// Never react to bot-authored messages; that loops.
	if ev.BotID != "" || ev.Subtype == "bot_message" {
		return
	}
	b.Dispatch(ctx, EventFromMessage(ev))
}

// HandleSlashCommand processes a slash-command invocation.
func (b *Bot) HandleSlashCommand(ctx context.Context, cmd slack.SlashCommand) {
	b.Dispatch(ctx, EventFromSlashCommand(cmd))
}

// HandleInteraction processes a block action or view submission.
func (b *Bot) HandleInteraction(ctx context.Context, payload slack.InteractionPayload) {
	b.Dispatch(ctx, EventFromInteraction(payload))
}
