package bot

import "github.com/oakpay/refundbot/internal/slack"

// EventKind identifies the inbound trigger surface.
type EventKind string

const (
	KindMessage        EventKind = "message"
	KindSlashCommand   EventKind = "slash_command"
	KindBlockAction    EventKind = "block_action"
	KindViewSubmission EventKind = "view_submission"
)

// Event is one inbound trigger, normalized across delivery surfaces. It is
// created per request and discarded after handling.
type Event struct {
	Kind      EventKind
	UserID    string
	ChannelID string

	// Message events
	Text string

	// Slash commands
	Command     string
	CommandText string
	ResponseURL string

	// Interactions
	TriggerID   string
	ActionID    string
	ActionValue string
	CallbackID  string

	// View submissions, flattened to field key -> entered value
	Submission map[string]string
}

// EventFromMessage normalizes an Events API message callback.
func EventFromMessage(ev slack.CallbackEvent) Event {
	return Event{
		Kind:      KindMessage,
		UserID:    ev.User,
		ChannelID: ev.Channel,
		Text:      ev.Text,
	}
}

// EventFromSlashCommand normalizes a slash-command invocation.
func EventFromSlashCommand(cmd slack.SlashCommand) Event {
	return Event{
		Kind:        KindSlashCommand,
		UserID:      cmd.UserID,
		ChannelID:   cmd.ChannelID,
		Command:     cmd.Command,
		CommandText: cmd.Text,
		TriggerID:   cmd.TriggerID,
		ResponseURL: cmd.ResponseURL,
	}
}

// EventFromInteraction normalizes a block action or view submission.
func EventFromInteraction(p slack.InteractionPayload) Event {
	ev := Event{
		UserID:      p.User.ID,
		ChannelID:   p.Channel.ID,
		TriggerID:   p.TriggerID,
		ResponseURL: p.ResponseURL,
	}

	switch p.Type {
	case "view_submission":
		ev.Kind = KindViewSubmission
		ev.CallbackID = p.View.CallbackID
		ev.Submission = p.View.State.FieldValues()
	default:
		ev.Kind = KindBlockAction
		if len(p.Actions) > 0 {
			ev.ActionID = p.Actions[0].ActionID
			ev.ActionValue = p.Actions[0].Value
		}
	}
	return ev
}
