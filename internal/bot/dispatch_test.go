package bot

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakpay/refundbot/internal/refund"
	"github.com/oakpay/refundbot/internal/slack"
)

func TestHandleEnvelopeSlashCommand(t *testing.T) {
	b, chat, _ := newTestBot(refund.Outcome{})

	payload, _ := json.Marshal(slack.SlashCommand{
		Command:     "/support",
		UserID:      "U1",
		ResponseURL: "https://hooks.slack.test/r1",
	})

	b.HandleEnvelope(context.Background(), slack.SocketEnvelope{
		EnvelopeID: "env-1",
		Type:       "slash_commands",
		Payload:    payload,
	})

	require.Len(t, chat.responds, 1)
	assert.Equal(t, "ephemeral", chat.responds[0].msg.ResponseType)
}

func TestHandleEnvelopeEventsAPI(t *testing.T) {
	b, chat, _ := newTestBot(refund.Outcome{})

	payload, _ := json.Marshal(slack.EventsAPIEnvelope{
		Type: "event_callback",
		Event: slack.CallbackEvent{
			Type:    "message",
			User:    "U1",
			Text:    "hello",
			Channel: "C1",
		},
	})

	b.HandleEnvelope(context.Background(), slack.SocketEnvelope{
		EnvelopeID: "env-2",
		Type:       "events_api",
		Payload:    payload,
	})

	require.Len(t, chat.posts, 1)
	assert.Contains(t, chat.posts[0].msg.Text, "<@U1>")
}

func TestHandleEnvelopeInteractive(t *testing.T) {
	b, chat, _ := newTestBot(refund.Outcome{})

	payload, _ := json.Marshal(slack.InteractionPayload{
		Type:      "block_actions",
		User:      slack.InteractionUser{ID: "U1"},
		TriggerID: "trig-1",
		Actions:   []slack.ActionRef{{ActionID: ActionAskQuestion, Value: "ask_question"}},
	})

	b.HandleEnvelope(context.Background(), slack.SocketEnvelope{
		EnvelopeID: "env-3",
		Type:       "interactive",
		Payload:    payload,
	})

	require.Len(t, chat.views, 1)
	assert.Equal(t, CallbackQuestionModal, chat.views[0].view.CallbackID)
}

func TestBotMessagesAreIgnored(t *testing.T) {
	b, chat, _ := newTestBot(refund.Outcome{})

	b.HandleCallbackEvent(context.Background(), slack.CallbackEvent{
		Type:    "message",
		BotID:   "B1",
		Text:    "hello",
		Channel: "C1",
	})
	b.HandleCallbackEvent(context.Background(), slack.CallbackEvent{
		Type:    "message",
		Subtype: "bot_message",
		Text:    "hello",
		Channel: "C1",
	})

	assert.Empty(t, chat.posts)
}

func TestNonMessageEventsAreIgnored(t *testing.T) {
	b, chat, _ := newTestBot(refund.Outcome{})

	b.HandleCallbackEvent(context.Background(), slack.CallbackEvent{
		Type: "reaction_added",
		User: "U1",
	})

	assert.Empty(t, chat.posts)
}

func TestEventFromInteractionViewSubmission(t *testing.T) {
	p := slack.InteractionPayload{
		Type:        "view_submission",
		User:        slack.InteractionUser{ID: "U1"},
		Channel:     slack.InteractionRef{ID: "C1"},
		ResponseURL: "https://hooks.slack.test/r1",
		View: slack.ViewPayload{
			CallbackID: CallbackRefundModal,
			State: slack.ViewState{Values: map[string]map[string]slack.ViewStateValue{
				"payment_intent_id_input": {FieldPaymentIntentID: {Value: "pi_1"}},
				"amount_input":            {FieldAmount: {Value: "2500"}},
				"reason_input":            {FieldReason: {Value: "duplicate charge"}},
			}},
		},
	}

	ev := EventFromInteraction(p)
	assert.Equal(t, KindViewSubmission, ev.Kind)
	assert.Equal(t, "U1", ev.UserID)
	assert.Equal(t, "C1", ev.ChannelID)
	assert.Equal(t, CallbackRefundModal, ev.CallbackID)
	assert.Equal(t, "pi_1", ev.Submission[FieldPaymentIntentID])
	assert.Equal(t, "2500", ev.Submission[FieldAmount])
}
