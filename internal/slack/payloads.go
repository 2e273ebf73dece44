package slack

import (
	"encoding/json"
	"net/url"
)

// Inbound payload shapes for the three Slack delivery surfaces: the Events
// API, slash commands and interactivity (block actions / view submissions).
// Socket Mode wraps the same payloads in envelopes.

// EventsAPIEnvelope is the outer Events API request body.
type EventsAPIEnvelope struct {
	Type      string        `json:"type"`
	Challenge string        `json:"challenge,omitempty"`
	TeamID    string        `json:"team_id,omitempty"`
	Event     CallbackEvent `json:"event,omitempty"`
}

// CallbackEvent is the inner event of an event_callback envelope.
type CallbackEvent struct {
	Type    string `json:"type"`
	Subtype string `json:"subtype,omitempty"`
	User    string `json:"user,omitempty"`
	BotID   string `json:"bot_id,omitempty"`
	Text    string `json:"text,omitempty"`
	Channel string `json:"channel,omitempty"`
	TS      string `json:"ts,omitempty"`
}

// SlashCommand is a decoded slash-command invocation.
type SlashCommand struct {
	Command     string `json:"command"`
	Text        string `json:"text"`
	UserID      string `json:"user_id"`
	ChannelID   string `json:"channel_id"`
	TeamID      string `json:"team_id"`
	TriggerID   string `json:"trigger_id"`
	ResponseURL string `json:"response_url"`
}

// ParseSlashCommand decodes the form-encoded body Slack sends for commands.
func ParseSlashCommand(values url.Values) SlashCommand {
	return SlashCommand{
		Command:     values.Get("command"),
		Text:        values.Get("text"),
		UserID:      values.Get("user_id"),
		ChannelID:   values.Get("channel_id"),
		TeamID:      values.Get("team_id"),
		TriggerID:   values.Get("trigger_id"),
		ResponseURL: values.Get("response_url"),
	}
}

// InteractionPayload covers block_actions and view_submission payloads.
type InteractionPayload struct {
	Type        string          `json:"type"`
	User        InteractionUser `json:"user"`
	Channel     InteractionRef  `json:"channel"`
	TriggerID   string          `json:"trigger_id"`
	ResponseURL string          `json:"response_url"`
	Actions     []ActionRef     `json:"actions"`
	View        ViewPayload     `json:"view"`
}

// InteractionUser identifies who triggered the interaction.
type InteractionUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// InteractionRef is an id/name pair used for channels and teams.
type InteractionRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ActionRef is one element of a block_actions payload.
type ActionRef struct {
	ActionID string `json:"action_id"`
	BlockID  string `json:"block_id"`
	Value    string `json:"value"`
}

// ViewPayload is the submitted view of a view_submission payload.
type ViewPayload struct {
	ID              string    `json:"id"`
	CallbackID      string    `json:"callback_id"`
	PrivateMetadata string    `json:"private_metadata"`
	State           ViewState `json:"state"`
}

// ViewState holds the entered values keyed by block id then action id.
type ViewState struct {
	Values map[string]map[string]ViewStateValue `json:"values"`
}

// ViewStateValue is a single input's submitted value.
type ViewStateValue struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// FieldValues flattens the nested state map into actionID -> value, assembled
// once at the boundary so handlers never chase nested lookups.
func (s ViewState) FieldValues() map[string]string {
	flat := make(map[string]string, len(s.Values))
	for _, inputs := range s.Values {
		for actionID, v := range inputs {
			flat[actionID] = v.Value
		}
	}
	return flat
}

// SocketEnvelope is one frame received over a Socket Mode connection.
type SocketEnvelope struct {
	EnvelopeID             string          `json:"envelope_id"`
	Type                   string          `json:"type"`
	AcceptsResponsePayload bool            `json:"accepts_response_payload"`
	Payload                json.RawMessage `json:"payload"`
	Reason                 string          `json:"reason,omitempty"`
}

// SocketAck acknowledges a Socket Mode envelope.
type SocketAck struct {
	EnvelopeID string `json:"envelope_id"`
}
