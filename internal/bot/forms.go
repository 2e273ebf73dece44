package bot

import "github.com/oakpay/refundbot/internal/slack"

// Stable identifiers for interactive elements. Submission handlers read
// entered values back out by these keys.
const (
	ActionAskQuestion   = "ask_question_btn"
	ActionRequestRefund = "request_refund_btn"

	CallbackQuestionModal = "question_modal"
	CallbackRefundModal   = "refund_modal"

	FieldQuestion        = "question"
	FieldPaymentIntentID = "payment_intent_id"
	FieldAmount          = "amount"
	FieldReason          = "reason"
)

// PromptAction is one button in an action prompt.
type PromptAction struct {
	Label    string
	Value    string
	ActionID string
	Style    string
}

// InputField is one labeled text input in a modal.
type InputField struct {
	Key         string
	Label       string
	Placeholder string
	Multiline   bool
}

// ActionPrompt builds a titled message with one button per action.
func ActionPrompt(title string, actions []PromptAction) []slack.Block {
	elements := make([]any, 0, len(actions))
	for _, a := range actions {
		elements = append(elements, slack.Button(a.Label, a.Value, a.ActionID, a.Style))
	}
	return []slack.Block{
		slack.Section(title),
		slack.Actions(elements...),
	}
}

// InputModal builds a modal with one labeled text input per field. Each
// field is addressable on submission by its key. Values are not validated
// here; validation happens when the submission is handled.
func InputModal(title, callbackID, submitLabel string, fields []InputField) slack.ModalView {
	blocks := make([]slack.Block, 0, len(fields))
	for _, f := range fields {
		element := slack.PlainTextInputElement{
			Type:      "plain_text_input",
			ActionID:  f.Key,
			Multiline: f.Multiline,
		}
		if f.Placeholder != "" {
			element.Placeholder = slack.PlainText(f.Placeholder)
		}
		blocks = append(blocks, slack.Input(f.Key+"_input", f.Label, element))
	}
	return slack.Modal(callbackID, title, submitLabel, blocks...)
}

// SupportPrompt is the two-button prompt posted by /support.
func SupportPrompt() []slack.Block {
	return ActionPrompt("👋 Welcome to AI Support! How can I help you today?", []PromptAction{
		{Label: "Ask a Question", Value: "ask_question", ActionID: ActionAskQuestion},
		{Label: "Request Refund", Value: "request_refund", ActionID: ActionRequestRefund, Style: "danger"},
	})
}

// QuestionModal is the single-field free-text modal behind "Ask a Question".
func QuestionModal() slack.ModalView {
	return InputModal("Ask AI Support", CallbackQuestionModal, "Submit", []InputField{
		{
			Key:         FieldQuestion,
			Label:       "Your Question",
			Placeholder: "Enter your support question here...",
			Multiline:   true,
		},
	})
}

// RefundModal is the three-field modal behind "Request Refund".
func RefundModal() slack.ModalView {
	return InputModal("Request Refund", CallbackRefundModal, "Process Refund", []InputField{
		{
			Key:         FieldPaymentIntentID,
			Label:       "Payment Intent ID",
			Placeholder: "pi_1234567890abcdef",
		},
		{
			Key:         FieldAmount,
			Label:       "Refund Amount (in cents)",
			Placeholder: "e.g., 1999 (for $19.99)",
		},
		{
			Key:         FieldReason,
			Label:       "Refund Reason",
			Placeholder: "Please explain the reason for the refund...",
			Multiline:   true,
		},
	})
}
