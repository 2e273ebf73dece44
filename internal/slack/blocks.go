package slack

// Block Kit subset used by the bot: sections, headers, actions, inputs,
// dividers and context lines. Only the fields we actually send are modeled.

// Text is a Block Kit text object (plain_text or mrkdwn).
type Text struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// PlainText builds a plain_text object.
func PlainText(s string) *Text {
	return &Text{Type: "plain_text", Text: s}
}

// Markdown builds an mrkdwn object.
func Markdown(s string) *Text {
	return &Text{Type: "mrkdwn", Text: s}
}

// Block is a layout block. Which fields are set depends on Type.
type Block struct {
	Type     string  `json:"type"`
	BlockID  string  `json:"block_id,omitempty"`
	Text     *Text   `json:"text,omitempty"`
	Fields   []*Text `json:"fields,omitempty"`
	Elements []any   `json:"elements,omitempty"`
	Element  any     `json:"element,omitempty"`
	Label    *Text   `json:"label,omitempty"`
}

// ButtonElement is an interactive button inside an actions block.
type ButtonElement struct {
	Type     string `json:"type"`
	Text     *Text  `json:"text"`
	ActionID string `json:"action_id"`
	Value    string `json:"value,omitempty"`
	Style    string `json:"style,omitempty"`
}

// PlainTextInputElement is a text input inside an input block.
type PlainTextInputElement struct {
	Type        string `json:"type"`
	ActionID    string `json:"action_id"`
	Multiline   bool   `json:"multiline,omitempty"`
	Placeholder *Text  `json:"placeholder,omitempty"`
}

// Button builds a button element.
func Button(label, value, actionID, style string) ButtonElement {
	return ButtonElement{
		Type:     "button",
		Text:     PlainText(label),
		ActionID: actionID,
		Value:    value,
		Style:    style,
	}
}

// Section builds a section block with mrkdwn body text.
func Section(text string) Block {
	return Block{Type: "section", Text: Markdown(text)}
}

// SectionFields builds a section block carrying a field grid.
func SectionFields(fields ...*Text) Block {
	return Block{Type: "section", Fields: fields}
}

// Header builds a header block.
func Header(text string) Block {
	return Block{Type: "header", Text: PlainText(text)}
}

// Divider builds a divider block.
func Divider() Block {
	return Block{Type: "divider"}
}

// Context builds a context block from mrkdwn lines.
func Context(lines ...string) Block {
	elements := make([]any, 0, len(lines))
	for _, line := range lines {
		elements = append(elements, Markdown(line))
	}
	return Block{Type: "context", Elements: elements}
}

// Actions builds an actions block from interactive elements.
func Actions(elements ...any) Block {
	return Block{Type: "actions", Elements: elements}
}

// Input builds an input block wrapping a single element.
func Input(blockID, label string, element any) Block {
	return Block{Type: "input", BlockID: blockID, Label: PlainText(label), Element: element}
}

// ModalView is a modal surface opened via views.open.
type ModalView struct {
	Type       string  `json:"type"`
	CallbackID string  `json:"callback_id"`
	Title      *Text   `json:"title"`
	Submit     *Text   `json:"submit,omitempty"`
	Close      *Text   `json:"close,omitempty"`
	Blocks     []Block `json:"blocks"`
}

// Modal builds a modal view shell with standard submit/cancel labels.
func Modal(callbackID, title, submitLabel string, blocks ...Block) ModalView {
	return ModalView{
		Type:       "modal",
		CallbackID: callbackID,
		Title:      PlainText(title),
		Submit:     PlainText(submitLabel),
		Close:      PlainText("Cancel"),
		Blocks:     blocks,
	}
}
