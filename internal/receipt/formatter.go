package receipt

import (
	"fmt"
	"strings"

	"github.com/oakpay/refundbot/internal/refund"
	"github.com/oakpay/refundbot/internal/slack"
)

// Audience says who may see a rendered receipt.
type Audience int

const (
	AudienceRequester Audience = iota // ephemeral or DM, requester only
	AudienceChannel                   // visible to the whole channel
)

// Mode says whether the receipt is a new message or replaces the prior one.
type Mode int

const (
	ModeNew Mode = iota
	ModeReplace
)

// Receipt is a rendered message plus its delivery metadata.
type Receipt struct {
	Text     string // fallback text for notifications
	Blocks   []slack.Block
	Audience Audience
	Mode     Mode
}

const (
	settlementNote = "Refund will appear on the original payment method within 5-10 business days."
	testModeNote   = "🧪 *TEST MODE* - " + settlementNote

	// RefundUsage is the usage hint shown for malformed /refund invocations.
	RefundUsage = "Usage: `/refund ch_xxxxxxxxxxxxx`"
)

// Formatter renders refund outcomes into chat receipts.
type Formatter struct {
	testMode bool
}

// NewFormatter creates a formatter. testMode adds the test-mode banner to
// success receipts.
func NewFormatter(testMode bool) *Formatter {
	return &Formatter{testMode: testMode}
}

// FormatAmount renders minor currency units as a decimal dollar amount.
func FormatAmount(minor int64) string {
	return fmt.Sprintf("$%.2f", float64(minor)/100)
}

// CommandReceipt renders the success receipt for the /refund slash flow. It
// replaces the in-channel processing placeholder.
func (f *Formatter) CommandReceipt(o refund.Outcome) Receipt {
	amount := FormatAmount(o.AmountMinor) + " " + strings.ToUpper(o.Currency)

	fields := []*slack.Text{
		slack.Markdown("*Refund ID:*\n" + o.RefundID),
		slack.Markdown("*Amount:*\n" + amount),
		slack.Markdown("*Status:*\n" + strings.ToUpper(o.Status)),
		slack.Markdown("*Original Charge:*\n" + o.OriginalRef),
		slack.Markdown("*Reason:*\nRequested by customer"),
		slack.Markdown(fmt.Sprintf("*Timestamp:*\n<!date^%d^{date_short} {time}|%d>", o.Created.Unix(), o.Created.Unix())),
	}

	return Receipt{
		Text: "Refund processed: " + amount,
		Blocks: []slack.Block{
			slack.Header("💰 Refund Receipt"),
			slack.SectionFields(fields...),
			slack.Divider(),
			slack.Context(f.disclosure()),
		},
		Audience: AudienceChannel,
		Mode:     ModeReplace,
	}
}

// ModalReceipt renders the success receipt sent to the requester after a
// refund-modal submission.
func (f *Formatter) ModalReceipt(o refund.Outcome) Receipt {
	amount := FormatAmount(o.AmountMinor)

	fields := []*slack.Text{
		slack.Markdown("*Refund ID:*\n" + o.RefundID),
		slack.Markdown("*Amount:*\n" + amount),
		slack.Markdown("*Status:*\n" + titleCase(o.Status)),
		slack.Markdown("*Payment Intent:*\n" + o.OriginalRef),
	}

	blocks := []slack.Block{
		slack.Section("✅ *Refund Processed Successfully*"),
		slack.SectionFields(fields...),
	}
	if o.Reason != "" {
		blocks = append(blocks, slack.Section("*Reason:* "+o.Reason))
	}
	blocks = append(blocks, slack.Context(f.disclosure()))

	return Receipt{
		Text:     "Refund processed: " + amount,
		Blocks:   blocks,
		Audience: AudienceRequester,
		Mode:     ModeNew,
	}
}

// Announcement renders the channel-wide notice for a modal-flow refund. It
// carries only the requester mention and the amount, never the reason or the
// payment intent id.
func (f *Formatter) Announcement(userID string, o refund.Outcome) Receipt {
	text := fmt.Sprintf("✅ Refund of *%s* processed for <@%s>", FormatAmount(o.AmountMinor), userID)
	return Receipt{
		Text:     fmt.Sprintf("Refund of %s has been processed for <@%s>", FormatAmount(o.AmountMinor), userID),
		Blocks:   []slack.Block{slack.Section(text)},
		Audience: AudienceChannel,
		Mode:     ModeNew,
	}
}

// Error renders a failure outcome. Errors are always requester-only.
func (f *Formatter) Error(o refund.Outcome) Receipt {
	var text string
	switch o.Category {
	case refund.CategoryInvalidInput:
		text = "❌ " + o.Detail
	case refund.CategoryNotFound:
		if strings.HasPrefix(o.OriginalRef, "ch_") {
			text = fmt.Sprintf("❌ Charge ID `%s` not found. Please verify the charge ID is correct.", o.OriginalRef)
		} else {
			text = fmt.Sprintf("❌ Payment intent `%s` not found. Please verify the ID is correct.", o.OriginalRef)
		}
	case refund.CategoryAlreadyRefunded:
		text = "❌ This charge has already been fully refunded."
	case refund.CategoryInvalidRequest:
		text = "❌ Invalid request: " + o.Detail
	case refund.CategoryProcessorError:
		text = "❌ Stripe error: " + o.Detail
	default:
		text = "❌ An error occurred while processing the refund: " + o.Detail
	}

	return Receipt{
		Text:     text,
		Blocks:   []slack.Block{slack.Section(text)},
		Audience: AudienceRequester,
		Mode:     ModeNew,
	}
}

// CommandError renders a failure for the slash flow: requester-only, and it
// replaces the processing placeholder. Input errors get the usage hint.
func (f *Formatter) CommandError(o refund.Outcome) Receipt {
	r := f.Error(o)
	if o.Category == refund.CategoryInvalidInput {
		r.Text = r.Text + "\n\n" + RefundUsage
		r.Blocks = []slack.Block{slack.Section(r.Text)}
	}
	r.Mode = ModeReplace
	return r
}

func (f *Formatter) disclosure() string {
	if f.testMode {
		return testModeNote
	}
	return settlementNote
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
