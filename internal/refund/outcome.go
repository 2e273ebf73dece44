package refund

import "time"

// Category classifies a failed refund attempt.
type Category string

const (
	CategoryInvalidInput    Category = "invalid_input"
	CategoryNotFound        Category = "not_found"
	CategoryAlreadyRefunded Category = "already_refunded"
	CategoryInvalidRequest  Category = "invalid_request"
	CategoryProcessorError  Category = "processor_error"
	CategoryInternalError   Category = "internal_error"
)

// Outcome is the canonical result of one refund attempt. Exactly one of the
// success fields or the failure fields is meaningful, keyed off Success.
type Outcome struct {
	Success bool

	// Success fields
	RefundID    string
	AmountMinor int64
	Currency    string
	Status      string
	Created     time.Time
	OriginalRef string // the charge or payment intent the refund targeted
	Reason      string

	// Failure fields
	Category Category
	Detail   string
}

// failure builds a failed outcome carrying the targeted reference.
func failure(category Category, detail, originalRef string) Outcome {
	return Outcome{
		Success:     false,
		Category:    category,
		Detail:      detail,
		OriginalRef: originalRef,
	}
}
