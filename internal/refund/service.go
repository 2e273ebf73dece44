package refund

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/oakpay/refundbot/pkg/logging"
)

var tracer = otel.Tracer("refundbot.internal.refund")

// Service executes refunds against the Stripe Refunds API.
type Service struct {
	secretKey  string
	baseURL    string
	apiVersion string
	httpClient *http.Client
	logger     *logging.Logger
	dryRun     bool
}

// NewService creates a refund service.
func NewService(secretKey string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		secretKey:  secretKey,
		baseURL:    "https://api.stripe.com",
		apiVersion: "2024-12-18.acacia",
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

// WithBaseURL overrides the Stripe API base URL (for testing).
func (s *Service) WithBaseURL(baseURL string) *Service {
	if baseURL != "" {
		s.baseURL = strings.TrimRight(baseURL, "/")
	}
	return s
}

// WithTimeout overrides the HTTP client timeout.
func (s *Service) WithTimeout(timeout time.Duration) *Service {
	if timeout > 0 {
		s.httpClient = &http.Client{Timeout: timeout}
	}
	return s
}

// WithDryRun enables dry-run mode (returns fabricated refunds without calling Stripe).
func (s *Service) WithDryRun(enabled bool) *Service {
	s.dryRun = enabled
	return s
}

// TestMode reports whether receipts should carry the test-mode banner.
func (s *Service) TestMode() bool {
	return s.dryRun || strings.HasPrefix(s.secretKey, "sk_test_")
}

// FullRefundRequest refunds an entire charge.
type FullRefundRequest struct {
	ChargeID    string
	RequestedBy string // Slack user id, recorded in refund metadata
	ChannelID   string // Slack channel id, recorded in refund metadata
}

// PartialRefundRequest refunds part (or all) of a payment intent. Amount is
// the raw user-entered string in minor currency units; it is validated here.
type PartialRefundRequest struct {
	PaymentIntentID string
	Amount          string
	Reason          string
	RequestedBy     string
	ChannelID       string
}

// ExecuteFullRefund validates the charge id and refunds the full charge.
// All failures are reported through the outcome; nothing is retried.
func (s *Service) ExecuteFullRefund(ctx context.Context, req FullRefundRequest) Outcome {
	ctx, span := tracer.Start(ctx, "stripe.refund_charge")
	defer span.End()

	chargeID := strings.TrimSpace(req.ChargeID)
	span.SetAttributes(attribute.String("stripe.charge_id", chargeID))

	if chargeID == "" {
		return failure(CategoryInvalidInput, "Please provide a charge ID.", chargeID)
	}
	if !strings.HasPrefix(chargeID, "ch_") {
		return failure(CategoryInvalidInput, "Invalid charge ID format. Charge IDs must start with `ch_`.", chargeID)
	}

	params := url.Values{}
	params.Set("charge", chargeID)
	params.Set("reason", "requested_by_customer")
	setMetadata(params, req.RequestedBy, req.ChannelID, "")

	return s.createRefund(ctx, chargeID, params, 0)
}

// ExecutePartialOrFullRefund validates the amount and refunds it against the
// payment intent.
func (s *Service) ExecutePartialOrFullRefund(ctx context.Context, req PartialRefundRequest) Outcome {
	ctx, span := tracer.Start(ctx, "stripe.refund_payment_intent")
	defer span.End()

	intentID := strings.TrimSpace(req.PaymentIntentID)
	span.SetAttributes(attribute.String("stripe.payment_intent_id", intentID))

	if intentID == "" {
		return failure(CategoryInvalidInput, "Please provide a payment intent ID.", intentID)
	}

	amount, err := strconv.ParseInt(strings.TrimSpace(req.Amount), 10, 64)
	if err != nil || amount <= 0 {
		return failure(CategoryInvalidInput,
			fmt.Sprintf("Invalid amount %q. Enter a positive whole number of cents, e.g. 1999 for $19.99.", req.Amount),
			intentID)
	}
	span.SetAttributes(attribute.Int64("stripe.amount_minor", amount))

	params := url.Values{}
	params.Set("payment_intent", intentID)
	params.Set("amount", strconv.FormatInt(amount, 10))
	params.Set("reason", "requested_by_customer")
	setMetadata(params, req.RequestedBy, req.ChannelID, req.Reason)

	outcome := s.createRefund(ctx, intentID, params, amount)
	outcome.Reason = strings.TrimSpace(req.Reason)
	return outcome
}

// setMetadata attaches traceability metadata to the refund.
func setMetadata(params url.Values, userID, channelID, reason string) {
	if userID != "" {
		params.Set("metadata[slack_user_id]", userID)
	}
	if channelID != "" {
		params.Set("metadata[slack_channel_id]", channelID)
	}
	if reason != "" {
		params.Set("metadata[reason]", reason)
	}
}

// stripeRefund is the subset of Stripe's Refund object we need.
type stripeRefund struct {
	ID            string `json:"id"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	Status        string `json:"status"`
	Created       int64  `json:"created"`
	Charge        string `json:"charge"`
	PaymentIntent string `json:"payment_intent"`
}

// stripeErrorResponse represents a Stripe API error.
type stripeErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// createRefund POSTs to /v1/refunds with the validated parameters and maps
// the response into an Outcome. No idempotency key is sent, so a duplicate
// submission can produce two refunds; that gap is inherited and documented.
func (s *Service) createRefund(ctx context.Context, originalRef string, params url.Values, amountMinor int64) Outcome {
	if s.dryRun {
		fakeID := "re_dryrun_" + uuid.New().String()[:8]
		s.logger.Info("stripe dry run: skipping refund creation",
			"original_ref", originalRef, "amount_minor", amountMinor)
		return Outcome{
			Success:     true,
			RefundID:    fakeID,
			AmountMinor: amountMinor,
			Currency:    "usd",
			Status:      "succeeded",
			Created:     time.Now(),
			OriginalRef: originalRef,
		}
	}

	apiURL := s.baseURL + "/v1/refunds"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, strings.NewReader(params.Encode()))
	if err != nil {
		return failure(CategoryInternalError, err.Error(), originalRef)
	}
	httpReq.Header.Set("Authorization", "Bearer "+s.secretKey)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Stripe-Version", s.apiVersion)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		s.logger.Error("stripe refund http failed", "original_ref", originalRef, "error", err)
		return failure(CategoryInternalError, err.Error(), originalRef)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= http.StatusMultipleChoices {
		return s.mapAPIError(originalRef, resp.StatusCode, respBody)
	}

	var parsed stripeRefund
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return failure(CategoryInternalError, fmt.Sprintf("decode refund response: %v", err), originalRef)
	}

	s.logger.Info("refund processed",
		"refund_id", parsed.ID,
		"original_ref", originalRef,
		"status", parsed.Status,
		"amount_minor", parsed.Amount,
	)

	return Outcome{
		Success:     true,
		RefundID:    parsed.ID,
		AmountMinor: parsed.Amount,
		Currency:    parsed.Currency,
		Status:      parsed.Status,
		Created:     time.Unix(parsed.Created, 0),
		OriginalRef: originalRef,
	}
}

// mapAPIError converts a Stripe error body into a failure category.
func (s *Service) mapAPIError(originalRef string, status int, body []byte) Outcome {
	var parsed stripeErrorResponse
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.Error.Message == "" {
		s.logger.Error("stripe refund failed with unreadable error",
			"status", status, "body", string(body), "original_ref", originalRef)
		return failure(CategoryProcessorError, fmt.Sprintf("stripe api status %d", status), originalRef)
	}

	msg := parsed.Error.Message
	s.logger.Warn("stripe refund rejected",
		"status", status,
		"type", parsed.Error.Type,
		"code", parsed.Error.Code,
		"original_ref", originalRef,
	)

	switch {
	case strings.Contains(msg, "No such charge"), strings.Contains(msg, "No such payment_intent"):
		return failure(CategoryNotFound, msg, originalRef)
	case parsed.Error.Code == "charge_already_refunded", strings.Contains(msg, "already been refunded"):
		return failure(CategoryAlreadyRefunded, msg, originalRef)
	case parsed.Error.Type == "invalid_request_error":
		return failure(CategoryInvalidRequest, msg, originalRef)
	default:
		return failure(CategoryProcessorError, msg, originalRef)
	}
}
