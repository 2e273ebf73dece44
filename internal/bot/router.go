package bot

import (
	"context"
	"strings"

	"github.com/oakpay/refundbot/internal/observability/metrics"
	"github.com/oakpay/refundbot/pkg/logging"
)

// Handler processes one matched event.
type Handler func(ctx context.Context, ev Event) error

// Matcher decides whether a registered handler applies to an event.
type Matcher func(ev Event) bool

type route struct {
	kind    EventKind
	matches Matcher
	handle  Handler
}

// Router maps inbound events to handlers through an explicit table built at
// startup. Unmatched events are ignored: the bot only reacts to triggers it
// registered, everything else belongs to other apps in the workspace.
type Router struct {
	routes  []route
	logger  *logging.Logger
	metrics *metrics.BotMetrics
}

// NewRouter creates an empty router.
func NewRouter(logger *logging.Logger, m *metrics.BotMetrics) *Router {
	if logger == nil {
		logger = logging.Default()
	}
	return &Router{logger: logger, metrics: m}
}

// Register adds a (selector, handler) pair. Registration order is dispatch
// order; the first match wins.
func (r *Router) Register(kind EventKind, matches Matcher, handle Handler) {
	r.routes = append(r.routes, route{kind: kind, matches: matches, handle: handle})
}

// OnMessage registers a handler for messages containing the literal text
// anywhere in the body, so "hello there" still greets.
func (r *Router) OnMessage(text string, handle Handler) {
	r.Register(KindMessage, func(ev Event) bool {
		return strings.Contains(ev.Text, text)
	}, handle)
}

// OnCommand registers a handler for a slash command by name.
func (r *Router) OnCommand(command string, handle Handler) {
	r.Register(KindSlashCommand, func(ev Event) bool {
		return ev.Command == command
	}, handle)
}

// OnAction registers a handler for a block action by action id.
func (r *Router) OnAction(actionID string, handle Handler) {
	r.Register(KindBlockAction, func(ev Event) bool {
		return ev.ActionID == actionID
	}, handle)
}

// OnViewSubmission registers a handler for a modal submission by callback id.
func (r *Router) OnViewSubmission(callbackID string, handle Handler) {
	r.Register(KindViewSubmission, func(ev Event) bool {
		return ev.CallbackID == callbackID
	}, handle)
}

// Dispatch finds the first matching handler and runs it. It reports whether
// any handler matched. Handler errors are logged and absorbed here; by the
// time a handler fails, the user-visible message has already been decided.
func (r *Router) Dispatch(ctx context.Context, ev Event) bool {
	for _, rt := range r.routes {
		if rt.kind != ev.Kind || !rt.matches(ev) {
			continue
		}
		if err := rt.handle(ctx, ev); err != nil {
			r.logger.Error("handler failed",
				"kind", string(ev.Kind),
				"user_id", ev.UserID,
				"error", err,
			)
			r.metrics.ObserveEvent(string(ev.Kind), "error")
			return true
		}
		r.metrics.ObserveEvent(string(ev.Kind), "handled")
		return true
	}

	r.metrics.ObserveEvent(string(ev.Kind), "ignored")
	return false
}
