package bot

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouterDispatchFirstMatchWins(t *testing.T) {
	r := NewRouter(nil, nil)
	var ran []string

	r.OnCommand("/refund", func(ctx context.Context, ev Event) error {
		ran = append(ran, "first")
		return nil
	})
	r.OnCommand("/refund", func(ctx context.Context, ev Event) error {
		ran = append(ran, "second")
		return nil
	})

	matched := r.Dispatch(context.Background(), Event{Kind: KindSlashCommand, Command: "/refund"})
	assert.True(t, matched)
	assert.Equal(t, []string{"first"}, ran)
}

func TestRouterIgnoresUnmatchedEvents(t *testing.T) {
	r := NewRouter(nil, nil)
	r.OnCommand("/support", func(ctx context.Context, ev Event) error {
		t.Fatal("handler should not run")
		return nil
	})

	assert.False(t, r.Dispatch(context.Background(), Event{Kind: KindSlashCommand, Command: "/unknown"}))
	assert.False(t, r.Dispatch(context.Background(), Event{Kind: KindMessage, Text: "/support"}))
}

func TestRouterMessageMatchesBySubstring(t *testing.T) {
	r := NewRouter(nil, nil)
	var matched int

	r.OnMessage("hello", func(ctx context.Context, ev Event) error {
		matched++
		return nil
	})

	assert.True(t, r.Dispatch(context.Background(), Event{Kind: KindMessage, Text: "hello"}))
	assert.True(t, r.Dispatch(context.Background(), Event{Kind: KindMessage, Text: "well hello there"}))
	assert.False(t, r.Dispatch(context.Background(), Event{Kind: KindMessage, Text: "help"}))
	assert.Equal(t, 2, matched)
}

func TestRouterKindSeparation(t *testing.T) {
	r := NewRouter(nil, nil)
	var got EventKind

	r.OnMessage("hello", func(ctx context.Context, ev Event) error {
		got = ev.Kind
		return nil
	})
	r.OnAction("ask_question_btn", func(ctx context.Context, ev Event) error {
		got = ev.Kind
		return nil
	})
	r.OnViewSubmission("refund_modal", func(ctx context.Context, ev Event) error {
		got = ev.Kind
		return nil
	})

	r.Dispatch(context.Background(), Event{Kind: KindMessage, Text: " hello "})
	assert.Equal(t, KindMessage, got)

	r.Dispatch(context.Background(), Event{Kind: KindBlockAction, ActionID: "ask_question_btn"})
	assert.Equal(t, KindBlockAction, got)

	r.Dispatch(context.Background(), Event{Kind: KindViewSubmission, CallbackID: "refund_modal"})
	assert.Equal(t, KindViewSubmission, got)
}

func TestRouterAbsorbsHandlerErrors(t *testing.T) {
	r := NewRouter(nil, nil)
	r.OnCommand("/refund", func(ctx context.Context, ev Event) error {
		return errors.New("boom")
	})

	// A failing handler still counts as matched and must not panic.
	assert.True(t, r.Dispatch(context.Background(), Event{Kind: KindSlashCommand, Command: "/refund"}))
}
