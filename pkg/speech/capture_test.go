package speech

import (
	"errors"
	"testing"
	"time"
)

func drainEvents(t *testing.T, c *Capture, n int) []Event {
	t.Helper()
	events := make([]Event, 0, n)
	for i := 0; i < n; i++ {
		select {
		case ev := <-c.Events():
			events = append(events, ev)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for event %d of %d (got %v)", i+1, n, events)
		}
	}
	return events
}

func TestCaptureUnsupported(t *testing.T) {
	c := NewCapture(nil, nil)

	if c.Supported() {
		t.Error("capture with nil engine should report unsupported")
	}
	if err := c.Start("en-US"); err != nil {
		t.Errorf("Start on unsupported capture must be a no-op, got error %v", err)
	}
	c.Stop() // must not panic
	if c.Listening() {
		t.Error("unsupported capture should never be listening")
	}
}

func TestCaptureSessionLifecycle(t *testing.T) {
	engine := NewMockEngine(nil)
	c := NewCapture(engine, nil)

	if err := c.Start("hi-IN"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := engine.LastLang(); got != "hi-IN" {
		t.Errorf("engine decode lang = %q, want hi-IN", got)
	}

	engine.EmitInterim("नम")
	engine.EmitFinal("नमस्ते")
	engine.EmitInterim("दु")
	engine.EmitFinal("दुनिया")
	c.Stop()

	events := drainEvents(t, c, 6)
	wantKinds := []EventKind{EventStarted, EventInterim, EventFinal, EventInterim, EventFinal, EventEnded}
	for i, want := range wantKinds {
		if events[i].Kind != want {
			t.Errorf("event %d kind = %q, want %q", i, events[i].Kind, want)
		}
	}

	tr := c.Transcript()
	if tr.Final != "नमस्ते दुनिया" {
		t.Errorf("final transcript = %q, want space-joined segments", tr.Final)
	}
	if tr.Interim != "" {
		t.Errorf("interim should be cleared at session end, got %q", tr.Interim)
	}
}

func TestCaptureAutoFallsBackToDefaultDecode(t *testing.T) {
	engine := NewMockEngine(nil)
	c := NewCapture(engine, nil)

	if err := c.Start("auto"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := engine.LastLang(); got != DefaultDecodeLang {
		t.Errorf("auto should decode as %q, got %q", DefaultDecodeLang, got)
	}
}

func TestCaptureStopIdempotent(t *testing.T) {
	engine := NewMockEngine(nil)
	c := NewCapture(engine, nil)

	// Stop before any session: no events, no panic.
	c.Stop()
	c.Stop()

	select {
	case ev := <-c.Events():
		t.Errorf("unexpected event %+v from idle Stop", ev)
	default:
	}

	if err := c.Start("en-US"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	c.Stop()
	c.Stop() // second stop after end is a no-op

	events := drainEvents(t, c, 2)
	if events[0].Kind != EventStarted || events[1].Kind != EventEnded {
		t.Errorf("got events %+v, want exactly started+ended", events)
	}
	select {
	case ev := <-c.Events():
		t.Errorf("extra event %+v after idempotent stops", ev)
	default:
	}
}

func TestCaptureStartWhileListeningStopsFirst(t *testing.T) {
	engine := NewMockEngine(nil)
	c := NewCapture(engine, nil)

	if err := c.Start("en-US"); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	if err := c.Start("hi-IN"); err != nil {
		t.Fatalf("second Start: %v", err)
	}

	events := drainEvents(t, c, 3)
	wantKinds := []EventKind{EventStarted, EventEnded, EventStarted}
	for i, want := range wantKinds {
		if events[i].Kind != want {
			t.Errorf("event %d kind = %q, want %q", i, events[i].Kind, want)
		}
	}
	if got := engine.LastLang(); got != "hi-IN" {
		t.Errorf("restarted session decode lang = %q, want hi-IN", got)
	}
}

// lingeringEngine starts sessions synchronously but never acknowledges
// Stop; tests deliver the Ended by hand, the way a streaming recognizer's
// read loop winds down after the replacement session already began.
type lingeringEngine struct {
	onStarted func()
	onFinal   func(text string)
	onEnded   func()
}

func (e *lingeringEngine) Start(langTag string) error { e.onStarted(); return nil }
func (e *lingeringEngine) Stop()                      {}

func (e *lingeringEngine) OnStarted(fn func())            { e.onStarted = fn }
func (e *lingeringEngine) OnInterim(fn func(text string)) {}
func (e *lingeringEngine) OnFinal(fn func(text string))   { e.onFinal = fn }
func (e *lingeringEngine) OnEnded(fn func())              { e.onEnded = fn }
func (e *lingeringEngine) OnError(fn func(err error))     {}

func TestCaptureLateEndedFromReplacedSession(t *testing.T) {
	engine := &lingeringEngine{}
	c := NewCapture(engine, nil)

	if err := c.Start("en-US"); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	if err := c.Start("hi-IN"); err != nil {
		t.Fatalf("second Start: %v", err)
	}

	// The replaced session's read loop only now delivers its Ended. It
	// must not terminate the session that replaced it.
	engine.onEnded()

	if !c.Listening() {
		t.Fatal("late ended from the replaced session terminated the active one")
	}

	engine.onFinal("नमस्ते")
	if tr := c.Transcript(); tr.Final != "नमस्ते" {
		t.Errorf("final segment after late ended dropped, transcript = %q", tr.Final)
	}

	// The active session still ends normally.
	engine.onEnded()
	if c.Listening() {
		t.Error("genuine ended should close the active session")
	}

	events := drainEvents(t, c, 5)
	wantKinds := []EventKind{EventStarted, EventEnded, EventStarted, EventFinal, EventEnded}
	for i, want := range wantKinds {
		if events[i].Kind != want {
			t.Errorf("event %d kind = %q, want %q", i, events[i].Kind, want)
		}
	}
	select {
	case ev := <-c.Events():
		t.Errorf("extra event %+v: each session must emit exactly one ended", ev)
	default:
	}
}

func TestCaptureStrayEventsDiscarded(t *testing.T) {
	engine := NewMockEngine(nil)
	c := NewCapture(engine, nil)

	if err := c.Start("en-US"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	engine.EmitFinal("hello")
	c.Stop()

	// Events arriving after the session ended must be dropped.
	engine.EmitInterim("stray interim")
	engine.EmitFinal("stray final")

	events := drainEvents(t, c, 3)
	wantKinds := []EventKind{EventStarted, EventFinal, EventEnded}
	for i, want := range wantKinds {
		if events[i].Kind != want {
			t.Errorf("event %d kind = %q, want %q", i, events[i].Kind, want)
		}
	}
	select {
	case ev := <-c.Events():
		t.Errorf("stray event leaked: %+v", ev)
	default:
	}

	if tr := c.Transcript(); tr.Final != "hello" {
		t.Errorf("stray final mutated transcript: %q", tr.Final)
	}
}

func TestCaptureErrorEndsSessionWithoutRestart(t *testing.T) {
	engine := NewMockEngine(nil)
	c := NewCapture(engine, nil)

	if err := c.Start("en-US"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	engine.EmitError(errors.New("audio device lost"))

	events := drainEvents(t, c, 3)
	wantKinds := []EventKind{EventStarted, EventError, EventEnded}
	for i, want := range wantKinds {
		if events[i].Kind != want {
			t.Errorf("event %d kind = %q, want %q", i, events[i].Kind, want)
		}
	}

	if c.Listening() {
		t.Error("capture must not restart after a recognition error")
	}
	if engine.Active() {
		t.Error("engine session should be over after error")
	}
}

func TestCaptureResetTranscript(t *testing.T) {
	engine := NewMockEngine(nil)
	c := NewCapture(engine, nil)

	if err := c.Start("en-US"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	engine.EmitFinal("first")
	engine.EmitFinal("second")

	if tr := c.Transcript(); tr.Final != "first second" {
		t.Fatalf("final transcript = %q", tr.Final)
	}

	c.ResetTranscript()
	if tr := c.Transcript(); tr.Final != "" || tr.Interim != "" {
		t.Errorf("transcript not cleared: %+v", tr)
	}
}
