package speech

import (
	"log/slog"
	"sync"

	"github.com/lawbot-ai/go-lawbot/pkg/lang"
)

// DefaultDecodeLang is used when the caller asks for "auto": capture
// engines need a concrete decode hint, so auto-detect falls back to
// English while the translation stage downstream treats the source as
// undetermined.
const DefaultDecodeLang = lang.EnglishUS

// eventBuffer bounds the capture event channel. A stalled consumer drops
// interim events rather than blocking the engine callback.
const eventBuffer = 64

// Capture owns one speech-to-text session at a time. It is safe for
// concurrent use; engine callbacks and caller methods serialize on one
// mutex, so event ordering on the channel matches arrival order.
type Capture struct {
	engine Engine
	logger *slog.Logger

	mu         sync.Mutex
	listening  bool
	transcript Transcript
	events     chan Event
	seq        uint64

	// staleEnds counts replaced sessions whose engine has not yet
	// delivered its asynchronous Ended. Those late events must not
	// terminate the session that replaced them.
	staleEnds int
}

// NewCapture wraps an engine. A nil engine means the platform offers no
// speech-to-text; Supported reports false and Start becomes a logged no-op
// rather than an error.
func NewCapture(engine Engine, logger *slog.Logger) *Capture {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Capture{
		engine: engine,
		logger: logger.With("component", "speech.capture"),
		events: make(chan Event, eventBuffer),
	}

	if engine != nil {
		engine.OnStarted(c.handleStarted)
		engine.OnInterim(c.handleInterim)
		engine.OnFinal(c.handleFinal)
		engine.OnEnded(c.handleEnded)
		engine.OnError(c.handleError)
	}

	return c
}

// Supported reports whether a speech-to-text engine is available. Decided
// once at construction, never retried.
func (c *Capture) Supported() bool {
	return c.engine != nil
}

// Listening reports whether a capture session is active.
func (c *Capture) Listening() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listening
}

// Events returns the capture event stream. Exactly one Started and one
// Ended event bracket each session.
func (c *Capture) Events() <-chan Event {
	return c.events
}

// Start begins a capture session. If a session is already active it is
// stopped first; only one session may exist at a time. "auto" falls back
// to the default decode language.
func (c *Capture) Start(langTag string) error {
	if c.engine == nil {
		c.logger.Warn("speech capture unsupported on this platform")
		return nil
	}

	c.mu.Lock()
	wasListening := c.listening
	if wasListening {
		// The old session ends now, from the caller's point of view. Its
		// engine may still deliver an Ended later (streaming engines end
		// asynchronously); mark it stale in the same critical section so
		// the late Ended cannot terminate the replacement session.
		c.staleEnds++
	}
	c.mu.Unlock()

	if wasListening {
		c.engine.Stop()
		c.endSession()
	}

	decode := langTag
	if decode == lang.Auto || decode == "" {
		decode = DefaultDecodeLang
	}

	if err := c.engine.Start(decode); err != nil {
		c.logger.Error("capture start failed", "lang", decode, "error", err)
		return err
	}
	return nil
}

// Stop ends the active session. Idempotent: stopping when not listening
// is a no-op.
func (c *Capture) Stop() {
	if c.engine == nil {
		return
	}

	c.mu.Lock()
	listening := c.listening
	c.mu.Unlock()

	if !listening {
		return
	}
	c.engine.Stop()
}

// Transcript returns a snapshot of the session transcript.
func (c *Capture) Transcript() Transcript {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcript
}

// ResetTranscript clears both interim and final text. Called when the
// draft is sent or recognition restarts. The returned sequence number is
// the watermark of the reset: events still queued with a Seq at or below
// it were produced before the reset and should be ignored by consumers.
func (c *Capture) ResetTranscript() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transcript = Transcript{}
	return c.seq
}

func (c *Capture) handleStarted() {
	c.mu.Lock()
	c.listening = true
	c.transcript.Interim = ""
	c.mu.Unlock()

	c.logger.Debug("capture session started")
	c.emit(Event{Kind: EventStarted})
}

func (c *Capture) handleInterim(text string) {
	c.mu.Lock()
	if !c.listening {
		// Stray event after the session ended.
		c.mu.Unlock()
		c.logger.Debug("discarding stray interim event", "text", text)
		return
	}
	c.transcript.Interim = text
	c.mu.Unlock()

	c.emit(Event{Kind: EventInterim, Text: text})
}

func (c *Capture) handleFinal(text string) {
	c.mu.Lock()
	if !c.listening {
		c.mu.Unlock()
		c.logger.Debug("discarding stray final event", "text", text)
		return
	}
	if c.transcript.Final != "" {
		c.transcript.Final += " " + text
	} else {
		c.transcript.Final = text
	}
	c.mu.Unlock()

	c.emit(Event{Kind: EventFinal, Text: text})
}

func (c *Capture) handleEnded() {
	c.mu.Lock()
	if c.staleEnds > 0 {
		c.staleEnds--
		c.mu.Unlock()
		c.logger.Debug("discarding ended event from a replaced session")
		return
	}
	c.mu.Unlock()

	c.endSession()
}

func (c *Capture) handleError(err error) {
	c.logger.Warn("recognition error", "error", err)
	c.emit(Event{Kind: EventError, Err: err})

	// An error implies the session is over. No auto-restart: a failing
	// recognizer would loop forever.
	c.endSession()
}

// endSession marks the session ended and emits exactly one Ended event.
func (c *Capture) endSession() {
	c.mu.Lock()
	if !c.listening {
		c.mu.Unlock()
		return
	}
	c.listening = false
	c.transcript.Interim = ""
	c.mu.Unlock()

	c.logger.Debug("capture session ended")
	c.emit(Event{Kind: EventEnded})
}

func (c *Capture) emit(ev Event) {
	c.mu.Lock()
	c.seq++
	ev.Seq = c.seq
	c.mu.Unlock()

	select {
	case c.events <- ev:
	default:
		c.logger.Warn("capture event buffer full, dropping event", "kind", ev.Kind)
	}
}
