// Package speech provides continuous speech-to-text capture for the chat
// client. An Engine wraps a platform recognizer; Capture turns its callback
// stream into an ordered event channel and maintains the session transcript.
//
// Example usage:
//
//	engine := speech.NewCloudEngine(speech.CloudConfig{URL: wsURL}, logger)
//	capture := speech.NewCapture(engine, logger)
//
//	go func() {
//	    for ev := range capture.Events() {
//	        switch ev.Kind {
//	        case speech.EventInterim:
//	            // live preview
//	        case speech.EventFinal:
//	            // append to draft
//	        }
//	    }
//	}()
//
//	capture.Start("hi-IN")
package speech

// Engine is a platform speech-to-text session. Implementations deliver
// results through the callbacks; Capture is the only consumer and
// registers them once at construction.
type Engine interface {
	// Start begins a capture session decoding with the given language tag.
	Start(langTag string) error

	// Stop ends the session. Implementations must tolerate Stop when no
	// session is active.
	Stop()

	// OnStarted is invoked once when a session becomes active.
	OnStarted(fn func())

	// OnInterim is invoked with a partial hypothesis. Each interim
	// supersedes the previous one.
	OnInterim(fn func(text string))

	// OnFinal is invoked with a stabilized text segment.
	OnFinal(fn func(text string))

	// OnEnded is invoked once when the session ends, whether by Stop or
	// by the platform detecting end of speech.
	OnEnded(fn func())

	// OnError is invoked on recognition failure. The session is over
	// after an error; engines must not restart on their own.
	OnError(fn func(err error))
}

// EventKind identifies a capture event.
type EventKind string

const (
	EventStarted EventKind = "started"
	EventInterim EventKind = "interim"
	EventFinal   EventKind = "final"
	EventEnded   EventKind = "ended"
	EventError   EventKind = "error"
)

// Event is one capture session event. Text carries the interim hypothesis
// or the final segment; Err is set only for EventError. Seq orders events
// against transcript resets: an event whose Seq is at or below the value a
// ResetTranscript call returned was produced before the reset.
type Event struct {
	Kind EventKind
	Text string
	Err  error
	Seq  uint64
}

// Transcript is a snapshot of the session transcript. Interim is volatile
// and replaced wholesale on each recognition event; Final accumulates
// stabilized segments, space-joined, until explicitly reset.
type Transcript struct {
	Interim string `json:"interim"`
	Final   string `json:"final"`
}
