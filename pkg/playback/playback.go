// Package playback provides text-to-speech output for the chat client with
// at most one utterance audible at a time. A Synthesizer wraps the platform
// speech-synthesis capability; Player enforces the single-utterance rule,
// voice selection and the mute flag on top of it.
package playback

// Voice describes one entry in the platform voice catalog.
type Voice struct {
	// URI uniquely identifies the voice on this platform.
	URI string `json:"uri"`

	// Name is the human-readable voice name.
	Name string `json:"name"`

	// Lang is the voice's language tag, e.g. "en-US".
	Lang string `json:"lang"`

	// Default marks the platform default voice.
	Default bool `json:"default"`
}

// Synthesizer is a platform text-to-speech device. Implementations play a
// single utterance per Speak call; the caller cancels before re-speaking.
type Synthesizer interface {
	// Speak plays text in the given language using the resolved voice.
	// An empty voiceURI means the platform default.
	Speak(text, langTag, voiceURI string) error

	// Stop cancels any playing or queued utterance. Must tolerate being
	// called when nothing is playing.
	Stop()

	// Voices returns the currently known voice catalog. The catalog may
	// be empty shortly after startup: platforms load voices lazily.
	Voices() []Voice

	// OnVoicesChanged registers a callback for catalog updates.
	OnVoicesChanged(fn func())
}
