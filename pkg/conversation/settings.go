package conversation

import "github.com/lawbot-ai/go-lawbot/pkg/lang"

// Settings are the process-wide conversation preferences. They live for
// the lifetime of the conversation screen, change only through explicit
// user actions, and are read by every component.
type Settings struct {
	// RecognitionLang is the capture decode language: "en-US", "hi-IN"
	// or "auto".
	RecognitionLang string `json:"recognitionLang"`

	// SpeakLang is the synthesis language for replies without an
	// explicit tag: "en-US" or "hi-IN".
	SpeakLang string `json:"speakLang"`

	// AutoTranslate requests a translation to the target language
	// before each send.
	AutoTranslate bool `json:"autoTranslateBeforeSend"`

	// VoiceURI names a preferred synthesis voice. Empty means the
	// first language match, then the platform default.
	VoiceURI string `json:"selectedVoice"`

	// MicDisabled disables both capture and audio output. Toggling it
	// on cancels in-flight playback and blocks capture starts.
	MicDisabled bool `json:"micDisabled"`
}

// DefaultSettings returns the settings a fresh conversation starts with.
func DefaultSettings() Settings {
	return Settings{
		RecognitionLang: lang.EnglishUS,
		SpeakLang:       lang.EnglishUS,
		AutoTranslate:   true,
	}
}
