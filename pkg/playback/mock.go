package playback

import (
	"sync"
)

// Utterance records one Speak call observed by the mock synthesizer.
type Utterance struct {
	Text     string
	Lang     string
	VoiceURI string
}

// MockSynthesizer is a synthesizer for tests. It records utterances and
// cancellations instead of producing audio.
type MockSynthesizer struct {
	mu sync.Mutex

	voices    []Voice
	onChanged func()

	// SpeakErr, when set, is returned by Speak to simulate a platform
	// synthesis failure.
	SpeakErr error

	utterances []Utterance
	stops      int
}

// NewMockSynthesizer creates a mock with the given voice catalog. The
// catalog may be empty and populated later via SetVoices, mirroring lazy
// platform voice loading.
func NewMockSynthesizer(voices ...Voice) *MockSynthesizer {
	return &MockSynthesizer{voices: voices}
}

func (m *MockSynthesizer) Speak(text, langTag, voiceURI string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SpeakErr != nil {
		return m.SpeakErr
	}
	m.utterances = append(m.utterances, Utterance{Text: text, Lang: langTag, VoiceURI: voiceURI})
	return nil
}

func (m *MockSynthesizer) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stops++
}

func (m *MockSynthesizer) Voices() []Voice {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Voice, len(m.voices))
	copy(out, m.voices)
	return out
}

func (m *MockSynthesizer) OnVoicesChanged(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChanged = fn
}

// SetVoices replaces the catalog and fires the voices-changed callback,
// simulating the platform finishing its lazy voice load.
func (m *MockSynthesizer) SetVoices(voices ...Voice) {
	m.mu.Lock()
	m.voices = voices
	fn := m.onChanged
	m.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Utterances returns the recorded Speak calls.
func (m *MockSynthesizer) Utterances() []Utterance {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Utterance, len(m.utterances))
	copy(out, m.utterances)
	return out
}

// Stops returns how many times playback was cancelled.
func (m *MockSynthesizer) Stops() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stops
}

// Ensure MockSynthesizer implements Synthesizer.
var _ Synthesizer = (*MockSynthesizer)(nil)
