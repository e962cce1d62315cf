package speech

import (
	"log/slog"
	"sync"
)

// MockEngine is a scriptable speech-to-text engine for tests and for
// running the client on hosts without a recognizer. Tests drive it by
// calling the Emit methods between capture operations.
type MockEngine struct {
	logger *slog.Logger

	mu       sync.Mutex
	active   bool
	lastLang string

	// StartErr, when set, is returned by Start to simulate a platform
	// refusing to open a session.
	StartErr error

	onStarted func()
	onInterim func(text string)
	onFinal   func(text string)
	onEnded   func()
	onError   func(err error)
}

// NewMockEngine creates a mock engine.
func NewMockEngine(logger *slog.Logger) *MockEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &MockEngine{logger: logger.With("component", "speech.mock")}
}

// Start marks a session active and fires the started callback.
func (m *MockEngine) Start(langTag string) error {
	m.mu.Lock()
	if m.StartErr != nil {
		err := m.StartErr
		m.mu.Unlock()
		return err
	}
	m.active = true
	m.lastLang = langTag
	started := m.onStarted
	m.mu.Unlock()

	m.logger.Debug("mock capture started", "lang", langTag)
	if started != nil {
		started()
	}
	return nil
}

// Stop ends the session and fires the ended callback. No-op when idle.
func (m *MockEngine) Stop() {
	m.mu.Lock()
	if !m.active {
		m.mu.Unlock()
		return
	}
	m.active = false
	ended := m.onEnded
	m.mu.Unlock()

	if ended != nil {
		ended()
	}
}

// Active reports whether a mock session is open.
func (m *MockEngine) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// LastLang returns the decode language of the most recent session.
func (m *MockEngine) LastLang() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastLang
}

// EmitInterim delivers an interim hypothesis.
func (m *MockEngine) EmitInterim(text string) {
	m.mu.Lock()
	fn := m.onInterim
	m.mu.Unlock()
	if fn != nil {
		fn(text)
	}
}

// EmitFinal delivers a stabilized segment.
func (m *MockEngine) EmitFinal(text string) {
	m.mu.Lock()
	fn := m.onFinal
	m.mu.Unlock()
	if fn != nil {
		fn(text)
	}
}

// EmitEnded simulates the platform ending the session on its own
// (end-of-speech detection).
func (m *MockEngine) EmitEnded() {
	m.mu.Lock()
	m.active = false
	fn := m.onEnded
	m.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// EmitError simulates a mid-session recognition failure.
func (m *MockEngine) EmitError(err error) {
	m.mu.Lock()
	m.active = false
	fn := m.onError
	m.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}

func (m *MockEngine) OnStarted(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onStarted = fn
}

func (m *MockEngine) OnInterim(fn func(text string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onInterim = fn
}

func (m *MockEngine) OnFinal(fn func(text string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onFinal = fn
}

func (m *MockEngine) OnEnded(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onEnded = fn
}

func (m *MockEngine) OnError(fn func(err error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onError = fn
}

// Ensure MockEngine implements Engine.
var _ Engine = (*MockEngine)(nil)
