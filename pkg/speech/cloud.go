package speech

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// CloudConfig configures the streaming speech-to-text engine.
type CloudConfig struct {
	// URL is the websocket endpoint of the recognizer service.
	URL string

	// APIKey, when set, is sent as a bearer token on the upgrade request.
	APIKey string

	// DialTimeout bounds the websocket handshake.
	DialTimeout time.Duration
}

// cloudMessage is the wire frame exchanged with the recognizer service.
type cloudMessage struct {
	Type     string `json:"type"`
	Language string `json:"language,omitempty"`
	Text     string `json:"text,omitempty"`
	Message  string `json:"message,omitempty"`
}

// CloudEngine streams microphone transcription from a remote recognizer
// over a websocket. One connection per capture session: Start dials,
// Stop tells the service to finalize and closes the connection.
type CloudEngine struct {
	cfg    CloudConfig
	logger *slog.Logger

	mu   sync.Mutex
	conn *websocket.Conn

	onStarted func()
	onInterim func(text string)
	onFinal   func(text string)
	onEnded   func()
	onError   func(err error)
}

// NewCloudEngine creates a streaming recognizer client.
func NewCloudEngine(cfg CloudConfig, logger *slog.Logger) *CloudEngine {
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CloudEngine{
		cfg:    cfg,
		logger: logger.With("component", "speech.cloud"),
	}
}

// Start dials the recognizer and opens a session decoding langTag.
func (e *CloudEngine) Start(langTag string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.conn != nil {
		e.stopLocked()
	}

	dialer := websocket.Dialer{HandshakeTimeout: e.cfg.DialTimeout}
	headers := map[string][]string{}
	if e.cfg.APIKey != "" {
		headers["Authorization"] = []string{"Bearer " + e.cfg.APIKey}
	}

	conn, _, err := dialer.Dial(e.cfg.URL, headers)
	if err != nil {
		return fmt.Errorf("speech: dial recognizer: %w", err)
	}

	start := cloudMessage{Type: "start", Language: langTag}
	if err := conn.WriteJSON(start); err != nil {
		conn.Close()
		return fmt.Errorf("speech: open session: %w", err)
	}

	e.conn = conn
	go e.readLoop(conn)

	e.logger.Info("recognizer session opened", "url", e.cfg.URL, "lang", langTag)
	return nil
}

// Stop finalizes the session and closes the connection. No-op when idle.
func (e *CloudEngine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
}

func (e *CloudEngine) stopLocked() {
	if e.conn == nil {
		return
	}
	// Best effort: ask the service to flush a final result before the
	// close frame lands.
	_ = e.conn.WriteJSON(cloudMessage{Type: "stop"})
	_ = e.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	e.conn.Close()
	e.conn = nil
}

func (e *CloudEngine) readLoop(conn *websocket.Conn) {
	defer func() {
		e.mu.Lock()
		if e.conn == conn {
			e.conn = nil
		}
		ended := e.onEnded
		e.mu.Unlock()
		if ended != nil {
			ended()
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			e.mu.Lock()
			active := e.conn == conn
			onErr := e.onError
			e.mu.Unlock()

			// A read error after Stop is just the close handshake.
			if active && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				e.logger.Warn("recognizer connection lost", "error", err)
				if onErr != nil {
					onErr(fmt.Errorf("speech: recognizer stream: %w", err))
				}
			}
			return
		}

		var msg cloudMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			e.logger.Warn("bad recognizer frame", "error", err)
			continue
		}
		e.dispatch(msg)
	}
}

func (e *CloudEngine) dispatch(msg cloudMessage) {
	e.mu.Lock()
	started, interim, final, onErr := e.onStarted, e.onInterim, e.onFinal, e.onError
	e.mu.Unlock()

	switch msg.Type {
	case "started":
		if started != nil {
			started()
		}
	case "interim":
		if interim != nil {
			interim(msg.Text)
		}
	case "final":
		if final != nil {
			final(msg.Text)
		}
	case "error":
		if onErr != nil {
			onErr(errors.New("speech: recognizer: " + msg.Message))
		}
	case "ended":
		// The read loop emits Ended when the connection drains.
	default:
		e.logger.Debug("unknown recognizer frame", "type", msg.Type)
	}
}

func (e *CloudEngine) OnStarted(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onStarted = fn
}

func (e *CloudEngine) OnInterim(fn func(text string)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onInterim = fn
}

func (e *CloudEngine) OnFinal(fn func(text string)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onFinal = fn
}

func (e *CloudEngine) OnEnded(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onEnded = fn
}

func (e *CloudEngine) OnError(fn func(err error)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onError = fn
}

// Ensure CloudEngine implements Engine.
var _ Engine = (*CloudEngine)(nil)
