// Package chat calls the external reply-generation endpoint. This is the
// primary network dependency of the client: one POST per turn, no
// automatic retry (the controller's local fallback substitutes for retry).
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/lawbot-ai/go-lawbot/internal/httpc"
)

// maxErrorBody caps how much of a failed response is kept for diagnostics.
const maxErrorBody = 4 << 10

// Metadata tags a payload with its creation time and client identity.
type Metadata struct {
	TS     string `json:"ts"`
	Client string `json:"client"`
}

// Payload is the request sent to the reply service. Constructed fresh per
// send and never mutated after dispatch.
type Payload struct {
	OriginalText   string   `json:"originalText"`
	SourceLang     string   `json:"sourceLang"`
	TranslatedText *string  `json:"translatedText"`
	TargetLang     string   `json:"targetLang"`
	SpeakLang      string   `json:"speakLang"`
	Metadata       Metadata `json:"metadata"`
}

// Reply is the reply service response. TranslatedReply may be null.
type Reply struct {
	Reply           string  `json:"reply"`
	ReplyLang       string  `json:"replyLang"`
	TranslatedReply *string `json:"translatedReply"`
}

// APIError is a non-success response from the reply service. It carries
// the status and body for logging; callers absorb it into the fallback
// reply rather than surfacing it.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("chat: server error %d: %s", e.StatusCode, e.Body)
}

// Client calls POST {baseURL}/api/chat.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a reply-service client. timeout bounds the whole call;
// an unbounded call would leave a placeholder message pending forever, so
// zero falls back to the shared default rather than no timeout.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	hc := httpc.Client
	if timeout > 0 {
		hc = httpc.NewClient(timeout)
	}
	return &Client{
		baseURL: baseURL,
		http:    hc,
		logger:  logger.With("component", "chat"),
	}
}

// Send dispatches one payload and decodes the reply. Any non-2xx response
// returns *APIError; transport and timeout failures return a wrapped
// error. Send never panics on malformed responses.
func (c *Client) Send(ctx context.Context, p Payload) (Reply, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return Reply{}, fmt.Errorf("chat: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return Reply{}, fmt.Errorf("chat: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Reply{}, fmt.Errorf("chat: call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		diag, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(diag)}
		c.logger.Error("reply service returned error", "status", apiErr.StatusCode, "body", apiErr.Body)
		return Reply{}, apiErr
	}

	var out Reply
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Reply{}, fmt.Errorf("chat: decode reply: %w", err)
	}
	return out, nil
}
