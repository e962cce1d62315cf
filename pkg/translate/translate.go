// Package translate calls the external translation endpoint. Translation
// is best-effort: a failed call resolves to "no translation available" and
// the send pipeline proceeds with the original text, so nothing here ever
// returns an error to the caller.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/lawbot-ai/go-lawbot/internal/httpc"
)

// Result is a successful translation.
type Result struct {
	TranslatedText     string `json:"translatedText"`
	DetectedSourceLang string `json:"detectedSourceLang"`
}

type request struct {
	Text       string `json:"text"`
	SourceLang string `json:"sourceLang"`
	TargetLang string `json:"targetLang"`
}

// Client calls POST {baseURL}/api/translate. One attempt, no retry.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a translation client. timeout bounds the whole call;
// zero means the shared default.
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
		logger:  logger.With("component", "translate"),
	}
}

// Translate requests a translation of text from sourceLang to targetLang.
// ok is false on any failure: non-2xx status, transport error, timeout or
// a malformed body. The failure is logged, never propagated.
func (c *Client) Translate(ctx context.Context, text, sourceLang, targetLang string) (Result, bool) {
	body, err := json.Marshal(request{Text: text, SourceLang: sourceLang, TargetLang: targetLang})
	if err != nil {
		c.logger.Warn("translate request encode failed", "error", err)
		return Result{}, false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/translate", bytes.NewReader(body))
	if err != nil {
		c.logger.Warn("translate request build failed", "error", err)
		return Result{}, false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("translate call failed, proceeding without translation", "error", err)
		return Result{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("translate endpoint returned non-OK", "status", resp.StatusCode)
		return Result{}, false
	}

	var out Result
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.logger.Warn("translate response malformed", "error", err)
		return Result{}, false
	}
	if out.TranslatedText == "" {
		return Result{}, false
	}
	return out, true
}
