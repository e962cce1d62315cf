// Package config provides configuration helpers for go-lawbot commands.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Defaults for the chat client.
const (
	DefaultPort         = "8080"
	DefaultAPIBaseURL   = "http://127.0.0.1:8000"
	DefaultChatTimeout  = 20 * time.Second
	DefaultTransTimeout = 10 * time.Second
)

// LoadEnv loads a .env file if one is present. Missing files are not an
// error; real environment variables always win.
func LoadEnv() {
	_ = godotenv.Load()
}

// Env returns the named env var, falling back to def when unset.
func Env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Port returns the HTTP listen port from PORT.
func Port() string {
	return Env("PORT", DefaultPort)
}

// APIBaseURL returns the base URL of the translate/chat collaborator
// service from API_BASE_URL.
func APIBaseURL() string {
	return Env("API_BASE_URL", DefaultAPIBaseURL)
}

// ChatTimeout returns the reply-service call timeout from CHAT_TIMEOUT
// (seconds). The reply call must be bounded or a failed backend leaves a
// placeholder message pending forever.
func ChatTimeout() time.Duration {
	return envSeconds("CHAT_TIMEOUT", DefaultChatTimeout)
}

// TranslateTimeout returns the translate call timeout from
// TRANSLATE_TIMEOUT (seconds).
func TranslateTimeout() time.Duration {
	return envSeconds("TRANSLATE_TIMEOUT", DefaultTransTimeout)
}

// STTWebSocketURL returns the streaming speech-to-text endpoint from
// STT_WS_URL. Empty means no speech-to-text capability on this host.
func STTWebSocketURL() string {
	return os.Getenv("STT_WS_URL")
}

func envSeconds(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return def
	}
	return time.Duration(secs) * time.Second
}
