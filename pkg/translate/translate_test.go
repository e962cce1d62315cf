package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTranslateSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/translate" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		// The wire keys are part of the service contract; a missing key
		// here means the field was sent under the wrong name.
		if req["text"] != "नमस्ते" {
			t.Errorf("text = %q", req["text"])
		}
		if req["sourceLang"] != "hi" {
			t.Errorf("sourceLang = %q, request %v", req["sourceLang"], req)
		}
		if req["targetLang"] != "en" {
			t.Errorf("targetLang = %q, request %v", req["targetLang"], req)
		}
		json.NewEncoder(w).Encode(Result{
			TranslatedText:     "[mock-EN] नमस्ते",
			DetectedSourceLang: "hi",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	res, ok := c.Translate(context.Background(), "नमस्ते", "hi", "en")
	if !ok {
		t.Fatal("expected translation to succeed")
	}
	if res.TranslatedText != "[mock-EN] नमस्ते" {
		t.Errorf("translatedText = %q", res.TranslatedText)
	}
	if res.DetectedSourceLang != "hi" {
		t.Errorf("detectedSourceLang = %q", res.DetectedSourceLang)
	}
}

func TestTranslateAbsorbsFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non-2xx status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "translate backend down", http.StatusBadGateway)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("{not json"))
			},
		},
		{
			name: "empty translation",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"translatedText":"","detectedSourceLang":""}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewClient(srv.URL, time.Second, nil)
			if _, ok := c.Translate(context.Background(), "hello", "en", "en"); ok {
				t.Error("failure must resolve to no-translation, got ok=true")
			}
		})
	}
}

func TestTranslateTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := NewClient(srv.URL, time.Second, nil)
	if _, ok := c.Translate(context.Background(), "hello", "en", "en"); ok {
		t.Error("transport error must resolve to no-translation")
	}
}
