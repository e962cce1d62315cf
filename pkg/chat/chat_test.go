package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSendSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var p Payload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if p.OriginalText != "hello" || p.TargetLang != "en" {
			t.Errorf("unexpected payload %+v", p)
		}
		if p.TranslatedText != nil {
			t.Errorf("translatedText should round-trip as null, got %v", *p.TranslatedText)
		}
		json.NewEncoder(w).Encode(Reply{
			Reply:     "Agent reply (server stub): processed -> hello",
			ReplyLang: "en-US",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	reply, err := c.Send(context.Background(), Payload{
		OriginalText: "hello",
		SourceLang:   "en",
		TargetLang:   "en",
		SpeakLang:    "en-US",
		Metadata:     Metadata{TS: time.Now().UTC().Format(time.RFC3339), Client: "test"},
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !strings.Contains(reply.Reply, "processed -> hello") {
		t.Errorf("reply = %q", reply.Reply)
	}
	if reply.TranslatedReply != nil {
		t.Errorf("translatedReply = %v, want nil", reply.TranslatedReply)
	}
}

func TestSendServerErrorCarriesDiagnostics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "agent pool exhausted", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	_, err := c.Send(context.Background(), Payload{OriginalText: "hello"})
	if err == nil {
		t.Fatal("expected error from 503")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d", apiErr.StatusCode)
	}
	if !strings.Contains(apiErr.Body, "agent pool exhausted") {
		t.Errorf("body = %q, want server diagnostic", apiErr.Body)
	}
}

func TestSendTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	if _, err := c.Send(context.Background(), Payload{OriginalText: "hello"}); err == nil {
		t.Fatal("expected transport error")
	}
}

func TestSendTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	c := NewClient(srv.URL, 50*time.Millisecond, nil)
	start := time.Now()
	_, err := c.Send(context.Background(), Payload{OriginalText: "hello"})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("timeout not enforced, call took %v", elapsed)
	}
}

func TestSendMalformedReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	if _, err := c.Send(context.Background(), Payload{OriginalText: "hello"}); err == nil {
		t.Fatal("expected decode error")
	}
}
