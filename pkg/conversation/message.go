package conversation

import (
	"sync"

	"github.com/google/uuid"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Meta carries optional message metadata.
type Meta struct {
	// ReplyLang is the language tag a bot reply should be spoken in.
	ReplyLang string `json:"replyLang,omitempty"`
}

// Message is one entry in the conversation. Messages are immutable once
// created except for the single transition from a pending placeholder to
// its resolved reply, which the store performs in place.
type Message struct {
	ID      string `json:"id"`
	Role    Role   `json:"role"`
	Text    string `json:"text"`
	Pending bool   `json:"pending,omitempty"`
	Meta    Meta   `json:"meta"`
}

// messageStore holds the conversation in creation order with an identity
// index, so a placeholder can be resolved in place by ID no matter how the
// list is filtered or reordered for display.
type messageStore struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]*Message
}

func newMessageStore() *messageStore {
	return &messageStore{byID: make(map[string]*Message)}
}

// append adds a message and returns its ID.
func (s *messageStore) append(role Role, text string, pending bool, meta Meta) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.order = append(s.order, id)
	s.byID[id] = &Message{ID: id, Role: role, Text: text, Pending: pending, Meta: meta}
	s.mu.Unlock()
	return id
}

// resolve replaces a pending message's content in place, preserving its
// list position. Returns false if the message is gone or already resolved;
// the caller discards stale resolutions.
func (s *messageStore) resolve(id, text string, meta Meta) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.byID[id]
	if !ok || !m.Pending {
		return false
	}
	m.Text = text
	m.Meta = meta
	m.Pending = false
	return true
}

// get returns a copy of one message.
func (s *messageStore) get(id string) (Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.byID[id]
	if !ok {
		return Message{}, false
	}
	return *m, true
}

// snapshot returns the messages in creation order.
func (s *messageStore) snapshot() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.byID[id])
	}
	return out
}

// pendingCount returns how many placeholders are unresolved.
func (s *messageStore) pendingCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, m := range s.byID {
		if m.Pending {
			n++
		}
	}
	return n
}
