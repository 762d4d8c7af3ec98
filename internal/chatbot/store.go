package chatbot

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"
)

// ErrSessionNotFound is returned for unknown, evicted or idle-expired
// conversations. The three cases are indistinguishable to callers.
var ErrSessionNotFound = errors.New("chatbot session not found")

// SessionStore keeps conversations between messages. Every successful Get
// and Touch resets the idle countdown (sliding expiration).
type SessionStore interface {
	Get(ctx context.Context, conversationID string) (*Session, error)
	Set(ctx context.Context, s *Session) error
	Delete(ctx context.Context, conversationID string) error
	Touch(ctx context.Context, conversationID string) error
}

// Clone returns a deep copy of s.
func (s *Session) Clone() *Session {
	b, err := json.Marshal(s)
	if err != nil {
		return nil
	}
	var out Session
	if err := json.Unmarshal(b, &out); err != nil {
		return nil
	}
	if out.Answers == nil {
		out.Answers = make(map[uint]Answer)
	}
	return &out
}

type memEntry struct {
	session   *Session
	expiresAt time.Time
}

// sweepEvery is the number of writes between passes that drop expired
// entries nobody asked for again.
const sweepEvery = 256

// MemoryStore is a process-local SessionStore. Expiry is passive: an entry
// is dropped when accessed after its deadline, and abandoned entries are
// swept every sweepEvery writes.
type MemoryStore struct {
	TTL time.Duration
	Now func() time.Time

	mu     sync.Mutex
	items  map[string]memEntry
	writes int
}

// NewMemoryStore returns a store with the given sliding TTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{TTL: ttl, Now: time.Now, items: make(map[string]memEntry)}
}

func (m *MemoryStore) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// Get returns a copy of the session and slides its deadline.
func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.items[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	now := m.now()
	if !now.Before(e.expiresAt) {
		delete(m.items, id)
		return nil, ErrSessionNotFound
	}
	e.expiresAt = now.Add(m.TTL)
	m.items[id] = e
	return e.session.Clone(), nil
}

// Set stores a copy of s under its conversation id.
func (m *MemoryStore) Set(_ context.Context, s *Session) error {
	if s == nil || s.ConversationID == "" {
		return errors.New("chatbot: session without conversation id")
	}
	c := s.Clone()
	if c == nil {
		return errors.New("chatbot: session is not serializable")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.items == nil {
		m.items = make(map[string]memEntry)
	}
	now := m.now()
	m.items[s.ConversationID] = memEntry{session: c, expiresAt: now.Add(m.TTL)}

	m.writes++
	if m.writes%sweepEvery == 0 {
		for k, e := range m.items {
			if !now.Before(e.expiresAt) {
				delete(m.items, k)
			}
		}
	}
	return nil
}

// Delete evicts a conversation. Deleting an unknown id is not an error.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.items, id)
	m.mu.Unlock()
	return nil
}

// Touch slides the deadline without reading the session.
func (m *MemoryStore) Touch(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.items[id]
	now := m.now()
	if !ok || !now.Before(e.expiresAt) {
		delete(m.items, id)
		return ErrSessionNotFound
	}
	e.expiresAt = now.Add(m.TTL)
	m.items[id] = e
	return nil
}

// Len returns the number of entries held, expired or not.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}
