package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/valetapp/valet/internal/domain"
)

// sessionEntry pairs a session with the mutex that serializes its turns.
type sessionEntry struct {
	mu      sync.Mutex
	session *domain.Session
}

// SessionStore holds in-memory conversation sessions keyed by caller-supplied
// session key. Turns on the same session serialize; turns on different
// sessions run concurrently. Nothing is persisted across restarts.
type SessionStore struct {
	mu      sync.Mutex
	entries map[string]*sessionEntry
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{entries: make(map[string]*sessionEntry)}
}

// acquire returns the entry for key, creating it on first use, with its turn
// mutex held. The caller must release() when the turn is done.
func (s *SessionStore) acquire(key string) *sessionEntry {
	s.mu.Lock()
	entry, ok := s.entries[key]
	if !ok {
		now := time.Now().UTC()
		entry = &sessionEntry{session: &domain.Session{
			ID:        uuid.NewString(),
			Key:       key,
			CreatedAt: now,
			UpdatedAt: now,
		}}
		s.entries[key] = entry
	}
	s.mu.Unlock()

	entry.mu.Lock()
	return entry
}

func (e *sessionEntry) release() {
	e.mu.Unlock()
}

// Clear drops the history of one session. The session object survives so a
// concurrent turn holding its mutex is unaffected.
func (s *SessionStore) Clear(key string) {
	s.mu.Lock()
	entry, ok := s.entries[key]
	s.mu.Unlock()
	if !ok {
		return
	}

	entry.mu.Lock()
	entry.session.Messages = nil
	entry.session.UpdatedAt = time.Now().UTC()
	entry.mu.Unlock()
}

// amend replaces a stored message (matched by ID) with its enriched form.
// Unknown sessions or IDs are ignored.
func (s *SessionStore) amend(key string, msg *domain.ConversationMessage) {
	s.mu.Lock()
	entry, ok := s.entries[key]
	s.mu.Unlock()
	if !ok {
		return
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	for i := range entry.session.Messages {
		if entry.session.Messages[i].ID == msg.ID {
			entry.session.Messages[i] = *msg
			entry.session.UpdatedAt = time.Now().UTC()
			return
		}
	}
}

// Snapshot returns a copy of one session's messages, or nil if the session
// does not exist.
func (s *SessionStore) Snapshot(key string) []domain.ConversationMessage {
	s.mu.Lock()
	entry, ok := s.entries[key]
	s.mu.Unlock()
	if !ok {
		return nil
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	out := make([]domain.ConversationMessage, len(entry.session.Messages))
	copy(out, entry.session.Messages)
	return out
}
