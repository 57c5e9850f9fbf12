package session

import (
	"sync"

	"chatiefy-tui/models"
)

// echoWindow is the tolerance, in seconds, for recognizing the server's
// delivery of a message we already appended locally.
const echoWindow = 5

// Identity is the durable part of a session. It survives restarts;
// everything else in the Store is ephemeral chat state.
type Identity struct {
	User          models.User
	AuthToken     string
	Authenticated bool
}

// Store is the single source of truth for identity and chat state.
// All mutations are whole-field replacements under one lock, so readers
// never observe a partial update. Mutations cannot fail.
type Store struct {
	mu          sync.RWMutex
	identity    Identity
	status      models.ChatStatus
	partnerName string
	partnerID   string
	messages    []models.Message
	cursor      models.PollCursor
	onChange    func()
}

// NewStore creates an empty store in the idle state
func NewStore() *Store {
	return &Store{status: models.StatusIdle}
}

// NewStoreWithIdentity creates a store preloaded with a persisted identity
func NewStoreWithIdentity(id Identity) *Store {
	s := NewStore()
	s.identity = id
	return s
}

// SetOnChange registers a callback invoked after every mutation. The
// callback runs outside the store lock.
func (s *Store) SetOnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *Store) notifyChange() {
	s.mu.RLock()
	fn := s.onChange
	s.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// SetUser stores the registered identity and marks the session authenticated
func (s *Store) SetUser(user models.User, authToken string) {
	s.mu.Lock()
	s.identity = Identity{User: user, AuthToken: authToken, Authenticated: true}
	s.mu.Unlock()
	s.notifyChange()
}

// Logout clears the identity and all chat state
func (s *Store) Logout() {
	s.mu.Lock()
	s.identity = Identity{}
	s.status = models.StatusIdle
	s.partnerName = ""
	s.partnerID = ""
	s.messages = nil
	s.cursor = models.PollCursor{}
	s.mu.Unlock()
	s.notifyChange()
}

// SetStatus transitions the chat status
func (s *Store) SetStatus(status models.ChatStatus) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
	s.notifyChange()
}

// SetPartner adopts a conversation partner and forces the status to connected
func (s *Store) SetPartner(name, id string) {
	s.mu.Lock()
	s.partnerName = name
	s.partnerID = id
	s.status = models.StatusConnected
	s.mu.Unlock()
	s.notifyChange()
}

// AddMessages appends messages, dropping any whose (time, text) key is
// already present. A message from ourselves that matches the text of an
// existing own entry within a few seconds is treated as the server echoing
// our optimistic append and is dropped as well.
func (s *Store) AddMessages(msgs []models.Message) {
	s.mu.Lock()
	existing := make(map[string]struct{}, len(s.messages))
	for _, m := range s.messages {
		existing[m.Key()] = struct{}{}
	}
	self := s.identity.User.Username
	for _, m := range msgs {
		if _, ok := existing[m.Key()]; ok {
			continue
		}
		if self != "" && m.Sender == self && s.hasRecentOwnCopy(m) {
			continue
		}
		s.messages = append(s.messages, m)
		existing[m.Key()] = struct{}{}
	}
	s.mu.Unlock()
	s.notifyChange()
}

// hasRecentOwnCopy reports whether an own message with the same text
// already exists within the echo window. Caller holds the lock.
func (s *Store) hasRecentOwnCopy(m models.Message) bool {
	for _, have := range s.messages {
		if have.Sender != m.Sender || have.Text != m.Text {
			continue
		}
		delta := have.Time - m.Time
		if delta < 0 {
			delta = -delta
		}
		if delta <= echoWindow {
			return true
		}
	}
	return false
}

// ClearMessages drops the message list
func (s *Store) ClearMessages() {
	s.mu.Lock()
	s.messages = nil
	s.mu.Unlock()
	s.notifyChange()
}

// UpdatePollState replaces the poll cursor wholesale. The tokens are
// opaque, so there is nothing to merge.
func (s *Store) UpdatePollState(cur models.PollCursor) {
	s.mu.Lock()
	s.cursor = cur
	s.mu.Unlock()
	s.notifyChange()
}

// ResetChat clears everything except the identity
func (s *Store) ResetChat() {
	s.mu.Lock()
	s.status = models.StatusIdle
	s.partnerName = ""
	s.partnerID = ""
	s.messages = nil
	s.cursor = models.PollCursor{}
	s.mu.Unlock()
	s.notifyChange()
}

// Identity returns a copy of the current identity
func (s *Store) Identity() Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// Status returns the current chat status
func (s *Store) Status() models.ChatStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Partner returns the current partner; ok is false when none is known
func (s *Store) Partner() (name, id string, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.partnerName, s.partnerID, s.partnerID != ""
}

// Messages returns a copy of the message list in insertion order
func (s *Store) Messages() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Cursor returns the current poll cursor
func (s *Store) Cursor() models.PollCursor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursor
}
