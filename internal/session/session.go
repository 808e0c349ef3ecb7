// Package session holds per-caller login state server-side. The client only
// ever carries an opaque session id inside a signed cookie token.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Challenge is the single outstanding login code for a session. The code
// itself is stored only as an Argon2id hash; a new Issue or Resend replaces
// the whole record, invalidating any earlier code before its natural expiry.
type Challenge struct {
	CodeHash  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// State is the typed session record: exactly the email, the pending
// challenge, the authenticated flag and the display name.
type State struct {
	Email         string
	DisplayName   string
	Authenticated bool
	Challenge     *Challenge
}

type entry struct {
	state    *State
	lastSeen time.Time
}

// Store keeps session records in memory with a sliding TTL.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
	ttl      time.Duration

	now func() time.Time
}

// NewStore creates a session store whose records expire after ttl of
// inactivity, and starts the background sweep.
func NewStore(ttl time.Duration) *Store {
	s := &Store{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		now:      time.Now,
	}
	go s.cleanup()
	return s
}

// Create allocates a fresh session and returns its opaque id.
func (s *Store) Create() (string, *State) {
	id := uuid.NewString()
	state := &State{}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = &entry{state: state, lastSeen: s.now()}

	return id, state
}

// Get returns the session state for id, refreshing its TTL. An expired or
// unknown id is a miss.
func (s *Store) Get(id string) (*State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if s.now().Sub(e.lastSeen) > s.ttl {
		delete(s.sessions, id)
		return nil, false
	}

	e.lastSeen = s.now()
	return e.state, true
}

// Delete removes a session, used on logout.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

func (s *Store) cleanup() {
	for {
		time.Sleep(time.Minute)
		s.mu.Lock()
		for id, e := range s.sessions {
			if s.now().Sub(e.lastSeen) > s.ttl {
				delete(s.sessions, id)
			}
		}
		s.mu.Unlock()
	}
}
