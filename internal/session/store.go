// Package session keeps per-browser-session explorer state: the loaded
// dataset and the live filter set. Nothing here outlives the process, and
// sessions expire after a period of inactivity.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/daktre/theta-data-explorer/internal/dataset"
	"github.com/daktre/theta-data-explorer/internal/filter"
)

// DefaultTTL is how long an idle session survives before lazy eviction.
const DefaultTTL = 30 * time.Minute

// Session owns one user's dataset and filter state.
type Session struct {
	ID string

	mu      sync.Mutex
	ds      *dataset.Dataset
	filters filter.Set

	lastSeen time.Time // guarded by the store's lock
}

// State returns the session's dataset and a copy of its filter set.
func (s *Session) State() (*dataset.Dataset, filter.Set) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ds, s.filters.Clone()
}

// SetFilters normalizes fs against the current schema and installs it,
// returning the set as stored.
func (s *Session) SetFilters(fs filter.Set) filter.Set {
	s.mu.Lock()
	defer s.mu.Unlock()
	filter.Normalize(&fs, s.ds.Schema)
	s.filters = fs
	return fs.Clone()
}

// ReplaceDataset swaps in a new dataset and resets the filters to its
// defaults.
func (s *Session) ReplaceDataset(ds *dataset.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ds = ds
	s.filters = filter.Defaults(ds.Schema)
}

// Store is the in-memory session registry. Expired sessions are swept
// when new ones are created; there is no background janitor.
type Store struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*Session
}

func NewStore() *Store {
	return &Store{ttl: DefaultTTL, sessions: make(map[string]*Session)}
}

// New registers a session around ds with default filters.
func (st *Store) New(ds *dataset.Dataset) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	now := time.Now()
	st.sweepLocked(now)

	s := &Session{
		ID:       uuid.NewString(),
		ds:       ds,
		filters:  filter.Defaults(ds.Schema),
		lastSeen: now,
	}
	st.sessions[s.ID] = s
	return s
}

// Get returns the session and refreshes its idle timer. Expired sessions
// are dropped on access.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, false
	}
	now := time.Now()
	if now.Sub(s.lastSeen) > st.ttl {
		delete(st.sessions, id)
		return nil, false
	}
	s.lastSeen = now
	return s, true
}

func (st *Store) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

func (st *Store) sweepLocked(now time.Time) {
	for id, s := range st.sessions {
		if now.Sub(s.lastSeen) > st.ttl {
			delete(st.sessions, id)
		}
	}
}
