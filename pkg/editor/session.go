package editor

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/nodalcv/server/pkg/profile"
)

// Delays controls how long notices stay visible.
type Delays struct {
	Success     time.Duration // prominent settings such as visibility
	LowEmphasis time.Duration // secondary selectors such as availability
}

func DefaultDelays() Delays {
	return Delays{Success: 5 * time.Second, LowEmphasis: 3 * time.Second}
}

// Session is one user's editing state: the draft record being edited and
// the settings that are written optimistically.
type Session struct {
	Email        string
	Notices      *Notices
	Visibility   *Field[bool]
	Availability *Field[profile.Availability]

	mu       sync.Mutex
	draft    profile.Record
	loaded   bool
	lastUsed time.Time
}

func newSession(email string, d Delays) *Session {
	s := &Session{Email: email, Notices: NewNotices()}
	s.Visibility = NewField(FieldConfig[bool]{
		Name:         "visibility",
		Notifier:     s.Notices,
		DismissAfter: d.Success,
		SuccessText:  "Profile visibility updated",
		ErrorText:    "Could not update profile visibility",
		OnCommit: func(v bool) {
			s.mu.Lock()
			s.draft.IsPublic = v
			s.mu.Unlock()
		},
	})
	s.Availability = NewField(FieldConfig[profile.Availability]{
		Name:         "availability",
		Initial:      profile.AvailabilityImmediate,
		Notifier:     s.Notices,
		DismissAfter: d.LowEmphasis,
		SuccessText:  "Availability updated",
		ErrorText:    "Could not update availability",
		OnCommit: func(v profile.Availability) {
			s.mu.Lock()
			s.draft.Availability = v
			s.mu.Unlock()
		},
	})
	return s
}

// Load makes rec the draft and aligns the optimistic fields with it.
func (s *Session) Load(rec profile.Record) {
	s.mu.Lock()
	s.draft = rec
	s.loaded = true
	s.mu.Unlock()
	s.Visibility.Reset(rec.IsPublic)
	s.Availability.Reset(rec.Availability)
}

// Draft returns the record being edited and whether one has been loaded.
func (s *Session) Draft() (profile.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft, s.loaded
}

func (s *Session) pending() bool {
	return s.Visibility.Snapshot().State == StatePending ||
		s.Availability.Snapshot().State == StatePending
}

// UpdateDraft applies fn to the draft under the session lock.
func (s *Session) UpdateDraft(fn func(*profile.Record)) profile.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.draft)
	return s.draft
}

// Store holds editing sessions keyed by user email.
type Store struct {
	mu       sync.Mutex
	delays   Delays
	sessions map[string]*Session
	now      func() time.Time
}

func NewStore(d Delays) *Store {
	return &Store{delays: d, sessions: map[string]*Session{}, now: time.Now}
}

// Get returns the user's session, creating an empty one on first use.
func (st *Store) Get(email string) *Session {
	key := strings.ToLower(strings.TrimSpace(email))
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[key]
	if !ok {
		s = newSession(key, st.delays)
		st.sessions[key] = s
	}
	s.lastUsed = st.now()
	return s
}

// Len reports how many sessions are held.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Evict drops sessions unused for longer than idle. Sessions with a write
// in flight are kept so the commit still lands on the live draft.
func (st *Store) Evict(idle time.Duration) int {
	cutoff := st.now().Add(-idle)
	st.mu.Lock()
	defer st.mu.Unlock()
	n := 0
	for key, s := range st.sessions {
		if s.lastUsed.After(cutoff) || s.pending() {
			continue
		}
		delete(st.sessions, key)
		n++
	}
	return n
}

// Run evicts idle sessions every interval until ctx is done.
func (st *Store) Run(ctx context.Context, idle, every time.Duration) {
	if idle <= 0 || every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			st.Evict(idle)
		}
	}
}
