package server

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/xob0t/facetex/pkg/placement"
)

var errUnknownSession = errors.New("unknown session")

// entry serializes access to one placement session. The session itself is
// not safe for concurrent use.
type entry struct {
	mu       sync.Mutex
	sess     *placement.Session
	lastUsed time.Time
}

func (s *Server) add(sess *placement.Session) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = &entry{sess: sess, lastUsed: s.now()}
	n := len(s.sessions)
	s.mu.Unlock()

	log.Debug().Str("session", id).Int("open", n).Msg("Session added")
	return id
}

// get returns the entry for id, locked. The caller must unlock it.
func (s *Server) get(id string) (*entry, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errUnknownSession
	}
	s.mu.Lock()
	e, ok := s.sessions[id]
	if ok {
		e.lastUsed = s.now()
	}
	s.mu.Unlock()
	if !ok {
		return nil, errUnknownSession
	}
	e.mu.Lock()
	return e, nil
}

// take removes id from the table and returns its entry, locked.
func (s *Server) take(id string) (*entry, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errUnknownSession
	}
	s.mu.Lock()
	e, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return nil, errUnknownSession
	}
	e.mu.Lock()
	return e, nil
}

// drop removes id without touching the session; used once the session has
// already closed itself.
func (s *Server) drop(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Len reports the number of open sessions.
func (s *Server) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// expire cancels sessions idle for longer than the configured timeout.
func (s *Server) expire() {
	cutoff := s.now().Add(-s.opts.IdleTimeout)

	s.mu.Lock()
	var stale []*entry
	for id, e := range s.sessions {
		if e.lastUsed.Before(cutoff) {
			stale = append(stale, e)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, e := range stale {
		e.mu.Lock()
		e.sess.Cancel()
		e.mu.Unlock()
	}
	if len(stale) > 0 {
		log.Info().Int("expired", len(stale)).Msg("Idle sessions cancelled")
	}
}

func (s *Server) closeAll() {
	s.mu.Lock()
	all := s.sessions
	s.sessions = make(map[string]*entry)
	s.mu.Unlock()

	for _, e := range all {
		e.mu.Lock()
		e.sess.Cancel()
		e.mu.Unlock()
	}
}
