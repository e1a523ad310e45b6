package frontend

import (
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"fflogs_phase_ranker/analysis"
)

type sessionEntry struct {
	session  *analysis.Session
	lastUsed time.Time
}

// sessionStore keeps one analysis.Session per report and credential so a dataset switch
// reuses the phase data already fetched.
type sessionStore struct {
	ttl time.Duration

	lock     sync.Mutex
	sessions map[uint64]*sessionEntry
}

func newSessionStore(ttl time.Duration) *sessionStore {
	return &sessionStore{
		ttl:      ttl,
		sessions: make(map[uint64]*sessionEntry),
	}
}

func sessionKey(reportID, credential string) uint64 {
	h := fnv.New64a()
	fmt.Fprint(h, reportID, "|||", credential)
	return h.Sum64()
}

func (s *sessionStore) get(reportID, credential string, newSession func() *analysis.Session) *analysis.Session {
	now := time.Now()
	key := sessionKey(reportID, credential)

	s.lock.Lock()
	defer s.lock.Unlock()

	for k, e := range s.sessions {
		if now.Sub(e.lastUsed) > s.ttl {
			delete(s.sessions, k)
		}
	}

	e, ok := s.sessions[key]
	if !ok {
		e = &sessionEntry{session: newSession()}
		s.sessions[key] = e
	}
	e.lastUsed = now

	return e.session
}
