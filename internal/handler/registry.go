package handler

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/pavelanni/mockinterview/internal/model"
	"github.com/pavelanni/mockinterview/internal/session"
)

var errTooManySessions = errors.New("too many active sessions")

// registry keeps live sessions in memory. Sessions are not safe for
// concurrent use, so each entry carries its own lock.
type registry struct {
	mu          sync.RWMutex
	sessions    map[string]*entry
	limit       int
	idleTimeout time.Duration
	now         func() time.Time
}

type entry struct {
	mu   sync.Mutex
	sess *session.Session

	// Read by the registry without holding mu.
	lastUsed atomic.Int64 // unix nanoseconds
	finished atomic.Bool
}

// touch records a use of the session. Callers hold e.mu.
func (e *entry) touch(now time.Time) {
	e.lastUsed.Store(now.UnixNano())
	e.finished.Store(e.sess.State() == model.StateFinished)
}

func newRegistry(limit int, idleTimeout time.Duration, now func() time.Time) *registry {
	if now == nil {
		now = time.Now
	}
	return &registry{
		sessions:    make(map[string]*entry),
		limit:       limit,
		idleTimeout: idleTimeout,
		now:         now,
	}
}

// add stores s under a new id. Idle sessions are dropped first; when the
// registry is still full, finished sessions make room too. It also reports
// how many sessions were dropped.
func (r *registry) add(s *session.Session) (string, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := r.evictLocked(r.idle)
	if r.full() {
		evicted += r.evictLocked(func(e *entry) bool { return e.finished.Load() })
	}
	if r.full() {
		return "", evicted, errTooManySessions
	}

	id := uuid.NewString()
	e := &entry{sess: s}
	e.touch(r.now())
	r.sessions[id] = e
	return id, evicted, nil
}

// get returns the entry for id. Callers touch it after use.
func (r *registry) get(id string) (*entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[id]
	return e, ok
}

func (r *registry) remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

// sweep drops idle sessions and returns how many were dropped.
func (r *registry) sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.evictLocked(r.idle)
}

func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *registry) full() bool {
	return r.limit > 0 && len(r.sessions) >= r.limit
}

func (r *registry) idle(e *entry) bool {
	if r.idleTimeout <= 0 {
		return false
	}
	return r.now().Sub(time.Unix(0, e.lastUsed.Load())) > r.idleTimeout
}

func (r *registry) evictLocked(drop func(*entry) bool) int {
	n := 0
	for id, e := range r.sessions {
		if drop(e) {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}
