package memory

import (
	"strconv"
	"sync"

	"ai-lecture-be/pkg/lecture"

	"github.com/patrickmn/go-cache"
)

// SessionRegistry is the only mutable shared state in the service: a
// concurrency-safe table of lecture id -> session. Read-modify-write cycles
// go through Upsert, which holds a per-lecture lock so no two mutations for
// the same id interleave. Different ids proceed concurrently.
//
// Sessions are never evicted (cache.NoExpiration); retention policy is an
// open deployment question and deliberately not guessed here.
type SessionRegistry struct {
	cache *cache.Cache

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		cache: cache.New(cache.NoExpiration, 0),
		locks: make(map[int64]*sync.Mutex),
	}
}

func key(lectureID int64) string {
	return strconv.FormatInt(lectureID, 10)
}

func (r *SessionRegistry) lockFor(lectureID int64) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[lectureID]
	if !ok {
		l = &sync.Mutex{}
		r.locks[lectureID] = l
	}
	return l
}

// Get returns the session for a lecture, or nil when none exists.
func (r *SessionRegistry) Get(lectureID int64) *lecture.Session {
	if x, found := r.cache.Get(key(lectureID)); found {
		return x.(*lecture.Session)
	}
	return nil
}

// Upsert atomically applies a mutation to the session for a lecture and
// returns the mutated value. The mutator receives the existing session or
// nil; whatever it returns is stored (returning nil leaves the table
// untouched). All read-then-write call sites must go through here.
func (r *SessionRegistry) Upsert(lectureID int64, mutate func(*lecture.Session) *lecture.Session) *lecture.Session {
	l := r.lockFor(lectureID)
	l.Lock()
	defer l.Unlock()

	current := r.Get(lectureID)
	next := mutate(current)
	if next == nil {
		return current
	}
	next.Touch()
	r.cache.Set(key(lectureID), next, cache.NoExpiration)
	return next
}

// Read runs fn against the session under the lecture lock without writing.
// fn is not called when no session exists; the return reports existence.
func (r *SessionRegistry) Read(lectureID int64, fn func(*lecture.Session)) bool {
	l := r.lockFor(lectureID)
	l.Lock()
	defer l.Unlock()

	session := r.Get(lectureID)
	if session == nil {
		return false
	}
	fn(session)
	return true
}

// Update applies a mutation to an existing session under the lecture lock.
// Returns false when the session does not exist.
func (r *SessionRegistry) Update(lectureID int64, mutate func(*lecture.Session)) bool {
	l := r.lockFor(lectureID)
	l.Lock()
	defer l.Unlock()

	session := r.Get(lectureID)
	if session == nil {
		return false
	}
	mutate(session)
	session.Touch()
	r.cache.Set(key(lectureID), session, cache.NoExpiration)
	return true
}
