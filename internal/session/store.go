package session

import (
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const shardCount = 32

type shard struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// Store keeps conversation state in memory with a fixed TTL. Lookups are
// sharded so unrelated sessions never contend on one lock; cycle
// serialization for a single conversation uses the per-session lock, not
// the shard lock. Expired entries are dropped lazily on access and by a
// periodic sweep.
type Store struct {
	shards        [shardCount]*shard
	ttl           time.Duration
	sweepInterval time.Duration
	stop          chan struct{}
	stopOnce      sync.Once

	now func() time.Time
}

// NewStore creates a session store and starts its eviction sweep
func NewStore(ttl, sweepInterval time.Duration) *Store {
	if sweepInterval <= 0 {
		sweepInterval = 5 * time.Minute
	}
	st := &Store{
		ttl:           ttl,
		sweepInterval: sweepInterval,
		stop:          make(chan struct{}),
		now:           time.Now,
	}
	for i := range st.shards {
		st.shards[i] = &shard{sessions: make(map[string]*Session)}
	}

	go st.sweep()

	return st
}

func (st *Store) shardFor(id string) *shard {
	h := fnv.New32a()
	h.Write([]byte(id))
	return st.shards[h.Sum32()%shardCount]
}

// Get returns the session for id, creating a fresh one when id is empty,
// unknown, or expired. A context read as expired is treated as absent, so
// a session is never observable past its TTL. Every hit refreshes the
// access time.
func (st *Store) Get(id string) *Session {
	if id != "" {
		sh := st.shardFor(id)
		sh.mu.Lock()
		if s, ok := sh.sessions[id]; ok {
			if st.now().Sub(s.LastAccessedAt) <= st.ttl {
				s.LastAccessedAt = st.now()
				sh.mu.Unlock()
				return s
			}
			delete(sh.sessions, id)
		}
		sh.mu.Unlock()
	}

	now := st.now()
	s := &Session{
		ID:             uuid.New().String(),
		State:          StateAwaitingQuery,
		CreatedAt:      now,
		LastAccessedAt: now,
	}

	sh := st.shardFor(s.ID)
	sh.mu.Lock()
	sh.sessions[s.ID] = s
	sh.mu.Unlock()

	return s
}

// AppendClarification records an answered question on a session,
// refreshing its TTL
func (st *Store) AppendClarification(id, question, answer string) {
	s := st.Get(id)
	s.AppendClarification(question, answer)
}

// Count returns the number of live sessions
func (st *Store) Count() int {
	n := 0
	for _, sh := range st.shards {
		sh.mu.Lock()
		n += len(sh.sessions)
		sh.mu.Unlock()
	}
	return n
}

// EvictExpired removes all sessions past their TTL and reports how many
// were dropped
func (st *Store) EvictExpired() int {
	now := st.now()
	evicted := 0

	for _, sh := range st.shards {
		sh.mu.Lock()
		for id, s := range sh.sessions {
			if now.Sub(s.LastAccessedAt) > st.ttl {
				delete(sh.sessions, id)
				evicted++
			}
		}
		sh.mu.Unlock()
	}

	return evicted
}

func (st *Store) sweep() {
	ticker := time.NewTicker(st.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := st.EvictExpired(); n > 0 {
				log.Debug().Int("evicted", n).Msg("swept expired sessions")
			}
		case <-st.stop:
			return
		}
	}
}

// Close stops the eviction sweep
func (st *Store) Close() {
	st.stopOnce.Do(func() { close(st.stop) })
}
