package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()

	st := NewStore(ttl, time.Minute)
	t.Cleanup(st.Close)

	return st
}

func TestStore_GetCreatesFreshSession(t *testing.T) {
	st := newTestStore(t, 30*time.Minute)

	s := st.Get("")
	require.NotNil(t, s)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, StateAwaitingQuery, s.State)
	assert.Equal(t, 1, st.Count())

	// An unknown id also yields a fresh session, under a new id
	other := st.Get("no-such-session")
	assert.NotEqual(t, s.ID, other.ID)
	assert.Equal(t, 2, st.Count())
}

func TestStore_GetReturnsExistingSession(t *testing.T) {
	st := newTestStore(t, 30*time.Minute)

	s := st.Get("")
	s.OriginalQuery = "original"

	got := st.Get(s.ID)
	assert.Same(t, s, got)
	assert.Equal(t, "original", got.OriginalQuery)
	assert.Equal(t, 1, st.Count())
}

func TestStore_ExpiredSessionTreatedAsAbsent(t *testing.T) {
	st := newTestStore(t, 30*time.Minute)

	base := time.Now()
	st.now = func() time.Time { return base }

	s := st.Get("")

	st.now = func() time.Time { return base.Add(31 * time.Minute) }

	got := st.Get(s.ID)
	assert.NotEqual(t, s.ID, got.ID)
	assert.Empty(t, got.OriginalQuery)
}

func TestStore_AccessRefreshesTTL(t *testing.T) {
	st := newTestStore(t, 30*time.Minute)

	base := time.Now()
	st.now = func() time.Time { return base }

	s := st.Get("")

	// Touch at 20 minutes, then read again at 40: still within TTL of the
	// refreshed access time
	st.now = func() time.Time { return base.Add(20 * time.Minute) }
	st.Get(s.ID)

	st.now = func() time.Time { return base.Add(40 * time.Minute) }
	got := st.Get(s.ID)
	assert.Equal(t, s.ID, got.ID)
}

func TestStore_EvictExpired(t *testing.T) {
	st := newTestStore(t, 30*time.Minute)

	base := time.Now()
	st.now = func() time.Time { return base }

	st.Get("")
	st.Get("")

	st.now = func() time.Time { return base.Add(20 * time.Minute) }
	kept := st.Get("")
	require.Equal(t, 3, st.Count())

	st.now = func() time.Time { return base.Add(45 * time.Minute) }
	assert.Equal(t, 2, st.EvictExpired())
	assert.Equal(t, 1, st.Count())

	got := st.Get(kept.ID)
	assert.Equal(t, kept.ID, got.ID)
}

func TestStore_SessionsAreIsolated(t *testing.T) {
	st := newTestStore(t, 30*time.Minute)

	a := st.Get("")
	b := st.Get("")

	st.AppendClarification(a.ID, "Do you plan to raise capital?", "Yes")

	assert.Len(t, st.Get(a.ID).Clarifications, 1)
	assert.Empty(t, st.Get(b.ID).Clarifications)
}

func TestStore_ConcurrentFlowsAreIsolated(t *testing.T) {
	st := newTestStore(t, 30*time.Minute)

	a := st.Get("")
	b := st.Get("")

	const rounds = 50

	var wg sync.WaitGroup
	run := func(id, label string) {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			sess := st.Get(id)
			sess.Lock()
			sess.AppendClarification(fmt.Sprintf("%s question %d", label, i), label+" answer")
			_ = sess.EffectiveQuery()
			sess.Unlock()
		}
	}

	wg.Add(2)
	go run(a.ID, "alpha")
	go run(b.ID, "beta")
	wg.Wait()

	require.Len(t, st.Get(a.ID).Clarifications, rounds)
	require.Len(t, st.Get(b.ID).Clarifications, rounds)

	for _, c := range st.Get(a.ID).Clarifications {
		assert.NotContains(t, c.Question, "beta")
	}
	for _, c := range st.Get(b.ID).Clarifications {
		assert.NotContains(t, c.Question, "alpha")
	}
}

func TestSession_EffectiveQuery(t *testing.T) {
	s := &Session{OriginalQuery: "Should I form an LLC?"}
	assert.Equal(t, "Should I form an LLC?", s.EffectiveQuery())

	s.AppendClarification("What state are you in?", "California")
	s.AppendClarification("Any employees?", "Not yet")

	assert.Equal(t,
		"Original Query: Should I form an LLC?\n\n"+
			"Clarifications:\n"+
			"Q: What state are you in?\nA: California\n"+
			"Q: Any employees?\nA: Not yet",
		s.EffectiveQuery())
}

func TestSession_AppendClarificationUpdatesInPlace(t *testing.T) {
	s := &Session{OriginalQuery: "query"}

	s.AppendClarification("What state are you in?", "California")
	s.AppendClarification("What state are you in?", "Nevada")

	require.Len(t, s.Clarifications, 1)
	assert.Equal(t, "Nevada", s.Clarifications[0].Answer)
}

func TestSession_Reset(t *testing.T) {
	s := &Session{
		OriginalQuery:   "old query",
		State:           StateAwaitingClarification,
		PendingQuestion: "Any employees?",
	}
	s.AppendClarification("What state are you in?", "California")

	s.Reset("new query")

	assert.Equal(t, "new query", s.OriginalQuery)
	assert.Empty(t, s.Clarifications)
	assert.Equal(t, StateAwaitingQuery, s.State)
	assert.Empty(t, s.PendingQuestion)
}
