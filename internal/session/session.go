package session

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// State tracks where a conversation sits in the clarification loop
type State string

const (
	// StateAwaitingQuery is the initial state of a fresh or reset session
	StateAwaitingQuery State = "awaiting_query"
	// StateAwaitingClarification means the last cycle asked the user a question
	StateAwaitingClarification State = "awaiting_clarification"
	// StateResolved means the last cycle produced a recommendation
	StateResolved State = "resolved"
)

// Clarification is one answered question in a conversation
type Clarification struct {
	Question string
	Answer   string
}

// Session holds per-conversation state. It is owned by the Store; callers
// must hold the session lock for the duration of an orchestration cycle
// so clarification rounds for one conversation stay strictly sequential.
type Session struct {
	ID              string
	OriginalQuery   string
	Clarifications  []Clarification
	State           State
	PendingQuestion string
	CreatedAt       time.Time
	LastAccessedAt  time.Time

	mu sync.Mutex
}

// Lock serializes orchestration cycles for this session
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the per-session cycle lock
func (s *Session) Unlock() { s.mu.Unlock() }

// AppendClarification records an answered question. Pairs are kept in
// arrival order; answering the same question again updates it in place.
func (s *Session) AppendClarification(question, answer string) {
	for i := range s.Clarifications {
		if s.Clarifications[i].Question == question {
			s.Clarifications[i].Answer = answer
			return
		}
	}
	s.Clarifications = append(s.Clarifications, Clarification{Question: question, Answer: answer})
}

// Reset returns the session to its initial state for a new query,
// discarding the accumulated clarification history
func (s *Session) Reset(query string) {
	s.OriginalQuery = query
	s.Clarifications = nil
	s.State = StateAwaitingQuery
	s.PendingQuestion = ""
}

// EffectiveQuery derives the full query for one orchestration cycle from
// the original query plus the accumulated clarification history. It is
// recomputed each cycle and never stored.
func (s *Session) EffectiveQuery() string {
	if len(s.Clarifications) == 0 {
		return s.OriginalQuery
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Original Query: %s\n\nClarifications:\n", s.OriginalQuery)
	for _, c := range s.Clarifications {
		fmt.Fprintf(&b, "Q: %s\nA: %s\n", c.Question, c.Answer)
	}

	return strings.TrimRight(b.String(), "\n")
}
