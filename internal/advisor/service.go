package advisor

import (
	"context"
	"fmt"
	"sort"

	"github.com/avely-labs/formation-advisor/internal/domain"
	"github.com/avely-labs/formation-advisor/internal/session"
	"github.com/rs/zerolog/log"
)

// AdvisoryService runs one orchestration cycle end to end: merge the
// clarification history, fan out to the analysts, synthesize, parse, and
// advance the session's clarification state machine.
type AdvisoryService struct {
	orchestrator *Orchestrator
	synthesizer  Synthesizer
	sessions     *session.Store
	maxRounds    int
}

// NewAdvisoryService creates the advisory service. maxRounds caps how many
// clarification rounds a single conversation may accumulate.
func NewAdvisoryService(orchestrator *Orchestrator, synthesizer Synthesizer, sessions *session.Store, maxRounds int) *AdvisoryService {
	return &AdvisoryService{
		orchestrator: orchestrator,
		synthesizer:  synthesizer,
		sessions:     sessions,
		maxRounds:    maxRounds,
	}
}

// Consult processes a consultation request. Per-analyst failures are
// absorbed into a partial recommendation; only an all-analysts failure or
// a synthesis failure surface as errors.
func (s *AdvisoryService) Consult(ctx context.Context, req domain.ConsultRequest) (*domain.ConsultResponse, error) {
	sess := s.session(req)
	sess.Lock()
	defer sess.Unlock()

	s.mergeContext(sess, req)

	effectiveQuery := sess.EffectiveQuery()

	log.Info().
		Str("session_id", sess.ID).
		Str("state", string(sess.State)).
		Int("clarification_rounds", len(sess.Clarifications)).
		Msg("starting orchestration cycle")

	result := s.orchestrator.Consult(ctx, effectiveQuery)
	if result.Outcome == domain.OutcomeAllFailed {
		return nil, domain.ErrAllAnalystsFailed
	}

	text, err := s.synthesizer.Synthesize(ctx, effectiveQuery, result.Analyses)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSynthesisFailed, err)
	}

	rec := Parse(text)
	if result.Outcome != domain.OutcomeComplete {
		rec.Partial = true
	}

	s.advance(sess, rec)

	return &domain.ConsultResponse{
		Recommendation: rec,
		SessionID:      sess.ID,
	}, nil
}

// SessionCount reports the number of live conversations
func (s *AdvisoryService) SessionCount() int {
	return s.sessions.Count()
}

// EvictExpiredSessions drops conversations past their TTL
func (s *AdvisoryService) EvictExpiredSessions() int {
	return s.sessions.EvictExpired()
}

func (s *AdvisoryService) session(req domain.ConsultRequest) *session.Session {
	id := ""
	if req.Context != nil {
		id = req.Context.SessionID
	}
	return s.sessions.Get(id)
}

// mergeContext folds the request into the session: a clarification answer
// resolves the pending question, a replayed history is merged in a stable
// order, and a new distinct query restarts the conversation.
func (s *AdvisoryService) mergeContext(sess *session.Session, req domain.ConsultRequest) {
	answering := req.Context != nil &&
		req.Context.ClarificationAnswer != "" &&
		sess.PendingQuestion != ""

	switch {
	case sess.OriginalQuery == "":
		sess.OriginalQuery = req.Query
	case answering:
		// Same conversation continues regardless of the query text
	case req.Query != sess.OriginalQuery:
		sess.Reset(req.Query)
	}

	if req.Context == nil {
		return
	}

	if answering {
		sess.AppendClarification(sess.PendingQuestion, req.Context.ClarificationAnswer)
		sess.PendingQuestion = ""
	}

	if len(req.Context.Clarifications) > 0 {
		questions := make([]string, 0, len(req.Context.Clarifications))
		for q := range req.Context.Clarifications {
			questions = append(questions, q)
		}
		sort.Strings(questions)
		for _, q := range questions {
			sess.AppendClarification(q, req.Context.Clarifications[q])
		}
	}
}

// advance moves the clarification state machine after a completed cycle.
// When the round cap is hit the session resets instead of holding another
// pending question, so the effective query cannot grow unbounded.
func (s *AdvisoryService) advance(sess *session.Session, rec domain.Recommendation) {
	if !rec.NeedsClarification {
		sess.State = session.StateResolved
		sess.PendingQuestion = ""
		return
	}

	if s.maxRounds > 0 && len(sess.Clarifications) >= s.maxRounds {
		log.Warn().
			Str("session_id", sess.ID).
			Int("rounds", len(sess.Clarifications)).
			Msg("clarification round cap reached, resetting session")
		sess.Reset(sess.OriginalQuery)
		return
	}

	sess.State = session.StateAwaitingClarification
	sess.PendingQuestion = rec.ClarificationQuestion
}
