package advisor

import (
	"context"
	"errors"
	"time"

	"github.com/avely-labs/formation-advisor/internal/domain"
	"github.com/rs/zerolog/log"
)

// Analyst is the opaque capability producing free-form analysis text for
// one advisory role
type Analyst interface {
	Analyze(ctx context.Context, role domain.Role, query string) (string, error)
}

// Synthesizer is the opaque capability producing one unified
// recommendation (or clarification request) from a set of analyses
type Synthesizer interface {
	Synthesize(ctx context.Context, query string, analyses []domain.DomainAnalysis) (string, error)
}

// ConsultResult aggregates one fan-out cycle. Analyses always holds one
// entry per role in canonical order (tax, legal, strategy).
type ConsultResult struct {
	Analyses []domain.DomainAnalysis
	Outcome  domain.Outcome
}

// Orchestrator fans a query out to the three domain analysts under one
// shared deadline and classifies the aggregate outcome
type Orchestrator struct {
	analyst  Analyst
	deadline time.Duration
}

// NewOrchestrator creates an orchestrator with the given per-cycle deadline
func NewOrchestrator(analyst Analyst, deadline time.Duration) *Orchestrator {
	return &Orchestrator{
		analyst:  analyst,
		deadline: deadline,
	}
}

type analystResult struct {
	role domain.Role
	text string
	err  error
}

// Consult runs one concurrent fan-out cycle. It waits until all three
// invocations settle or the deadline fires, whichever is first; it never
// returns early on partial settlement, so the synthesizer always observes
// a fully-settled view. Analysts are not retried within a cycle.
func (o *Orchestrator) Consult(ctx context.Context, effectiveQuery string) *ConsultResult {
	ctx, cancel := context.WithTimeout(ctx, o.deadline)
	defer cancel()

	roles := domain.AllRoles()

	// Buffered so late analysts can finish their send after the deadline
	// fires and the collector has moved on; nothing is left blocked.
	results := make(chan analystResult, len(roles))

	for _, role := range roles {
		go func(role domain.Role) {
			text, err := o.analyst.Analyze(ctx, role, effectiveQuery)
			results <- analystResult{role: role, text: text, err: err}
		}(role)
	}

	settled := collectSettled(ctx, results, len(roles))

	analyses := make([]domain.DomainAnalysis, 0, len(roles))
	for _, role := range roles {
		a, ok := settled[role]
		if !ok {
			a = domain.DomainAnalysis{Role: role, Status: domain.StatusTimedOut}
		}
		analyses = append(analyses, a)
	}

	outcome := classifyOutcome(analyses)

	log.Debug().
		Str("outcome", string(outcome)).
		Int("settled", len(settled)).
		Msg("fan-out cycle complete")

	return &ConsultResult{
		Analyses: analyses,
		Outcome:  outcome,
	}
}

// collectSettled receives analyst results until all have settled or the
// deadline fires. The deadline and a buffered result can become ready in
// the same select; results that made it into the channel still count as
// settled, so only a drained, empty channel leaves a role timed out.
func collectSettled(ctx context.Context, results <-chan analystResult, want int) map[domain.Role]domain.DomainAnalysis {
	settled := make(map[domain.Role]domain.DomainAnalysis, want)

	for len(settled) < want {
		select {
		case res := <-results:
			settled[res.role] = classifyResult(res)
		case <-ctx.Done():
			for len(settled) < want {
				select {
				case res := <-results:
					settled[res.role] = classifyResult(res)
				default:
					return settled
				}
			}
			return settled
		}
	}

	return settled
}

func classifyResult(res analystResult) domain.DomainAnalysis {
	a := domain.DomainAnalysis{Role: res.role}

	switch {
	case res.err == nil:
		a.Status = domain.StatusOK
		a.Text = res.text
	case errors.Is(res.err, context.DeadlineExceeded):
		a.Status = domain.StatusTimedOut
	default:
		a.Status = domain.StatusFailed
		log.Warn().Err(res.err).Str("role", string(res.role)).Msg("analyst invocation failed")
	}

	return a
}

// classifyOutcome applies the aggregation rule: Complete requires all Ok,
// AllFailed requires zero Ok, anything in between is Partial.
func classifyOutcome(analyses []domain.DomainAnalysis) domain.Outcome {
	ok := 0
	for _, a := range analyses {
		if a.Status == domain.StatusOK {
			ok++
		}
	}

	switch ok {
	case len(analyses):
		return domain.OutcomeComplete
	case 0:
		return domain.OutcomeAllFailed
	default:
		return domain.OutcomePartial
	}
}
