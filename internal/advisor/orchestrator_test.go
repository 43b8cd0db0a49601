package advisor

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/avely-labs/formation-advisor/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// analystFunc adapts a function to the Analyst interface
type analystFunc func(ctx context.Context, role domain.Role, query string) (string, error)

func (f analystFunc) Analyze(ctx context.Context, role domain.Role, query string) (string, error) {
	return f(ctx, role, query)
}

func TestOrchestrator_OutcomeClassification(t *testing.T) {
	// All 8 combinations of per-role success/failure
	tests := []struct {
		name    string
		ok      map[domain.Role]bool
		outcome domain.Outcome
	}{
		{"all ok", map[domain.Role]bool{domain.RoleTax: true, domain.RoleLegal: true, domain.RoleStrategy: true}, domain.OutcomeComplete},
		{"tax fails", map[domain.Role]bool{domain.RoleTax: false, domain.RoleLegal: true, domain.RoleStrategy: true}, domain.OutcomePartial},
		{"legal fails", map[domain.Role]bool{domain.RoleTax: true, domain.RoleLegal: false, domain.RoleStrategy: true}, domain.OutcomePartial},
		{"strategy fails", map[domain.Role]bool{domain.RoleTax: true, domain.RoleLegal: true, domain.RoleStrategy: false}, domain.OutcomePartial},
		{"only tax ok", map[domain.Role]bool{domain.RoleTax: true, domain.RoleLegal: false, domain.RoleStrategy: false}, domain.OutcomePartial},
		{"only legal ok", map[domain.Role]bool{domain.RoleTax: false, domain.RoleLegal: true, domain.RoleStrategy: false}, domain.OutcomePartial},
		{"only strategy ok", map[domain.Role]bool{domain.RoleTax: false, domain.RoleLegal: false, domain.RoleStrategy: true}, domain.OutcomePartial},
		{"all fail", map[domain.Role]bool{domain.RoleTax: false, domain.RoleLegal: false, domain.RoleStrategy: false}, domain.OutcomeAllFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyst := analystFunc(func(ctx context.Context, role domain.Role, query string) (string, error) {
				if tt.ok[role] {
					return fmt.Sprintf("%s analysis", role), nil
				}
				return "", errors.New("capability error")
			})

			orch := NewOrchestrator(analyst, time.Second)
			res := orch.Consult(context.Background(), "should I form an LLC?")

			assert.Equal(t, tt.outcome, res.Outcome)
			require.Len(t, res.Analyses, 3)

			for _, a := range res.Analyses {
				if tt.ok[a.Role] {
					assert.Equal(t, domain.StatusOK, a.Status)
					assert.NotEmpty(t, a.Text)
				} else {
					assert.Equal(t, domain.StatusFailed, a.Status)
					assert.Empty(t, a.Text)
				}
			}
		})
	}
}

func TestOrchestrator_AnalysesInCanonicalOrder(t *testing.T) {
	analyst := analystFunc(func(ctx context.Context, role domain.Role, query string) (string, error) {
		// Stagger completion so arrival order differs from role order
		switch role {
		case domain.RoleTax:
			time.Sleep(30 * time.Millisecond)
		case domain.RoleLegal:
			time.Sleep(10 * time.Millisecond)
		}
		return "analysis", nil
	})

	orch := NewOrchestrator(analyst, time.Second)
	res := orch.Consult(context.Background(), "ordering query for the fan-out")

	require.Len(t, res.Analyses, 3)
	assert.Equal(t, domain.RoleTax, res.Analyses[0].Role)
	assert.Equal(t, domain.RoleLegal, res.Analyses[1].Role)
	assert.Equal(t, domain.RoleStrategy, res.Analyses[2].Role)
}

func TestOrchestrator_DeadlineRespected(t *testing.T) {
	const deadline = 50 * time.Millisecond

	analyst := analystFunc(func(ctx context.Context, role domain.Role, query string) (string, error) {
		if role == domain.RoleLegal {
			// Never completes on its own
			<-ctx.Done()
			return "", ctx.Err()
		}
		return "analysis", nil
	})

	orch := NewOrchestrator(analyst, deadline)

	start := time.Now()
	res := orch.Consult(context.Background(), "deadline query with a slow analyst")
	elapsed := time.Since(start)

	assert.Less(t, elapsed, deadline+300*time.Millisecond, "orchestrator must return at the deadline")
	assert.Equal(t, domain.OutcomePartial, res.Outcome)

	require.Len(t, res.Analyses, 3)
	assert.Equal(t, domain.StatusTimedOut, res.Analyses[1].Status)
	assert.Equal(t, domain.StatusOK, res.Analyses[0].Status)
	assert.Equal(t, domain.StatusOK, res.Analyses[2].Status)
}

func TestCollectSettled_ResultsInFlightAtDeadlineStillCount(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Two analysts finished just before the deadline; their results are
	// buffered but not yet received when Done becomes ready
	results := make(chan analystResult, 3)
	results <- analystResult{role: domain.RoleTax, text: "tax analysis"}
	results <- analystResult{role: domain.RoleStrategy, text: "strategy analysis"}

	settled := collectSettled(ctx, results, 3)

	require.Len(t, settled, 2)
	assert.Equal(t, domain.StatusOK, settled[domain.RoleTax].Status)
	assert.Equal(t, domain.StatusOK, settled[domain.RoleStrategy].Status)

	_, ok := settled[domain.RoleLegal]
	assert.False(t, ok, "an unsettled role must be left to the timeout classification")
}

func TestOrchestrator_AllTimedOut(t *testing.T) {
	analyst := analystFunc(func(ctx context.Context, role domain.Role, query string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	orch := NewOrchestrator(analyst, 20*time.Millisecond)
	res := orch.Consult(context.Background(), "every analyst blocks until cancelled")

	assert.Equal(t, domain.OutcomeAllFailed, res.Outcome)
	for _, a := range res.Analyses {
		assert.Equal(t, domain.StatusTimedOut, a.Status)
	}
}

func TestOrchestrator_WrappedDeadlineErrorIsTimedOut(t *testing.T) {
	analyst := analystFunc(func(ctx context.Context, role domain.Role, query string) (string, error) {
		if role == domain.RoleTax {
			return "", fmt.Errorf("tax analysis: %w", context.DeadlineExceeded)
		}
		return "analysis", nil
	})

	orch := NewOrchestrator(analyst, time.Second)
	res := orch.Consult(context.Background(), "wrapped timeout classification")

	assert.Equal(t, domain.StatusTimedOut, res.Analyses[0].Status)
	assert.Equal(t, domain.OutcomePartial, res.Outcome)
}
