package advisor

import (
	"context"

	"github.com/avely-labs/formation-advisor/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockSynthesizer mocks the Synthesizer interface
type MockSynthesizer struct {
	mock.Mock
}

func (m *MockSynthesizer) Synthesize(ctx context.Context, query string, analyses []domain.DomainAnalysis) (string, error) {
	args := m.Called(ctx, query, analyses)
	return args.String(0), args.Error(1)
}
