package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/avely-labs/formation-advisor/internal/advisor"
	"github.com/avely-labs/formation-advisor/internal/api/handler"
	"github.com/avely-labs/formation-advisor/internal/domain"
)

// MockConsulter mocks the Consulter interface
type MockConsulter struct {
	mock.Mock
}

func (m *MockConsulter) Consult(ctx context.Context, req domain.ConsultRequest) (*domain.ConsultResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConsultResponse), args.Error(1)
}

type fakeSessionCounter struct {
	count   int
	evicted int
}

func (f *fakeSessionCounter) SessionCount() int         { return f.count }
func (f *fakeSessionCounter) EvictExpiredSessions() int { return f.evicted }

func doConsult(t *testing.T, svc handler.Consulter, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/consult", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.NewConsultHandler(svc).Consult(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var envelope map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	return envelope
}

func TestConsultHandler_OK(t *testing.T) {
	svc := new(MockConsulter)
	svc.On("Consult", mock.Anything, mock.MatchedBy(func(req domain.ConsultRequest) bool {
		return req.Query == "What structure fits a venture-backed startup?"
	})).Return(&domain.ConsultResponse{
		Recommendation: domain.Recommendation{
			RecommendedStructure: "Delaware C-Corp",
			KeyBenefits:          []string{"Investor-ready preferred stock"},
			TradeOffs:            []string{"Double taxation"},
			NextSteps:            []string{"Incorporate in Delaware"},
		},
		SessionID: "session-1",
	}, nil)

	rec := doConsult(t, svc, `{"query":"What structure fits a venture-backed startup?"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, true, envelope["success"])

	data, ok := envelope["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Delaware C-Corp", data["recommendedStructure"])
	assert.Equal(t, "session-1", data["sessionId"])

	svc.AssertExpectations(t)
}

func TestConsultHandler_EmptyListsStayInResponse(t *testing.T) {
	// A synthesis without trade-offs or next steps still yields every
	// list key in the serialized recommendation
	rec := advisor.Parse("## RECOMMENDED STRUCTURE\nLLC\n\n## KEY BENEFITS\n- Pass-through taxation\n")

	svc := new(MockConsulter)
	svc.On("Consult", mock.Anything, mock.Anything).Return(&domain.ConsultResponse{
		Recommendation: rec,
		SessionID:      "session-1",
	}, nil)

	resp := doConsult(t, svc, `{"query":"Choosing between an LLC and a C-Corp"}`)
	require.Equal(t, http.StatusOK, resp.Code)

	data, ok := decodeEnvelope(t, resp)["data"].(map[string]any)
	require.True(t, ok)

	for _, key := range []string{"recommendedStructure", "keyBenefits", "tradeOffs", "nextSteps"} {
		_, present := data[key]
		assert.True(t, present, "key %q must always be present", key)
	}
	assert.Equal(t, []any{"Pass-through taxation"}, data["keyBenefits"])
	assert.Equal(t, []any{}, data["tradeOffs"])
	assert.Equal(t, []any{}, data["nextSteps"])
}

func TestConsultHandler_TrimsAndValidatesQuery(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing query", `{}`},
		{"too short", `{"query":"LLC?"}`},
		{"whitespace padding only", `{"query":"   short   "}`},
		{"too long", `{"query":"` + strings.Repeat("a", 5001) + `"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockConsulter)

			rec := doConsult(t, svc, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			envelope := decodeEnvelope(t, rec)
			assert.Equal(t, false, envelope["success"])
			assert.Equal(t, "query must be between 10 and 5000 characters", envelope["error"])

			svc.AssertNotCalled(t, "Consult", mock.Anything, mock.Anything)
		})
	}
}

func TestConsultHandler_MalformedBody(t *testing.T) {
	svc := new(MockConsulter)

	rec := doConsult(t, svc, `{"query":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, "invalid request body", envelope["error"])
}

func TestConsultHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"all analysts failed", domain.ErrAllAnalystsFailed, http.StatusGatewayTimeout},
		{"synthesis failed", domain.ErrSynthesisFailed, http.StatusInternalServerError},
		{"unexpected error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockConsulter)
			svc.On("Consult", mock.Anything, mock.Anything).Return(nil, tt.err)

			rec := doConsult(t, svc, `{"query":"Choosing between an LLC and a C-Corp"}`)
			require.Equal(t, tt.status, rec.Code)

			envelope := decodeEnvelope(t, rec)
			assert.Equal(t, false, envelope["success"])
			assert.NotEmpty(t, envelope["error"])
		})
	}
}

func TestHealthCheck(t *testing.T) {
	sessions := &fakeSessionCounter{count: 3}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()

	handler.HealthCheck(sessions)(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	envelope := decodeEnvelope(t, rec)
	data, ok := envelope["data"].(map[string]any)
	require.True(t, ok)

	assert.Equal(t, "healthy", data["status"])
	assert.Equal(t, float64(3), data["activeSessions"])

	agents, ok := data["agents"].([]any)
	require.True(t, ok)
	assert.Len(t, agents, 4)
	assert.Contains(t, agents, "TaxCPA")
}
