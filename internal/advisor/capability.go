package advisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/avely-labs/formation-advisor/internal/domain"
	"github.com/avely-labs/formation-advisor/internal/llm"
	"github.com/rs/zerolog/log"
)

// LLMAnalyst adapts an llm.Provider into the Analyst capability by
// pairing each role with its instruction set
type LLMAnalyst struct {
	provider llm.Provider
	model    string
}

// NewLLMAnalyst creates an analyst backed by the given provider. An empty
// model selects the provider default.
func NewLLMAnalyst(provider llm.Provider, model string) *LLMAnalyst {
	return &LLMAnalyst{provider: provider, model: model}
}

func (a *LLMAnalyst) Analyze(ctx context.Context, role domain.Role, query string) (string, error) {
	resp, err := a.provider.Complete(ctx, llm.Request{
		Instruction: InstructionFor(role),
		Prompt:      query,
	}, a.model)
	if err != nil {
		return "", fmt.Errorf("%s analysis: %w", role, err)
	}

	log.Debug().
		Str("role", string(role)).
		Str("model", resp.Model).
		Int("tokens_used", resp.TokensUsed).
		Int64("latency_ms", resp.LatencyMs).
		Msg("analyst completed")

	return resp.Text, nil
}

// LLMSynthesizer adapts an llm.Provider into the Synthesizer capability
// using the coordinator instruction
type LLMSynthesizer struct {
	provider llm.Provider
	model    string
}

// NewLLMSynthesizer creates a synthesizer backed by the given provider
func NewLLMSynthesizer(provider llm.Provider, model string) *LLMSynthesizer {
	return &LLMSynthesizer{provider: provider, model: model}
}

func (s *LLMSynthesizer) Synthesize(ctx context.Context, query string, analyses []domain.DomainAnalysis) (string, error) {
	resp, err := s.provider.Complete(ctx, llm.Request{
		Instruction: coordinatorInstruction,
		Prompt:      BuildSynthesisPrompt(query, analyses),
	}, s.model)
	if err != nil {
		return "", fmt.Errorf("synthesis: %w", err)
	}

	if strings.TrimSpace(resp.Text) == "" {
		return "", fmt.Errorf("synthesis: empty response")
	}

	log.Debug().
		Str("model", resp.Model).
		Int("tokens_used", resp.TokensUsed).
		Int64("latency_ms", resp.LatencyMs).
		Msg("synthesis completed")

	return resp.Text, nil
}
