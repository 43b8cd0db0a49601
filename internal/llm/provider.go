package llm

import "context"

// Request contains text-completion parameters. Instruction is the
// role-specific system instruction; Prompt is the user-facing content.
type Request struct {
	Instruction string
	Prompt      string
}

// Response contains an LLM completion result
type Response struct {
	Text       string
	Model      string
	TokensUsed int
	LatencyMs  int64
}

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// AvailableModels returns list of supported models
	AvailableModels() []string

	// DefaultModel returns the default model
	DefaultModel() string

	// IsConfigured checks if provider has valid credentials
	IsConfigured() bool

	// Complete produces free-form text for the given instruction and prompt
	Complete(ctx context.Context, req Request, model string) (*Response, error)
}
