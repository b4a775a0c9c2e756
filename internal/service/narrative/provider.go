// Package narrative turns structured decision data into prompts for a
// generative-text backend and parses structured results back out of the
// free-text responses.
//
// Every generation call degrades gracefully: a network failure or an
// unparseable response produces a fixed fallback payload instead of an
// error. The one exception is branch generation, which reports failure so
// its caller can apply the deterministic rule-table fallback.
package narrative

import "context"

// Provider defines the interface for text-generation backends
// (Bedrock in production, the mock in development and tests).
type Provider interface {
	Complete(ctx context.Context, prompt string, options CompletionOptions) (string, error)
	IsAvailable() bool
}

// CompletionOptions configures a single generation request.
type CompletionOptions struct {
	ModelID     string  `json:"model_id"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}
