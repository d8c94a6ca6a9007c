package llm

import (
	"context"
	"errors"
)

var (
	// ErrUnknownProvider is returned by NewProvider for an unsupported name.
	ErrUnknownProvider = errors.New("unknown provider")
	// ErrEmptyResponse is returned when a model answers with no text.
	ErrEmptyResponse = errors.New("empty model response")
)

// Params tunes a single generation call. Zero values leave the provider default.
type Params struct {
	Temperature     float32
	TopK            int32
	TopP            float32
	MaxOutputTokens int32
}

// FixParams are the settings used for code fix generation: near-deterministic
// output with a bounded answer length.
var FixParams = Params{Temperature: 0.1, TopK: 1, TopP: 1, MaxOutputTokens: 1024}

// Provider is a text generation backend.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
	ListModels(ctx context.Context) ([]string, error)
}
