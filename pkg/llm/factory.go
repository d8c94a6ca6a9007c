package llm

import (
	"context"
	"fmt"
)

// Options configure NewProvider.
type Options struct {
	APIKey  string
	Model   string
	BaseURL string
	Params  Params
}

// NewProvider builds the named provider.
func NewProvider(ctx context.Context, name string, opts Options) (Provider, error) {
	switch name {
	case "gemini", "":
		return NewGeminiProvider(ctx, opts.APIKey, opts.Model, opts.Params)
	case "openai":
		return NewOpenAIProvider(opts.APIKey, opts.Model, opts.BaseURL, opts.Params), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
}

// Providers lists the names NewProvider accepts.
func Providers() []string {
	return []string{"gemini", "openai"}
}
