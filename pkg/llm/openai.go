package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/user/gosec-autofix/pkg/logging"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIProvider talks to the OpenAI chat API or any server exposing the
// same surface when BaseURL is set.
type OpenAIProvider struct {
	client *openai.Client
	model  string
	params Params
}

func NewOpenAIProvider(apiKey, model, baseURL string, params Params) *OpenAIProvider {
	if model == "" {
		model = defaultOpenAIModel
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIProvider{client: openai.NewClientWithConfig(cfg), model: model, params: params}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) ListModels(ctx context.Context) ([]string, error) {
	list, err := p.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list OpenAI models: %w", err)
	}
	models := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		if strings.HasPrefix(m.ID, "gpt") || strings.HasPrefix(m.ID, "o") {
			models = append(models, m.ID)
		}
	}
	return models, nil
}

func (p *OpenAIProvider) Generate(ctx context.Context, prompt string) (string, error) {
	logging.Debugf("Generating text via OpenAI model %s", p.model)
	req := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You are an expert code security reviewer."},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: p.params.Temperature,
		TopP:        p.params.TopP,
		MaxTokens:   int(p.params.MaxOutputTokens),
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("OpenAI API call failed: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
