package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOpenAIServer(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
			return
		}
		switch r.URL.Path {
		case "/v1/chat/completions":
			var req map[string]interface{}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "test-model", req["model"])
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"id":      "chatcmpl-1",
				"object":  "chat.completion",
				"choices": []map[string]interface{}{{"index": 0, "message": map[string]string{"role": "assistant", "content": content}}},
			})
		case "/v1/models":
			_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"gpt-4o"},{"id":"whisper-1"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIGenerate(t *testing.T) {
	srv := newOpenAIServer(t, `{"fixed_code":"x"}`, http.StatusOK)
	p := NewOpenAIProvider("key", "test-model", srv.URL+"/v1", FixParams)

	out, err := p.Generate(context.Background(), "fix this")
	require.NoError(t, err)
	assert.Equal(t, `{"fixed_code":"x"}`, out)
	assert.Equal(t, "openai", p.Name())
}

func TestOpenAIGenerateEmpty(t *testing.T) {
	srv := newOpenAIServer(t, "   ", http.StatusOK)
	p := NewOpenAIProvider("key", "test-model", srv.URL+"/v1", FixParams)

	_, err := p.Generate(context.Background(), "fix this")
	assert.True(t, errors.Is(err, ErrEmptyResponse))
}

func TestOpenAIGenerateServerError(t *testing.T) {
	srv := newOpenAIServer(t, "", http.StatusInternalServerError)
	p := NewOpenAIProvider("key", "test-model", srv.URL+"/v1", Params{})

	_, err := p.Generate(context.Background(), "fix this")
	assert.Error(t, err)
}

func TestOpenAIListModels(t *testing.T) {
	srv := newOpenAIServer(t, "", http.StatusOK)
	p := NewOpenAIProvider("key", "", srv.URL+"/v1", Params{})

	models, err := p.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"gpt-4o"}, models)
}

func TestNewProviderUnknown(t *testing.T) {
	_, err := NewProvider(context.Background(), "anthropic", Options{})
	assert.True(t, errors.Is(err, ErrUnknownProvider))

	p, err := NewProvider(context.Background(), "openai", Options{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())
}
