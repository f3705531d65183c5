package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
	"github.com/datacraft-labs/sftgen-cli/internal/core/ports/driven"
)

const completionBody = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"model": "test-model",
	"choices": [
		{
			"index": 0,
			"message": {"role": "assistant", "content": "Paris."},
			"finish_reason": "stop"
		}
	],
	"usage": {"prompt_tokens": 10, "completion_tokens": 2, "total_tokens": 12}
}`

// newTestService points the SDK at a local httptest server.
func newTestService(t *testing.T, handler http.Handler) *LLMService {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := NewLLMService(Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)
	return svc
}

func TestNewLLMService(t *testing.T) {
	t.Run("requires API key", func(t *testing.T) {
		_, err := NewLLMService(Config{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "API key is required")
	})

	t.Run("applies defaults", func(t *testing.T) {
		svc, err := NewLLMService(Config{APIKey: "k"})
		require.NoError(t, err)
		assert.Equal(t, DefaultModel, svc.ModelName())
		assert.Equal(t, DefaultTimeout, svc.timeout)
	})
}

func TestLLMService_Chat(t *testing.T) {
	var captured map[string]any

	mux := http.NewServeMux()
	mux.HandleFunc("/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, completionBody)
	})

	svc := newTestService(t, mux)

	messages := []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: "You answer questions."},
		{Role: driven.RoleUser, Content: "What is the capital of France?"},
	}
	text, err := svc.Chat(context.Background(), messages, driven.ChatOptions{
		MaxTokens:   256,
		Temperature: 0.7,
	})
	require.NoError(t, err)
	assert.Equal(t, "Paris.", text)

	assert.Equal(t, "test-model", captured["model"])
	assert.InDelta(t, 0.7, captured["temperature"], 0.001)
	assert.InDelta(t, 256, captured["max_tokens"], 0.001)

	sent, ok := captured["messages"].([]any)
	require.True(t, ok)
	require.Len(t, sent, 2)
	first, ok := sent[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "system", first["role"])
}

func TestLLMService_Chat_NoChoices(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/chat/completions", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"chatcmpl-1","object":"chat.completion","choices":[]}`)
	})

	svc := newTestService(t, mux)

	_, err := svc.Chat(context.Background(), []driven.ChatMessage{{Role: driven.RoleUser, Content: "hi"}}, driven.ChatOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no response choices")
}

func TestLLMService_Chat_ErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantErr   error
		retryable bool
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, wantErr: domain.ErrRateLimited, retryable: true},
		{name: "server error", status: http.StatusInternalServerError, wantErr: domain.ErrServiceUnavailable, retryable: true},
		{name: "bad gateway", status: http.StatusBadGateway, wantErr: domain.ErrServiceUnavailable, retryable: true},
		{name: "bad request is permanent", status: http.StatusBadRequest, retryable: false},
		{name: "unauthorised is permanent", status: http.StatusUnauthorized, retryable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/chat/completions", func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				fmt.Fprintf(w, `{"error": {"message": "nope", "type": "test_error"}}`)
			})

			svc := newTestService(t, mux)

			_, err := svc.Chat(context.Background(), []driven.ChatMessage{{Role: driven.RoleUser, Content: "hi"}}, driven.ChatOptions{})
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Equal(t, tt.retryable, domain.IsRetryable(err))
		})
	}
}

func TestLLMService_Chat_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	svc, err := NewLLMService(Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Timeout: time.Second,
	})
	require.NoError(t, err)

	_, err = svc.Chat(context.Background(), []driven.ChatMessage{{Role: driven.RoleUser, Content: "hi"}}, driven.ChatOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrServiceUnavailable)
	assert.True(t, domain.IsRetryable(err))
}

func TestLLMService_Chat_CancelledContext(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/chat/completions", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, completionBody)
	})

	svc := newTestService(t, mux)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Chat(ctx, []driven.ChatMessage{{Role: driven.RoleUser, Content: "hi"}}, driven.ChatOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, domain.IsRetryable(err))
}

func TestLLMService_Ping(t *testing.T) {
	t.Run("reachable", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/models", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"object":"list","data":[{"id":"test-model","object":"model","created":0,"owned_by":"test"}]}`)
		})

		svc := newTestService(t, mux)
		assert.NoError(t, svc.Ping(context.Background()))
	})

	t.Run("bad key", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/models", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error": {"message": "invalid key", "type": "auth_error"}}`)
		})

		svc := newTestService(t, mux)
		err := svc.Ping(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ping failed")
	})
}

func TestLLMService_ModelName(t *testing.T) {
	svc, err := NewLLMService(Config{APIKey: "k", Model: "deepseek-chat"})
	require.NoError(t, err)
	assert.Equal(t, "deepseek-chat", svc.ModelName())
}

func TestLLMService_Close(t *testing.T) {
	svc, err := NewLLMService(Config{APIKey: "k"})
	require.NoError(t, err)
	assert.NoError(t, svc.Close())
}
