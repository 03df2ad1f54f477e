package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/c360studio/semfibo/llm"
	_ "github.com/c360studio/semfibo/llm/providers" // Register providers
	"github.com/c360studio/semstreams/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatCompletion(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-123",
		"object":  "chat.completion",
		"created": 1677652288,
		"model":   "google/gemma-3-12b",
		"choices": []map[string]any{
			{
				"index": 0,
				"message": map[string]string{
					"role":    "assistant",
					"content": content,
				},
				"finish_reason": "stop",
			},
		},
		"usage": map[string]int{
			"prompt_tokens":     10,
			"completion_tokens": 8,
			"total_tokens":      18,
		},
	}
}

func fastRetry(attempts int) retry.Config {
	return retry.Config{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func userMessage(content string) llm.Request {
	return llm.Request{Messages: []llm.Message{{Role: "user", Content: content}}}
}

func TestClient_Complete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "google/gemma-3-12b", body["model"])
		assert.InDelta(t, 0.3, body["temperature"], 0.0001)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletion(`{"function": "list_classes", "arguments": []}`))
	}))
	defer server.Close()

	client := llm.NewClient(llm.Endpoint{Provider: "lmstudio", URL: server.URL + "/v1", Model: "google/gemma-3-12b"})

	temp := 0.3
	req := userMessage("list classes")
	req.Temperature = &temp
	resp, err := client.Complete(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, `{"function": "list_classes", "arguments": []}`, resp.Content)
	assert.Equal(t, "google/gemma-3-12b", resp.Model)
	assert.Equal(t, 18, resp.Usage.TotalTokens)
	assert.Equal(t, "stop", resp.FinishReason)
	assert.Equal(t, 1, resp.Attempts)
	assert.NotEmpty(t, resp.RequestID)
}

func TestClient_Complete_RetryOnTransientError(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("model loading"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletion("Success after retries"))
	}))
	defer server.Close()

	client := llm.NewClient(
		llm.Endpoint{Provider: "ollama", URL: server.URL, Model: "test-model"},
		llm.WithRetryConfig(fastRetry(3)),
	)

	resp, err := client.Complete(context.Background(), userMessage("Hello"))
	require.NoError(t, err)
	assert.Equal(t, "Success after retries", resp.Content)
	assert.Equal(t, 3, resp.Attempts)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestClient_Complete_DefaultIsSingleAttempt(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := llm.NewClient(llm.Endpoint{Provider: "lmstudio", URL: server.URL, Model: "m"})

	_, err := client.Complete(context.Background(), userMessage("Hello"))
	require.Error(t, err)
	assert.True(t, llm.IsTransient(err))
	assert.Contains(t, err.Error(), "status 502")
	assert.Equal(t, int32(1), attempts.Load())
}

func TestClient_Complete_NoRetryOnFatalError(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("invalid api key"))
	}))
	defer server.Close()

	client := llm.NewClient(
		llm.Endpoint{Provider: "openai", URL: server.URL, Model: "gpt-4o-mini"},
		llm.WithRetryConfig(fastRetry(3)),
	)

	_, err := client.Complete(context.Background(), userMessage("Hello"))
	require.Error(t, err)
	assert.True(t, llm.IsFatal(err))
	assert.Contains(t, err.Error(), "invalid api key")
	assert.Equal(t, int32(1), attempts.Load())
}

func TestClient_Complete_RateLimitRetry(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(chatCompletion("ok"))
	}))
	defer server.Close()

	client := llm.NewClient(
		llm.Endpoint{Provider: "ollama", URL: server.URL, Model: "m"},
		llm.WithRetryConfig(fastRetry(2)),
	)

	resp, err := client.Complete(context.Background(), userMessage("Hello"))
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestClient_Complete_MalformedResponseIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	client := llm.NewClient(
		llm.Endpoint{Provider: "ollama", URL: server.URL, Model: "m"},
		llm.WithRetryConfig(fastRetry(3)),
	)

	_, err := client.Complete(context.Background(), userMessage("Hello"))
	require.Error(t, err)
	assert.True(t, llm.IsFatal(err))
}

func TestClient_Complete_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := llm.NewClient(
		llm.Endpoint{Provider: "lmstudio", URL: server.URL, Model: "m"},
		llm.WithTimeout(50*time.Millisecond),
	)

	start := time.Now()
	_, err := client.Complete(context.Background(), userMessage("Hello"))
	require.Error(t, err)
	assert.True(t, llm.IsTransient(err))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestClient_Complete_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := llm.NewClient(
		llm.Endpoint{Provider: "ollama", URL: server.URL, Model: "m"},
		llm.WithRetryConfig(retry.Config{MaxAttempts: 5, InitialDelay: time.Second, MaxDelay: time.Second, Multiplier: 1}),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.Complete(ctx, userMessage("Hello"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 900*time.Millisecond)
}

func TestClient_Complete_ValidationErrors(t *testing.T) {
	t.Run("no messages", func(t *testing.T) {
		client := llm.NewClient(llm.Endpoint{Provider: "lmstudio"})
		_, err := client.Complete(context.Background(), llm.Request{})
		require.Error(t, err)
		assert.True(t, llm.IsFatal(err))
		assert.Contains(t, err.Error(), "at least one message")
	})

	t.Run("unknown provider", func(t *testing.T) {
		client := llm.NewClient(llm.Endpoint{Provider: "carrier-pigeon"})
		_, err := client.Complete(context.Background(), userMessage("Hello"))
		require.Error(t, err)
		assert.True(t, llm.IsFatal(err))
		assert.Contains(t, err.Error(), "unknown provider: carrier-pigeon")
	})
}
