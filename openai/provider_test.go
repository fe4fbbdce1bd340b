package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelbeely/Conductor-sub001/provider"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p, err := New(WithAPIKey("test-key"), WithBaseURL(srv.URL))
	require.NoError(t, err)
	return p
}

func TestGenerate(t *testing.T) {
	var gotReq chatCompletionRequest
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		_ = json.NewEncoder(w).Encode(chatCompletionResponse{
			Choices: []choice{{
				Message:      responseMessage{Role: "assistant", Content: "Now playing."},
				FinishReason: "stop",
			}},
			Usage: usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
		})
	})

	resp, err := p.Generate(context.Background(), &provider.Request{
		Model: "gpt-4o",
		Messages: []provider.Message{
			{Role: provider.RoleUser, Content: "play some jazz"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", gotReq.Model)
	assert.Equal(t, "Now playing.", resp.Content)
	assert.Equal(t, provider.FinishReasonStop, resp.FinishReason)
	assert.Equal(t, 15, resp.Usage.TotalTokens)
}

func TestGenerateToolCalls(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(chatCompletionResponse{
			Choices: []choice{{
				Message: responseMessage{
					Role: "assistant",
					ToolCalls: []toolCall{{
						ID:   "call_1",
						Type: "function",
						Function: functionCall{
							Name:      "set_volume",
							Arguments: `{"level":70}`,
						},
					}},
				},
				FinishReason: "tool_calls",
			}},
		})
	})

	resp, err := p.Generate(context.Background(), &provider.Request{Model: "gpt-4o"})
	require.NoError(t, err)

	assert.Equal(t, provider.FinishReasonToolCalls, resp.FinishReason)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "call_1", resp.ToolCalls[0].ID)
	assert.Equal(t, "set_volume", resp.ToolCalls[0].Name)
	assert.JSONEq(t, `{"level":70}`, resp.ToolCalls[0].Arguments)
}

func TestGenerateErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		headers map[string]string
		body    string
		check   func(t *testing.T, err error)
	}{
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			body:   `{"error":{"message":"bad key"}}`,
			check: func(t *testing.T, err error) {
				var authErr *provider.AuthError
				require.ErrorAs(t, err, &authErr)
				assert.Contains(t, authErr.Message, "bad key")
			},
		},
		{
			name:    "rate limited",
			status:  http.StatusTooManyRequests,
			headers: map[string]string{"Retry-After": "2"},
			body:    `{"error":{"message":"slow down"}}`,
			check: func(t *testing.T, err error) {
				var rl *provider.RateLimitError
				require.ErrorAs(t, err, &rl)
				assert.Equal(t, "2s", rl.RetryAfter.String())
			},
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   `{"error":{"message":"boom"}}`,
			check: func(t *testing.T, err error) {
				var un *provider.UnreachableError
				assert.ErrorAs(t, err, &un)
			},
		},
		{
			name:   "garbage body",
			status: http.StatusOK,
			body:   `not json`,
			check: func(t *testing.T, err error) {
				var mal *provider.MalformedResponseError
				assert.ErrorAs(t, err, &mal)
			},
		},
		{
			name:   "no choices",
			status: http.StatusOK,
			body:   `{"choices":[]}`,
			check: func(t *testing.T, err error) {
				var mal *provider.MalformedResponseError
				assert.ErrorAs(t, err, &mal)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.headers {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := p.Generate(context.Background(), &provider.Request{Model: "gpt-4o"})
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestGenerateUnreachable(t *testing.T) {
	p, err := New(WithAPIKey("test-key"), WithBaseURL("http://127.0.0.1:1"))
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), &provider.Request{Model: "gpt-4o"})
	var un *provider.UnreachableError
	require.ErrorAs(t, err, &un)
	assert.True(t, provider.Retryable(err))
}

func TestListModels(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		_ = json.NewEncoder(w).Encode(modelList{
			Object: "list",
			Data: []modelInfo{
				{ID: "gpt-4o", Created: 1715367049},
				{ID: "gpt-4o-mini", Created: 1721172741},
			},
		})
	})

	models, err := p.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "gpt-4o", models[0].ID)
	assert.Equal(t, "gpt-4o-mini", models[1].ID)
}

func TestNewRequiresKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := New()
	var authErr *provider.AuthError
	assert.ErrorAs(t, err, &authErr)
}
