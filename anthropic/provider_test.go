package anthropic

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
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-sonnet-4-5",
			"content": [{"type": "text", "text": "Playing it now."}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 12, "output_tokens": 6}
		}`))
	})

	resp, err := p.Generate(context.Background(), &provider.Request{
		Model: "claude-sonnet-4-5",
		Messages: []provider.Message{
			{Role: provider.RoleSystem, Content: "You control a music player."},
			{Role: provider.RoleUser, Content: "play something mellow"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Playing it now.", resp.Content)
	assert.Equal(t, provider.FinishReasonStop, resp.FinishReason)
	assert.Equal(t, 18, resp.Usage.TotalTokens)
}

func TestGenerateToolUse(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.NotEmpty(t, body["tools"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_2",
			"type": "message",
			"role": "assistant",
			"model": "claude-sonnet-4-5",
			"content": [
				{"type": "text", "text": "Turning it down."},
				{"type": "tool_use", "id": "toolu_1", "name": "set_volume", "input": {"level": 30}}
			],
			"stop_reason": "tool_use",
			"usage": {"input_tokens": 20, "output_tokens": 15}
		}`))
	})

	resp, err := p.Generate(context.Background(), &provider.Request{
		Model: "claude-sonnet-4-5",
		Messages: []provider.Message{
			{Role: provider.RoleUser, Content: "quieter please"},
		},
		Tools: []provider.ToolDef{{
			Name:        "set_volume",
			Description: "Set playback volume.",
			Parameters:  json.RawMessage(`{"type":"object","properties":{"level":{"type":"integer"}},"required":["level"]}`),
		}},
	})
	require.NoError(t, err)

	assert.Equal(t, provider.FinishReasonToolCalls, resp.FinishReason)
	assert.Equal(t, "Turning it down.", resp.Content)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "toolu_1", resp.ToolCalls[0].ID)
	assert.Equal(t, "set_volume", resp.ToolCalls[0].Name)
	assert.JSONEq(t, `{"level":30}`, resp.ToolCalls[0].Arguments)
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
			body:   `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`,
			check: func(t *testing.T, err error) {
				var authErr *provider.AuthError
				assert.ErrorAs(t, err, &authErr)
			},
		},
		{
			name:    "rate limited",
			status:  http.StatusTooManyRequests,
			headers: map[string]string{"Retry-After": "3"},
			body:    `{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`,
			check: func(t *testing.T, err error) {
				var rl *provider.RateLimitError
				require.ErrorAs(t, err, &rl)
				assert.Equal(t, "3s", rl.RetryAfter.String())
				assert.True(t, provider.Retryable(err))
			},
		},
		{
			name:   "overloaded",
			status: http.StatusServiceUnavailable,
			body:   `{"type":"error","error":{"type":"overloaded_error","message":"busy"}}`,
			check: func(t *testing.T, err error) {
				var un *provider.UnreachableError
				assert.ErrorAs(t, err, &un)
			},
		},
		{
			name:   "bad request",
			status: http.StatusBadRequest,
			body:   `{"type":"error","error":{"type":"invalid_request_error","message":"bad input"}}`,
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
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := p.Generate(context.Background(), &provider.Request{Model: "claude-sonnet-4-5"})
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestListModels(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"data": [
				{"type": "model", "id": "claude-sonnet-4-5", "display_name": "Claude Sonnet 4.5", "created_at": "2025-09-29T00:00:00Z"},
				{"type": "model", "id": "claude-haiku-4-5", "display_name": "Claude Haiku 4.5", "created_at": "2025-10-15T00:00:00Z"}
			],
			"has_more": false,
			"first_id": "claude-sonnet-4-5",
			"last_id": "claude-haiku-4-5"
		}`))
	})

	models, err := p.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "claude-sonnet-4-5", models[0].ID)
	assert.Equal(t, "Claude Sonnet 4.5", models[0].DisplayName)
}
