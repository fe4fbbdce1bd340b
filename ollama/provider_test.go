package ollama

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

	p, err := New(WithBaseURL(srv.URL))
	require.NoError(t, err)
	return p
}

func TestGenerate(t *testing.T) {
	var gotReq chatRequest
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		_ = json.NewEncoder(w).Encode(chatResponse{
			Model:           "llama3.2",
			Message:         message{Role: "assistant", Content: "Queued it up."},
			Done:            true,
			DoneReason:      "stop",
			PromptEvalCount: 20,
			EvalCount:       8,
		})
	})

	resp, err := p.Generate(context.Background(), &provider.Request{
		Model: "llama3.2",
		Messages: []provider.Message{
			{Role: provider.RoleUser, Content: "queue some blues"},
		},
	})
	require.NoError(t, err)

	assert.False(t, gotReq.Stream)
	assert.Equal(t, "llama3.2", gotReq.Model)
	assert.Equal(t, "Queued it up.", resp.Content)
	assert.Equal(t, provider.FinishReasonStop, resp.FinishReason)
	assert.Equal(t, 28, resp.Usage.TotalTokens)
}

func TestGenerateToolCalls(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(chatResponse{
			Message: message{
				Role: "assistant",
				ToolCalls: []toolCall{{
					Function: functionCall{
						Name:      "search_library",
						Arguments: []byte(`{"field":"genre","query":"blues"}`),
					},
				}},
			},
			Done:       true,
			DoneReason: "stop",
		})
	})

	resp, err := p.Generate(context.Background(), &provider.Request{Model: "llama3.2"})
	require.NoError(t, err)

	// Tool call responses report tool_calls even though Ollama says stop.
	assert.Equal(t, provider.FinishReasonToolCalls, resp.FinishReason)
	require.Len(t, resp.ToolCalls, 1)
	assert.Empty(t, resp.ToolCalls[0].ID)
	assert.Equal(t, "search_library", resp.ToolCalls[0].Name)
	assert.JSONEq(t, `{"field":"genre","query":"blues"}`, resp.ToolCalls[0].Arguments)
}

func TestGenerateDaemonDown(t *testing.T) {
	p, err := New(WithBaseURL("http://127.0.0.1:1"))
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), &provider.Request{Model: "llama3.2"})
	var un *provider.UnreachableError
	require.ErrorAs(t, err, &un)
	assert.True(t, provider.Retryable(err))
}

func TestGenerateBadStatus(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model 'nope' not found"}`))
	})

	_, err := p.Generate(context.Background(), &provider.Request{Model: "nope"})
	var mal *provider.MalformedResponseError
	require.ErrorAs(t, err, &mal)
	assert.Contains(t, err.Error(), "not found")
}

func TestListModels(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		_ = json.NewEncoder(w).Encode(tagList{
			Models: []tagInfo{
				{Name: "llama3.2:latest", ModifiedAt: "2024-11-01T12:00:00Z"},
				{Name: "qwen2.5:7b", ModifiedAt: "2024-12-05T09:30:00Z"},
			},
		})
	})

	models, err := p.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "llama3.2:latest", models[0].ID)
	assert.Equal(t, 2024, models[0].CreatedAt.Year())
}
