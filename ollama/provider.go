// Package ollama provides a local-inference backend for Conductor via an
// Ollama server. No credentials are required; the daemon either answers
// or it does not.
package ollama

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/shelbeely/Conductor-sub001/provider"
)

func init() {
	provider.Register("ollama", func() (provider.Provider, error) {
		return New()
	})
}

// Provider implements the Ollama API.
type Provider struct {
	client *client
}

// Option configures the Ollama provider.
type Option func(*providerConfig)

type providerConfig struct {
	baseURL    string
	httpClient *http.Client
}

// WithBaseURL sets a custom base URL.
func WithBaseURL(url string) Option {
	return func(c *providerConfig) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *providerConfig) {
		c.httpClient = client
	}
}

// New creates a new Ollama provider.
func New(opts ...Option) (*Provider, error) {
	cfg := &providerConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.baseURL == "" {
		cfg.baseURL = os.Getenv("OLLAMA_HOST")
	}

	return &Provider{
		client: newClient(cfg.baseURL, cfg.httpClient),
	}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return "ollama"
}

// Generate implements provider.Provider.
func (p *Provider) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	apiReq := p.buildRequest(req)

	apiResp, err := p.client.chat(ctx, apiReq)
	if err != nil {
		return nil, err
	}

	return p.convertResponse(apiResp), nil
}

// ListModels implements provider.Provider.
func (p *Provider) ListModels(ctx context.Context) ([]provider.ModelInfo, error) {
	list, err := p.client.tags(ctx)
	if err != nil {
		return nil, err
	}

	models := make([]provider.ModelInfo, 0, len(list.Models))
	for _, m := range list.Models {
		info := provider.ModelInfo{
			ID:          m.Name,
			DisplayName: m.Name,
		}
		if ts, err := time.Parse(time.RFC3339, m.ModifiedAt); err == nil {
			info.CreatedAt = ts
		}
		models = append(models, info)
	}
	return models, nil
}

// buildRequest converts a provider.Request to an Ollama API request.
func (p *Provider) buildRequest(req *provider.Request) *chatRequest {
	apiReq := &chatRequest{
		Model:    req.Model,
		Messages: make([]message, 0, len(req.Messages)),
		Stream:   false,
	}

	if req.Temperature != nil || req.MaxTokens != nil || len(req.StopSequences) > 0 {
		apiReq.Options = map[string]any{}
		if req.Temperature != nil {
			apiReq.Options["temperature"] = *req.Temperature
		}
		if req.MaxTokens != nil {
			apiReq.Options["num_predict"] = *req.MaxTokens
		}
		if len(req.StopSequences) > 0 {
			apiReq.Options["stop"] = req.StopSequences
		}
	}

	for _, msg := range req.Messages {
		apiMsg := message{
			Role:    string(msg.Role),
			Content: msg.Content,
		}

		for _, tc := range msg.ToolCalls {
			apiMsg.ToolCalls = append(apiMsg.ToolCalls, toolCall{
				Function: functionCall{
					Name:      tc.Name,
					Arguments: []byte(tc.Arguments),
				},
			})
		}

		apiReq.Messages = append(apiReq.Messages, apiMsg)
	}

	for _, tool := range req.Tools {
		apiReq.Tools = append(apiReq.Tools, toolDef{
			Type: "function",
			Function: functionDef{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		})
	}

	return apiReq
}

// convertResponse converts an Ollama API response to a provider.Response.
// Ollama does not assign tool call IDs; the orchestrator fills those in.
func (p *Provider) convertResponse(resp *chatResponse) *provider.Response {
	result := &provider.Response{
		Content:      resp.Message.Content,
		FinishReason: convertDoneReason(resp.DoneReason),
		Usage: provider.Usage{
			PromptTokens:     resp.PromptEvalCount,
			CompletionTokens: resp.EvalCount,
			TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
		},
	}

	for _, tc := range resp.Message.ToolCalls {
		result.ToolCalls = append(result.ToolCalls, provider.ToolCall{
			Name:      tc.Function.Name,
			Arguments: string(tc.Function.Arguments),
		})
	}

	if len(result.ToolCalls) > 0 {
		result.FinishReason = provider.FinishReasonToolCalls
	}

	return result
}

// convertDoneReason converts an Ollama done reason to a provider.FinishReason.
func convertDoneReason(reason string) provider.FinishReason {
	switch reason {
	case "length":
		return provider.FinishReasonLength
	default:
		return provider.FinishReasonStop
	}
}
