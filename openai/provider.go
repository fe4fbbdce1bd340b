// Package openai provides the OpenAI backend for Conductor.
package openai

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/shelbeely/Conductor-sub001/provider"
)

var errNoChoices = errors.New("response contained no choices")

func init() {
	provider.Register("openai", func() (provider.Provider, error) {
		return New()
	})
}

// Provider implements the OpenAI API.
type Provider struct {
	client *client
}

// Option configures the OpenAI provider.
type Option func(*providerConfig)

type providerConfig struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(c *providerConfig) {
		c.apiKey = key
	}
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

// New creates a new OpenAI provider.
func New(opts ...Option) (*Provider, error) {
	cfg := &providerConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	// Fall back to environment variable
	if cfg.apiKey == "" {
		cfg.apiKey = os.Getenv("OPENAI_API_KEY")
	}

	if cfg.apiKey == "" {
		return nil, &provider.AuthError{
			Provider: "openai",
			Message:  "API key required: set OPENAI_API_KEY or use WithAPIKey",
		}
	}

	return &Provider{
		client: newClient(cfg.apiKey, cfg.baseURL, cfg.httpClient),
	}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return "openai"
}

// Generate implements provider.Provider.
func (p *Provider) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	apiReq := p.buildRequest(req)

	apiResp, err := p.client.chatCompletion(ctx, apiReq)
	if err != nil {
		return nil, err
	}

	return p.convertResponse(apiResp)
}

// ListModels implements provider.Provider.
func (p *Provider) ListModels(ctx context.Context) ([]provider.ModelInfo, error) {
	list, err := p.client.listModels(ctx)
	if err != nil {
		return nil, err
	}

	models := make([]provider.ModelInfo, 0, len(list.Data))
	for _, m := range list.Data {
		models = append(models, provider.ModelInfo{
			ID:          m.ID,
			DisplayName: m.ID,
			CreatedAt:   time.Unix(m.Created, 0),
		})
	}
	return models, nil
}

// buildRequest converts a provider.Request to an OpenAI API request.
func (p *Provider) buildRequest(req *provider.Request) *chatCompletionRequest {
	apiReq := &chatCompletionRequest{
		Model:       req.Model,
		Messages:    make([]message, 0, len(req.Messages)),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stop:        req.StopSequences,
	}

	for _, msg := range req.Messages {
		apiMsg := message{
			Role:    string(msg.Role),
			Content: msg.Content,
		}

		if msg.ToolID != "" {
			apiMsg.ToolCallID = msg.ToolID
		}

		if len(msg.ToolCalls) > 0 {
			apiMsg.ToolCalls = make([]toolCall, len(msg.ToolCalls))
			for i, tc := range msg.ToolCalls {
				apiMsg.ToolCalls[i] = toolCall{
					ID:   tc.ID,
					Type: "function",
					Function: functionCall{
						Name:      tc.Name,
						Arguments: tc.Arguments,
					},
				}
			}
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

// convertResponse converts an OpenAI API response to a provider.Response.
func (p *Provider) convertResponse(resp *chatCompletionResponse) (*provider.Response, error) {
	if len(resp.Choices) == 0 {
		return nil, &provider.MalformedResponseError{
			Provider: "openai",
			Cause:    errNoChoices,
		}
	}

	choice := resp.Choices[0]
	result := &provider.Response{
		Content:      choice.Message.Content,
		FinishReason: convertFinishReason(choice.FinishReason),
		Usage: provider.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}

	for _, tc := range choice.Message.ToolCalls {
		result.ToolCalls = append(result.ToolCalls, provider.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}

	return result, nil
}

// convertFinishReason converts an OpenAI finish reason to a provider.FinishReason.
func convertFinishReason(reason string) provider.FinishReason {
	switch reason {
	case "tool_calls":
		return provider.FinishReasonToolCalls
	case "length":
		return provider.FinishReasonLength
	default:
		return provider.FinishReasonStop
	}
}
