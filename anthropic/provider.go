// Package anthropic provides the Anthropic backend for Conductor, built on
// the official SDK rather than a hand-rolled client.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/shelbeely/Conductor-sub001/provider"
)

const defaultMaxTokens = 4096

func init() {
	provider.Register("anthropic", func() (provider.Provider, error) {
		return New()
	})
}

// Provider implements the Anthropic API.
type Provider struct {
	client sdk.Client
}

// Option configures the Anthropic provider.
type Option func(*providerConfig)

type providerConfig struct {
	requestOpts []option.RequestOption
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(c *providerConfig) {
		c.requestOpts = append(c.requestOpts, option.WithAPIKey(key))
	}
}

// WithBaseURL sets a custom base URL.
func WithBaseURL(url string) Option {
	return func(c *providerConfig) {
		c.requestOpts = append(c.requestOpts, option.WithBaseURL(url))
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *providerConfig) {
		c.requestOpts = append(c.requestOpts, option.WithHTTPClient(client))
	}
}

// New creates a new Anthropic provider. The SDK reads ANTHROPIC_API_KEY
// from the environment when no key option is given. SDK-level retries are
// disabled; the caller owns the retry policy.
func New(opts ...Option) (*Provider, error) {
	cfg := &providerConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	requestOpts := append([]option.RequestOption{option.WithMaxRetries(0)}, cfg.requestOpts...)
	return &Provider{
		client: sdk.NewClient(requestOpts...),
	}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return "anthropic"
}

// Generate implements provider.Provider.
func (p *Provider) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	params, err := p.buildParams(req)
	if err != nil {
		return nil, err
	}

	msg, err := p.client.Messages.New(ctx, *params)
	if err != nil {
		return nil, classifyError(err)
	}

	return convertMessage(msg), nil
}

// ListModels implements provider.Provider.
func (p *Provider) ListModels(ctx context.Context) ([]provider.ModelInfo, error) {
	page, err := p.client.Models.List(ctx, sdk.ModelListParams{})
	if err != nil {
		return nil, classifyError(err)
	}

	models := make([]provider.ModelInfo, 0, len(page.Data))
	for _, m := range page.Data {
		models = append(models, provider.ModelInfo{
			ID:          string(m.ID),
			DisplayName: m.DisplayName,
			CreatedAt:   m.CreatedAt,
		})
	}
	return models, nil
}

// buildParams converts a provider.Request to SDK message params. Anthropic
// carries the system prompt out of band and tool results inside user
// messages, so the flat message list is regrouped here.
func (p *Provider) buildParams(req *provider.Request) (*sdk.MessageNewParams, error) {
	maxTokens := int64(defaultMaxTokens)
	if req.MaxTokens != nil {
		maxTokens = int64(*req.MaxTokens)
	}

	params := &sdk.MessageNewParams{
		Model:     sdk.Model(req.Model),
		MaxTokens: maxTokens,
	}
	if req.Temperature != nil {
		params.Temperature = sdk.Float(*req.Temperature)
	}
	if len(req.StopSequences) > 0 {
		params.StopSequences = req.StopSequences
	}

	for _, msg := range req.Messages {
		switch msg.Role {
		case provider.RoleSystem:
			params.System = append(params.System, sdk.TextBlockParam{Text: msg.Content})
		case provider.RoleUser:
			params.Messages = append(params.Messages,
				sdk.NewUserMessage(sdk.NewTextBlock(msg.Content)))
		case provider.RoleAssistant:
			blocks := make([]sdk.ContentBlockParamUnion, 0, 1+len(msg.ToolCalls))
			if msg.Content != "" {
				blocks = append(blocks, sdk.NewTextBlock(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				blocks = append(blocks,
					sdk.NewToolUseBlock(tc.ID, json.RawMessage(tc.Arguments), tc.Name))
			}
			params.Messages = append(params.Messages, sdk.NewAssistantMessage(blocks...))
		case provider.RoleTool:
			params.Messages = append(params.Messages,
				sdk.NewUserMessage(sdk.NewToolResultBlock(msg.ToolID, msg.Content, false)))
		default:
			return nil, fmt.Errorf("unsupported role %q", msg.Role)
		}
	}

	for _, tool := range req.Tools {
		schema, err := convertSchema(tool.Parameters)
		if err != nil {
			return nil, fmt.Errorf("tool %s: %w", tool.Name, err)
		}
		params.Tools = append(params.Tools, sdk.ToolUnionParam{
			OfTool: &sdk.ToolParam{
				Name:        tool.Name,
				Description: sdk.String(tool.Description),
				InputSchema: schema,
			},
		})
	}

	return params, nil
}

// convertSchema splits a JSON Schema document into the SDK's input schema
// shape.
func convertSchema(raw json.RawMessage) (sdk.ToolInputSchemaParam, error) {
	var doc struct {
		Properties json.RawMessage `json:"properties"`
		Required   []string        `json:"required"`
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &doc); err != nil {
			return sdk.ToolInputSchemaParam{}, fmt.Errorf("parsing schema: %w", err)
		}
	}

	schema := sdk.ToolInputSchemaParam{Required: doc.Required}
	if len(doc.Properties) > 0 {
		var props map[string]any
		if err := json.Unmarshal(doc.Properties, &props); err != nil {
			return sdk.ToolInputSchemaParam{}, fmt.Errorf("parsing schema properties: %w", err)
		}
		schema.Properties = props
	}
	return schema, nil
}

// convertMessage converts an SDK message to a provider.Response.
func convertMessage(msg *sdk.Message) *provider.Response {
	result := &provider.Response{
		FinishReason: convertStopReason(msg.StopReason),
		Usage: provider.Usage{
			PromptTokens:     int(msg.Usage.InputTokens),
			CompletionTokens: int(msg.Usage.OutputTokens),
			TotalTokens:      int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
	}

	for _, block := range msg.Content {
		switch variant := block.AsAny().(type) {
		case sdk.TextBlock:
			result.Content += variant.Text
		case sdk.ToolUseBlock:
			result.ToolCalls = append(result.ToolCalls, provider.ToolCall{
				ID:        variant.ID,
				Name:      variant.Name,
				Arguments: string(variant.Input),
			})
		}
	}

	return result
}

// convertStopReason converts an SDK stop reason to a provider.FinishReason.
func convertStopReason(reason sdk.StopReason) provider.FinishReason {
	switch reason {
	case sdk.StopReasonToolUse:
		return provider.FinishReasonToolCalls
	case sdk.StopReasonMaxTokens:
		return provider.FinishReasonLength
	default:
		return provider.FinishReasonStop
	}
}

// classifyError maps an SDK error to a typed provider failure.
func classifyError(err error) error {
	var apiErr *sdk.Error
	if !errors.As(err, &apiErr) {
		return &provider.UnreachableError{Provider: "anthropic", Cause: err}
	}

	switch {
	case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
		return &provider.AuthError{Provider: "anthropic", Message: apiErr.Error()}
	case apiErr.StatusCode == http.StatusTooManyRequests:
		return &provider.RateLimitError{
			Provider:   "anthropic",
			RetryAfter: retryAfter(apiErr),
		}
	case apiErr.StatusCode >= 500:
		return &provider.UnreachableError{Provider: "anthropic", Cause: apiErr}
	default:
		return &provider.MalformedResponseError{Provider: "anthropic", Cause: apiErr}
	}
}

// retryAfter reads the retry-after header from an API error, in seconds.
func retryAfter(apiErr *sdk.Error) time.Duration {
	if apiErr.Response == nil {
		return 0
	}
	secs, err := strconv.Atoi(apiErr.Response.Header.Get("Retry-After"))
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
