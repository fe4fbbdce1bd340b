package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/shelbeely/Conductor-sub001/provider"
)

const defaultBaseURL = "https://api.openai.com/v1"

// client wraps the HTTP client for OpenAI API calls.
type client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// newClient creates a new OpenAI client.
func newClient(apiKey, baseURL string, httpClient *http.Client) *client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// chatCompletion sends a chat completion request.
func (c *client) chatCompletion(ctx context.Context, req *chatCompletionRequest) (*chatCompletionResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	respBody, err := c.do(ctx, "POST", "/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var resp chatCompletionResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, &provider.MalformedResponseError{Provider: "openai", Cause: err}
	}

	return &resp, nil
}

// listModels fetches the models the account can use.
func (c *client) listModels(ctx context.Context) (*modelList, error) {
	respBody, err := c.do(ctx, "GET", "/models", nil)
	if err != nil {
		return nil, err
	}

	var list modelList
	if err := json.Unmarshal(respBody, &list); err != nil {
		return nil, &provider.MalformedResponseError{Provider: "openai", Cause: err}
	}

	return &list, nil
}

// do executes one API call and classifies failures.
func (c *client) do(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &provider.UnreachableError{Provider: "openai", Cause: err}
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &provider.UnreachableError{Provider: "openai", Cause: err}
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, c.classifyError(httpResp, respBody)
	}

	return respBody, nil
}

// classifyError maps an API error response to a typed provider failure.
func (c *client) classifyError(resp *http.Response, body []byte) error {
	msg := string(body)
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		msg = errResp.Error.Message
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &provider.AuthError{Provider: "openai", Message: msg}
	case resp.StatusCode == http.StatusTooManyRequests:
		return &provider.RateLimitError{
			Provider:   "openai",
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	case resp.StatusCode >= 500:
		return &provider.UnreachableError{
			Provider: "openai",
			Cause:    fmt.Errorf("status %d: %s", resp.StatusCode, msg),
		}
	default:
		return &provider.MalformedResponseError{
			Provider: "openai",
			Cause:    fmt.Errorf("status %d: %s", resp.StatusCode, msg),
		}
	}
}

// parseRetryAfter interprets a Retry-After header given in seconds.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	secs, err := strconv.Atoi(header)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
