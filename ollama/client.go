package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/shelbeely/Conductor-sub001/provider"
)

const defaultBaseURL = "http://localhost:11434"

// client wraps the HTTP client for the Ollama API.
type client struct {
	baseURL    string
	httpClient *http.Client
}

// newClient creates a new Ollama client.
func newClient(baseURL string, httpClient *http.Client) *client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// chat sends a non-streaming chat request.
func (c *client) chat(ctx context.Context, req *chatRequest) (*chatResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	respBody, err := c.do(ctx, "POST", "/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var resp chatResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, &provider.MalformedResponseError{Provider: "ollama", Cause: err}
	}

	return &resp, nil
}

// tags fetches the locally available models.
func (c *client) tags(ctx context.Context) (*tagList, error) {
	respBody, err := c.do(ctx, "GET", "/api/tags", nil)
	if err != nil {
		return nil, err
	}

	var list tagList
	if err := json.Unmarshal(respBody, &list); err != nil {
		return nil, &provider.MalformedResponseError{Provider: "ollama", Cause: err}
	}

	return &list, nil
}

// do executes one API call and classifies failures. Ollama runs locally
// and has no auth or rate limiting, so anything beyond a clean 200 is
// either unreachability or a malformed exchange.
func (c *client) do(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &provider.UnreachableError{Provider: "ollama", Cause: err}
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &provider.UnreachableError{Provider: "ollama", Cause: err}
	}

	if httpResp.StatusCode != http.StatusOK {
		msg := string(respBody)
		var errResp errorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			msg = errResp.Error
		}
		if httpResp.StatusCode >= 500 {
			return nil, &provider.UnreachableError{
				Provider: "ollama",
				Cause:    fmt.Errorf("status %d: %s", httpResp.StatusCode, msg),
			}
		}
		return nil, &provider.MalformedResponseError{
			Provider: "ollama",
			Cause:    fmt.Errorf("status %d: %s", httpResp.StatusCode, msg),
		}
	}

	return respBody, nil
}
