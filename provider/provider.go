// Package provider defines the interface for generative backends.
package provider

import "context"

// Provider is the core abstraction over generative backends. All backend
// implementations satisfy this interface uniformly; callers never branch
// on backend identity.
type Provider interface {
	// Name returns the backend identifier (e.g., "openai", "ollama").
	Name() string

	// Generate executes a single model request.
	Generate(ctx context.Context, req *Request) (*Response, error)

	// ListModels returns the models the backend currently serves.
	ListModels(ctx context.Context) ([]ModelInfo, error)
}
