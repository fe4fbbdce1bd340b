package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/shelbeely/Conductor-sub001/catalog"
	"github.com/shelbeely/Conductor-sub001/llm"
)

// ListModels returns the list_models tool.
func ListModels(c *catalog.Catalog) llm.Tool {
	return llm.NewTool(
		"list_models",
		"List the models the active provider serves, marking the current one.",
		func(ctx context.Context, in struct{}) (string, error) {
			models, err := c.ListModels(ctx)
			if err != nil {
				return "", fmt.Errorf("listing models: %w", err)
			}
			if len(models) == 0 {
				return "The provider reports no models.", nil
			}
			current := c.CurrentModel()
			var b strings.Builder
			for i, m := range models {
				if i > 0 {
					b.WriteString("\n")
				}
				b.WriteString(m.ID)
				if m.ID == current {
					b.WriteString(" (current)")
				}
			}
			return b.String(), nil
		},
	)
}

// SetModelInput defines the arguments for the set_model tool.
type SetModelInput struct {
	Model string `json:"model" jsonschema:"required,description=Model id to switch the session to"`
}

// SetModel returns the set_model tool.
func SetModel(c *catalog.Catalog) llm.Tool {
	return llm.NewTool(
		"set_model",
		"Switch the session to another model served by the active provider.",
		func(ctx context.Context, in SetModelInput) (string, error) {
			if err := c.SetModel(ctx, in.Model); err != nil {
				return "", fmt.Errorf("setting model: %w", err)
			}
			return fmt.Sprintf("Model switched to %s.", in.Model), nil
		},
	).WithCheck(func(in SetModelInput) error {
		if strings.TrimSpace(in.Model) == "" {
			return fmt.Errorf("model must not be empty")
		}
		return nil
	})
}
