package tools

import (
	"context"

	"github.com/shelbeely/Conductor-sub001/dj"
	"github.com/shelbeely/Conductor-sub001/llm"
)

// DJModeInput defines the arguments for the set_dj_mode tool.
type DJModeInput struct {
	Enabled bool `json:"enabled" jsonschema:"description=True to enable DJ commentary between tracks"`
}

// SetDJMode returns the set_dj_mode tool.
func SetDJMode(s *dj.Scheduler) llm.Tool {
	return llm.NewTool(
		"set_dj_mode",
		"Enable or disable the radio-style DJ commentary between tracks.",
		func(ctx context.Context, in DJModeInput) (string, error) {
			if in.Enabled {
				s.Enable()
				return "DJ mode enabled.", nil
			}
			s.Disable()
			return "DJ mode disabled.", nil
		},
	)
}

// LyricsInput defines the arguments for the toggle_lyrics tool.
type LyricsInput struct {
	Enabled bool `json:"enabled" jsonschema:"description=True to show synchronized lyrics"`
}

// ToggleLyrics returns the toggle_lyrics tool.
func ToggleLyrics(t LyricsToggler) llm.Tool {
	return llm.NewTool(
		"toggle_lyrics",
		"Show or hide the synchronized lyrics display.",
		func(ctx context.Context, in LyricsInput) (string, error) {
			t.SetLyricsEnabled(in.Enabled)
			if in.Enabled {
				return "Lyrics display enabled.", nil
			}
			return "Lyrics display disabled.", nil
		},
	)
}
