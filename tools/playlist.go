package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/shelbeely/Conductor-sub001/llm"
	"github.com/shelbeely/Conductor-sub001/player"
	"github.com/shelbeely/Conductor-sub001/playlist"
)

// PlaylistInput defines the arguments for the generate_playlist tool.
type PlaylistInput struct {
	Category string `json:"category" jsonschema:"required,description=Mood / genre / activity / energy level to build the playlist around"`
	Length   int    `json:"length,omitempty" jsonschema:"description=Target number of tracks; omit or pass 0 for the default of 20"`
	Shuffle  bool   `json:"shuffle,omitempty" jsonschema:"description=Shuffle the generated order"`
	Replace  bool   `json:"replace,omitempty" jsonschema:"description=Clear the queue before adding the playlist"`
}

// GeneratePlaylist returns the generate_playlist tool. A generation that
// finds no candidates reports "no matching tracks" as its result text so
// the model can relay it; it is not a tool failure.
func GeneratePlaylist(g *playlist.Generator, p player.Player) llm.Tool {
	return llm.NewTool(
		"generate_playlist",
		"Build a playlist for a mood, genre, activity, or energy level and add it to the queue.",
		func(ctx context.Context, in PlaylistInput) (string, error) {
			sel, err := g.Generate(ctx, playlist.Criteria{
				Category:     in.Category,
				TargetLength: in.Length,
				Shuffle:      in.Shuffle,
			})
			if errors.Is(err, playlist.ErrNoCandidates) {
				return fmt.Sprintf("No tracks in the library match %q.", in.Category), nil
			}
			if err != nil {
				return "", fmt.Errorf("generating playlist: %w", err)
			}

			if in.Replace {
				if err := p.Clear(ctx); err != nil {
					return "", fmt.Errorf("clearing queue: %w", err)
				}
			}
			ids := make([]string, len(sel.Tracks))
			for i, t := range sel.Tracks {
				ids[i] = t.ID
			}
			if err := p.Add(ctx, ids...); err != nil {
				return "", fmt.Errorf("queueing playlist: %w", err)
			}

			msg := fmt.Sprintf("Queued %d tracks for %q.", len(sel.Tracks), in.Category)
			if sel.Shortfall() {
				msg = fmt.Sprintf("Only %d of the requested %d tracks matched %q; queued all of them.",
					len(sel.Tracks), sel.Requested, in.Category)
			}
			return msg, nil
		},
	).WithCheck(func(in PlaylistInput) error {
		if in.Category == "" {
			return fmt.Errorf("category must not be empty")
		}
		if in.Length < 0 {
			return fmt.Errorf("length must not be negative, got %d", in.Length)
		}
		if in.Length > 500 {
			return fmt.Errorf("length must be at most 500, got %d", in.Length)
		}
		return nil
	})
}
