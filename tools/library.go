package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/shelbeely/Conductor-sub001/llm"
	"github.com/shelbeely/Conductor-sub001/player"
)

// SearchInput defines the arguments for the search_library tool.
type SearchInput struct {
	Field string `json:"field" jsonschema:"required,description=One of artist / album / title / genre / any"`
	Term  string `json:"term" jsonschema:"required,description=Text to search for"`
}

var searchFields = map[string]player.SearchField{
	"artist": player.FieldArtist,
	"album":  player.FieldAlbum,
	"title":  player.FieldTitle,
	"genre":  player.FieldGenre,
	"any":    player.FieldAny,
}

// SearchLibrary returns the search_library tool.
func SearchLibrary(p player.Player) llm.Tool {
	return llm.NewTool(
		"search_library",
		"Search the music library by artist, album, title, genre, or any field. Returns matching tracks with their ids.",
		func(ctx context.Context, in SearchInput) (string, error) {
			tracks, err := p.Search(ctx, searchFields[strings.ToLower(in.Field)], in.Term)
			if err != nil {
				return "", fmt.Errorf("searching library: %w", err)
			}
			if len(tracks) == 0 {
				return fmt.Sprintf("No tracks found for %s=%q.", in.Field, in.Term), nil
			}
			return formatTracks(tracks), nil
		},
	).WithCheck(func(in SearchInput) error {
		if _, ok := searchFields[strings.ToLower(in.Field)]; !ok {
			return fmt.Errorf("field must be one of artist, album, title, genre, any; got %q", in.Field)
		}
		if strings.TrimSpace(in.Term) == "" {
			return fmt.Errorf("term must not be empty")
		}
		return nil
	})
}

// QueueInput defines the arguments for the queue_tracks tool.
type QueueInput struct {
	TrackIDs []string `json:"track_ids" jsonschema:"required,description=Library ids of the tracks to append to the queue"`
}

// QueueTracks returns the queue_tracks tool.
func QueueTracks(p player.Player) llm.Tool {
	return llm.NewTool(
		"queue_tracks",
		"Append tracks to the play queue by library id.",
		func(ctx context.Context, in QueueInput) (string, error) {
			if err := p.Add(ctx, in.TrackIDs...); err != nil {
				return "", fmt.Errorf("queueing tracks: %w", err)
			}
			return fmt.Sprintf("Added %d track(s) to the queue.", len(in.TrackIDs)), nil
		},
	).WithCheck(func(in QueueInput) error {
		if len(in.TrackIDs) == 0 {
			return fmt.Errorf("track_ids must not be empty")
		}
		return nil
	})
}

// GetQueue returns the get_queue tool.
func GetQueue(p player.Player) llm.Tool {
	return llm.NewTool(
		"get_queue",
		"List the current play queue in order.",
		func(ctx context.Context, in struct{}) (string, error) {
			tracks, err := p.Queue(ctx)
			if err != nil {
				return "", fmt.Errorf("reading queue: %w", err)
			}
			if len(tracks) == 0 {
				return "The queue is empty.", nil
			}
			return formatTracks(tracks), nil
		},
	)
}

// ClearQueue returns the clear_queue tool.
func ClearQueue(p player.Player) llm.Tool {
	return llm.NewTool(
		"clear_queue",
		"Remove every track from the play queue.",
		func(ctx context.Context, in struct{}) (string, error) {
			if err := p.Clear(ctx); err != nil {
				return "", fmt.Errorf("clearing queue: %w", err)
			}
			return "Queue cleared.", nil
		},
	)
}

func formatTracks(tracks []player.Track) string {
	var b strings.Builder
	for i, t := range tracks {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d. %s - %s [%s]", i+1, t.Artist, t.Title, t.ID)
	}
	return b.String()
}
