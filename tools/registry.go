// Package tools declares the fixed, closed set of operations the model
// can invoke. Executors delegate to the external collaborators and wrap
// every failure into a readable tool error; the orchestrator always gets
// a result, never a panic.
package tools

import (
	"github.com/shelbeely/Conductor-sub001/catalog"
	"github.com/shelbeely/Conductor-sub001/dj"
	"github.com/shelbeely/Conductor-sub001/llm"
	"github.com/shelbeely/Conductor-sub001/player"
	"github.com/shelbeely/Conductor-sub001/playlist"
)

// LyricsToggler is the slice of the session the lyrics tool needs.
type LyricsToggler interface {
	SetLyricsEnabled(enabled bool)
}

// Deps are the collaborators backing the tool executors.
type Deps struct {
	Player   player.Player
	Playlist *playlist.Generator
	Catalog  *catalog.Catalog
	DJ       *dj.Scheduler
	Lyrics   LyricsToggler
}

// All returns the full tool set. The set is fixed at startup; nothing
// registers tools afterwards.
func All(deps Deps) []llm.Tool {
	return []llm.Tool{
		SearchLibrary(deps.Player),
		Play(deps.Player),
		ControlPlayback(deps.Player),
		SetVolume(deps.Player),
		ToggleSetting(deps.Player),
		QueueTracks(deps.Player),
		GetQueue(deps.Player),
		ClearQueue(deps.Player),
		GeneratePlaylist(deps.Playlist, deps.Player),
		ListModels(deps.Catalog),
		SetModel(deps.Catalog),
		SetDJMode(deps.DJ),
		ToggleLyrics(deps.Lyrics),
	}
}
