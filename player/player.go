// Package player defines the capability interface for the external
// playback/library daemon. The core consumes this interface only; the
// transport client lives outside the module.
package player

import (
	"context"
	"errors"
	"time"
)

// ErrUnreachable signals a lost daemon connection. Implementations wrap
// it so tool executors can surface a distinguishable failure.
var ErrUnreachable = errors.New("player unreachable")

// Track is one library entry. Opaque beyond what filtering needs.
type Track struct {
	ID       string // library-relative identifier
	Title    string
	Artist   string
	Album    string
	Genre    string
	Duration time.Duration
}

// State is the transport state of the daemon.
type State string

const (
	StatePlaying State = "playing"
	StatePaused  State = "paused"
	StateStopped State = "stopped"
)

// Status is a snapshot of the daemon's playback state.
type Status struct {
	State       State
	Current     *Track
	Elapsed     time.Duration
	Volume      int
	Repeat      bool
	Random      bool
	Single      bool
	Consume     bool
	QueueLength int
	QueuePos    int // -1 when nothing is queued up
}

// Setting names a toggleable playback option.
type Setting string

const (
	SettingRepeat  Setting = "repeat"
	SettingRandom  Setting = "random"
	SettingSingle  Setting = "single"
	SettingConsume Setting = "consume"
)

// SearchField names a library field to match against.
type SearchField string

const (
	FieldArtist SearchField = "artist"
	FieldAlbum  SearchField = "album"
	FieldTitle  SearchField = "title"
	FieldGenre  SearchField = "genre"
	FieldAny    SearchField = "any"
)

// Player is the playback/library collaborator.
type Player interface {
	// Status returns the current playback snapshot.
	Status(ctx context.Context) (*Status, error)

	// Play starts playback at the given queue position, or resumes when
	// pos is negative.
	Play(ctx context.Context, pos int) error
	Pause(ctx context.Context) error
	Stop(ctx context.Context) error
	Next(ctx context.Context) error
	Previous(ctx context.Context) error

	// Seek moves to an absolute offset within the current track.
	Seek(ctx context.Context, offset time.Duration) error

	// SetVolume sets the output volume to a percentage in [0,100].
	SetVolume(ctx context.Context, percent int) error

	// SetSetting toggles a playback option.
	SetSetting(ctx context.Context, setting Setting, enabled bool) error

	// Queue returns the current play queue in order.
	Queue(ctx context.Context) ([]Track, error)

	// Add appends tracks to the queue by library id.
	Add(ctx context.Context, ids ...string) error

	// Remove deletes the track at the given queue position.
	Remove(ctx context.Context, pos int) error

	// Move relocates a queued track from one position to another.
	Move(ctx context.Context, from, to int) error

	// Clear empties the queue.
	Clear(ctx context.Context) error

	// Search matches library tracks on a single field.
	Search(ctx context.Context, field SearchField, term string) ([]Track, error)
}
