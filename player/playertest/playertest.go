// Package playertest provides an in-memory Player for tests and examples.
package playertest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shelbeely/Conductor-sub001/player"
)

// Fake is an in-memory playback daemon. It is safe for concurrent use.
type Fake struct {
	mu      sync.Mutex
	library []player.Track
	queue   []player.Track
	status  player.Status

	// Down simulates a lost connection: every call fails with
	// player.ErrUnreachable while set.
	Down bool
}

// New creates a Fake with the given library.
func New(library ...player.Track) *Fake {
	return &Fake{
		library: library,
		status: player.Status{
			State:    player.StateStopped,
			Volume:   50,
			QueuePos: -1,
		},
	}
}

func (f *Fake) check() error {
	if f.Down {
		return player.ErrUnreachable
	}
	return nil
}

func (f *Fake) Status(ctx context.Context) (*player.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return nil, err
	}
	st := f.status
	st.QueueLength = len(f.queue)
	return &st, nil
}

func (f *Fake) Play(ctx context.Context, pos int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return err
	}
	if pos >= 0 && pos < len(f.queue) {
		f.status.QueuePos = pos
		t := f.queue[pos]
		f.status.Current = &t
	}
	f.status.State = player.StatePlaying
	return nil
}

func (f *Fake) Pause(ctx context.Context) error {
	return f.setState(player.StatePaused)
}

func (f *Fake) Stop(ctx context.Context) error {
	return f.setState(player.StateStopped)
}

func (f *Fake) setState(s player.State) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return err
	}
	f.status.State = s
	return nil
}

func (f *Fake) Next(ctx context.Context) error {
	return f.step(1)
}

func (f *Fake) Previous(ctx context.Context) error {
	return f.step(-1)
}

func (f *Fake) step(delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return err
	}
	pos := f.status.QueuePos + delta
	if pos >= 0 && pos < len(f.queue) {
		f.status.QueuePos = pos
		t := f.queue[pos]
		f.status.Current = &t
	}
	return nil
}

func (f *Fake) Seek(ctx context.Context, offset time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return err
	}
	f.status.Elapsed = offset
	return nil
}

func (f *Fake) SetVolume(ctx context.Context, percent int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return err
	}
	f.status.Volume = percent
	return nil
}

func (f *Fake) SetSetting(ctx context.Context, setting player.Setting, enabled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return err
	}
	switch setting {
	case player.SettingRepeat:
		f.status.Repeat = enabled
	case player.SettingRandom:
		f.status.Random = enabled
	case player.SettingSingle:
		f.status.Single = enabled
	case player.SettingConsume:
		f.status.Consume = enabled
	}
	return nil
}

func (f *Fake) Queue(ctx context.Context) ([]player.Track, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return nil, err
	}
	out := make([]player.Track, len(f.queue))
	copy(out, f.queue)
	return out, nil
}

func (f *Fake) Add(ctx context.Context, ids ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return err
	}
	for _, id := range ids {
		for _, t := range f.library {
			if t.ID == id {
				f.queue = append(f.queue, t)
				break
			}
		}
	}
	return nil
}

func (f *Fake) Remove(ctx context.Context, pos int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return err
	}
	if pos < 0 || pos >= len(f.queue) {
		return nil
	}
	f.queue = append(f.queue[:pos], f.queue[pos+1:]...)
	if f.status.QueuePos >= len(f.queue) {
		f.status.QueuePos = len(f.queue) - 1
	}
	return nil
}

func (f *Fake) Move(ctx context.Context, from, to int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return err
	}
	if from < 0 || from >= len(f.queue) || to < 0 || to >= len(f.queue) {
		return nil
	}
	t := f.queue[from]
	f.queue = append(f.queue[:from], f.queue[from+1:]...)
	f.queue = append(f.queue[:to], append([]player.Track{t}, f.queue[to:]...)...)
	return nil
}

func (f *Fake) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return err
	}
	f.queue = nil
	f.status.QueuePos = -1
	return nil
}

func (f *Fake) Search(ctx context.Context, field player.SearchField, term string) ([]player.Track, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return nil, err
	}
	term = strings.ToLower(term)
	var out []player.Track
	for _, t := range f.library {
		if matches(t, field, term) {
			out = append(out, t)
		}
	}
	return out, nil
}

func matches(t player.Track, field player.SearchField, term string) bool {
	contains := func(s string) bool {
		return strings.Contains(strings.ToLower(s), term)
	}
	switch field {
	case player.FieldArtist:
		return contains(t.Artist)
	case player.FieldAlbum:
		return contains(t.Album)
	case player.FieldTitle:
		return contains(t.Title)
	case player.FieldGenre:
		return contains(t.Genre)
	default:
		return contains(t.Artist) || contains(t.Album) || contains(t.Title) || contains(t.Genre)
	}
}
