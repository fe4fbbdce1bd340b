// Package dj schedules two-persona radio commentary between tracks.
package dj

import (
	"context"
	"io"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shelbeely/Conductor-sub001/player"
)

// ScriptLine is one speaker-tagged utterance.
type ScriptLine struct {
	Speaker string
	Text    string
}

// Script is an ordered two-persona commentary script.
type Script struct {
	Lines []ScriptLine
}

// Synthesizer is the external speech-synthesis collaborator. Failures
// are non-fatal to the scheduler.
type Synthesizer interface {
	Synthesize(ctx context.Context, script Script) error
}

// Commentator produces the raw commentary text. The orchestrator
// satisfies this in its restricted no-tools mode.
type Commentator interface {
	Commentary(ctx context.Context, personaA, personaB string, track player.Track) (string, error)
}

// Config holds the scheduler's tunables.
type Config struct {
	// WindowMin and WindowMax bound the pseudo-random trigger threshold,
	// inclusive. A new threshold is drawn after every successful cycle.
	WindowMin int
	WindowMax int
	PersonaA  string
	PersonaB  string
}

// DefaultConfig triggers commentary every 4 to 5 tracks.
func DefaultConfig() Config {
	return Config{
		WindowMin: 4,
		WindowMax: 5,
		PersonaA:  "Rex",
		PersonaB:  "Luna",
	}
}

// Scheduler counts track starts and, at a pseudo-random threshold,
// invokes the commentator and hands the parsed script to the
// synthesizer. Commentary is decorative: every failure is swallowed
// here and playback control is never blocked.
type Scheduler struct {
	mu          sync.Mutex
	enabled     bool
	counter     int
	threshold   int
	lastTrackID string
	triggering  bool
	pending     *player.Track

	cfg         Config
	rng         *rand.Rand
	commentator Commentator
	synth       Synthesizer
	log         *logrus.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(s *Scheduler) { s.cfg = cfg }
}

// WithLogger sets the logger.
func WithLogger(log *logrus.Logger) Option {
	return func(s *Scheduler) { s.log = log }
}

// WithSeed fixes the threshold-draw seed for reproducible tests.
func WithSeed(seed int64) Option {
	return func(s *Scheduler) { s.rng = rand.New(rand.NewSource(seed)) }
}

// New creates a disabled Scheduler.
func New(commentator Commentator, synth Synthesizer, opts ...Option) *Scheduler {
	s := &Scheduler{
		cfg:         DefaultConfig(),
		commentator: commentator,
		synth:       synth,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if s.log == nil {
		s.log = logrus.New()
		s.log.SetOutput(io.Discard)
	}
	if s.cfg.WindowMin < 1 {
		s.cfg.WindowMin = 1
	}
	if s.cfg.WindowMax < s.cfg.WindowMin {
		s.cfg.WindowMax = s.cfg.WindowMin
	}
	s.threshold = s.draw()
	return s
}

// Enable turns the scheduler on. The counter is not reset: evaluation
// resumes from however many tracks have already played.
func (s *Scheduler) Enable() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = true
}

// Disable turns the scheduler off. No further cycle triggers, even if
// the counter already exceeds the threshold.
func (s *Scheduler) Disable() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = false
}

// Enabled reports whether the scheduler is on.
func (s *Scheduler) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// TrackStarted feeds one "track started" event from the playback
// collaborator. Duplicate events for the same track are ignored. An
// event arriving while a cycle is in flight is queued, not processed
// concurrently.
func (s *Scheduler) TrackStarted(ctx context.Context, track player.Track) {
	s.handle(ctx, track, false)
}

func (s *Scheduler) handle(ctx context.Context, track player.Track, queued bool) {
	s.mu.Lock()
	if !s.enabled {
		s.mu.Unlock()
		return
	}
	if !queued {
		if track.ID == s.lastTrackID {
			s.mu.Unlock()
			return
		}
		s.lastTrackID = track.ID
		if s.triggering {
			s.pending = &track
			s.mu.Unlock()
			return
		}
	}
	s.counter++
	if s.counter < s.threshold {
		s.mu.Unlock()
		return
	}
	s.triggering = true
	s.mu.Unlock()

	s.runCycle(ctx, track)

	s.mu.Lock()
	s.triggering = false
	next := s.pending
	s.pending = nil
	s.mu.Unlock()

	if next != nil {
		s.handle(ctx, *next, true)
	}
}

// runCycle produces and voices one commentary script. On commentator
// failure the counter is retained so the next track re-attempts.
func (s *Scheduler) runCycle(ctx context.Context, track player.Track) {
	text, err := s.commentator.Commentary(ctx, s.cfg.PersonaA, s.cfg.PersonaB, track)
	if err != nil {
		s.log.WithError(err).WithField("track", track.ID).Warn("commentary cycle skipped")
		return
	}

	s.mu.Lock()
	s.counter = 0
	s.threshold = s.draw()
	s.mu.Unlock()

	script := ParseScript(text, s.cfg.PersonaA, s.cfg.PersonaB)
	if len(script.Lines) == 0 {
		return
	}
	if err := s.synth.Synthesize(ctx, script); err != nil {
		s.log.WithError(err).Warn("speech synthesis failed")
	}
}

// draw picks a new threshold uniformly from the configured window.
func (s *Scheduler) draw() int {
	return s.cfg.WindowMin + s.rng.Intn(s.cfg.WindowMax-s.cfg.WindowMin+1)
}

// ParseScript splits commentary text into speaker-tagged lines. Lines
// without a recognized "Name:" prefix continue the previous speaker;
// leading untagged text is assigned to persona A.
func ParseScript(text, personaA, personaB string) Script {
	var script Script
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		speaker, rest, ok := splitSpeaker(line, personaA, personaB)
		if ok {
			script.Lines = append(script.Lines, ScriptLine{Speaker: speaker, Text: rest})
			continue
		}
		if n := len(script.Lines); n > 0 {
			script.Lines[n-1].Text += " " + line
		} else {
			script.Lines = append(script.Lines, ScriptLine{Speaker: personaA, Text: line})
		}
	}
	return script
}

func splitSpeaker(line, personaA, personaB string) (string, string, bool) {
	for _, persona := range []string{personaA, personaB} {
		prefix := persona + ":"
		if strings.HasPrefix(line, prefix) {
			return persona, strings.TrimSpace(strings.TrimPrefix(line, prefix)), true
		}
	}
	return "", "", false
}
