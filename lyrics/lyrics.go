// Package lyrics fetches time-indexed lyric lines and resolves the
// current line for a playback offset.
package lyrics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shelbeely/Conductor-sub001/cache"
	"github.com/shelbeely/Conductor-sub001/player"
)

// SourceKind reports what kind of lyrics were resolved for a track.
type SourceKind string

const (
	SourceSynced SourceKind = "synced"
	SourcePlain  SourceKind = "plain"
	SourceNone   SourceKind = "none"
)

// Line is one synced lyric line.
type Line struct {
	TimestampMs int
	Text        string
}

// Document holds the resolved lyrics for a track.
type Document struct {
	TrackID   string
	Lines     []Line // when Source == SourceSynced
	Text      string // when Source == SourcePlain
	Source    SourceKind
	FetchedAt time.Time
}

// ErrNotFound is returned by a Source when it has nothing for a track.
var ErrNotFound = errors.New("lyrics not found")

// NonMonotonicError reports synced input whose timestamps go backwards.
// Such input is rejected rather than sorted so upstream data errors stay
// visible; Fetch logs it and falls back to plain lyrics.
type NonMonotonicError struct {
	TrackID string
	Index   int
}

func (e *NonMonotonicError) Error() string {
	return fmt.Sprintf("synced lyrics for %q: timestamp at line %d precedes the previous line", e.TrackID, e.Index)
}

// Source is the external lyrics collaborator.
type Source interface {
	// Synced returns time-indexed lines, or ErrNotFound.
	Synced(ctx context.Context, track player.Track) ([]Line, error)

	// Plain returns unsynced lyric text, or ErrNotFound.
	Plain(ctx context.Context, track player.Track) (string, error)
}

// Service resolves and caches lyrics documents.
type Service struct {
	src         Source
	cache       *cache.Cache[string, *Document]
	ttl         time.Duration
	negativeTTL time.Duration
	log         *logrus.Logger
	now         func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithTTL sets the cache TTL for resolved documents and the shorter TTL
// for negative ("none") results.
func WithTTL(ttl, negative time.Duration) Option {
	return func(s *Service) {
		s.ttl = ttl
		s.negativeTTL = negative
	}
}

// WithLogger sets the logger.
func WithLogger(log *logrus.Logger) Option {
	return func(s *Service) { s.log = log }
}

// NewService creates a Service over the given source.
func NewService(src Source, opts ...Option) *Service {
	s := &Service{
		src:         src,
		cache:       cache.New[string, *Document](256),
		ttl:         time.Hour,
		negativeTTL: 5 * time.Minute,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logrus.New()
		s.log.SetOutput(io.Discard)
	}
	return s
}

// Fetch resolves lyrics for a track: synced lines first, plain text as a
// fallback, a negative "none" document when both fail. Results are
// cached, including negative ones (with the shorter TTL) so a track that
// keeps failing is not re-queried on every tick.
func (s *Service) Fetch(ctx context.Context, track player.Track) (*Document, error) {
	if doc, ok := s.cache.Get(track.ID); ok {
		return doc, nil
	}

	lines, err := s.src.Synced(ctx, track)
	if err == nil {
		if idx, ok := monotonic(lines); !ok {
			// Rejected, never sorted: broken synced data must not reach
			// the line lookup. Treated like an unavailable synced source.
			s.log.WithError(&NonMonotonicError{TrackID: track.ID, Index: idx}).
				Warn("rejecting synced lyrics")
		} else {
			doc := &Document{
				TrackID:   track.ID,
				Lines:     lines,
				Source:    SourceSynced,
				FetchedAt: s.now(),
			}
			s.cache.Set(track.ID, doc, s.ttl)
			return doc, nil
		}
	} else if !errors.Is(err, ErrNotFound) {
		s.log.WithError(err).WithField("track", track.ID).Debug("synced lyrics lookup failed")
	}

	text, err := s.src.Plain(ctx, track)
	if err == nil && text != "" {
		doc := &Document{
			TrackID:   track.ID,
			Text:      text,
			Source:    SourcePlain,
			FetchedAt: s.now(),
		}
		s.cache.Set(track.ID, doc, s.ttl)
		return doc, nil
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		s.log.WithError(err).WithField("track", track.ID).Debug("plain lyrics lookup failed")
	}

	doc := &Document{
		TrackID:   track.ID,
		Source:    SourceNone,
		FetchedAt: s.now(),
	}
	s.cache.Set(track.ID, doc, s.negativeTTL)
	return doc, nil
}

// CurrentLine returns the index of the line whose timestamp is the
// greatest one at or before elapsedMs. The second return is false when
// the document has no synced lines or elapsedMs precedes the first line.
func CurrentLine(doc *Document, elapsedMs int) (int, bool) {
	if doc == nil || doc.Source != SourceSynced || len(doc.Lines) == 0 {
		return 0, false
	}
	if elapsedMs < doc.Lines[0].TimestampMs {
		return 0, false
	}
	// First line strictly after elapsedMs; the answer is the one before it.
	i := sort.Search(len(doc.Lines), func(i int) bool {
		return doc.Lines[i].TimestampMs > elapsedMs
	})
	return i - 1, true
}

// monotonic checks timestamps never decrease; returns the offending
// index otherwise.
func monotonic(lines []Line) (int, bool) {
	for i := 1; i < len(lines); i++ {
		if lines[i].TimestampMs < lines[i-1].TimestampMs {
			return i, false
		}
	}
	return 0, true
}
