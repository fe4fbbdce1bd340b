// Package playlist turns mood/genre/activity/energy criteria into a
// ranked, bounded track selection.
package playlist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sort"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/shelbeely/Conductor-sub001/player"
)

// DefaultTargetLength is the playlist length used when criteria omit one.
const DefaultTargetLength = 20

// ErrNoCandidates is returned when no tracks match the criteria even
// after broadening. It is a result, not a failure: callers render it as
// a normal "no matching tracks" reply.
var ErrNoCandidates = errors.New("no matching tracks")

// Criteria describes the requested playlist.
type Criteria struct {
	Category     string // free text: mood, genre, activity, or energy level
	TargetLength int
	Shuffle      bool
}

// Searcher is the slice of the library collaborator the generator needs.
type Searcher interface {
	Search(ctx context.Context, field player.SearchField, term string) ([]player.Track, error)
}

// Candidate is a matched track plus how it matched: the index of the
// search query that first produced it and how many queries hit it.
type Candidate struct {
	Track      player.Track
	QueryIndex int
	Matches    int
}

// Ranker scores a candidate's relevance to the criteria. Higher is more
// relevant. The exact policy is pluggable; ties are always broken by
// library id so ordering stays deterministic.
type Ranker func(c Criteria, cand Candidate) float64

// defaultRanker favors tracks matched by earlier (more specific) queries
// and tracks matched by several queries.
func defaultRanker(c Criteria, cand Candidate) float64 {
	return float64(cand.Matches) - float64(cand.QueryIndex)*0.1
}

// Selection is the generated playlist.
type Selection struct {
	Tracks    []player.Track
	Requested int
}

// Shortfall reports whether fewer tracks than requested were found.
// The generator never pads a short selection.
func (s *Selection) Shortfall() bool {
	return len(s.Tracks) < s.Requested
}

// Generator derives search queries from criteria and assembles playlists.
type Generator struct {
	lib      Searcher
	rank     Ranker
	log      *logrus.Logger
	seedBase int64
	counter  atomic.Int64
}

// Option configures a Generator.
type Option func(*Generator)

// WithRanker replaces the relevance policy.
func WithRanker(r Ranker) Option {
	return func(g *Generator) { g.rank = r }
}

// WithLogger sets the logger.
func WithLogger(log *logrus.Logger) Option {
	return func(g *Generator) { g.log = log }
}

// WithSeed fixes the shuffle seed base so shuffled output is
// reproducible across runs.
func WithSeed(base int64) Option {
	return func(g *Generator) { g.seedBase = base }
}

// New creates a Generator over the given library searcher.
func New(lib Searcher, opts ...Option) *Generator {
	g := &Generator{
		lib:  lib,
		rank: defaultRanker,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.log == nil {
		g.log = logrus.New()
		g.log.SetOutput(io.Discard)
	}
	return g
}

// query is one search against the library.
type query struct {
	field player.SearchField
	term  string
}

// Generate assembles a playlist for the criteria. A first pass runs the
// category's mapped queries; if that yields fewer tracks than requested,
// one broadening pass drops the secondary filter before giving up.
func (g *Generator) Generate(ctx context.Context, c Criteria) (*Selection, error) {
	if c.TargetLength <= 0 {
		c.TargetLength = DefaultTargetLength
	}

	strategy, primary, broadened := plan(c.Category)
	g.log.WithFields(logrus.Fields{
		"category": c.Category,
		"strategy": strategy,
		"target":   c.TargetLength,
	}).Debug("generating playlist")

	seen := make(map[string]*Candidate)
	var order []string // insertion order, for stable iteration

	collect := func(queries []query, offset int) error {
		for i, q := range queries {
			tracks, err := g.lib.Search(ctx, q.field, q.term)
			if err != nil {
				return fmt.Errorf("searching %s=%q: %w", q.field, q.term, err)
			}
			for _, t := range tracks {
				if cand, ok := seen[t.ID]; ok {
					cand.Matches++
					continue
				}
				seen[t.ID] = &Candidate{Track: t, QueryIndex: offset + i, Matches: 1}
				order = append(order, t.ID)
			}
		}
		return nil
	}

	if err := collect(primary, 0); err != nil {
		return nil, err
	}
	if len(seen) < c.TargetLength {
		if err := collect(broadened, len(primary)); err != nil {
			return nil, err
		}
	}
	if len(seen) == 0 {
		return nil, ErrNoCandidates
	}

	cands := make([]Candidate, 0, len(order))
	for _, id := range order {
		cands = append(cands, *seen[id])
	}
	sort.Slice(cands, func(i, j int) bool {
		si, sj := g.rank(c, cands[i]), g.rank(c, cands[j])
		if si != sj {
			return si > sj
		}
		return cands[i].Track.ID < cands[j].Track.ID
	})

	n := c.TargetLength
	if n > len(cands) {
		n = len(cands)
	}
	tracks := make([]player.Track, n)
	for i := 0; i < n; i++ {
		tracks[i] = cands[i].Track
	}

	if c.Shuffle {
		rng := rand.New(rand.NewSource(g.seedBase + g.counter.Add(1)))
		rng.Shuffle(len(tracks), func(i, j int) {
			tracks[i], tracks[j] = tracks[j], tracks[i]
		})
	}

	return &Selection{Tracks: tracks, Requested: c.TargetLength}, nil
}
