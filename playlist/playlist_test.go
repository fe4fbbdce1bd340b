package playlist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelbeely/Conductor-sub001/player"
	"github.com/shelbeely/Conductor-sub001/player/playertest"
)

func rockLibrary() *playertest.Fake {
	return playertest.New(
		player.Track{ID: "r1", Title: "Thunder Road", Artist: "The Volts", Genre: "rock"},
		player.Track{ID: "r2", Title: "Static", Artist: "The Volts", Genre: "rock"},
		player.Track{ID: "e1", Title: "Circuit", Artist: "Wavetable", Genre: "electronic"},
		player.Track{ID: "h1", Title: "Blocks", Artist: "MC Grid", Genre: "hip-hop"},
		player.Track{ID: "j1", Title: "Blue Hour", Artist: "Night Quartet", Genre: "jazz"},
		player.Track{ID: "a1", Title: "Drift", Artist: "Stillness", Genre: "ambient"},
	)
}

func TestGenerate_GenreCategory(t *testing.T) {
	g := New(rockLibrary())

	sel, err := g.Generate(context.Background(), Criteria{Category: "jazz", TargetLength: 5})
	require.NoError(t, err)
	require.Len(t, sel.Tracks, 1)
	assert.Equal(t, "j1", sel.Tracks[0].ID)
	assert.True(t, sel.Shortfall())
}

func TestGenerate_ActivityNeverFabricates(t *testing.T) {
	g := New(rockLibrary())

	// "workout" maps to rock/electronic/hip-hop: 4 matching tracks exist.
	sel, err := g.Generate(context.Background(), Criteria{Category: "workout", TargetLength: 20})
	require.NoError(t, err)
	assert.Len(t, sel.Tracks, 4)
	assert.Equal(t, 20, sel.Requested)
	assert.True(t, sel.Shortfall(), "short library must report a shortfall, never pad")
}

func TestGenerate_DeterministicOrdering(t *testing.T) {
	g := New(rockLibrary())
	c := Criteria{Category: "workout", TargetLength: 10}

	first, err := g.Generate(context.Background(), c)
	require.NoError(t, err)
	second, err := g.Generate(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, first.Tracks, second.Tracks)

	// Rock tracks rank ahead of later-mapped genres; ties break by id.
	assert.Equal(t, "r1", first.Tracks[0].ID)
	assert.Equal(t, "r2", first.Tracks[1].ID)
}

func TestGenerate_NoCandidates(t *testing.T) {
	g := New(playertest.New())

	_, err := g.Generate(context.Background(), Criteria{Category: "zydeco"})
	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestGenerate_BroadensOnce(t *testing.T) {
	lib := playertest.New(
		// No genre tag matches "garage", but the title does.
		player.Track{ID: "g1", Title: "Garage Days", Artist: "Tin Shed", Genre: "rock"},
	)
	g := New(lib)

	sel, err := g.Generate(context.Background(), Criteria{Category: "garage", TargetLength: 5})
	require.NoError(t, err)
	require.Len(t, sel.Tracks, 1)
	assert.Equal(t, "g1", sel.Tracks[0].ID)
}

func TestGenerate_ShuffleReproducibleWithSeed(t *testing.T) {
	c := Criteria{Category: "workout", TargetLength: 10, Shuffle: true}

	a := New(rockLibrary(), WithSeed(42))
	b := New(rockLibrary(), WithSeed(42))

	selA, err := a.Generate(context.Background(), c)
	require.NoError(t, err)
	selB, err := b.Generate(context.Background(), c)
	require.NoError(t, err)

	assert.Equal(t, selA.Tracks, selB.Tracks, "same seed and call count gives same permutation")
}

func TestGenerate_DefaultTargetLength(t *testing.T) {
	g := New(rockLibrary())

	sel, err := g.Generate(context.Background(), Criteria{Category: "rock"})
	require.NoError(t, err)
	assert.Equal(t, DefaultTargetLength, sel.Requested)
}

func TestGenerate_CustomRanker(t *testing.T) {
	// Rank purely by title length, descending.
	byTitle := func(c Criteria, cand Candidate) float64 {
		return float64(len(cand.Track.Title))
	}
	g := New(rockLibrary(), WithRanker(byTitle))

	sel, err := g.Generate(context.Background(), Criteria{Category: "rock", TargetLength: 2})
	require.NoError(t, err)
	require.Len(t, sel.Tracks, 2)
	assert.Equal(t, "Thunder Road", sel.Tracks[0].Title)
}

func TestPlan_Strategies(t *testing.T) {
	tests := []struct {
		category string
		want     Strategy
	}{
		{"jazz", StrategyGenre},
		{"chill", StrategyMood},
		{"workout", StrategyActivity},
		{"high energy", StrategyEnergy},
		{"unheard-of", StrategyGenre},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			strategy, primary, broadened := plan(tt.category)
			assert.Equal(t, tt.want, strategy)
			assert.NotEmpty(t, primary)
			assert.NotEmpty(t, broadened)
		})
	}
}
