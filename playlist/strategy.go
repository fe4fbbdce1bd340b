package playlist

import (
	"strings"

	"github.com/shelbeely/Conductor-sub001/player"
)

// Strategy names which interpretation of the category drove the search.
type Strategy string

const (
	StrategyGenre    Strategy = "genre"
	StrategyMood     Strategy = "mood"
	StrategyActivity Strategy = "activity"
	StrategyEnergy   Strategy = "energy"
)

// genres recognized directly as library genre terms.
var genres = map[string]bool{
	"jazz": true, "rock": true, "metal": true, "classical": true,
	"hip-hop": true, "hip hop": true, "rap": true, "electronic": true,
	"folk": true, "country": true, "blues": true, "pop": true,
	"punk": true, "reggae": true, "soul": true, "funk": true,
	"ambient": true, "techno": true, "house": true, "indie": true,
	"disco": true, "r&b": true, "lo-fi": true, "lofi": true,
}

// moods maps mood words to genre terms, most representative first.
var moods = map[string][]string{
	"happy":      {"pop", "funk", "disco"},
	"upbeat":     {"pop", "dance", "funk"},
	"sad":        {"blues", "folk", "soul"},
	"melancholy": {"folk", "ambient", "blues"},
	"chill":      {"ambient", "lo-fi", "jazz"},
	"mellow":     {"jazz", "soul", "folk"},
	"relaxing":   {"ambient", "classical", "jazz"},
	"angry":      {"metal", "punk", "rock"},
	"romantic":   {"soul", "jazz", "r&b"},
}

// activities maps activities to genre terms.
var activities = map[string][]string{
	"workout":  {"rock", "electronic", "hip-hop"},
	"gym":      {"electronic", "hip-hop", "rock"},
	"running":  {"electronic", "rock", "dance"},
	"study":    {"classical", "ambient", "lo-fi"},
	"studying": {"classical", "ambient", "lo-fi"},
	"focus":    {"ambient", "classical", "lo-fi"},
	"sleep":    {"ambient", "classical"},
	"party":    {"dance", "pop", "hip-hop"},
	"driving":  {"rock", "pop", "indie"},
	"cooking":  {"jazz", "soul", "funk"},
}

// energyLevels maps energy descriptions to genre terms.
var energyLevels = map[string][]string{
	"high energy": {"metal", "punk", "electronic"},
	"high-energy": {"metal", "punk", "electronic"},
	"energetic":   {"rock", "dance", "electronic"},
	"intense":     {"metal", "techno", "punk"},
	"low energy":  {"ambient", "folk", "classical"},
	"low-energy":  {"ambient", "folk", "classical"},
	"calm":        {"ambient", "classical", "folk"},
	"quiet":       {"ambient", "folk"},
}

// plan maps a free-text category to search queries. Each strategy
// produces a distinct set of primary queries; the broadened queries
// drop the field filter and match the raw category anywhere.
func plan(category string) (Strategy, []query, []query) {
	cat := strings.ToLower(strings.TrimSpace(category))
	broadened := []query{{field: player.FieldAny, term: cat}}

	if genres[cat] {
		return StrategyGenre, []query{{field: player.FieldGenre, term: cat}}, broadened
	}
	if terms, ok := moods[cat]; ok {
		return StrategyMood, genreQueries(terms), broadened
	}
	if terms, ok := activities[cat]; ok {
		return StrategyActivity, genreQueries(terms), broadened
	}
	if terms, ok := energyLevels[cat]; ok {
		return StrategyEnergy, genreQueries(terms), broadened
	}

	// Unknown category: treat it as a genre guess, broaden to any field.
	return StrategyGenre, []query{{field: player.FieldGenre, term: cat}}, broadened
}

func genreQueries(terms []string) []query {
	qs := make([]query, len(terms))
	for i, term := range terms {
		qs[i] = query{field: player.FieldGenre, term: term}
	}
	return qs
}
