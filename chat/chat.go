// Package chat drives the conversation turn loop: a user utterance goes
// to the generative backend, tool calls come back, get validated and
// executed in order, and the loop repeats until the backend produces a
// plain reply or the iteration budget runs out.
package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/shelbeely/Conductor-sub001/catalog"
	"github.com/shelbeely/Conductor-sub001/llm"
	"github.com/shelbeely/Conductor-sub001/player"
	"github.com/shelbeely/Conductor-sub001/provider"
)

// ErrSuperseded is returned by a loop whose session received a newer
// utterance; the superseded loop's reply is discarded, never applied.
var ErrSuperseded = errors.New("superseded by a newer utterance")

const (
	// DefaultMaxIterations bounds provider round-trips per utterance.
	DefaultMaxIterations = 4

	// DefaultHistoryBudget is the turn count kept in the session window.
	DefaultHistoryBudget = 40

	// commentaryMaxTokens bounds the DJ commentary output.
	commentaryMaxTokens = 256
)

// Session owns one conversation window and its orchestration state. It
// is constructed at session start and discarded at session end; nothing
// is persisted.
type Session struct {
	mu            sync.Mutex
	history       []llm.Message
	generation    uint64
	lyricsEnabled bool

	catalog       *catalog.Catalog
	registry      *llm.Registry
	lookup        func(name string) (provider.Provider, error)
	retry         provider.RetryPolicy
	systemPrompt  string
	maxIterations int
	historyBudget int
	log           *logrus.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithSystemPrompt sets the system message prepended to every request.
func WithSystemPrompt(prompt string) Option {
	return func(s *Session) { s.systemPrompt = prompt }
}

// WithMaxIterations bounds provider round-trips per utterance.
func WithMaxIterations(n int) Option {
	return func(s *Session) { s.maxIterations = n }
}

// WithHistoryBudget bounds the conversation window; oldest turns are
// dropped first, never reordered.
func WithHistoryBudget(n int) Option {
	return func(s *Session) { s.historyBudget = n }
}

// WithRetryPolicy sets the transient-failure retry policy.
func WithRetryPolicy(p provider.RetryPolicy) Option {
	return func(s *Session) { s.retry = p }
}

// WithLogger sets the logger.
func WithLogger(log *logrus.Logger) Option {
	return func(s *Session) { s.log = log }
}

// WithLookup replaces the provider registry lookup, for tests.
func WithLookup(lookup func(name string) (provider.Provider, error)) Option {
	return func(s *Session) { s.lookup = lookup }
}

// NewSession creates a Session over the given model catalog and tool
// registry.
func NewSession(cat *catalog.Catalog, reg *llm.Registry, opts ...Option) *Session {
	s := &Session{
		catalog:       cat,
		registry:      reg,
		lookup:        provider.Get,
		retry:         provider.DefaultRetryPolicy,
		maxIterations: DefaultMaxIterations,
		historyBudget: DefaultHistoryBudget,
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

// Respond handles one user utterance and returns one user-visible reply.
// Tool calls requested by the backend are validated and executed strictly
// in the order returned, each producing exactly one result turn, before
// the backend is consulted again. A newer utterance supersedes the loop.
func (s *Session) Respond(ctx context.Context, utterance string) (string, error) {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.history = append(s.history, llm.UserMessage(utterance))
	s.truncateLocked()
	window := make([]llm.Message, len(s.history))
	copy(window, s.history)
	s.mu.Unlock()

	profile := s.catalog.Profile()
	p, err := s.lookup(profile.Provider)
	if err != nil {
		return "", err
	}
	defs := s.registry.Defs()

	var gathered []llm.Result
	for iter := 0; iter < s.maxIterations; iter++ {
		resp, err := provider.Generate(ctx, p, &provider.Request{
			Model:    profile.Model,
			Messages: s.withSystemPrompt(window),
			Tools:    defs,
		}, s.retry)
		if err != nil {
			return "", err
		}
		if s.stale(gen) {
			return "", ErrSuperseded
		}

		if len(resp.ToolCalls) == 0 {
			window = append(window, llm.AssistantMessage(resp.Content))
			s.commit(gen, window)
			return resp.Content, nil
		}

		calls := correlate(resp.ToolCalls)
		window = append(window, llm.AssistantMessageWithToolCalls(resp.Content, calls))

		// Sequential execution: later calls may depend on earlier
		// side effects on the shared playback state.
		for _, call := range calls {
			res := s.registry.Dispatch(ctx, call)
			s.log.WithFields(logrus.Fields{
				"tool":  res.Tool,
				"call":  res.CallID,
				"error": res.IsError,
			}).Debug("tool executed")
			gathered = append(gathered, res)
			window = append(window, llm.ToolMessage(res.CallID, res.Content))
		}

		if s.stale(gen) {
			return "", ErrSuperseded
		}
	}

	// Iteration ceiling reached: terminate with the best partial answer
	// assembled from the results already gathered.
	reply := bestEffortReply(gathered)
	window = append(window, llm.AssistantMessage(reply))
	s.commit(gen, window)
	return reply, nil
}

// Commentary invokes the backend in a restricted mode: no tool access, a
// persona-pair prompt, bounded output. It satisfies dj.Commentator.
func (s *Session) Commentary(ctx context.Context, personaA, personaB string, track player.Track) (string, error) {
	profile := s.catalog.Profile()
	p, err := s.lookup(profile.Provider)
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(
		"You are writing a short radio handoff between two DJs, %s and %s. "+
			"The track %q by %s just started. Write at most four short lines, "+
			"each prefixed with the speaker's name and a colon.",
		personaA, personaB, track.Title, track.Artist,
	)

	maxTokens := commentaryMaxTokens
	resp, err := provider.Generate(ctx, p, &provider.Request{
		Model:     profile.Model,
		Messages:  []llm.Message{llm.UserMessage(prompt)},
		MaxTokens: &maxTokens,
	}, s.retry)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// SetLyricsEnabled toggles the session's lyrics display flag.
func (s *Session) SetLyricsEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lyricsEnabled = enabled
}

// LyricsEnabled reports the session's lyrics display flag.
func (s *Session) LyricsEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lyricsEnabled
}

// History returns a copy of the session window.
func (s *Session) History() []llm.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]llm.Message, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Session) stale(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation != gen
}

// commit replaces the session window, unless a newer utterance arrived.
func (s *Session) commit(gen uint64, window []llm.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return
	}
	s.history = window
	s.truncateLocked()
}

// truncateLocked drops the oldest turns past the budget, FIFO.
func (s *Session) truncateLocked() {
	if s.historyBudget > 0 && len(s.history) > s.historyBudget {
		s.history = s.history[len(s.history)-s.historyBudget:]
	}
}

func (s *Session) withSystemPrompt(window []llm.Message) []llm.Message {
	if s.systemPrompt == "" {
		return window
	}
	msgs := make([]llm.Message, 0, len(window)+1)
	msgs = append(msgs, llm.SystemMessage(s.systemPrompt))
	return append(msgs, window...)
}

// correlate ensures every tool call carries a correlation id.
func correlate(calls []provider.ToolCall) []provider.ToolCall {
	out := make([]provider.ToolCall, len(calls))
	copy(out, calls)
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = uuid.NewString()
		}
	}
	return out
}

// bestEffortReply summarizes gathered tool results when the iteration
// budget is exhausted before the backend produced a final reply.
func bestEffortReply(results []llm.Result) string {
	if len(results) == 0 {
		return "Sorry, I couldn't complete that request."
	}
	var b strings.Builder
	b.WriteString("Here's what I managed before running out of steps:")
	for _, res := range results {
		b.WriteString("\n- ")
		b.WriteString(res.Tool)
		b.WriteString(": ")
		if res.IsError {
			b.WriteString("failed (")
			b.WriteString(res.Content)
			b.WriteString(")")
		} else {
			b.WriteString(summarize(res.Content))
		}
	}
	return b.String()
}

func summarize(content string) string {
	const max = 120
	content = strings.ReplaceAll(content, "\n", " ")
	runes := []rune(content)
	if len(runes) > max {
		return string(runes[:max]) + "…"
	}
	return content
}
