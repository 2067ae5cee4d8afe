package translation

import (
	"strings"

	"decoderd/internal/scoring"
)

// Sentence is one input unit of a request. It is immutable once built; the
// core borrows it for the duration of its translation.
type Sentence struct {
	id     int
	source string
	opts   Options
	states *scoring.Cache
}

// NewSentence builds a sentence with its own scoring-state cache.
func NewSentence(id int, source string, opts Options) *Sentence {
	return &Sentence{id: id, source: source, opts: opts, states: scoring.NewCache()}
}

func (s *Sentence) ID() int          { return s.id }
func (s *Sentence) Source() string   { return s.source }
func (s *Sentence) Options() Options { return s.opts }
func (s *Sentence) Tokens() []string { return strings.Fields(s.source) }
func (s *Sentence) IsEmpty() bool    { return strings.TrimSpace(s.source) == "" }

// States returns the cache holding every scoring state created for this
// sentence. It is drained when the sentence's record is assembled.
func (s *Sentence) States() *scoring.Cache { return s.states }
