package translation

import (
	"strings"
	"time"

	"github.com/rs/zerolog"

	"decoderd/internal/feature"
)

// Assembler turns search results into records. It is safe for concurrent
// use: the only shared state it reads is the weight store, through
// snapshots.
type Assembler struct {
	weights *feature.Weights
	log     zerolog.Logger
}

// NewAssembler returns an assembler reading weights from w.
func NewAssembler(w *feature.Weights, log zerolog.Logger) *Assembler {
	if w == nil {
		w = feature.NewWeights(nil)
	}
	return &Assembler{weights: w, log: log}
}

// Assemble builds the record for s from result (nil when the search
// failed). Every scoring state created for s is released before Assemble
// returns, on all paths.
func (a *Assembler) Assemble(s *Sentence, result SearchResult) (rec Record, err error) {
	defer a.drain(s)

	opts := s.Options()
	rec = Record{ID: s.ID(), Source: s.Source()}

	if result == nil {
		if opts.UseStructuredOutput {
			rec.Structured = []Structured{emptyStructured()}
			return rec, nil
		}
		rec.Text = renderFailure(opts.OutputFormat, s.ID(), s.Source())
		return rec, nil
	}

	if opts.UseStructuredOutput {
		return a.structured(s, result, rec)
	}

	start := time.Now()
	if opts.TopN <= 0 {
		rec.Text = a.viterbi(s, result)
		return rec, nil
	}

	weights := a.weights.Snapshot()
	passes := []feature.Vector{weights}
	if opts.RescoreForest {
		passes = append(passes, weights.With(opts.rescoreFeature(), opts.RescoreForestWeight), weights)
	}
	blocks := make([]string, 0, len(passes))
	for _, w := range passes {
		lines, err := a.kbestLines(s, result, w)
		if err != nil {
			return rec, err
		}
		if lines != "" {
			blocks = append(blocks, lines)
		}
	}
	rec.Text = strings.Join(blocks, "\n")
	a.log.Info().Int("sentence", s.ID()).Int("top_n", opts.TopN).Int("passes", len(passes)).
		Dur("dur", time.Since(start)).Msg("k-best extraction done")
	return rec, nil
}

// Failed builds the failure-template record for s after an error in search
// or assembly, and releases the sentence's scoring states.
func (a *Assembler) Failed(s *Sentence, cause error) Record {
	defer a.drain(s)
	rec := Record{ID: s.ID(), Source: s.Source()}
	if cause != nil {
		rec.Diagnostic = cause.Error()
	}
	if s.Options().UseStructuredOutput {
		rec.Structured = []Structured{emptyStructured()}
		return rec
	}
	rec.Text = renderFailure(s.Options().OutputFormat, s.ID(), s.Source())
	return rec
}

func (a *Assembler) structured(s *Sentence, result SearchResult, rec Record) (Record, error) {
	opts := s.Options()
	if opts.TopN <= 0 {
		best := Structured{
			Translation: RemoveSentenceMarkers(result.BestString()),
			Score:       result.BestScore(),
			Features:    map[string]float64(result.BestFeatures().Clone()),
			Alignment:   result.BestAlignment(),
		}
		rec.Text = best.Translation
		rec.Structured = []Structured{best}
		return rec, nil
	}
	derivs, err := result.KBest(opts.TopN, a.weights.Snapshot())
	if err != nil {
		return rec, err
	}
	if len(derivs) == 0 {
		rec.Text = ""
		rec.Structured = []Structured{emptyStructured()}
		return rec, nil
	}
	rec.Structured = make([]Structured, 0, len(derivs))
	for _, d := range derivs {
		rec.Structured = append(rec.Structured, toStructured(d))
	}
	rec.Text = rec.Structured[0].Translation
	return rec, nil
}

func (a *Assembler) viterbi(s *Sentence, result SearchResult) string {
	best := result.BestString()
	score := result.BestScore()
	return render(s.Options().OutputFormat, renderFields{
		id:        s.ID(),
		best:      best,
		score:     score,
		alignment: result.BestAlignment,
		features:  func() string { return result.BestFeatures().TextFormat() },
	})
}

func (a *Assembler) kbestLines(s *Sentence, result SearchResult, weights feature.Vector) (string, error) {
	derivs, err := result.KBest(s.Options().TopN, weights)
	if err != nil {
		return "", err
	}
	lines := make([]string, 0, len(derivs))
	for _, d := range derivs {
		d := d
		lines = append(lines, render(s.Options().OutputFormat, renderFields{
			id:        s.ID(),
			best:      d.String,
			score:     d.Score,
			alignment: func() string { return d.Alignment },
			features:  func() string { return d.Features.TextFormat() },
		}))
	}
	return strings.Join(lines, "\n"), nil
}

func (a *Assembler) drain(s *Sentence) {
	if n := s.States().ClearPool(); n > 0 {
		a.log.Debug().Int("sentence", s.ID()).Int("states", n).Msg("scoring states released")
	}
}
