package search

import (
	"context"
	"fmt"
	"strings"

	"decoderd/internal/feature"
	"decoderd/internal/scoring"
	"decoderd/internal/translation"
)

// defaultBeam is how many locally best candidates stateful features rescore.
const defaultBeam = 16

// option is one way to translate a source position.
type option struct {
	pos      int
	target   []string
	features feature.Vector
}

// Translator translates word by word, left to right. It holds no per-call
// state, so one value can back every worker of a pool.
type Translator struct {
	lex      *Lexicon
	local    []Local
	stateful []feature.Stateful
	weights  *feature.Weights
	beam     int
}

// NewTranslator builds a translator over lex. Functions that are neither
// Local nor feature.Stateful are rejected.
func NewTranslator(lex *Lexicon, fns []feature.Function, weights *feature.Weights) (*Translator, error) {
	if lex == nil {
		return nil, fmt.Errorf("search: nil lexicon")
	}
	t := &Translator{lex: lex, weights: weights, beam: defaultBeam}
	if t.weights == nil {
		t.weights = feature.NewWeights(nil)
	}
	for _, f := range fns {
		switch ff := f.(type) {
		case Local:
			t.local = append(t.local, ff)
		case feature.Stateful:
			t.stateful = append(t.stateful, ff)
		default:
			return nil, fmt.Errorf("search: feature %q is neither local nor stateful", f.Name())
		}
	}
	return t, nil
}

// SetBeam changes the number of candidates rescored by stateful features.
func (t *Translator) SetBeam(n int) {
	if n > 0 {
		t.beam = n
	}
}

// Translate implements the decoder's Worker. An empty sentence has no
// derivations and yields a nil result.
func (t *Translator) Translate(ctx context.Context, s *translation.Sentence) (translation.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tokens := s.Tokens()
	if len(tokens) == 0 {
		return nil, nil
	}
	lattice := make([][]option, len(tokens))
	for i, tok := range tokens {
		entries := t.lex.Lookup(tok)
		oov := len(entries) == 0
		if oov {
			entries = []Entry{{Target: []string{tok}}}
		}
		opts := make([]option, 0, len(entries))
		for _, e := range entries {
			fv := e.Features.Clone()
			for _, f := range t.local {
				if v := f.Value(e.Target, oov); v != 0 {
					fv[f.Name()] += v
				}
			}
			opts = append(opts, option{pos: i, target: e.Target, features: fv})
		}
		lattice[i] = opts
	}
	r := &result{t: t, sentence: s, lattice: lattice}
	best, err := r.KBest(1, t.weights.Snapshot())
	if err != nil {
		return nil, err
	}
	if len(best) == 0 {
		return nil, nil
	}
	r.best = best[0]
	return r, nil
}

// result is the derivation space of one sentence.
type result struct {
	t        *Translator
	sentence *translation.Sentence
	lattice  [][]option
	best     translation.Derivation
}

func (r *result) BestString() string           { return r.best.String }
func (r *result) BestScore() float64           { return r.best.Score }
func (r *result) BestAlignment() string        { return r.best.Alignment }
func (r *result) BestFeatures() feature.Vector { return r.best.Features.Clone() }

// KBest returns up to k derivations under weights, best first. Candidates are
// enumerated exactly by local score; with stateful features configured the top
// max(k, beam) are rescored and the list is stably re-sorted.
func (r *result) KBest(k int, weights feature.Vector) ([]translation.Derivation, error) {
	if k <= 0 {
		return nil, nil
	}
	pool := k
	if len(r.t.stateful) > 0 && r.t.beam > pool {
		pool = r.t.beam
	}
	paths := enumerate(r.lattice, weights, pool)
	out := make([]translation.Derivation, 0, len(paths))
	for _, p := range paths {
		out = append(out, r.derive(p, weights))
	}
	sortDerivations(out)
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

// derive builds the derivation for one path through the lattice, running
// stateful features across its options in order.
func (r *result) derive(p path, weights feature.Vector) translation.Derivation {
	fv := feature.Vector{}
	words := []string{translation.StartMarker}
	var align []string
	out := 0
	for _, opt := range p.options {
		fv.Add(opt.features)
		for _, w := range opt.target {
			align = append(align, fmt.Sprintf("%d-%d", opt.pos, out))
			words = append(words, w)
			out++
		}
	}
	cache := r.sentence.States()
	for _, f := range r.t.stateful {
		var total float64
		var prev *scoring.State
		for _, opt := range p.options {
			v, next := f.Score(opt.target, prev, cache)
			total += v
			prev = next
		}
		if total != 0 {
			fv[f.Name()] += total
		}
	}
	words = append(words, translation.EndMarker)
	return translation.Derivation{
		String:    strings.Join(words, " "),
		Score:     fv.Dot(weights),
		Features:  fv,
		Alignment: strings.Join(align, " "),
	}
}
