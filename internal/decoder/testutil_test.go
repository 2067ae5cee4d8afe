package decoder

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"decoderd/internal/feature"
	"decoderd/internal/scoring"
	"decoderd/internal/translation"
)

// upperResult "translates" by upper-casing the source.
type upperResult struct {
	src   string
	score float64
}

func (r upperResult) BestString() string {
	return translation.StartMarker + " " + strings.ToUpper(r.src) + " " + translation.EndMarker
}
func (r upperResult) BestScore() float64           { return r.score }
func (r upperResult) BestAlignment() string        { return "0-0" }
func (r upperResult) BestFeatures() feature.Vector { return feature.Vector{"WordPenalty": r.score} }
func (r upperResult) KBest(k int, _ feature.Vector) ([]translation.Derivation, error) {
	if k <= 0 {
		return nil, nil
	}
	return []translation.Derivation{{String: r.BestString(), Score: r.score, Features: r.BestFeatures(), Alignment: "0-0"}}, nil
}

// fakeWorker sleeps a random time, creates one scoring state per call and
// fails or panics on chosen sentence ids.
type fakeWorker struct {
	maxDelay time.Duration
	failOn   map[int]bool
	panicOn  map[int]bool

	mu        sync.Mutex
	rng       *rand.Rand
	sentences []*translation.Sentence
}

func (w *fakeWorker) Translate(ctx context.Context, s *translation.Sentence) (translation.SearchResult, error) {
	w.mu.Lock()
	w.sentences = append(w.sentences, s)
	var d time.Duration
	if w.maxDelay > 0 {
		if w.rng == nil {
			w.rng = rand.New(rand.NewSource(int64(s.ID()) + 1))
		}
		d = time.Duration(w.rng.Int63n(int64(w.maxDelay)))
	}
	w.mu.Unlock()

	s.States().Create(scoring.Raw(s.ID()+1), scoring.ReleaserFunc(func(scoring.Raw) {}))
	time.Sleep(d)
	if w.panicOn[s.ID()] {
		panic("search exploded")
	}
	if w.failOn[s.ID()] {
		return nil, errors.New("no parse")
	}
	if s.IsEmpty() {
		return nil, nil
	}
	return upperResult{src: s.Source(), score: -float64(len(s.Tokens()))}, nil
}

func (w *fakeWorker) seen() []*translation.Sentence {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]*translation.Sentence(nil), w.sentences...)
}

func newWorkers(n int, mk func() *fakeWorker) ([]Worker, []*fakeWorker) {
	ws := make([]Worker, n)
	fs := make([]*fakeWorker, n)
	for i := range ws {
		fs[i] = mk()
		ws[i] = fs[i]
	}
	return ws, fs
}

func newTestDecoder(t *testing.T, cfg Config) *Decoder {
	t.Helper()
	cfg.Logger = zerolog.Nop()
	d, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = d.Shutdown(ctx)
	})
	return d
}

// sliceSource yields sentences built by the test; failAt > 0 makes the read
// at that position fail.
type sliceSource struct {
	items  []*translation.Sentence
	pos    int
	failAt int
}

func (s *sliceSource) Next(ctx context.Context) (*translation.Sentence, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.failAt > 0 && s.pos == s.failAt {
		return nil, errors.New("connection reset")
	}
	if s.pos >= len(s.items) {
		return nil, io.EOF
	}
	it := s.items[s.pos]
	s.pos++
	return it, nil
}

func sentences(opts translation.Options, texts ...string) *sliceSource {
	src := &sliceSource{}
	for i, txt := range texts {
		src.items = append(src.items, translation.NewSentence(i, txt, opts))
	}
	return src
}

func collect(t *testing.T, st *Stream) ([]translation.Record, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	var out []translation.Record
	for rec, err := range st.All(ctx) {
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 5*time.Second, time.Millisecond, "waiting for %s", what)
}
