package e2e

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"decoderd/internal/config"
	"decoderd/internal/decoder"
	"decoderd/internal/feature"
	"decoderd/internal/httpapi"
	"decoderd/internal/scoring"
	"decoderd/internal/search"
	"decoderd/internal/translation"
)

const lexicon = `# toy German-English lexicon
das ||| the ||| tm=-0.5
das ||| that ||| tm=-1.0
haus ||| house ||| tm=-0.2
haus ||| home ||| tm=-0.9
ist ||| is ||| tm=-0.1
klein ||| small ||| tm=-0.3
der ||| the ||| tm=-0.4
hund ||| dog ||| tm=-0.2
`

const weights = `// decoder weights
tm 1
WordPenalty 0
`

// writeModelFiles writes the lexicon and weights into a temp directory and
// returns a config pointing at them.
func writeModelFiles(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	lex := filepath.Join(dir, "lexicon.txt")
	w := filepath.Join(dir, "weights.txt")
	if err := os.WriteFile(lex, []byte(lexicon), 0o644); err != nil {
		t.Fatalf("write lexicon: %v", err)
	}
	if err := os.WriteFile(w, []byte(weights), 0o644); err != nil {
		t.Fatalf("write weights: %v", err)
	}
	return config.Config{Lexicon: lex, WeightsFile: w, Threads: 4}.Defaults()
}

var errPoisoned = errors.New("poisoned sentence")

// newServer builds the decoder stack from cfg and serves it. Sentences
// containing the token "POISON" fail in search.
func newServer(t *testing.T, cfg config.Config) (*httptest.Server, *decoder.Decoder) {
	t.Helper()
	wv, err := cfg.ResolveWeights()
	if err != nil {
		t.Fatalf("weights: %v", err)
	}
	ws := feature.NewWeights(wv)
	reg := feature.NewRegistry()
	if err := search.RegisterFeatures(reg, scoring.NewHandleTable()); err != nil {
		t.Fatalf("register: %v", err)
	}
	fns, err := reg.BuildAll([]string{"WordPenalty", "OOVPenalty"})
	if err != nil {
		t.Fatalf("features: %v", err)
	}
	lex, err := search.LoadLexicon(cfg.Lexicon)
	if err != nil {
		t.Fatalf("lexicon: %v", err)
	}
	tr, err := search.NewTranslator(lex, fns, ws)
	if err != nil {
		t.Fatalf("translator: %v", err)
	}
	poison := decoder.WorkerFunc(func(ctx context.Context, s *translation.Sentence) (translation.SearchResult, error) {
		if strings.Contains(s.Source(), "POISON") {
			return nil, errPoisoned
		}
		return tr.Translate(ctx, s)
	})
	workers := make([]decoder.Worker, cfg.Threads)
	for i := range workers {
		workers[i] = poison
	}
	policy, err := decoder.ParseFailurePolicy(cfg.FailurePolicy)
	if err != nil {
		t.Fatalf("policy: %v", err)
	}
	d, err := decoder.New(decoder.Config{
		Workers:   workers,
		Weights:   ws,
		Watermark: cfg.ReorderWatermark,
		Policy:    policy,
		Logger:    zerolog.Nop(),
		Options:   cfg.Options(),
		Features:  []string{"WordPenalty", "OOVPenalty"},
	})
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}
	srv := httptest.NewServer(httpapi.NewMux(d))
	t.Cleanup(func() {
		srv.Close()
		_ = d.Shutdown(context.Background())
	})
	return srv, d
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func httpPostJSON(t *testing.T, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}
