package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"decoderd/internal/config"
	"decoderd/internal/decoder"
	"decoderd/internal/feature"
	"decoderd/internal/scoring"
	"decoderd/internal/search"
)

func newLogger(level string, w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}).
		Level(lvl).With().Timestamp().Logger()
}

// defaultFeatures are used when the config names none.
var defaultFeatures = []string{search.WordPenaltyName, search.OOVPenaltyName}

// buildDecoder wires weights, feature functions, the lexicon and one search
// worker per thread into a decoder.
func buildDecoder(cfg config.Config, log zerolog.Logger) (*decoder.Decoder, error) {
	wv, err := cfg.ResolveWeights()
	if err != nil {
		return nil, err
	}
	weights := feature.NewWeights(wv)

	reg := feature.NewRegistry()
	if err := search.RegisterFeatures(reg, scoring.NewHandleTable()); err != nil {
		return nil, err
	}
	names := cfg.Features
	if len(names) == 0 {
		names = defaultFeatures
	}
	fns, err := reg.BuildAll(names)
	if err != nil {
		return nil, err
	}

	lex, err := search.LoadLexicon(cfg.Lexicon)
	if err != nil {
		return nil, err
	}
	log.Info().Str("lexicon", cfg.Lexicon).Int("entries", lex.Len()).Msg("lexicon loaded")

	tr, err := search.NewTranslator(lex, fns, weights)
	if err != nil {
		return nil, err
	}
	// the translator holds no per-call state, so workers share it
	workers := make([]decoder.Worker, cfg.Threads)
	for i := range workers {
		workers[i] = tr
	}

	policy, err := decoder.ParseFailurePolicy(cfg.FailurePolicy)
	if err != nil {
		return nil, err
	}
	featureNames := make([]string, len(fns))
	for i, fn := range fns {
		featureNames[i] = fn.Name()
	}
	d, err := decoder.New(decoder.Config{
		Workers:   workers,
		Weights:   weights,
		Watermark: cfg.ReorderWatermark,
		Policy:    policy,
		Logger:    log,
		Options:   cfg.Options(),
		Features:  featureNames,
	})
	if err != nil {
		return nil, fmt.Errorf("building decoder: %w", err)
	}
	return d, nil
}

// stderr is swapped by tests.
var stderr io.Writer = os.Stderr
