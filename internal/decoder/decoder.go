package decoder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"decoderd/internal/feature"
	"decoderd/internal/translation"
	"decoderd/pkg/types"
)

// FailurePolicy selects what happens when translating one sentence fails.
type FailurePolicy string

const (
	// Isolate replaces the failed sentence with its failure-template record
	// and keeps the request going.
	Isolate FailurePolicy = "isolate"
	// Abort ends the request's stream at the failed sentence.
	Abort FailurePolicy = "abort"
)

// ParseFailurePolicy maps a config string to a policy; empty means Isolate.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch FailurePolicy(s) {
	case "", Isolate:
		return Isolate, nil
	case Abort:
		return Abort, nil
	default:
		return "", fmt.Errorf("unknown failure policy %q (want isolate|abort)", s)
	}
}

// Sentence is the unit of work handed to workers.
type Sentence = translation.Sentence

// Source yields the sentences of one request. Next returns io.EOF at the end
// of input and may block.
type Source interface {
	Next(ctx context.Context) (*translation.Sentence, error)
}

// Config encapsulates all tunables for Decoder construction.
type Config struct {
	Workers []Worker
	Weights *feature.Weights
	// Watermark bounds undelivered records per request; 0 means unbounded.
	Watermark int
	Policy    FailurePolicy
	Logger    zerolog.Logger
	Publisher EventPublisher
	// Options are the assembly defaults requests override.
	Options translation.Options
	// Features lists the names of the configured feature functions, for status.
	Features []string
}

// Decoder fans requests out over a shared worker pool.
type Decoder struct {
	pool      *Pool
	assembler *translation.Assembler
	weights   *feature.Weights
	watermark int
	policy    FailurePolicy
	log       zerolog.Logger
	publisher EventPublisher
	defaults  translation.Options
	features  []string
	startTime time.Time
}

// New constructs a Decoder from cfg.
func New(cfg Config) (*Decoder, error) {
	if len(cfg.Workers) == 0 {
		return nil, errors.New("decoder: at least one worker is required")
	}
	if cfg.Watermark < 0 {
		return nil, fmt.Errorf("decoder: negative watermark %d", cfg.Watermark)
	}
	policy, err := ParseFailurePolicy(string(cfg.Policy))
	if err != nil {
		return nil, err
	}
	weights := cfg.Weights
	if weights == nil {
		weights = feature.NewWeights(nil)
	}
	opts := cfg.Options
	if opts.OutputFormat == "" {
		opts.OutputFormat = translation.DefaultOutputFormat
	}
	pub := cfg.Publisher
	if pub == nil {
		pub = noopPublisher{}
	}
	d := &Decoder{
		pool:      NewPool(cfg.Workers),
		assembler: translation.NewAssembler(weights, cfg.Logger),
		weights:   weights,
		watermark: cfg.Watermark,
		policy:    policy,
		log:       cfg.Logger,
		publisher: pub,
		defaults:  opts,
		features:  append([]string(nil), cfg.Features...),
		startTime: time.Now(),
	}
	d.log.Info().Int("workers", len(cfg.Workers)).Int("weights", weights.Len()).
		Str("policy", string(policy)).Int("watermark", cfg.Watermark).Msg("decoder ready")
	return d, nil
}

// SetEventPublisher replaces the event sink.
func (d *Decoder) SetEventPublisher(p EventPublisher) {
	if p == nil {
		p = noopPublisher{}
	}
	d.publisher = p
}

// Weights returns the shared weight store.
func (d *Decoder) Weights() *feature.Weights { return d.weights }

// DecodeAll translates every sentence of src. It returns immediately; a
// dispatcher goroutine reads src, and records arrive on the returned stream
// in input order. ctx bounds reading and worker acquisition only: sentences
// already handed to a worker run to completion.
func (d *Decoder) DecodeAll(ctx context.Context, src Source) *Stream {
	st := NewStream(uuid.NewString(), d.watermark)
	d.publisher.Publish(Event{Name: EventRequestStart, StreamID: st.ID()})
	go d.dispatch(ctx, src, st)
	return st
}

// Decode translates a single sentence on the calling goroutine once a worker
// is free.
func (d *Decoder) Decode(ctx context.Context, s *translation.Sentence) (translation.Record, error) {
	h, err := d.pool.Acquire(ctx)
	if err != nil {
		return translation.Record{}, err
	}
	defer d.release(h)
	defer d.closeStates("", s)
	rec, err := d.translate(ctx, h.Worker(), s)
	if err != nil {
		if d.policy == Abort {
			s.States().ClearPool()
			return translation.Record{}, err
		}
		return d.assembler.Failed(s, err), nil
	}
	return rec, nil
}

// Shutdown stops accepting work and waits for in-flight sentences.
func (d *Decoder) Shutdown(ctx context.Context) error {
	err := d.pool.Shutdown(ctx)
	d.log.Info().Err(err).Msg("decoder shut down")
	return err
}

// Ready reports whether the decoder still accepts requests.
func (d *Decoder) Ready() bool { return !d.pool.Stats().Closed }

// PoolStats returns the worker pool occupancy.
func (d *Decoder) PoolStats() PoolStats { return d.pool.Stats() }

// Uptime returns the time since construction.
func (d *Decoder) Uptime() time.Duration { return time.Since(d.startTime) }

// Defaults returns the assembly options applied when a request sets none.
func (d *Decoder) Defaults() translation.Options { return d.defaults }

// Features returns the configured feature names.
func (d *Decoder) Features() []string { return append([]string{}, d.features...) }

// Status reports pool occupancy, weights and uptime for GET /status.
func (d *Decoder) Status() types.StatusResponse {
	ps := d.pool.Stats()
	state := "ready"
	if ps.Closed {
		state = "draining"
	}
	return types.StatusResponse{
		Pool: types.PoolStatus{
			Capacity: ps.Capacity,
			Idle:     ps.Idle,
			InUse:    ps.InUse,
			Waiting:  ps.Waiting,
		},
		Weights:        d.weights.Len(),
		Features:       d.Features(),
		State:          state,
		UptimeSeconds:  int64(d.Uptime().Seconds()),
		ServerTimeUnix: time.Now().Unix(),
	}
}
