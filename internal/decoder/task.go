package decoder

import (
	"context"
	"fmt"
	"time"

	"decoderd/internal/tracing"
	"decoderd/internal/translation"
)

// runTask translates s on the worker held by h and hands the record to sink.
// The handle goes back to the pool on every path, panics included.
func (d *Decoder) runTask(ctx context.Context, h *Handle, s *translation.Sentence, sink Sink) {
	defer d.release(h)
	defer d.closeStates(sink.ID(), s)
	start := time.Now()
	rec, err := d.translate(ctx, h.Worker(), s)
	if err != nil {
		d.log.Warn().Str("stream", sink.ID()).Int("sentence", s.ID()).Err(err).Msg("translation failed")
		d.publisher.Publish(Event{Name: EventTranslateFailed, StreamID: sink.ID(), SentenceID: s.ID(), Fields: map[string]any{"error": err.Error()}})
		if d.policy == Abort {
			s.States().ClearPool()
			sink.Abort(s.ID(), err)
			return
		}
		rec = d.assembler.Failed(s, err)
	} else {
		d.publisher.Publish(Event{Name: EventTranslateDone, StreamID: sink.ID(), SentenceID: s.ID(), Fields: map[string]any{"dur_ms": time.Since(start).Milliseconds()}})
	}
	if err := sink.Record(rec); err != nil {
		d.log.Error().Str("stream", sink.ID()).Int("sentence", s.ID()).Err(err).Msg("record rejected")
	}
}

// translate runs search and assembly for one sentence. Errors and panics from
// either come back as translateError; the sentence's scoring states are
// drained by the assembler on success and by the caller on error.
func (d *Decoder) translate(ctx context.Context, w Worker, s *translation.Sentence) (rec translation.Record, err error) {
	ctx, span := tracing.StartSpan(ctx, "decoder.translate")
	span.SetInt("sentence.id", s.ID()).SetInt("top_n", s.Options().TopN)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil {
			err = translateError{id: s.ID(), err: err}
			translationsTotal.WithLabelValues(outcomeFailed).Inc()
		}
		tracing.EndSpan(span, err)
	}()

	result, err := w.Translate(ctx, s)
	if err != nil {
		return translation.Record{}, err
	}
	rec, err = d.assembler.Assemble(s, result)
	if err != nil {
		return translation.Record{}, err
	}
	if result == nil {
		translationsTotal.WithLabelValues(outcomeAbsent).Inc()
		d.log.Info().Int("sentence", s.ID()).Msg("no translation found")
	} else {
		translationsTotal.WithLabelValues(outcomeOK).Inc()
		d.log.Info().Int("sentence", s.ID()).Float64("score", result.BestScore()).
			Str("best", translation.RemoveSentenceMarkers(result.BestString())).Msg("translated")
	}
	return rec, nil
}

// closeStates seals the sentence's scoring cache once its record is out.
// Anything it still has to free was missed by the assembler.
func (d *Decoder) closeStates(stream string, s *translation.Sentence) {
	if n := s.States().Close(); n > 0 {
		leakedStates.Add(float64(n))
		d.log.Warn().Str("stream", stream).Int("sentence", s.ID()).Int("states", n).Msg("scoring states leaked")
	}
}

func (d *Decoder) release(h *Handle) {
	if err := d.pool.Release(h); err != nil {
		d.log.Error().Int("worker", h.Index()).Err(err).Msg("worker release")
	}
}
