package decoder

import (
	"context"
	"errors"
	"io"

	"decoderd/internal/translation"
)

// Sink is the producer side of a request's output.
type Sink interface {
	Expect(id int) error
	Record(rec translation.Record) error
	Abort(id int, err error)
	Finish()
	Fail(err error)
	WaitRoom(ctx context.Context) error
	ID() string
}

// dispatch reads sentences from src, waits for a worker for each and starts a
// task for it without waiting for the task to finish. It returns at end of
// input or on the first read, ordering or acquisition failure.
func (d *Decoder) dispatch(ctx context.Context, src Source, sink Sink) {
	log := d.log.With().Str("stream", sink.ID()).Logger()
	taskCtx := context.WithoutCancel(ctx)
	n := 0
	for {
		s, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			sink.Finish()
			log.Debug().Int("sentences", n).Msg("input exhausted")
			d.publisher.Publish(Event{Name: EventRequestFinished, StreamID: sink.ID(), Fields: map[string]any{"sentences": n}})
			return
		}
		if err != nil {
			d.failRequest(sink, readError{err: err})
			return
		}
		if err := sink.WaitRoom(ctx); err != nil {
			d.stop(sink, err, n)
			return
		}
		if err := sink.Expect(s.ID()); err != nil {
			if !IsAborted(err) {
				err = readError{err: err}
			}
			d.stop(sink, err, n)
			return
		}
		h, err := d.pool.Acquire(ctx)
		if err != nil {
			sink.Abort(s.ID(), err)
			d.failRequest(sink, err)
			return
		}
		n++
		log.Debug().Int("sentence", s.ID()).Int("worker", h.Index()).Msg("dispatch")
		d.publisher.Publish(Event{Name: EventDispatch, StreamID: sink.ID(), SentenceID: s.ID(), Fields: map[string]any{"worker": h.Index()}})
		go d.runTask(taskCtx, h, s, sink)
	}
}

// stop ends dispatch after WaitRoom or Expect refused a sentence. An aborted
// stream already carries its error, so it is only finished.
func (d *Decoder) stop(sink Sink, err error, dispatched int) {
	if !IsAborted(err) {
		d.failRequest(sink, err)
		return
	}
	d.log.Warn().Str("stream", sink.ID()).Int("sentences", dispatched).Err(err).Msg("dispatch stopped")
	d.publisher.Publish(Event{Name: EventRequestFailed, StreamID: sink.ID(), Fields: map[string]any{"error": err.Error()}})
	sink.Finish()
}

func (d *Decoder) failRequest(sink Sink, err error) {
	d.log.Error().Str("stream", sink.ID()).Err(err).Msg("request failed")
	d.publisher.Publish(Event{Name: EventRequestFailed, StreamID: sink.ID(), Fields: map[string]any{"error": err.Error()}})
	sink.Fail(err)
}
