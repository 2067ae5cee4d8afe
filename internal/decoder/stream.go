package decoder

import (
	"context"
	"io"
	"iter"
	"sync"

	"decoderd/internal/translation"
)

type slotState int

const (
	slotPending slotState = iota
	slotFilled
	slotFailed
)

type slot struct {
	state slotState
	rec   translation.Record
	err   error
}

// Stream reorders records completed out of order into ascending sentence id
// order. Producers call Expect for each dispatched id and Record once it is
// done; a single consumer pulls with Next or ranges over All.
type Stream struct {
	id        string
	watermark int

	mu       sync.Mutex
	cond     *sync.Cond
	slots    map[int]*slot
	order    []int // expected, undelivered ids in ascending order
	last     int
	expected bool
	finished bool
	err      error // terminal error reported after the last slot
	aborted  error // slot error the consumer has reached
	buffered int

	// failed is the lowest aborted slot; ids above it are never delivered.
	failed   error
	failedID int
}

// NewStream returns an empty stream. A positive watermark bounds how many
// undelivered slots WaitRoom allows; 0 disables backpressure.
func NewStream(id string, watermark int) *Stream {
	s := &Stream{id: id, watermark: watermark, slots: make(map[int]*slot)}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// ID returns the stream identifier used in logs and events.
func (s *Stream) ID() string { return s.id }

// Expect opens a pending slot for id. Ids must strictly increase.
func (s *Stream) Expect(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failed != nil {
		return abortedError{id: s.failedID, err: s.failed}
	}
	if s.finished {
		return slotError{id: id, msg: "stream already finished"}
	}
	if s.expected && id <= s.last {
		return slotError{id: id, msg: "ids must be strictly increasing"}
	}
	s.expected = true
	s.last = id
	s.slots[id] = &slot{state: slotPending}
	s.order = append(s.order, id)
	return nil
}

// Record fills the slot for rec.ID.
func (s *Stream) Record(rec translation.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failed != nil && rec.ID > s.failedID {
		// past the failure point; nobody will read it
		return nil
	}
	sl, ok := s.slots[rec.ID]
	if !ok {
		if s.expected && rec.ID <= s.last {
			// already delivered
			return duplicateRecordError{id: rec.ID}
		}
		return slotError{id: rec.ID, msg: "record for an id that was never expected"}
	}
	if sl.state != slotPending {
		return duplicateRecordError{id: rec.ID}
	}
	sl.state = slotFilled
	sl.rec = rec
	s.buffered++
	streamBuffered.Inc()
	s.cond.Broadcast()
	return nil
}

// Abort marks the slot for id as failed: the consumer receives every record
// before it, then err, and the stream ends. Slots after id are dropped and
// further Expect and WaitRoom calls fail, so the producer stops.
func (s *Stream) Abort(id int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[id]
	if !ok || sl.state != slotPending {
		return
	}
	sl.state = slotFailed
	sl.err = err
	s.failed = err
	s.failedID = id
	keep := s.order[:0]
	for _, oid := range s.order {
		if oid <= id {
			keep = append(keep, oid)
			continue
		}
		if s.slots[oid].state == slotFilled {
			s.buffered--
			streamBuffered.Dec()
		}
		delete(s.slots, oid)
	}
	s.order = keep
	s.cond.Broadcast()
}

// Finish declares that no further ids will be expected.
func (s *Stream) Finish() {
	s.mu.Lock()
	s.finished = true
	s.cond.Broadcast()
	s.mu.Unlock()
}

// Fail finishes the stream with err, which the consumer sees after every
// expected record has been delivered.
func (s *Stream) Fail(err error) {
	s.mu.Lock()
	s.finished = true
	if s.err == nil {
		s.err = err
	}
	s.cond.Broadcast()
	s.mu.Unlock()
}

// WaitRoom blocks while the number of undelivered slots is at the watermark.
// It fails once a slot has been aborted.
func (s *Stream) WaitRoom(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watermark <= 0 {
		if s.failed != nil {
			return abortedError{id: s.failedID, err: s.failed}
		}
		return ctx.Err()
	}
	stop := context.AfterFunc(ctx, s.wake)
	defer stop()
	for len(s.order) >= s.watermark && s.failed == nil {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.cond.Wait()
	}
	if s.failed != nil {
		return abortedError{id: s.failedID, err: s.failed}
	}
	return ctx.Err()
}

// Next returns the record for the lowest undelivered id, blocking until it
// is available. It returns io.EOF once the stream is finished and drained.
func (s *Stream) Next(ctx context.Context) (translation.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stop := context.AfterFunc(ctx, s.wake)
	defer stop()
	for {
		if s.aborted != nil {
			return translation.Record{}, s.aborted
		}
		if len(s.order) > 0 {
			id := s.order[0]
			sl := s.slots[id]
			switch sl.state {
			case slotFilled:
				s.order = s.order[1:]
				delete(s.slots, id)
				s.buffered--
				streamBuffered.Dec()
				s.cond.Broadcast()
				return sl.rec, nil
			case slotFailed:
				s.aborted = sl.err
				s.cond.Broadcast()
				return translation.Record{}, sl.err
			}
		} else if s.finished {
			if s.err != nil {
				return translation.Record{}, s.err
			}
			return translation.Record{}, io.EOF
		}
		if err := ctx.Err(); err != nil {
			return translation.Record{}, err
		}
		s.cond.Wait()
	}
}

// All ranges over the remaining records in order. Iteration stops after
// the first error, which is yielded with a zero record.
func (s *Stream) All(ctx context.Context) iter.Seq2[translation.Record, error] {
	return func(yield func(translation.Record, error) bool) {
		for {
			rec, err := s.Next(ctx)
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(translation.Record{}, err)
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}

// Len returns the number of finished records not yet delivered.
func (s *Stream) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffered
}

// Pending returns the number of expected ids not yet delivered.
func (s *Stream) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

func (s *Stream) wake() {
	s.mu.Lock()
	s.cond.Broadcast()
	s.mu.Unlock()
}
