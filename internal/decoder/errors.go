package decoder

import (
	"errors"
	"fmt"
)

// ErrPoolClosed is returned by Acquire after Shutdown.
var ErrPoolClosed = errors.New("worker pool closed")

// IsPoolClosed reports whether err means the pool no longer hands out workers.
func IsPoolClosed(err error) bool { return errors.Is(err, ErrPoolClosed) }

// handleError signals a Release that does not match an outstanding
// acquisition (double release or a handle from another pool).
type handleError struct{ msg string }

func (e handleError) Error() string { return "worker handle: " + e.msg }

// IsHandleMisuse reports whether err came from releasing a handle incorrectly.
func IsHandleMisuse(err error) bool {
	var he handleError
	return errors.As(err, &he)
}

// duplicateRecordError signals a second record for the same sentence id.
type duplicateRecordError struct{ id int }

func (e duplicateRecordError) Error() string {
	return fmt.Sprintf("duplicate record for sentence %d", e.id)
}

// IsDuplicateRecord reports whether err was caused by recording an id twice.
func IsDuplicateRecord(err error) bool {
	var de duplicateRecordError
	return errors.As(err, &de)
}

// slotError covers records for ids that were never expected and expected
// ids that do not increase.
type slotError struct {
	id  int
	msg string
}

func (e slotError) Error() string { return fmt.Sprintf("sentence %d: %s", e.id, e.msg) }

// IsSlotError reports whether err came from an out-of-protocol stream call.
func IsSlotError(err error) bool {
	var se slotError
	return errors.As(err, &se)
}

// readError wraps a failure of the sentence source.
type readError struct{ err error }

func (e readError) Error() string { return "reading input: " + e.err.Error() }
func (e readError) Unwrap() error { return e.err }

// IsReadError reports whether the stream ended because its input failed.
func IsReadError(err error) bool {
	var re readError
	return errors.As(err, &re)
}

// translateError wraps a failure translating one sentence.
type translateError struct {
	id  int
	err error
}

func (e translateError) Error() string {
	return fmt.Sprintf("input %d: translation failed: %v", e.id, e.err)
}
func (e translateError) Unwrap() error { return e.err }

// IsTranslateError reports whether err is a per-sentence translation failure.
func IsTranslateError(err error) bool {
	var te translateError
	return errors.As(err, &te)
}

// badRequestError rejects a request before any sentence is dispatched.
type badRequestError struct{ msg string }

func (e badRequestError) Error() string   { return "bad request: " + e.msg }
func (e badRequestError) StatusCode() int { return 400 }

// IsBadRequest reports whether err rejected the request itself.
func IsBadRequest(err error) bool {
	var be badRequestError
	return errors.As(err, &be)
}

// abortedError is returned to the producer of a stream whose slot id failed
// under the abort policy.
type abortedError struct {
	id  int
	err error
}

func (e abortedError) Error() string {
	return fmt.Sprintf("stream aborted at sentence %d: %v", e.id, e.err)
}
func (e abortedError) Unwrap() error { return e.err }

// IsAborted reports whether err means the stream was aborted at a failed slot.
func IsAborted(err error) bool {
	var ae abortedError
	return errors.As(err, &ae)
}
