// Package decoder runs translation requests over a fixed pool of workers and
// hands back records in input order. It is structured into small files by
// concern:
//
//   - decoder.go: Decoder type, Config, constructor, DecodeAll/Decode/Shutdown.
//   - pool.go: Pool and Handle, the bounded FIFO worker pool.
//   - dispatcher.go: per-request loop reading sentences and launching tasks.
//   - task.go: per-sentence translation, failure policy, worker release.
//   - stream.go: Stream, the reorder buffer delivering records in id order.
//   - errors.go: error types and helpers (IsPoolClosed, IsDuplicateRecord, ...).
//   - events.go, eventpub_memory.go: lifecycle events and an in-memory publisher.
//   - metrics.go: Prometheus collectors.
//   - serve.go: NDJSON streaming entry point used by the HTTP layer.
//
// Search itself is delegated to Worker implementations; result formatting to
// translation.Assembler.
package decoder
