// Package scoring tracks the opaque forward-state handles produced while a
// sentence is being scored.
//
// A handle usually points at memory owned by a native scorer (a language
// model context, for example) that the Go runtime cannot reclaim. Every state
// created for a sentence is registered in that sentence's Cache and released
// together by ClearPool once the sentence's translation record is built:
//
//   - cache.go: State and Cache (per-sentence registry, idempotent release).
//   - handles.go: HandleTable, an allocator of raw handles that fails loudly on
//     double free, used by in-process stateful features.
package scoring
