// Package search is a small reference search collaborator: a monotone
// word-for-word translator over a phrase lexicon with exact k-best
// extraction. It exists to drive the decoder end to end; it is not a chart
// parser.
package search
