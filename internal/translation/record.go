package translation

import "decoderd/internal/feature"

// Record is the finished translation of one sentence.
type Record struct {
	ID     int    `json:"id"`
	Source string `json:"source"`
	// Text is the rendered output: template lines (k-best and rescoring
	// passes joined by newlines) or, in structured mode, the best string.
	Text       string       `json:"text"`
	Structured []Structured `json:"structured,omitempty"`
	// Diagnostic is set when the record replaces a failed translation.
	Diagnostic string `json:"diagnostic,omitempty"`
}

// Structured is one ranked hypothesis in structured output mode.
type Structured struct {
	Translation string             `json:"translation"`
	Score       float64            `json:"score"`
	Features    map[string]float64 `json:"features,omitempty"`
	Alignment   string             `json:"alignment,omitempty"`
}

// Derivation is a complete hypothesis extracted from a search result.
type Derivation struct {
	// String is the raw surface string, sentence markers included.
	String    string
	Score     float64
	Features  feature.Vector
	Alignment string
}

// SearchResult is the derivation space produced by a worker for one
// sentence. A nil SearchResult means the search failed.
type SearchResult interface {
	// BestString returns the Viterbi surface string, sentence markers included.
	BestString() string
	BestScore() float64
	// BestAlignment and BestFeatures may be expensive; callers only ask
	// when the output needs them.
	BestAlignment() string
	BestFeatures() feature.Vector
	// KBest returns up to k derivations, best first, scored under weights.
	// The order is deterministic for fixed inputs.
	KBest(k int, weights feature.Vector) ([]Derivation, error)
}

func emptyStructured() Structured {
	return Structured{Translation: "", Score: 0, Features: map[string]float64{}}
}

func toStructured(d Derivation) Structured {
	return Structured{
		Translation: RemoveSentenceMarkers(d.String),
		Score:       d.Score,
		Features:    map[string]float64(d.Features.Clone()),
		Alignment:   d.Alignment,
	}
}
