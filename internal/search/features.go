package search

import (
	"fmt"
	"math"

	"decoderd/internal/feature"
	"decoderd/internal/scoring"
)

// Feature names provided by this package.
const (
	WordPenaltyName   = "WordPenalty"
	OOVPenaltyName    = "OOVPenalty"
	RepeatPenaltyName = "RepeatPenalty"
)

// Local is a feature scored on one translation option in isolation.
type Local interface {
	feature.Function
	Value(target []string, oov bool) float64
}

// WordPenalty charges -1/ln(10) per target word.
type WordPenalty struct{}

var wordPenaltyUnit = -1 / math.Ln10

func (WordPenalty) Name() string { return WordPenaltyName }
func (WordPenalty) Value(target []string, _ bool) float64 {
	return wordPenaltyUnit * float64(len(target))
}

// OOVPenalty fires once per source word missing from the lexicon.
type OOVPenalty struct{}

func (OOVPenalty) Name() string { return OOVPenaltyName }
func (OOVPenalty) Value(_ []string, oov bool) float64 {
	if oov {
		return 1
	}
	return 0
}

// RepeatPenalty counts target words equal to the word emitted just before
// them. The last emitted word is carried between options as a scoring state
// whose raw handle lives in a shared HandleTable.
type RepeatPenalty struct {
	table *scoring.HandleTable
}

// NewRepeatPenalty returns a RepeatPenalty allocating its states in table.
func NewRepeatPenalty(table *scoring.HandleTable) *RepeatPenalty {
	return &RepeatPenalty{table: table}
}

func (f *RepeatPenalty) Name() string { return RepeatPenaltyName }

func (f *RepeatPenalty) Score(tokens []string, prev *scoring.State, cache *scoring.Cache) (float64, *scoring.State) {
	last := ""
	if prev.Valid() {
		if v, ok := f.table.Get(prev.Raw()); ok {
			last = v.(string)
		}
	}
	n := 0
	for _, tok := range tokens {
		if tok == last {
			n++
		}
		last = tok
	}
	return float64(n), cache.Create(f.table.Alloc(last), f.table)
}

// RegisterFeatures adds this package's feature functions to reg. Stateful
// features allocate their states in table.
func RegisterFeatures(reg *feature.Registry, table *scoring.HandleTable) error {
	noArgs := func(name string, f feature.Function) feature.Constructor {
		return func(args []string) (feature.Function, error) {
			if len(args) != 0 {
				return nil, fmt.Errorf("%s takes no arguments", name)
			}
			return f, nil
		}
	}
	if err := reg.Register(WordPenaltyName, noArgs(WordPenaltyName, WordPenalty{})); err != nil {
		return err
	}
	if err := reg.Register(OOVPenaltyName, noArgs(OOVPenaltyName, OOVPenalty{})); err != nil {
		return err
	}
	return reg.Register(RepeatPenaltyName, func(args []string) (feature.Function, error) {
		if len(args) != 0 {
			return nil, fmt.Errorf("%s takes no arguments", RepeatPenaltyName)
		}
		return NewRepeatPenalty(table), nil
	})
}
