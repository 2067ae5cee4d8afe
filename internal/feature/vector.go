package feature

import (
	"fmt"
	"sort"
	"strings"
)

// Vector maps feature names to values. It is used both for per-derivation
// feature breakdowns and for weight snapshots.
type Vector map[string]float64

// Clone returns an independent copy of v.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	for k, x := range v {
		out[k] = x
	}
	return out
}

// Add accumulates o into v in place.
func (v Vector) Add(o Vector) {
	for k, x := range o {
		v[k] += x
	}
}

// Plus returns v+o without modifying either.
func (v Vector) Plus(o Vector) Vector {
	out := v.Clone()
	out.Add(o)
	return out
}

// With returns a copy of v with name increased by delta.
func (v Vector) With(name string, delta float64) Vector {
	out := v.Clone()
	out[name] += delta
	return out
}

// Dot returns the weighted sum of v under weights. Missing weights count as 0.
func (v Vector) Dot(weights Vector) float64 {
	var sum float64
	for _, k := range v.Names() {
		sum += v[k] * weights[k]
	}
	return sum
}

// Names returns the feature names in sorted order.
func (v Vector) Names() []string {
	names := make([]string, 0, len(v))
	for k := range v {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// TextFormat renders v as space-joined name=value pairs in name order.
func (v Vector) TextFormat() string {
	var b strings.Builder
	for i, k := range v.Names() {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%.3f", k, v[k])
	}
	return b.String()
}
