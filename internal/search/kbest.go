package search

import (
	"container/heap"
	"sort"
	"strconv"
	"strings"

	"decoderd/internal/feature"
	"decoderd/internal/translation"
)

// path picks one option per source position.
type path struct {
	options []option
	score   float64
}

type scored struct {
	opt   option
	score float64
}

type candidate struct {
	idx   []int
	score float64
}

// candidateHeap pops the highest score first; ties go to the
// lexicographically smallest index vector, which keeps extraction stable.
type candidateHeap []candidate

func (h candidateHeap) Len() int { return len(h) }
func (h candidateHeap) Less(i, j int) bool {
	if h[i].score != h[j].score {
		return h[i].score > h[j].score
	}
	for n := range h[i].idx {
		if h[i].idx[n] != h[j].idx[n] {
			return h[i].idx[n] < h[j].idx[n]
		}
	}
	return false
}
func (h candidateHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *candidateHeap) Push(x any)   { *h = append(*h, x.(candidate)) }
func (h *candidateHeap) Pop() any {
	old := *h
	c := old[len(old)-1]
	*h = old[:len(old)-1]
	return c
}

// enumerate returns the k best paths through lattice under weights. Scores
// are sums of independent per-position scores, so lazy successor expansion
// over per-position sorted lists is exact.
func enumerate(lattice [][]option, weights feature.Vector, k int) []path {
	if k <= 0 || len(lattice) == 0 {
		return nil
	}
	sorted := make([][]scored, len(lattice))
	for i, opts := range lattice {
		if len(opts) == 0 {
			return nil
		}
		col := make([]scored, len(opts))
		for j, o := range opts {
			col[j] = scored{opt: o, score: o.features.Dot(weights)}
		}
		sort.SliceStable(col, func(a, b int) bool { return col[a].score > col[b].score })
		sorted[i] = col
	}
	sum := func(idx []int) float64 {
		var s float64
		for i, j := range idx {
			s += sorted[i][j].score
		}
		return s
	}

	start := make([]int, len(lattice))
	h := &candidateHeap{{idx: start, score: sum(start)}}
	seen := map[string]bool{key(start): true}
	var out []path
	for h.Len() > 0 && len(out) < k {
		c := heap.Pop(h).(candidate)
		p := path{options: make([]option, len(c.idx)), score: c.score}
		for i, j := range c.idx {
			p.options[i] = sorted[i][j].opt
		}
		out = append(out, p)
		for i := range c.idx {
			if c.idx[i]+1 >= len(sorted[i]) {
				continue
			}
			next := append([]int(nil), c.idx...)
			next[i]++
			kk := key(next)
			if seen[kk] {
				continue
			}
			seen[kk] = true
			heap.Push(h, candidate{idx: next, score: sum(next)})
		}
	}
	return out
}

func key(idx []int) string {
	var b strings.Builder
	for i, j := range idx {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(j))
	}
	return b.String()
}

// sortDerivations orders by score, best first, keeping extraction order
// among equal scores.
func sortDerivations(ds []translation.Derivation) {
	sort.SliceStable(ds, func(i, j int) bool { return ds[i].Score > ds[j].Score })
}
