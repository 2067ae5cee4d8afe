package feature

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedFeature string

func (n namedFeature) Name() string { return string(n) }

func TestVector_TextFormatSorted(t *testing.T) {
	v := Vector{"tm_pt_0": -1.5, "OOVPenalty": 1, "WordPenalty": -0.8686}
	assert.Equal(t, "OOVPenalty=1.000 WordPenalty=-0.869 tm_pt_0=-1.500", v.TextFormat())
	assert.Equal(t, "", Vector{}.TextFormat())
}

func TestVector_DotAndWith(t *testing.T) {
	v := Vector{"a": 2, "b": 3}
	w := Vector{"a": 0.5, "c": 10}
	assert.InDelta(t, 1.0, v.Dot(w), 1e-12)

	boosted := w.With("b", 2)
	assert.Equal(t, 2.0, boosted["b"])
	_, touched := w["b"]
	assert.False(t, touched, "With must not modify the receiver")
}

func TestVector_PlusDoesNotAlias(t *testing.T) {
	a := Vector{"x": 1}
	b := Vector{"x": 2, "y": 1}
	sum := a.Plus(b)
	assert.Empty(t, cmp.Diff(Vector{"x": 3, "y": 1}, sum), "sum (-want +got)")
	assert.Equal(t, Vector{"x": 1}, a)
}

func TestWeights_SnapshotIsolation(t *testing.T) {
	w := NewWeights(Vector{"lm_0": 1.25})
	snap := w.Snapshot()
	snap["lm_0"] = 99
	assert.Equal(t, 1.25, w.Get("lm_0"))

	w.Increment("lm_0", 0.25)
	w.Set("tm_0", -1)
	assert.Equal(t, 1.5, w.Get("lm_0"))
	assert.Equal(t, 2, w.Len())
}

func TestWeights_ConcurrentReadersSeeWholeVectors(t *testing.T) {
	w := NewWeights(Vector{"a": 0, "b": 0})
	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i <= 500; i++ {
			w.mu.Lock()
			w.v["a"] = float64(i)
			w.v["b"] = float64(-i)
			w.mu.Unlock()
		}
		close(stop)
	}()
	for {
		select {
		case <-stop:
			wg.Wait()
			return
		default:
		}
		s := w.Snapshot()
		require.Zero(t, math.Abs(s["a"]+s["b"]), "torn vector %v", s)
	}
}

func TestRegistry_BuildResolvesByName(t *testing.T) {
	r := NewRegistry()
	var gotArgs []string
	r.MustRegister("WordPenalty", func(args []string) (Function, error) {
		gotArgs = args
		return namedFeature("WordPenalty"), nil
	})
	f, err := r.Build("WordPenalty -weight 2")
	require.NoError(t, err)
	assert.Equal(t, "WordPenalty", f.Name())
	assert.Equal(t, []string{"-weight", "2"}, gotArgs)

	_, err = r.Build("LanguageModel")
	require.Error(t, err)
	assert.True(t, IsUnknownFeature(err))

	_, err = r.Build("   ")
	assert.Error(t, err)
}

func TestRegistry_DuplicateAndConstructorErrors(t *testing.T) {
	r := NewRegistry()
	ctor := func([]string) (Function, error) { return nil, errors.New("bad args") }
	require.NoError(t, r.Register("X", ctor))
	assert.Error(t, r.Register("X", ctor))
	assert.Panics(t, func() { r.MustRegister("X", ctor) })

	_, err := r.BuildAll([]string{"X"})
	assert.ErrorContains(t, err, "bad args")
	assert.Equal(t, []string{"X"}, r.Names())
}
