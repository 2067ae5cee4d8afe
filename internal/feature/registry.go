package feature

import (
	"fmt"
	"sort"
	"strings"

	"decoderd/internal/scoring"
)

// Function is a named feature function.
type Function interface {
	Name() string
}

// Stateful is a feature whose score depends on context carried from the
// previous extension step. Score returns the score of tokens given prev and
// the forward state to carry into the next step. Returned states are
// registered in cache and released with it.
type Stateful interface {
	Function
	Score(tokens []string, prev *scoring.State, cache *scoring.Cache) (float64, *scoring.State)
}

// Constructor builds a feature function from its config line arguments.
type Constructor func(args []string) (Function, error)

// Registry maps feature names to constructors. It is filled once at startup;
// lookups are plain map reads.
type Registry struct {
	ctors map[string]Constructor
}

func NewRegistry() *Registry {
	return &Registry{ctors: make(map[string]Constructor)}
}

// Register adds a constructor. Registering the same name twice is an error.
func (r *Registry) Register(name string, c Constructor) error {
	if name == "" || c == nil {
		return fmt.Errorf("feature: invalid registration %q", name)
	}
	if _, dup := r.ctors[name]; dup {
		return fmt.Errorf("feature: %q already registered", name)
	}
	r.ctors[name] = c
	return nil
}

// MustRegister is Register that panics on error.
func (r *Registry) MustRegister(name string, c Constructor) {
	if err := r.Register(name, c); err != nil {
		panic(err)
	}
}

// Build instantiates the feature described by line, "NAME [args...]".
func (r *Registry) Build(line string) (Function, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, fmt.Errorf("feature: empty feature line")
	}
	c, ok := r.ctors[fields[0]]
	if !ok {
		return nil, unknownFeatureError{name: fields[0], known: r.Names()}
	}
	f, err := c(fields[1:])
	if err != nil {
		return nil, fmt.Errorf("feature %q: %w", line, err)
	}
	return f, nil
}

// BuildAll instantiates every line in order.
func (r *Registry) BuildAll(lines []string) ([]Function, error) {
	out := make([]Function, 0, len(lines))
	for _, l := range lines {
		f, err := r.Build(l)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.ctors))
	for k := range r.ctors {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type unknownFeatureError struct {
	name  string
	known []string
}

func (e unknownFeatureError) Error() string {
	return fmt.Sprintf("unknown feature function %q (known: %s)", e.name, strings.Join(e.known, ", "))
}

// IsUnknownFeature reports whether err was caused by an unregistered name.
func IsUnknownFeature(err error) bool {
	_, ok := err.(unknownFeatureError)
	return ok
}
