package search

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"decoderd/internal/common/fsutil"
	"decoderd/internal/feature"
)

const fieldSep = "|||"

// Entry is one translation option for a source word.
type Entry struct {
	Target   []string
	Features feature.Vector
}

// Lexicon maps a source word to its options in file order.
type Lexicon struct {
	entries map[string][]Entry
	size    int
}

// NewLexicon returns an empty lexicon.
func NewLexicon() *Lexicon { return &Lexicon{entries: make(map[string][]Entry)} }

// Add appends an option for src.
func (l *Lexicon) Add(src string, e Entry) {
	l.entries[src] = append(l.entries[src], e)
	l.size++
}

// Lookup returns the options for src, nil if unknown.
func (l *Lexicon) Lookup(src string) []Entry { return l.entries[src] }

// Len returns the number of entries.
func (l *Lexicon) Len() int { return l.size }

// LoadLexicon reads a lexicon file, see ParseLexicon.
func LoadLexicon(path string) (*Lexicon, error) {
	f, err := fsutil.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open lexicon: %w", err)
	}
	defer f.Close()
	return ParseLexicon(f)
}

// ParseLexicon reads lines of the form
//
//	src ||| target words ||| name=value name=value
//
// The feature field is optional and an empty target deletes the word. Blank
// lines and lines starting with '#' are skipped.
func ParseLexicon(r io.Reader) (*Lexicon, error) {
	lex := NewLexicon()
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, fieldSep)
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("lexicon line %d: want 2 or 3 %q-separated fields", n, fieldSep)
		}
		src := strings.Fields(parts[0])
		if len(src) != 1 {
			return nil, fmt.Errorf("lexicon line %d: source must be a single word, got %q", n, strings.TrimSpace(parts[0]))
		}
		e := Entry{Target: strings.Fields(parts[1]), Features: feature.Vector{}}
		if len(parts) == 3 {
			for _, kv := range strings.Fields(parts[2]) {
				name, val, ok := strings.Cut(kv, "=")
				if !ok || name == "" {
					return nil, fmt.Errorf("lexicon line %d: bad feature %q", n, kv)
				}
				x, err := strconv.ParseFloat(val, 64)
				if err != nil {
					return nil, fmt.Errorf("lexicon line %d: feature %s: %w", n, name, err)
				}
				e.Features[name] += x
			}
		}
		lex.Add(src[0], e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}
	return lex, nil
}
