// Package input provides sentence sources for the decoder: plain text with
// one sentence per line, NDJSON objects, and in-memory slices.
package input

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"decoderd/internal/translation"
)

// maxLine bounds a single input line.
const maxLine = 1 << 20

// LineSource reads one sentence per line, numbering them from 0.
type LineSource struct {
	sc     *bufio.Scanner
	opts   translation.Options
	nextID int
}

// NewLineSource reads sentences from r with options opts.
func NewLineSource(r io.Reader, opts translation.Options) *LineSource {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	return &LineSource{sc: sc, opts: opts}
}

// Next returns the next sentence, or io.EOF after the last line.
func (l *LineSource) Next(ctx context.Context) (*translation.Sentence, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !l.sc.Scan() {
		if err := l.sc.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	s := translation.NewSentence(l.nextID, strings.TrimRight(l.sc.Text(), "\r"), l.opts)
	l.nextID++
	return s, nil
}

// SliceSource yields a fixed list of sentences.
type SliceSource struct {
	sentences []string
	opts      translation.Options
	pos       int
}

// NewSliceSource returns a source over sentences with ids 0..len-1.
func NewSliceSource(sentences []string, opts translation.Options) *SliceSource {
	return &SliceSource{sentences: sentences, opts: opts}
}

func (s *SliceSource) Next(ctx context.Context) (*translation.Sentence, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.pos >= len(s.sentences) {
		return nil, io.EOF
	}
	sent := translation.NewSentence(s.pos, s.sentences[s.pos], s.opts)
	s.pos++
	return sent, nil
}

// jsonLine is one object of a JSONSource stream.
type jsonLine struct {
	ID   *int   `json:"id,omitempty"`
	Text string `json:"text"`
}

// JSONSource reads a stream of {"id": n, "text": "..."} objects. Objects
// without an id continue the numbering from the previous one.
type JSONSource struct {
	dec    *json.Decoder
	opts   translation.Options
	nextID int
}

// NewJSONSource decodes sentences from r.
func NewJSONSource(r io.Reader, opts translation.Options) *JSONSource {
	return &JSONSource{dec: json.NewDecoder(r), opts: opts}
}

func (j *JSONSource) Next(ctx context.Context) (*translation.Sentence, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var line jsonLine
	if err := j.dec.Decode(&line); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("decode sentence %d: %w", j.nextID, err)
	}
	id := j.nextID
	if line.ID != nil {
		id = *line.ID
	}
	j.nextID = id + 1
	return translation.NewSentence(id, line.Text, j.opts), nil
}
