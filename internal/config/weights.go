package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"decoderd/internal/common/fsutil"
)

// ReadWeights parses "NAME VALUE" lines. Blank lines, lines starting with
// '#' or '//', and lines with a single field are skipped; repeated names
// accumulate.
func ReadWeights(r io.Reader) (map[string]float64, error) {
	out := make(map[string]float64)
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("weights line %d: %s: %w", n, fields[0], err)
		}
		out[fields[0]] += v
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read weights: %w", err)
	}
	return out, nil
}

// ReadWeightsFile opens path (with '~' expansion) and parses it with
// ReadWeights.
func ReadWeightsFile(path string) (map[string]float64, error) {
	f, err := fsutil.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open weights: %w", err)
	}
	defer f.Close()
	return ReadWeights(f)
}

// ParseWeightOverwrite parses a whitespace-separated "name value name value"
// list.
func ParseWeightOverwrite(s string) (map[string]float64, error) {
	fields := strings.Fields(s)
	if len(fields)%2 != 0 {
		return nil, fmt.Errorf("weight overwrite: odd number of fields in %q", s)
	}
	out := make(map[string]float64, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		v, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return nil, fmt.Errorf("weight overwrite %s: %w", fields[i], err)
		}
		out[fields[i]] = v
	}
	return out, nil
}

// ResolveWeights merges, in increasing precedence, the weights file, the
// inline weights map and the overwrite string.
func (c Config) ResolveWeights() (map[string]float64, error) {
	out := make(map[string]float64)
	if c.WeightsFile != "" {
		w, err := ReadWeightsFile(c.WeightsFile)
		if err != nil {
			return nil, err
		}
		for k, v := range w {
			out[k] = v
		}
	}
	for k, v := range c.Weights {
		out[k] = v
	}
	if c.WeightOverwrite != "" {
		w, err := ParseWeightOverwrite(c.WeightOverwrite)
		if err != nil {
			return nil, err
		}
		for k, v := range w {
			out[k] = v
		}
	}
	return out, nil
}
