package decoder

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"decoderd/internal/translation"
	"decoderd/pkg/types"
)

func ndjsonLines(t *testing.T, b []byte) []map[string]any {
	t.Helper()
	var out []map[string]any
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m), "ndjson line %q", sc.Text())
		out = append(out, m)
	}
	return out
}

func TestTranslate_StreamsRecordsInOrder(t *testing.T) {
	ws, _ := newWorkers(3, func() *fakeWorker { return &fakeWorker{maxDelay: 2 * time.Millisecond} })
	d := newTestDecoder(t, Config{Workers: ws, Options: templateOpts()})

	var buf bytes.Buffer
	flushes := 0
	req := types.TranslateRequest{Sentences: []string{"a", "b c", "d"}}
	require.NoError(t, d.Translate(context.Background(), req, &buf, func() { flushes++ }))
	assert.Equal(t, 3, flushes)

	var got []translation.Record
	dec := json.NewDecoder(&buf)
	for dec.More() {
		var r translation.Record
		require.NoError(t, dec.Decode(&r))
		got = append(got, r)
	}
	want := []translation.Record{
		{ID: 0, Source: "a", Text: "0 ||| A ||| -1.000"},
		{ID: 1, Source: "b c", Text: "1 ||| B C ||| -2.000"},
		{ID: 2, Source: "d", Text: "2 ||| D ||| -1.000"},
	}
	assert.Empty(t, cmp.Diff(want, got), "records (-want +got)")
}

func TestTranslate_AppliesRequestOptions(t *testing.T) {
	ws, _ := newWorkers(1, func() *fakeWorker { return &fakeWorker{} })
	d := newTestDecoder(t, Config{Workers: ws, Options: templateOpts()})

	structured := true
	var buf bytes.Buffer
	req := types.TranslateRequest{
		Sentences: []string{"the cat"},
		Options:   &types.RequestOptions{UseStructuredOutput: &structured},
	}
	require.NoError(t, d.Translate(context.Background(), req, &buf, nil))
	lines := ndjsonLines(t, buf.Bytes())
	require.Len(t, lines, 1)
	assert.Equal(t, "THE CAT", lines[0]["text"])
	entries, ok := lines[0]["structured"].([]any)
	require.True(t, ok)
	assert.Len(t, entries, 1)
}

func TestTranslate_RejectsBadRequests(t *testing.T) {
	ws, _ := newWorkers(1, func() *fakeWorker { return &fakeWorker{} })
	d := newTestDecoder(t, Config{Workers: ws})

	var buf bytes.Buffer
	err := d.Translate(context.Background(), types.TranslateRequest{}, &buf, nil)
	assert.True(t, IsBadRequest(err))

	neg := -1
	err = d.Translate(context.Background(), types.TranslateRequest{
		Sentences: []string{"a"},
		Options:   &types.RequestOptions{TopN: &neg},
	}, &buf, nil)
	assert.True(t, IsBadRequest(err))
	assert.Zero(t, buf.Len())
}

func TestTranslate_TerminalErrorLine(t *testing.T) {
	ws, _ := newWorkers(2, func() *fakeWorker { return &fakeWorker{failOn: map[int]bool{1: true}} })
	d := newTestDecoder(t, Config{Workers: ws, Policy: Abort, Options: templateOpts()})

	var buf bytes.Buffer
	req := types.TranslateRequest{Sentences: []string{"a", "b", "c"}}
	require.NoError(t, d.Translate(context.Background(), req, &buf, nil))
	lines := ndjsonLines(t, buf.Bytes())
	require.Len(t, lines, 2)
	assert.EqualValues(t, 0, lines[0]["id"])
	assert.Contains(t, lines[1]["error"], "translation failed")
	assert.EqualValues(t, 1, lines[1]["id"])
}
