package decoder

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"decoderd/internal/input"
	"decoderd/pkg/types"
)

// Translate decodes req and streams its records to w as NDJSON, one record
// per line in sentence order, calling flush after each line. A stream that
// fails mid-way ends with a types.StreamError line and Translate returns nil;
// errors returned before the first write are request errors.
func (d *Decoder) Translate(ctx context.Context, req types.TranslateRequest, w io.Writer, flush func()) error {
	if len(req.Sentences) == 0 {
		return badRequestError{msg: "sentences are required"}
	}
	opts := req.Options.Apply(d.defaults)
	if opts.TopN < 0 {
		return badRequestError{msg: "top_n must be >= 0"}
	}
	if !d.Ready() {
		return ErrPoolClosed
	}
	st := d.DecodeAll(ctx, input.NewSliceSource(req.Sentences, opts))
	return d.writeNDJSON(ctx, st, w, flush)
}

func (d *Decoder) writeNDJSON(ctx context.Context, st *Stream, w io.Writer, flush func()) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for {
		rec, err := st.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				go d.discard(st)
				return ctx.Err()
			}
			line := types.StreamError{Error: err.Error()}
			var te translateError
			if errors.As(err, &te) {
				id := te.id
				line.ID = &id
			}
			if werr := enc.Encode(line); werr != nil {
				return werr
			}
			if flush != nil {
				flush()
			}
			return nil
		}
		if err := enc.Encode(rec); err != nil {
			go d.discard(st)
			return err
		}
		if flush != nil {
			flush()
		}
	}
}

// discard drains an abandoned stream so in-flight records are not held.
func (d *Decoder) discard(st *Stream) {
	n := 0
	for _, err := range st.All(context.Background()) {
		if err != nil {
			break
		}
		n++
	}
	d.log.Debug().Str("stream", st.ID()).Int("dropped", n).Msg("abandoned stream drained")
}
