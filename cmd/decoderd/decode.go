package main

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"decoderd/internal/config"
	"decoderd/internal/decoder"
	"decoderd/internal/input"
)

func newDecodeCmd(f *cliFlags) *cobra.Command {
	var jsonOut, jsonIn bool
	cmd := &cobra.Command{
		Use:     "decode",
		Short:   "Translate stdin to stdout, one sentence per line, in input order",
		Example: "  decoderd decode --lexicon lex.txt --top-n 5 < input.txt",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Flags(), f)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			log := newLogger(cfg.LogLevel, stderr)
			stopTracing, err := startTracing(cfg.TraceFile, log)
			if err != nil {
				return err
			}
			defer stopTracing()
			return runDecode(ctx, cfg, log, cmd.InOrStdin(), cmd.OutOrStdout(), jsonIn, jsonOut)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit one JSON record per line")
	cmd.Flags().BoolVar(&jsonIn, "json-input", false, `Read {"id":N,"text":"..."} objects instead of plain lines`)
	return cmd
}

// runDecode streams records for every sentence of in to out. Text mode
// writes each record's rendered text; k-best records span several lines.
func runDecode(ctx context.Context, cfg config.Config, log zerolog.Logger, in io.Reader, out io.Writer, jsonIn, jsonOut bool) error {
	d, err := buildDecoder(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = d.Shutdown(context.Background()) }()

	var src decoder.Source = input.NewLineSource(in, cfg.Options())
	if jsonIn {
		src = input.NewJSONSource(in, cfg.Options())
	}

	bw := bufio.NewWriter(out)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	for rec, err := range d.DecodeAll(ctx, src).All(ctx) {
		if err != nil {
			_ = bw.Flush()
			return err
		}
		if jsonOut {
			err = enc.Encode(rec)
		} else {
			_, err = io.WriteString(bw, rec.Text+"\n")
		}
		if err == nil {
			err = bw.Flush()
		}
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}
