package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"decoderd/internal/config"
	"decoderd/internal/httpapi"
	"decoderd/internal/tracing"
)

const serviceVersion = "0.1.0"

func newServeCmd(f *cliFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Short:   "Run the HTTP translation API",
		Example: "  decoderd serve --lexicon lex.txt --weights weights.txt --threads 8",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Flags(), f)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, newLogger(cfg.LogLevel, stderr))
		},
	}
}

// runServe serves until ctx is canceled or the listener fails, then drains
// the HTTP server and the decoder within the shutdown timeout.
func runServe(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	stopTracing, err := startTracing(cfg.TraceFile, log)
	if err != nil {
		return err
	}
	defer stopTracing()

	d, err := buildDecoder(cfg, log)
	if err != nil {
		return err
	}

	httpapi.SetLogger(log)
	httpapi.SetBaseContext(ctx)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetTranslateTimeoutSeconds(cfg.TranslateTimeoutSec)
	httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSAllowedOrigins, cfg.CORSAllowedMethods, cfg.CORSAllowedHeaders)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewMux(d),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.Addr).Int("threads", cfg.Threads).Msg("decoderd listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutSec)*time.Second)
		defer cancel()
		log.Info().Msg("shutting down")
		herr := srv.Shutdown(sctx)
		derr := d.Shutdown(sctx)
		return errors.Join(herr, derr)
	})
	return g.Wait()
}

// startTracing installs the span exporter when path is set. The returned
// func flushes it.
func startTracing(path string, log zerolog.Logger) (func(), error) {
	if path == "" {
		return func() {}, nil
	}
	shutdown, err := tracing.Init("decoderd", serviceVersion, path)
	if err != nil {
		return nil, err
	}
	log.Info().Str("file", path).Msg("tracing enabled")
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("tracing shutdown")
		}
	}, nil
}
