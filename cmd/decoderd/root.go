package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"decoderd/internal/config"
)

// cliFlags holds values that override the config file when set explicitly.
type cliFlags struct {
	configPath   string
	lexicon      string
	weights      string
	threads      int
	topN         int
	outputFormat string
	logLevel     string
	addr         string
	traceFile    string
	structured   bool
	policy       string
	watermark    int
	corsOrigins  string
}

func newRootCmd() *cobra.Command { return newRootCmdWith(&cliFlags{}) }

// newRootCmdWith builds the command tree with flag values bound to f.
func newRootCmdWith(f *cliFlags) *cobra.Command {
	root := &cobra.Command{
		Use:           "decoderd",
		Short:         "Parallel translation decoder with ordered streaming output",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.configPath, "config", os.Getenv("DECODERD_CONFIG"), "Config file (.yaml, .yml, .json, .toml)")
	pf.StringVar(&f.lexicon, "lexicon", "", "Lexicon file (src ||| tgt ||| features)")
	pf.StringVar(&f.weights, "weights", "", "Weights file (NAME VALUE per line)")
	pf.IntVar(&f.threads, "threads", 0, "Number of translation workers (default GOMAXPROCS)")
	pf.IntVar(&f.topN, "top-n", 1, "Derivations per sentence; 0 prints the Viterbi result only")
	pf.StringVar(&f.outputFormat, "output-format", "", "Output template (%i %s %f %c %a)")
	pf.StringVar(&f.logLevel, "log-level", "", "Log level: debug|info|warn|error")
	pf.StringVar(&f.traceFile, "trace-file", "", "Write per-sentence trace spans to this file")
	pf.BoolVar(&f.structured, "structured", false, "Emit ranked structured entries instead of template text")
	pf.StringVar(&f.policy, "failure-policy", "", "Per-sentence failure handling: isolate|abort")
	pf.IntVar(&f.watermark, "watermark", 0, "Max undelivered records per request (0=unbounded)")

	serve := newServeCmd(f)
	serve.Flags().StringVar(&f.addr, "addr", envOr("DECODERD_ADDR", config.DefaultAddr), "HTTP listen address, e.g. :8080")
	serve.Flags().StringVar(&f.corsOrigins, "cors-origins", "", "Comma-separated CORS origins; enables CORS when set")

	root.AddCommand(serve, newDecodeCmd(f))
	return root
}

// loadConfig reads the config file, if any, and applies flags the user set.
func loadConfig(fs *pflag.FlagSet, f *cliFlags) (config.Config, error) {
	var cfg config.Config
	if f.configPath != "" {
		c, err := config.Load(f.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = c
	}
	set := func(name string, apply func()) {
		if fl := fs.Lookup(name); fl != nil && fl.Changed {
			apply()
		}
	}
	set("lexicon", func() { cfg.Lexicon = f.lexicon })
	set("weights", func() { cfg.WeightsFile = f.weights })
	set("threads", func() { cfg.Threads = f.threads })
	set("top-n", func() { cfg.TopN = &f.topN })
	set("output-format", func() { cfg.OutputFormat = f.outputFormat })
	set("log-level", func() { cfg.LogLevel = f.logLevel })
	set("trace-file", func() { cfg.TraceFile = f.traceFile })
	set("structured", func() { cfg.UseStructuredOutput = f.structured })
	set("failure-policy", func() { cfg.FailurePolicy = f.policy })
	set("watermark", func() { cfg.ReorderWatermark = f.watermark })
	set("cors-origins", func() {
		cfg.CORSAllowedOrigins = splitCSV(f.corsOrigins)
		cfg.CORSEnabled = len(cfg.CORSAllowedOrigins) > 0
	})
	if fl := fs.Lookup("addr"); fl != nil && (fl.Changed || cfg.Addr == "") {
		cfg.Addr = f.addr
	}
	cfg = cfg.Defaults()
	if cfg.Lexicon == "" {
		return cfg, fmt.Errorf("a lexicon is required (--lexicon or config lexicon)")
	}
	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
