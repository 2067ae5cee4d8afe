package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the decoder and its HTTP server.
// Zero values mean "unspecified" and are replaced by Defaults.
type Config struct {
	Addr string `json:"addr" yaml:"addr" toml:"addr"`

	// Threads is the number of translation workers.
	Threads         int                `json:"threads" yaml:"threads" toml:"threads"`
	Lexicon         string             `json:"lexicon" yaml:"lexicon" toml:"lexicon"`
	WeightsFile     string             `json:"weights_file" yaml:"weights_file" toml:"weights_file"`
	Weights         map[string]float64 `json:"weights" yaml:"weights" toml:"weights"`
	WeightOverwrite string             `json:"weight_overwrite" yaml:"weight_overwrite" toml:"weight_overwrite"`
	Features        []string           `json:"features" yaml:"features" toml:"features"`

	// TopN is a pointer because 0 (Viterbi only) is a meaningful setting.
	TopN                 *int    `json:"top_n" yaml:"top_n" toml:"top_n"`
	OutputFormat         string  `json:"output_format" yaml:"output_format" toml:"output_format"`
	UseStructuredOutput  bool    `json:"use_structured_output" yaml:"use_structured_output" toml:"use_structured_output"`
	RescoreForest        bool    `json:"rescore_forest" yaml:"rescore_forest" toml:"rescore_forest"`
	RescoreForestWeight  float64 `json:"rescore_forest_weight" yaml:"rescore_forest_weight" toml:"rescore_forest_weight"`
	RescoreForestFeature string  `json:"rescore_forest_feature" yaml:"rescore_forest_feature" toml:"rescore_forest_feature"`

	ReorderWatermark int    `json:"reorder_watermark" yaml:"reorder_watermark" toml:"reorder_watermark"`
	FailurePolicy    string `json:"failure_policy" yaml:"failure_policy" toml:"failure_policy"`

	LogLevel  string `json:"log_level" yaml:"log_level" toml:"log_level"`
	TraceFile string `json:"trace_file" yaml:"trace_file" toml:"trace_file"`

	MaxBodyBytes        int64    `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	TranslateTimeoutSec int64    `json:"translate_timeout_seconds" yaml:"translate_timeout_seconds" toml:"translate_timeout_seconds"`
	CORSEnabled         bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSAllowedOrigins  []string `json:"cors_allowed_origins" yaml:"cors_allowed_origins" toml:"cors_allowed_origins"`
	CORSAllowedMethods  []string `json:"cors_allowed_methods" yaml:"cors_allowed_methods" toml:"cors_allowed_methods"`
	CORSAllowedHeaders  []string `json:"cors_allowed_headers" yaml:"cors_allowed_headers" toml:"cors_allowed_headers"`
	ShutdownTimeoutSec  int64    `json:"shutdown_timeout_seconds" yaml:"shutdown_timeout_seconds" toml:"shutdown_timeout_seconds"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
