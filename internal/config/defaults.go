package config

import (
	"runtime"

	"decoderd/internal/translation"
)

// Defaults used when a field is left unspecified.
const (
	DefaultAddr            = ":8080"
	DefaultMaxBodyBytes    = 1 << 20
	DefaultShutdownTimeout = 10
	DefaultLogLevel        = "info"
	DefaultFailurePolicy   = "isolate"
)

// Defaults fills unspecified fields of c.
func (c Config) Defaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.Threads <= 0 {
		c.Threads = runtime.GOMAXPROCS(0)
	}
	if c.TopN == nil {
		n := 1
		c.TopN = &n
	}
	if c.OutputFormat == "" {
		c.OutputFormat = translation.DefaultOutputFormat
	}
	if c.RescoreForestFeature == "" {
		c.RescoreForestFeature = translation.DefaultRescoreFeature
	}
	if c.FailurePolicy == "" {
		c.FailurePolicy = DefaultFailurePolicy
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.ShutdownTimeoutSec <= 0 {
		c.ShutdownTimeoutSec = DefaultShutdownTimeout
	}
	return c
}

// Options returns the assembly options described by c.
func (c Config) Options() translation.Options {
	opts := translation.DefaultOptions()
	if c.TopN != nil {
		opts.TopN = *c.TopN
	}
	if c.OutputFormat != "" {
		opts.OutputFormat = c.OutputFormat
	}
	if c.RescoreForestFeature != "" {
		opts.RescoreForestFeature = c.RescoreForestFeature
	}
	opts.UseStructuredOutput = c.UseStructuredOutput
	opts.RescoreForest = c.RescoreForest
	opts.RescoreForestWeight = c.RescoreForestWeight
	return opts
}
