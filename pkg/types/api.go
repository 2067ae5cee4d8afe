package types

// TranslateRequest is the body of POST /translate.
type TranslateRequest struct {
	// Sentences to translate; ids are assigned from 0 in order.
	// example: ["das haus ist klein", "der hund"]
	Sentences []string `json:"sentences" example:"[\"das haus ist klein\"]"`
	// Per-request overrides of the server's assembly options.
	Options *RequestOptions `json:"options,omitempty"`
}

// RequestOptions overrides server defaults; nil fields keep the default.
type RequestOptions struct {
	// Emit ranked structured entries instead of template text.
	// example: false
	UseStructuredOutput *bool `json:"use_structured_output,omitempty" example:"false"`
	// Number of derivations to extract; 0 selects Viterbi-only output.
	// example: 3
	TopN *int `json:"top_n,omitempty" example:"3"`
	// Output template.
	// example: %i ||| %s ||| %c
	OutputFormat *string `json:"output_format,omitempty" example:"%i ||| %s ||| %c"`
	// Run the three-pass forest rescoring on k-best output.
	// example: false
	RescoreForest *bool `json:"rescore_forest,omitempty" example:"false"`
	// Weight delta applied to the rescoring feature in the second pass.
	// example: 10
	RescoreForestWeight *float64 `json:"rescore_forest_weight,omitempty" example:"10"`
	// Feature boosted by rescoring.
	// example: BLEU
	RescoreForestFeature *string `json:"rescore_forest_feature,omitempty" example:"BLEU"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// StreamError is the terminal NDJSON line of a translation stream that
// ended with an error.
type StreamError struct {
	// example: reading input: unexpected EOF
	Error string `json:"error"`
	// Sentence id at which the stream stopped, when known.
	ID *int `json:"id,omitempty"`
}

// PoolStatus summarizes worker pool occupancy for /status.
type PoolStatus struct {
	// example: 4
	Capacity int `json:"capacity" example:"4"`
	// example: 3
	Idle int `json:"idle" example:"3"`
	// example: 1
	InUse int `json:"in_use" example:"1"`
	// Dispatchers waiting for a worker.
	// example: 0
	Waiting int `json:"waiting" example:"0"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	Pool PoolStatus `json:"pool"`
	// Number of entries in the weight store.
	// example: 5
	Weights int `json:"weights" example:"5"`
	// Configured feature functions.
	// example: ["WordPenalty","OOVPenalty"]
	Features []string `json:"features"`
	// ready or draining
	// example: ready
	State string `json:"state" example:"ready"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
