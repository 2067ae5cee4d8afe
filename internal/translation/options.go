package translation

// DefaultOutputFormat is the template used when none is configured.
const DefaultOutputFormat = "%i ||| %s ||| %f ||| %c"

// DefaultRescoreFeature is the feature boosted by forest rescoring.
const DefaultRescoreFeature = "BLEU"

// Options are the per-request settings that control result assembly.
type Options struct {
	UseStructuredOutput  bool    `json:"use_structured_output" yaml:"use_structured_output" toml:"use_structured_output"`
	TopN                 int     `json:"top_n" yaml:"top_n" toml:"top_n"`
	OutputFormat         string  `json:"output_format" yaml:"output_format" toml:"output_format"`
	RescoreForest        bool    `json:"rescore_forest" yaml:"rescore_forest" toml:"rescore_forest"`
	RescoreForestWeight  float64 `json:"rescore_forest_weight" yaml:"rescore_forest_weight" toml:"rescore_forest_weight"`
	RescoreForestFeature string  `json:"rescore_forest_feature,omitempty" yaml:"rescore_forest_feature" toml:"rescore_forest_feature"`
}

// DefaultOptions mirrors the decoder's stock configuration: 1-best k-best
// extraction rendered through DefaultOutputFormat.
func DefaultOptions() Options {
	return Options{
		TopN:                 1,
		OutputFormat:         DefaultOutputFormat,
		RescoreForestFeature: DefaultRescoreFeature,
	}
}

func (o Options) rescoreFeature() string {
	if o.RescoreForestFeature == "" {
		return DefaultRescoreFeature
	}
	return o.RescoreForestFeature
}
