package types

import "decoderd/internal/translation"

// Apply returns base with every non-nil override from o applied.
func (o *RequestOptions) Apply(base translation.Options) translation.Options {
	if o == nil {
		return base
	}
	if o.UseStructuredOutput != nil {
		base.UseStructuredOutput = *o.UseStructuredOutput
	}
	if o.TopN != nil {
		base.TopN = *o.TopN
	}
	if o.OutputFormat != nil {
		base.OutputFormat = *o.OutputFormat
	}
	if o.RescoreForest != nil {
		base.RescoreForest = *o.RescoreForest
	}
	if o.RescoreForestWeight != nil {
		base.RescoreForestWeight = *o.RescoreForestWeight
	}
	if o.RescoreForestFeature != nil {
		base.RescoreForestFeature = *o.RescoreForestFeature
	}
	return base
}
