package quality

import (
	"math"

	"AdAuctionSim/internal/model"
)

// Base CTR uplift per extension type at quality 1.0.
var extensionCTRUplift = map[model.ExtensionType]float64{
	model.ExtSitelink:          0.20,
	model.ExtCallout:           0.10,
	model.ExtStructuredSnippet: 0.08,
	model.ExtCall:              0.15,
	model.ExtLocation:          0.12,
	model.ExtPrice:             0.18,
	model.ExtApp:               0.10,
	model.ExtPromotion:         0.22,
	model.ExtImage:             0.25,
}

// Quality score uplift contributed per extension type.
var extensionQSUplift = map[model.ExtensionType]float64{
	model.ExtSitelink:          0.30,
	model.ExtCallout:           0.20,
	model.ExtStructuredSnippet: 0.15,
	model.ExtCall:              0.25,
	model.ExtLocation:          0.20,
	model.ExtPrice:             0.15,
	model.ExtApp:               0.15,
	model.ExtPromotion:         0.20,
	model.ExtImage:             0.30,
}

const (
	defaultCTRUplift = 0.10
	defaultQSUplift  = 0.15

	// Diminishing returns: more than four extensions caps the multiplier.
	manyExtensions  = 4
	ctrUpliftCap    = 1.5
	qsUpliftCap     = 2.0
)

// ExtensionCTRMultiplier returns the combined multiplicative CTR uplift for a
// set of extensions. No extensions means no uplift (1.0).
func (e *Engine) ExtensionCTRMultiplier(extensions []model.AdExtension) float64 {
	if len(extensions) == 0 {
		return 1.0
	}
	mult := 1.0
	for _, ext := range extensions {
		uplift, ok := extensionCTRUplift[ext.Type]
		if !ok {
			uplift = defaultCTRUplift
		}
		mult *= 1.0 + uplift*ext.EffectiveQuality()
	}
	if len(extensions) > manyExtensions {
		mult = math.Min(mult, ctrUpliftCap)
	}
	return mult
}

// ExtensionQSBoost lifts a base quality score by the extensions' contribution,
// capped at +2.0 points and clamped back into [1, 10].
func (e *Engine) ExtensionQSBoost(extensions []model.AdExtension, baseQS float64) float64 {
	if len(extensions) == 0 {
		return baseQS
	}
	boost := 0.0
	for _, ext := range extensions {
		uplift, ok := extensionQSUplift[ext.Type]
		if !ok {
			uplift = defaultQSUplift
		}
		boost += uplift * ext.EffectiveQuality()
	}
	boost = math.Min(boost, qsUpliftCap)
	return clampQS(baseQS + boost)
}
