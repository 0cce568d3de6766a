package bidding

import (
	"errors"
	"fmt"

	"AdAuctionSim/internal/model"
)

// ErrNoTrainingData means the history was too small to fit a predictor;
// callers fall back to the static bidding path.
var ErrNoTrainingData = errors.New("bidding: not enough history to train predictor")

// minTrainingRows is the smallest history that produces stable bucket
// averages.
const minTrainingRows = 50

// bucketKey groups observations that share the contextual features with the
// strongest CTR/CVR signal.
type bucketKey struct {
	device   model.Device
	hourBand int // 0: night 0-5, 1: morning 6-11, 2: afternoon 12-17, 3: evening 18-23
	weekend  bool
}

type bucketStats struct {
	impressions int
	clicks      int
	conversions int
}

// Predictor estimates per-context CTR and CVR from bucketed empirical
// averages over historical auction results.
type Predictor struct {
	buckets map[bucketKey]*bucketStats
	global  bucketStats
}

// NewPredictor fits a predictor from historical results. Returns
// ErrNoTrainingData when the history cannot support one.
func NewPredictor(history []model.AuctionResult) (*Predictor, error) {
	if len(history) < minTrainingRows {
		return nil, fmt.Errorf("%w: have %d rows, need %d", ErrNoTrainingData, len(history), minTrainingRows)
	}

	p := &Predictor{buckets: map[bucketKey]*bucketStats{}}
	for i := range history {
		r := &history[i]
		key := keyFor(r.Device, r.Hour, r.DayOfWeek)
		b, ok := p.buckets[key]
		if !ok {
			b = &bucketStats{}
			p.buckets[key] = b
		}
		b.impressions += r.Impressions
		b.clicks += r.Clicks
		b.conversions += r.Conversions
		p.global.impressions += r.Impressions
		p.global.clicks += r.Clicks
		p.global.conversions += r.Conversions
	}
	if p.global.impressions == 0 {
		return nil, fmt.Errorf("%w: history has no impressions", ErrNoTrainingData)
	}
	return p, nil
}

func keyFor(device model.Device, hour, dayOfWeek int) bucketKey {
	band := 0
	switch {
	case hour >= 6 && hour <= 11:
		band = 1
	case hour >= 12 && hour <= 17:
		band = 2
	case hour >= 18:
		band = 3
	}
	return bucketKey{device: device, hourBand: band, weekend: dayOfWeek >= 5}
}

// PredictCTR estimates clicks per impression for the context, falling back to
// the global average, then the context's historical CTR, for thin buckets.
func (p *Predictor) PredictCTR(ctx *Context) float64 {
	if b, ok := p.buckets[keyFor(ctx.Device, ctx.Hour, ctx.DayOfWeek)]; ok && b.impressions > 0 {
		return float64(b.clicks) / float64(b.impressions)
	}
	if p.global.impressions > 0 {
		return float64(p.global.clicks) / float64(p.global.impressions)
	}
	return ctx.HistoricalCTR
}

// PredictCVR estimates conversions per click for the context, with the same
// fallback chain as PredictCTR.
func (p *Predictor) PredictCVR(ctx *Context) float64 {
	if b, ok := p.buckets[keyFor(ctx.Device, ctx.Hour, ctx.DayOfWeek)]; ok && b.clicks > 0 {
		return float64(b.conversions) / float64(b.clicks)
	}
	if p.global.clicks > 0 {
		return float64(p.global.conversions) / float64(p.global.clicks)
	}
	return ctx.HistoricalCVR
}
