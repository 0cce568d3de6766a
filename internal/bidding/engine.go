// Package bidding computes the advertiser's candidate bid for each auction
// from the campaign's bidding strategy plus contextual modifiers: device,
// hour of day, quality score, seasonality, and competitor presence.
package bidding

import (
	"log"
	"math"

	"AdAuctionSim/internal/model"
)

// MinBid is the floor below which no bid is ever submitted.
const MinBid = 0.10

// Context carries the per-auction signals the bid modifiers read.
type Context struct {
	Hour              int
	DayOfWeek         int // 0=Monday
	Month             int // 1-12
	DayOfMonth        int
	Device            model.Device
	QualityScore      float64
	CompetitorDensity float64
	HistoricalCTR     float64
	HistoricalCVR     float64
	KeywordText       string
	MatchType         model.MatchType
	IsHoliday         bool
}

// Engine computes bids for one campaign configuration.
type Engine struct {
	strategy   model.BiddingStrategy
	baseBid    float64
	targetCPA  float64
	targetROAS float64

	historicalCVR   float64
	historicalValue float64

	deviceAdjustments map[model.Device]float64
	hourAdjustments   [24]float64
	seasonality       *SeasonalityModel

	predictor *Predictor
}

// Option configures an Engine.
type Option func(*Engine)

// WithTargets sets the target CPA and target ROAS used by the corresponding
// strategies.
func WithTargets(targetCPA, targetROAS float64) Option {
	return func(e *Engine) {
		if targetCPA > 0 {
			e.targetCPA = targetCPA
		}
		if targetROAS > 0 {
			e.targetROAS = targetROAS
		}
	}
}

// WithDeviceAdjustment overrides the default multiplier for one device.
func WithDeviceAdjustment(device model.Device, adjustment float64) Option {
	return func(e *Engine) { e.deviceAdjustments[device] = adjustment }
}

// WithHourAdjustment overrides the multiplier for one hour of day.
func WithHourAdjustment(hour int, adjustment float64) Option {
	return func(e *Engine) {
		if hour >= 0 && hour < 24 {
			e.hourAdjustments[hour] = adjustment
		}
	}
}

// WithPredictor attaches a trained CTR/CVR predictor. When present, the
// strategy formulas use its predictions instead of the static inputs.
func WithPredictor(p *Predictor) Option {
	return func(e *Engine) { e.predictor = p }
}

// NewEngine creates a bidding engine for the given strategy and base bid.
func NewEngine(strategy model.BiddingStrategy, baseBid float64, industry string, opts ...Option) *Engine {
	e := &Engine{
		strategy:        strategy,
		baseBid:         baseBid,
		targetCPA:       20.0,
		targetROAS:      4.0,
		historicalCVR:   0.05,
		historicalValue: 100.0,
		deviceAdjustments: map[model.Device]float64{
			model.DeviceDesktop: 1.00,
			model.DeviceMobile:  0.85,
			model.DeviceTablet:  0.90,
		},
		hourAdjustments: defaultHourAdjustments(),
		seasonality:     NewSeasonalityModel(industry),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// defaultHourAdjustments boosts business hours and discounts the night.
func defaultHourAdjustments() [24]float64 {
	var adj [24]float64
	for hour := 0; hour < 24; hour++ {
		switch {
		case hour >= 9 && hour <= 17: // business hours
			adj[hour] = 1.15
		case (hour >= 6 && hour <= 8) || (hour >= 18 && hour <= 20): // shoulders
			adj[hour] = 1.05
		case hour >= 21: // late evening
			adj[hour] = 0.95
		default: // night, 0-5
			adj[hour] = 0.85
		}
	}
	return adj
}

// GetBid computes the final bid: strategy base, then device, hour, quality
// score, seasonality, and competition modifiers in that order. Never below
// MinBid.
func (e *Engine) GetBid(cvrHat, valueHat float64, ctx *Context) float64 {
	var bid float64
	if e.predictor != nil && ctx != nil {
		bid = e.predictedBid(ctx)
	} else {
		cvr := e.historicalCVR
		if cvrHat > 0 {
			cvr = cvrHat
		}
		value := e.historicalValue
		if valueHat > 0 {
			value = valueHat
		}
		bid = e.strategyBid(cvr, value)
	}

	if ctx != nil {
		bid *= e.deviceAdjustment(ctx.Device)
		if ctx.Hour >= 0 && ctx.Hour < 24 {
			bid *= e.hourAdjustments[ctx.Hour]
		}

		// Quality score modifier, range 0.7 to 1.3.
		bid *= 0.7 + (ctx.QualityScore/10.0)*0.6

		bid *= e.seasonality.Multiplier(ctx.DayOfWeek, ctx.Month, ctx.DayOfMonth)

		// Competition: lean in when the auction is crowded, save money when
		// it is not.
		if ctx.CompetitorDensity > 0.7 {
			bid *= 1.1
		} else if ctx.CompetitorDensity < 0.3 {
			bid *= 0.9
		}
	}

	return math.Max(MinBid, bid)
}

func (e *Engine) strategyBid(cvr, value float64) float64 {
	switch e.strategy {
	case model.StrategyTargetCPA:
		return e.targetCPA * cvr
	case model.StrategyTargetROAS:
		return (value / e.targetROAS) * cvr
	case model.StrategyMaximizeClicks:
		return e.baseBid * 1.25
	case model.StrategyMaximizeConvs:
		return e.baseBid * (1 + cvr*10)
	}
	return e.baseBid // manual_cpc
}

// predictedBid uses the trained predictor's CTR/CVR estimates in place of the
// static historical inputs.
func (e *Engine) predictedBid(ctx *Context) float64 {
	predCTR := e.predictor.PredictCTR(ctx)
	predCVR := e.predictor.PredictCVR(ctx)

	switch e.strategy {
	case model.StrategyTargetCPA:
		return e.targetCPA * predCVR
	case model.StrategyTargetROAS:
		return (e.historicalValue / e.targetROAS) * predCVR
	}
	return e.baseBid * (1 + predCTR*5)
}

func (e *Engine) deviceAdjustment(d model.Device) float64 {
	if adj, ok := e.deviceAdjustments[d]; ok {
		return adj
	}
	return 1.0
}

// Modifier describes one applied bid adjustment, for explanation output.
type Modifier struct {
	Kind       string
	Multiplier float64
}

// Explain returns the modifier chain GetBid would apply for a context.
// Diagnostic output for reports; not used in the auction path.
func (e *Engine) Explain(ctx *Context) []Modifier {
	mods := []Modifier{
		{Kind: "device", Multiplier: e.deviceAdjustment(ctx.Device)},
	}
	if ctx.Hour >= 0 && ctx.Hour < 24 {
		mods = append(mods, Modifier{Kind: "hour", Multiplier: e.hourAdjustments[ctx.Hour]})
	}
	mods = append(mods,
		Modifier{Kind: "quality_score", Multiplier: 0.7 + (ctx.QualityScore/10.0)*0.6},
		Modifier{Kind: "seasonality", Multiplier: e.seasonality.Multiplier(ctx.DayOfWeek, ctx.Month, ctx.DayOfMonth)},
	)
	switch {
	case ctx.CompetitorDensity > 0.7:
		mods = append(mods, Modifier{Kind: "competition", Multiplier: 1.1})
	case ctx.CompetitorDensity < 0.3:
		mods = append(mods, Modifier{Kind: "competition", Multiplier: 0.9})
	}
	return mods
}

// TrainPredictor builds a predictor from historical results and attaches it.
// On insufficient data the engine keeps the static formula path and reports
// the degradation to the caller.
func (e *Engine) TrainPredictor(history []model.AuctionResult) error {
	p, err := NewPredictor(history)
	if err != nil {
		log.Printf("[WARN] predictor training unavailable, using static bidding: %v", err)
		return err
	}
	e.predictor = p
	return nil
}
