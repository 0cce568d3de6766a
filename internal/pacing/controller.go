// Package pacing distributes a daily budget across 24 hours and throttles
// bids to keep cumulative spend on the configured curve.
package pacing

import "math"

// Strategy selects the hourly budget distribution curve.
type Strategy string

const (
	StrategyStandard    Strategy = "standard"
	StrategyAccelerated Strategy = "accelerated"
	StrategyEven        Strategy = "even"
)

// Throttle bounds.
const (
	// Below this throttle the controller is effectively paused.
	minParticipationThrottle = 0.1
	maxThrottle              = 3.0
)

// standardCurve follows typical search volume: business hours heavy,
// overnight light. Sums to 1.0.
var standardCurve = [24]float64{
	0.02, 0.01, 0.01, 0.01, 0.02, 0.03, // 12am-5am
	0.04, 0.05, 0.06, 0.07, 0.08, 0.08, // 6am-11am
	0.07, 0.07, 0.06, 0.06, 0.07, 0.08, // 12pm-5pm
	0.07, 0.06, 0.05, 0.04, 0.03, 0.02, // 6pm-11pm
}

// acceleratedCurve front-loads spend into the early hours.
var acceleratedCurve = [24]float64{
	0.10, 0.09, 0.08, 0.08, 0.07, 0.07,
	0.06, 0.06, 0.05, 0.05, 0.04, 0.04,
	0.03, 0.03, 0.03, 0.02, 0.02, 0.02,
	0.02, 0.02, 0.01, 0.01, 0.01, 0.01,
}

// Controller is the per-day budget pacing state machine. Reset it at the
// start of each simulated day; it is not safe for concurrent use.
type Controller struct {
	dailyBudget float64
	beta        float64 // aggressiveness, scales the final throttle
	strategy    Strategy

	hourlyCurve   [24]float64
	hourlyBudgets [24]float64
	hourlySpend   [24]float64

	totalSpend     float64
	currentHour    int
	throttleFactor float64
}

// NewController creates a pacing controller. beta defaults to 0.8 when not
// positive; unknown strategies fall back to the even curve.
func NewController(dailyBudget, beta float64, strategy Strategy) *Controller {
	if beta <= 0 {
		beta = 0.8
	}
	c := &Controller{
		dailyBudget:    dailyBudget,
		beta:           beta,
		strategy:       strategy,
		throttleFactor: 1.0,
	}
	c.hourlyCurve = curveFor(strategy)
	for h := 0; h < 24; h++ {
		c.hourlyBudgets[h] = dailyBudget * c.hourlyCurve[h]
	}
	return c
}

// NewControllerWithCurve uses a caller-provided hourly curve, normalized to
// sum to 1.0.
func NewControllerWithCurve(dailyBudget, beta float64, curve [24]float64) *Controller {
	c := NewController(dailyBudget, beta, StrategyEven)
	total := 0.0
	for _, v := range curve {
		total += v
	}
	if total > 0 {
		for h := 0; h < 24; h++ {
			c.hourlyCurve[h] = curve[h] / total
			c.hourlyBudgets[h] = dailyBudget * c.hourlyCurve[h]
		}
	}
	return c
}

func curveFor(strategy Strategy) [24]float64 {
	switch strategy {
	case StrategyStandard:
		return standardCurve
	case StrategyAccelerated:
		return acceleratedCurve
	}
	var even [24]float64
	for h := range even {
		even[h] = 1.0 / 24.0
	}
	return even
}

// HourlyCurve returns the normalized hourly distribution in use.
func (c *Controller) HourlyCurve() [24]float64 { return c.hourlyCurve }

// ThrottleFactor returns the current bid multiplier.
func (c *Controller) ThrottleFactor() float64 { return c.throttleFactor }

// TotalSpend returns cumulative spend for the current day.
func (c *Controller) TotalSpend() float64 { return c.totalSpend }

// ResetDaily clears all per-day state for a new simulated day.
func (c *Controller) ResetDaily() {
	c.totalSpend = 0
	c.currentHour = 0
	c.throttleFactor = 1.0
	c.hourlySpend = [24]float64{}
}

// UpdateHour advances the controller to a new hour and recomputes the
// throttle from the spend observed so far. Hours must be visited in
// increasing order within a day.
func (c *Controller) UpdateHour(hour int) {
	if hour >= 0 && hour < 24 {
		c.currentHour = hour
	}
	c.recalculateThrottle()
}

// RecordSpend books spend against the current hour.
func (c *Controller) RecordSpend(amount float64) {
	c.totalSpend += amount
	c.hourlySpend[c.currentHour] += amount
}

// ApplyThrottle scales a bid by the current throttle factor.
func (c *Controller) ApplyThrottle(bid float64) float64 {
	return bid * c.throttleFactor
}

// ShouldParticipate reports whether the campaign should enter further
// auctions this hour. False once the budget is exhausted, the throttle has
// collapsed, or the hour has burned far past its cumulative target.
func (c *Controller) ShouldParticipate() bool {
	if c.totalSpend >= c.dailyBudget {
		return false
	}
	if c.throttleFactor < minParticipationThrottle {
		return false
	}
	// Early-exhaustion guard: 50% past the expected cumulative spend for
	// this point in the day means stop and let the next hour recover.
	if c.totalSpend > c.expectedSpendThroughCurrentHour()*1.5 {
		return false
	}
	return true
}

func (c *Controller) expectedSpendThroughCurrentHour() float64 {
	expected := 0.0
	for h := 0; h <= c.currentHour; h++ {
		expected += c.hourlyBudgets[h]
	}
	return expected
}

// recalculateThrottle reruns the pacing control law:
// overspending throttles down, underspending boosts, both asymmetric.
func (c *Controller) recalculateThrottle() {
	if c.totalSpend >= c.dailyBudget {
		c.throttleFactor = 0
		return
	}

	expected := c.expectedSpendThroughCurrentHour()
	spendRate := 0.0
	if expected > 0 {
		spendRate = c.totalSpend / expected
	}

	switch {
	case spendRate > 1.3:
		// Severely over pace: hard cut.
		c.throttleFactor = math.Max(0.2, 1.0/(spendRate*1.2))
	case spendRate > 1.1:
		c.throttleFactor = math.Max(0.5, 1.0/spendRate)
	case spendRate < 0.7:
		// Well under pace: boost to catch up.
		c.throttleFactor = math.Min(1.8, 1.0+(1.0-spendRate)*0.5)
	case spendRate < 0.9:
		c.throttleFactor = math.Min(1.3, 1.0+(1.0-spendRate)*0.3)
	default:
		c.throttleFactor = 1.0
	}

	if c.strategy == StrategyAccelerated {
		c.throttleFactor = math.Min(2.0, c.throttleFactor*1.5)
	}

	c.throttleFactor *= c.beta
	c.throttleFactor = math.Max(0, math.Min(maxThrottle, c.throttleFactor))
}

// Status is a point-in-time snapshot of the pacing state.
type Status struct {
	TotalSpend        float64
	DailyBudget       float64
	CurrentHour       int
	ThrottleFactor    float64
	ExpectedSpend     float64
	SpendRate         float64
	BudgetRemaining   float64
	BudgetUtilization float64 // percent
	ShouldParticipate bool
}

// GetStatus returns the current pacing snapshot.
func (c *Controller) GetStatus() Status {
	expected := c.expectedSpendThroughCurrentHour()
	rate := 1.0
	if expected > 0 {
		rate = c.totalSpend / expected
	}
	return Status{
		TotalSpend:        c.totalSpend,
		DailyBudget:       c.dailyBudget,
		CurrentHour:       c.currentHour,
		ThrottleFactor:    c.throttleFactor,
		ExpectedSpend:     expected,
		SpendRate:         rate,
		BudgetRemaining:   c.dailyBudget - c.totalSpend,
		BudgetUtilization: c.totalSpend / c.dailyBudget * 100,
		ShouldParticipate: c.ShouldParticipate(),
	}
}

// Forecast projects end-of-day spend from the pace so far.
type Forecast struct {
	PredictedSpend    float64
	WillExhaustBudget bool
	ExhaustionHour    int // -1 when the budget is projected to survive
}

// PredictEndOfDaySpend extrapolates the remaining hourly targets through the
// current throttle.
func (c *Controller) PredictEndOfDaySpend() Forecast {
	hoursElapsed := c.currentHour + 1
	remaining := 0.0
	for h := hoursElapsed; h < 24; h++ {
		remaining += c.hourlyBudgets[h]
	}
	predicted := c.totalSpend + remaining*c.throttleFactor

	f := Forecast{PredictedSpend: predicted, ExhaustionHour: -1}
	if predicted >= c.dailyBudget {
		f.WillExhaustBudget = true
		hourlyAvg := c.totalSpend / float64(hoursElapsed)
		if hourlyAvg > 0 {
			until := (c.dailyBudget - c.totalSpend) / hourlyAvg
			f.ExhaustionHour = min(23, c.currentHour+int(until))
		}
	}
	return f
}
