// Package competitor maintains a pool of synthetic bidding profiles that
// adapt once per simulated day in response to auction outcomes and the
// advertiser's own bid.
package competitor

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
)

// StrategyTag labels a competitor's temperament.
type StrategyTag string

const (
	StrategyConservative StrategyTag = "conservative"
	StrategyBalanced     StrategyTag = "balanced"
	StrategyAggressive   StrategyTag = "aggressive"
)

// Bid bounds for adjusted competitor bids.
const (
	minCompetitorBid = 0.10
	maxCompetitorBid = 10.0
)

// Profile is one synthetic competitor. It lives for the whole run and
// mutates once per simulated day during the learning step.
type Profile struct {
	ID             string
	BaseBid        float64
	QualityScore   float64
	Aggressiveness float64 // 0-1
	LearningRate   float64
	Strategy       StrategyTag

	WinRate     float64
	AvgPosition float64
	TotalSpend  float64
	TotalClicks float64
}

// Engine manages the competitor pool and its daily learning step.
type Engine struct {
	competitors       map[string]*Profile
	order             []string // stable iteration order
	marketCompetition float64
	auctionsRecorded  int
}

// NewEngine seeds a pool of n competitors (10 when n <= 0) cycling through
// the conservative/balanced/aggressive temperaments with ramped traits.
func NewEngine(n int, marketCompetition float64) *Engine {
	if n <= 0 {
		n = 10
	}
	if marketCompetition <= 0 {
		marketCompetition = 0.7
	}
	e := &Engine{
		competitors:       make(map[string]*Profile, n),
		marketCompetition: marketCompetition,
	}

	strategies := []StrategyTag{StrategyConservative, StrategyBalanced, StrategyAggressive}
	for i := 0; i < n; i++ {
		strategy := strategies[i%3]

		var baseBid, aggressiveness, learningRate float64
		switch strategy {
		case StrategyConservative:
			baseBid = 0.5 + float64(i)*0.1
			aggressiveness = 0.3 + float64(i)*0.05
			learningRate = 0.1
		case StrategyAggressive:
			baseBid = 1.5 + float64(i)*0.2
			aggressiveness = 0.7 + float64(i)*0.05
			learningRate = 0.3
		default:
			baseBid = 1.0 + float64(i)*0.15
			aggressiveness = 0.5 + float64(i)*0.05
			learningRate = 0.2
		}

		// Deterministic quality spread concentrated in the 3-7 band.
		qs := 5.0 + math.Sin(float64(i))*2
		qs = math.Max(3.0, math.Min(7.0, qs))

		id := fmt.Sprintf("comp_%d", i)
		e.competitors[id] = &Profile{
			ID:             id,
			BaseBid:        baseBid,
			QualityScore:   qs,
			Aggressiveness: math.Min(1.0, aggressiveness),
			LearningRate:   learningRate,
			Strategy:       strategy,
			AvgPosition:    5.0,
		}
		e.order = append(e.order, id)
	}
	return e
}

// Size returns the number of competitors in the pool.
func (e *Engine) Size() int { return len(e.order) }

// Profiles returns the pool in stable order.
func (e *Engine) Profiles() []*Profile {
	out := make([]*Profile, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.competitors[id])
	}
	return out
}

// RecordAuction feeds an auction outcome back into the pool: the winner's
// win rate and position move by an exponential moving average (alpha 0.9),
// everyone else's win rate decays.
func (e *Engine) RecordAuction(winnerID string, position int) {
	e.auctionsRecorded++
	for _, id := range e.order {
		c := e.competitors[id]
		if id == winnerID {
			c.WinRate = c.WinRate*0.9 + 0.1
			c.AvgPosition = c.AvgPosition*0.9 + float64(position)*0.1
		} else {
			c.WinRate *= 0.9
		}
	}
}

// AdjustBids runs the daily learning step and returns each competitor's bid
// for the new day, clamped to [0.10, 10.0]. The step also folds the adjusted
// bid back into the profile's base bid (0.8/0.2 blend).
func (e *Engine) AdjustBids(advertiserBid float64, day int) map[string]float64 {
	adjusted := make(map[string]float64, len(e.order))

	for _, id := range e.order {
		c := e.competitors[id]
		bid := c.BaseBid

		// Losing too often: push the bid up. Winning too often: trim it
		// back to save budget.
		if c.WinRate < 0.2 {
			bid *= 1.0 + c.LearningRate*c.Aggressiveness*0.3
		} else if c.WinRate > 0.6 {
			bid *= 1.0 - c.LearningRate*0.2
		}

		// Competitive response: close part of the gap to a higher
		// advertiser bid, scaled by temperament.
		if advertiserBid > bid {
			bid += (advertiserBid - bid) * c.Aggressiveness * 0.5
		}

		// Position correction for competitors stuck below slot 3.
		if c.AvgPosition > 3.0 {
			bid *= 1.0 + (c.AvgPosition-3.0)*0.1
		}

		// Strategy drift over the simulated horizon.
		switch c.Strategy {
		case StrategyAggressive:
			bid *= 1.0 + float64(day)*0.01
		case StrategyConservative:
			bid *= 1.0 - float64(day)*0.005
		}

		bid *= e.marketCompetition

		// Bounded deterministic fluctuation seeded from a stable hash of
		// the competitor id, never a process-dependent hash.
		bid *= 1.0 + math.Sin(float64(day)+float64(stableHash(id)))*0.05

		c.BaseBid = c.BaseBid*0.8 + bid*0.2

		adjusted[id] = math.Max(minCompetitorBid, math.Min(maxCompetitorBid, bid))
	}
	return adjusted
}

// stableHash maps an id to [0, 1000) identically across processes and runs.
func stableHash(id string) uint64 {
	sum := sha256.Sum256([]byte(id))
	return binary.BigEndian.Uint64(sum[:8]) % 1000
}

// Insight summarizes one competitor for end-of-run reporting.
type Insight struct {
	ID          string
	Strategy    StrategyTag
	WinRate     float64
	AvgPosition float64
	CurrentBid  float64
}

// Insights returns the top competitors by win rate plus pool-level counts.
func (e *Engine) Insights(topN int) (top []Insight, byStrategy map[StrategyTag]int) {
	byStrategy = map[StrategyTag]int{}
	all := make([]Insight, 0, len(e.order))
	for _, id := range e.order {
		c := e.competitors[id]
		byStrategy[c.Strategy]++
		all = append(all, Insight{
			ID:          c.ID,
			Strategy:    c.Strategy,
			WinRate:     c.WinRate,
			AvgPosition: c.AvgPosition,
			CurrentBid:  c.BaseBid,
		})
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].WinRate > all[j].WinRate })
	if topN > len(all) {
		topN = len(all)
	}
	return all[:topN], byStrategy
}

// MarketShift applies a scenario event to the pool.
type MarketShift string

const (
	ShiftNewEntrant           MarketShift = "new_entrant"
	ShiftBudgetCuts           MarketShift = "budget_cuts"
	ShiftIncreasedCompetition MarketShift = "increased_competition"
)

// ApplyMarketShift mutates the pool for a configured market event:
// a new aggressive entrant, across-the-board budget cuts, or a general
// aggressiveness increase.
func (e *Engine) ApplyMarketShift(shift MarketShift) {
	switch shift {
	case ShiftNewEntrant:
		id := fmt.Sprintf("comp_new_%d", len(e.order))
		e.competitors[id] = &Profile{
			ID:             id,
			BaseBid:        2.0,
			QualityScore:   6.0,
			Aggressiveness: 0.9,
			LearningRate:   0.4,
			Strategy:       StrategyAggressive,
			AvgPosition:    5.0,
		}
		e.order = append(e.order, id)
	case ShiftBudgetCuts:
		for _, id := range e.order {
			e.competitors[id].BaseBid *= 0.8
		}
	case ShiftIncreasedCompetition:
		for _, id := range e.order {
			c := e.competitors[id]
			c.Aggressiveness = math.Min(1.0, c.Aggressiveness*1.3)
		}
	}
}
