// Package auction resolves generalized-second-price auctions against a
// synthetic competitor field. Every step is a pure function of its inputs:
// the same query in the same context always produces the same outcome.
package auction

import (
	"math"
	"sort"
	"strings"

	"AdAuctionSim/internal/model"
)

// Defaults for the auction mechanics.
const (
	defaultNumSlots       = 4
	defaultPriceIncrement = 0.01
	competitorPoolSize    = 10
)

// industryCompetition maps an industry label to its baseline competitor
// density. Unknown industries use "default".
var industryCompetition = map[string]float64{
	"finance":   0.9,
	"insurance": 0.85,
	"legal":     0.8,
	"ecommerce": 0.7,
	"b2b":       0.6,
	"education": 0.5,
	"default":   0.65,
}

// commercialTerms score the purchase intent of a query. The strongest
// matching term wins; informational terms score low.
var commercialTerms = map[string]float64{
	"buy": 0.9, "purchase": 0.85, "price": 0.8, "cheap": 0.75,
	"best": 0.7, "review": 0.65, "compare": 0.6, "deal": 0.75,
	"discount": 0.7, "sale": 0.75, "shop": 0.8, "order": 0.85,
	"how": 0.3, "what": 0.25, "why": 0.2, "where": 0.35,
}

// hourlyDistribution is the search-volume share per hour of day. Sums to 1.
var hourlyDistribution = [24]float64{
	0.02, 0.01, 0.01, 0.01, 0.02, 0.03,
	0.04, 0.05, 0.06, 0.07, 0.08, 0.08,
	0.07, 0.07, 0.06, 0.06, 0.07, 0.08,
	0.07, 0.06, 0.05, 0.04, 0.03, 0.02,
}

// HourlyDistribution returns the hour-of-day search volume curve, shared
// with the driver's query-volume estimate.
func HourlyDistribution() [24]float64 { return hourlyDistribution }

// IndustryCompetition returns the baseline competitor density for an
// industry label.
func IndustryCompetition(industry string) float64 {
	if v, ok := industryCompetition[industry]; ok {
		return v
	}
	return industryCompetition["default"]
}

// Signals are the per-query auction context derived from the query text and
// the simulation clock. Computed fresh for each auction, never persisted.
type Signals struct {
	Device             model.Device
	Geo                string
	UserIntent         float64
	Hour               int
	DayOfWeek          int
	IsRemarketing      bool
	QueryLength        int
	CompetitorPresence float64
}

// CompetitorBid is one non-advertiser participant. ID is empty for the
// synthetic long-tail field and set for learned pool members.
type CompetitorBid struct {
	ID           string
	Bid          float64
	QualityScore float64
}

// Entrant is one advertiser ad entering the auction.
type Entrant struct {
	Ad           *model.Ad
	Bid          float64
	QualityScore float64
	BaseCTR      float64
	PredictedCVR float64
}

// Request carries everything one auction needs.
type Request struct {
	Query          string
	MatchedKeyword string
	Entrants       []Entrant
	// LearnedPool holds bids from the persistent competitor pool for this
	// day; the synthetic field is generated on top of it.
	LearnedPool []CompetitorBid

	Hour      int
	DayOfWeek int
	Device    model.Device
	Geo       string
	Industry  string

	RevenuePerConversion float64
}

// Outcome is one resolved auction. Results holds only advertiser slots;
// LearnedWinners reports learned-pool competitors that took slots, for
// feedback into their win-rate averages.
type Outcome struct {
	Results        []model.AuctionResult
	Signals        Signals
	LearnedWinners []LearnedWin
}

// LearnedWin is a learned competitor's slot in one auction.
type LearnedWin struct {
	ID       string
	Position int
}

// Engine runs GSP auctions. Stateless; safe for concurrent use.
type Engine struct {
	numSlots       int
	priceIncrement float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithSlots overrides the number of paid slots per results page.
func WithSlots(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.numSlots = n
		}
	}
}

// WithPriceIncrement overrides the GSP price increment.
func WithPriceIncrement(inc float64) Option {
	return func(e *Engine) {
		if inc > 0 {
			e.priceIncrement = inc
		}
	}
}

// NewEngine creates an auction engine with 4 slots and a $0.01 increment
// unless overridden.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		numSlots:       defaultNumSlots,
		priceIncrement: defaultPriceIncrement,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DeriveSignals computes the auction context for a query: commercial intent
// from the term lexicon, competitor presence from industry and query
// complexity, and a remarketing flag for high-intent long queries.
func (e *Engine) DeriveSignals(query string, hour, dayOfWeek int, device model.Device, geo, industry string) Signals {
	queryLower := strings.ToLower(query)

	intent := 0.0
	for term, score := range commercialTerms {
		if strings.Contains(queryLower, term) && score > intent {
			intent = score
		}
	}
	if intent == 0 {
		intent = 0.4
	}

	words := len(strings.Fields(query))
	complexity := math.Min(1.0, 0.5+float64(words)*0.1)

	presence := math.Min(0.95, IndustryCompetition(industry)*intent*complexity)

	return Signals{
		Device:             device,
		Geo:                geo,
		UserIntent:         intent,
		Hour:               hour,
		DayOfWeek:          dayOfWeek,
		IsRemarketing:      intent > 0.6 && words >= 3,
		QueryLength:        words,
		CompetitorPresence: presence,
	}
}

// generateCompetitorBids builds the synthetic long-tail field. Pool size
// scales with competitor presence; strength follows a bell curve over market
// rank, so mid-field competitors bid hardest.
func (e *Engine) generateCompetitorBids(sig Signals, advertiserBid float64) []CompetitorBid {
	n := int(competitorPoolSize * sig.CompetitorPresence)
	bids := make([]CompetitorBid, 0, n)
	for i := 0; i < n; i++ {
		rank := float64(i) / math.Max(1, float64(n-1))
		strength := 0.3 + 0.7*math.Sin(rank*math.Pi)

		marketAwareBase := advertiserBid * (0.7 + rank*0.6)
		intentMult := 0.8 + sig.UserIntent*0.4
		hourMult := 0.9 + hourlyDistribution[sig.Hour]*2

		bids = append(bids, CompetitorBid{
			Bid:          marketAwareBase * strength * intentMult * hourMult,
			QualityScore: 3 + strength*7,
		})
	}
	return bids
}

// positionCTRMultipliers decay CTR down the page.
var positionCTRMultipliers = [4]float64{1.0, 0.75, 0.55, 0.40}

func positionCTRMultiplier(position int) float64 {
	if position >= 1 && position <= len(positionCTRMultipliers) {
		return positionCTRMultipliers[position-1]
	}
	return 0.3
}

var deviceCTRMultipliers = map[model.Device]float64{
	model.DeviceMobile:  0.85,
	model.DeviceDesktop: 1.0,
	model.DeviceTablet:  0.9,
}

// expectedPerformance derives impressions, clicks and conversions as rounded
// expectations; no sampling anywhere.
func (e *Engine) expectedPerformance(ctr, cvr float64, position int, sig Signals) (impressions, clicks, conversions int) {
	adjusted := ctr * positionCTRMultiplier(position)

	if m, ok := deviceCTRMultipliers[sig.Device]; ok {
		adjusted *= m
	}
	adjusted *= 0.8 + hourlyDistribution[sig.Hour]*4

	if sig.IsRemarketing {
		adjusted *= 1.3
		cvr *= 1.5
	}

	impressions = int(100 * sig.UserIntent * sig.CompetitorPresence)
	if impressions < 1 {
		impressions = 1
	}

	clicks = int(math.Round(float64(impressions) * adjusted))
	if clicks < 0 {
		clicks = 0
	}
	conversions = int(math.Round(float64(clicks) * cvr))
	if conversions < 0 {
		conversions = 0
	}
	return impressions, clicks, conversions
}

// participant is one ranked auction entry.
type participant struct {
	entrantIdx int    // index into Request.Entrants, -1 for competitors
	learnedID  string // non-empty for learned pool members
	bid        float64
	qs         float64
	adRank     float64
}

// Run resolves one GSP auction. Participants are ranked by ad rank
// (bid x quality score); each winner pays the ad rank of the participant
// below them divided by its own quality score, plus the increment, capped at
// its own bid. The bottom slot pays the bare increment.
func (e *Engine) Run(req Request) Outcome {
	sig := e.DeriveSignals(req.Query, req.Hour, req.DayOfWeek, req.Device, req.Geo, req.Industry)

	// The synthetic field anchors on the strongest entrant bid, so the
	// market scales with the advertiser rather than a fixed dollar floor.
	maxBid := 1.0
	if len(req.Entrants) > 0 {
		maxBid = req.Entrants[0].Bid
		for _, ent := range req.Entrants[1:] {
			if ent.Bid > maxBid {
				maxBid = ent.Bid
			}
		}
	}

	participants := make([]participant, 0, len(req.Entrants)+len(req.LearnedPool)+competitorPoolSize)
	for i, ent := range req.Entrants {
		participants = append(participants, participant{
			entrantIdx: i,
			bid:        ent.Bid,
			qs:         ent.QualityScore,
			adRank:     ent.Bid * ent.QualityScore,
		})
	}
	for _, c := range req.LearnedPool {
		participants = append(participants, participant{
			entrantIdx: -1,
			learnedID:  c.ID,
			bid:        c.Bid,
			qs:         c.QualityScore,
			adRank:     c.Bid * c.QualityScore,
		})
	}
	for _, c := range e.generateCompetitorBids(sig, maxBid) {
		participants = append(participants, participant{
			entrantIdx: -1,
			bid:        c.Bid,
			qs:         c.QualityScore,
			adRank:     c.Bid * c.QualityScore,
		})
	}

	eligible := make([]participant, 0, len(participants))
	for _, p := range participants {
		if p.adRank > 0 {
			eligible = append(eligible, p)
		}
	}
	// Ties keep input order (advertiser entrants first), which the
	// determinism contract needs.
	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].adRank > eligible[j].adRank
	})

	out := Outcome{Signals: sig}
	if len(eligible) == 0 {
		return out
	}

	revenuePerConv := req.RevenuePerConversion
	if revenuePerConv <= 0 {
		revenuePerConv = 100.0
	}

	slots := e.numSlots
	if slots > len(eligible) {
		slots = len(eligible)
	}
	for pos := 0; pos < slots; pos++ {
		winner := eligible[pos]

		if winner.entrantIdx < 0 {
			if winner.learnedID != "" {
				out.LearnedWinners = append(out.LearnedWinners, LearnedWin{
					ID:       winner.learnedID,
					Position: pos + 1,
				})
			}
			continue
		}

		var cpc float64
		if pos+1 < len(eligible) {
			cpc = eligible[pos+1].adRank/winner.qs + e.priceIncrement
		} else {
			cpc = e.priceIncrement
		}
		if cpc > winner.bid {
			cpc = winner.bid
		}

		ent := req.Entrants[winner.entrantIdx]
		impressions, clicks, conversions := e.expectedPerformance(ent.BaseCTR, ent.PredictedCVR, pos+1, sig)

		cost := cpc * float64(clicks)
		revenue := float64(conversions) * revenuePerConv

		out.Results = append(out.Results, model.AuctionResult{
			Query:          req.Query,
			MatchedKeyword: req.MatchedKeyword,
			AdID:           ent.Ad.ID,
			AdRank:         round2(winner.adRank),
			CPC:            round2(cpc),
			Position:       pos + 1,
			Impressions:    impressions,
			Clicks:         clicks,
			Conversions:    conversions,
			Cost:           round2(cost),
			Revenue:        round2(revenue),
			Device:         req.Device,
			Geo:            req.Geo,
		})
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
