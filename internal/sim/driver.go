// Package sim orchestrates full campaign simulations: it walks the
// day/hour/keyword/device/query grid, resolves every auction through the
// engine stack, and returns the flat result table plus run counters.
//
// All pseudo-randomness is seeded from the campaign configuration, so the
// same scenario always reproduces the same output byte for byte.
package sim

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"strings"
	"time"

	"AdAuctionSim/internal/auction"
	"AdAuctionSim/internal/bidding"
	"AdAuctionSim/internal/competitor"
	"AdAuctionSim/internal/match"
	"AdAuctionSim/internal/model"
	"AdAuctionSim/internal/pacing"
	"AdAuctionSim/internal/planner"
	"AdAuctionSim/internal/quality"
)

// Fatal precondition failures. The run aborts with no results.
var (
	ErrNoKeywords = errors.New("sim: no keywords configured")
	ErrNoAds      = errors.New("sim: no ads configured")
)

// advertiserID marks the advertiser as an auction winner in the competitor
// pool's learning feedback.
const advertiserID = "advertiser"

// queryVariantLimit bounds the variant pool generated per keyword.
const queryVariantLimit = 8

// deviceSplit is the fixed device traffic distribution.
var deviceSplit = []struct {
	device model.Device
	share  float64
}{
	{model.DeviceDesktop, 0.70},
	{model.DeviceMobile, 0.20},
	{model.DeviceTablet, 0.10},
}

// ShiftEvent applies a market shift to the competitor pool at the start of
// the given simulated day (0-based).
type ShiftEvent struct {
	Day   int
	Shift competitor.MarketShift
}

// Scenario is the full input to one simulation run.
type Scenario struct {
	Campaign model.Campaign
	AdGroups []model.AdGroup
	Keywords []model.Keyword
	Ads      []model.Ad

	Days                 int
	Industry             string
	StartDate            time.Time // calendar anchor for seasonality; defaults to a fixed Monday
	RevenuePerConversion float64

	PacingStrategy pacing.Strategy
	PacingBeta     float64

	NumCompetitors int
	MarketShifts   []ShiftEvent
}

// Result is the output of one run.
type Result struct {
	Rows  []model.AuctionResult
	Stats *model.RunStats
	Seed  uint32

	TopCompetitors []competitor.Insight
	StrategyCounts map[competitor.StrategyTag]int
}

// Seed derives the run seed from the campaign name and the sorted keyword
// texts. SHA256 keeps it stable across processes.
func Seed(campaignName string, keywords []model.Keyword) uint32 {
	texts := make([]string, 0, len(keywords))
	for i := range keywords {
		texts = append(texts, keywords[i].Text)
	}
	sort.Strings(texts)
	concat := campaignName + "_" + strings.Join(texts, "|")
	sum := sha256.Sum256([]byte(concat))
	// The hash taken as a big integer mod 2^32 is its low four bytes.
	return binary.BigEndian.Uint32(sum[28:32])
}

// Driver runs simulations. One driver can serve many runs; per-run state
// lives on the stack of Run.
type Driver struct {
	resolver *planner.Resolver
	matcher  *match.Engine
	quality  *quality.Engine
	auctions *auction.Engine

	history  []model.AuctionResult
	progress func(day, totalDays int)
}

// Option configures a Driver.
type Option func(*Driver)

// WithProgress installs a per-day progress callback.
func WithProgress(fn func(day, totalDays int)) Option {
	return func(d *Driver) { d.progress = fn }
}

// WithBidHistory supplies prior-run results for the bidding engine's
// empirical CTR/CVR predictor. Insufficient history degrades to the static
// formula path with a warning.
func WithBidHistory(rows []model.AuctionResult) Option {
	return func(d *Driver) { d.history = rows }
}

// WithAuctionEngine overrides the default auction mechanics.
func WithAuctionEngine(e *auction.Engine) Option {
	return func(d *Driver) { d.auctions = e }
}

// NewDriver builds a driver over the given metrics resolver.
func NewDriver(resolver *planner.Resolver, opts ...Option) *Driver {
	d := &Driver{
		resolver: resolver,
		matcher:  match.NewEngine(),
		quality:  quality.NewEngine(),
		auctions: auction.NewEngine(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (sc *Scenario) applyDefaults() {
	if sc.Days <= 0 {
		sc.Days = 7
	}
	if sc.Industry == "" {
		sc.Industry = "default"
	}
	if sc.StartDate.IsZero() {
		// A fixed Monday so day-of-week and calendar seasonality line up
		// deterministically when no start date is configured.
		sc.StartDate = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	if sc.RevenuePerConversion <= 0 {
		sc.RevenuePerConversion = 100.0
	}
	if sc.PacingStrategy == "" {
		sc.PacingStrategy = pacing.StrategyStandard
	}
	if sc.NumCompetitors <= 0 {
		sc.NumCompetitors = 10
	}
}

// Run executes the scenario and returns the result table. The context is
// consulted only during the up-front metrics fetch; the simulation loop
// itself has no blocking operations.
func (d *Driver) Run(ctx context.Context, sc Scenario) (*Result, error) {
	sc.applyDefaults()

	if len(sc.Keywords) == 0 {
		return nil, ErrNoKeywords
	}
	if len(sc.Ads) == 0 {
		return nil, ErrNoAds
	}

	seed := Seed(sc.Campaign.Name, sc.Keywords)
	rng := rand.New(rand.NewSource(int64(seed)))
	log.Printf("[INFO] simulation start: campaign=%q days=%d seed=%d", sc.Campaign.Name, sc.Days, seed)

	texts := make([]string, 0, len(sc.Keywords))
	for i := range sc.Keywords {
		texts = append(texts, sc.Keywords[i].Text)
	}
	metrics, err := d.resolver.Resolve(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("resolve keyword metrics: %w", err)
	}

	adGroups := make(map[string]*model.AdGroup, len(sc.AdGroups))
	for i := range sc.AdGroups {
		adGroups[sc.AdGroups[i].ID] = &sc.AdGroups[i]
	}
	adsByGroup := make(map[string][]*model.Ad)
	for i := range sc.Ads {
		ad := &sc.Ads[i]
		adsByGroup[ad.AdGroupID] = append(adsByGroup[ad.AdGroupID], ad)
	}

	bidEngine := bidding.NewEngine(
		sc.Campaign.BiddingStrategy, 1.5, sc.Industry,
		bidding.WithTargets(sc.Campaign.TargetCPA, sc.Campaign.TargetROAS),
	)
	if len(d.history) > 0 {
		if err := bidEngine.TrainPredictor(d.history); err == nil {
			log.Printf("[INFO] bidding predictor trained on %d historical rows", len(d.history))
		}
	}
	pacer := pacing.NewController(sc.Campaign.DailyBudget, sc.PacingBeta, sc.PacingStrategy)
	pool := competitor.NewEngine(sc.NumCompetitors, auction.IndustryCompetition(sc.Industry))

	geo := "US"
	if len(sc.Campaign.GeoTargets) > 0 {
		geo = sc.Campaign.GeoTargets[0]
	}
	density := auction.IndustryCompetition(sc.Industry)
	hourlyCurve := auction.HourlyDistribution()

	// Variant pools are fixed per keyword for the whole run; the PRNG only
	// picks among them.
	variants := make(map[string][]string, len(sc.Keywords))
	for i := range sc.Keywords {
		kw := &sc.Keywords[i]
		variants[kw.ID] = d.matcher.GenerateQueries(kw.Text, kw.MatchType, queryVariantLimit)
	}

	stats := model.NewRunStats()
	var rows []model.AuctionResult

	// Reference bid handed to the competitor pool's daily learning step.
	referenceBid := bidEngine.GetBid(0.05, sc.RevenuePerConversion, nil)

	for day := 0; day < sc.Days; day++ {
		pacer.ResetDaily()
		dayOfWeek := day % 7 // 0=Monday
		date := sc.StartDate.AddDate(0, 0, day)

		for _, ev := range sc.MarketShifts {
			if ev.Day == day {
				log.Printf("[INFO] day %d: applying market shift %q", day+1, ev.Shift)
				pool.ApplyMarketShift(ev.Shift)
			}
		}

		learnedBids := pool.AdjustBids(referenceBid, day)
		learnedPool := make([]auction.CompetitorBid, 0, pool.Size())
		for _, p := range pool.Profiles() {
			learnedPool = append(learnedPool, auction.CompetitorBid{
				ID:           p.ID,
				Bid:          learnedBids[p.ID],
				QualityScore: p.QualityScore,
			})
		}

		for hour := 0; hour < 24; hour++ {
			pacer.UpdateHour(hour)

			if !sc.Campaign.AdSchedule.IsActive(dayOfWeek, hour) {
				stats.FilteredBySchedule++
				continue
			}

			for i := range sc.Keywords {
				kw := &sc.Keywords[i]
				if kw.Status == model.StatusPaused || kw.Status == model.StatusRemoved {
					continue
				}
				m, ok := metrics[kw.Text]
				if !ok || len(variants[kw.ID]) == 0 {
					continue
				}
				ads := adsByGroup[kw.AdGroupID]
				if len(ads) == 0 {
					continue
				}
				ag := adGroups[kw.AdGroupID]
				if ag != nil && (ag.Status == model.StatusPaused || ag.Status == model.StatusRemoved) {
					continue
				}
				defaultBid := 1.0
				var agNegatives []string
				if ag != nil {
					defaultBid = ag.DefaultBid
					agNegatives = ag.NegativeKeywords
				}

				hourlySearches := m.DailySearches() / 24
				queriesThisHour := int(hourlySearches * hourlyCurve[hour] * 24)
				if queriesThisHour < 1 {
					queriesThisHour = 1
				} else if queriesThisHour > 50 {
					queriesThisHour = 50
				}
				stats.TotalQueries += queriesThisHour

				for _, split := range deviceSplit {
					deviceQueries := int(float64(queriesThisHour) * split.share)
					if deviceQueries == 0 {
						continue
					}
					stats.DeviceBreakdown[split.device] += deviceQueries

					variantPool := variants[kw.ID]
					for q := 0; q < deviceQueries; q++ {
						if !pacer.ShouldParticipate() {
							stats.FilteredByBudget++
							break
						}

						query := variantPool[rng.Intn(len(variantPool))]

						if d.matcher.IsNegativeHit(query, sc.Campaign.NegativeKeywords) ||
							d.matcher.IsNegativeHit(query, agNegatives) {
							stats.FilteredByNegatives++
							continue
						}

						bidCtx := &bidding.Context{
							Hour:              hour,
							DayOfWeek:         dayOfWeek,
							Month:             int(date.Month()),
							DayOfMonth:        date.Day(),
							Device:            split.device,
							QualityScore:      m.QualityScore,
							CompetitorDensity: density,
							HistoricalCTR:     m.ExpectedCTR(),
							HistoricalCVR:     m.ExpectedCVR(),
							KeywordText:       kw.Text,
							MatchType:         kw.MatchType,
							IsHoliday:         bidding.IsHoliday(int(date.Month()), date.Day()),
						}

						keywordBid := kw.EffectiveBid(defaultBid)
						finalBid := bidEngine.GetBid(m.ExpectedCVR(), sc.RevenuePerConversion, bidCtx)
						if kw.HasOwnBid() {
							finalBid = keywordBid
						}

						deviceAdj := sc.Campaign.DeviceAdjustment(split.device)
						finalBid *= deviceAdj
						finalBid = pacer.ApplyThrottle(finalBid)

						primaryAd := ads[0]
						expectedCTR, adRelevance, lpExp := d.quality.QueryRelevanceInputs(
							kw.Text, primaryAd, query, m.ExpectedCTR())
						qs := d.quality.ComputeQS(expectedCTR, adRelevance, lpExp)

						extensions := primaryAd.AllExtensions()
						if len(extensions) > 0 {
							expectedCTR *= d.quality.ExtensionCTRMultiplier(extensions)
							qs = d.quality.ExtensionQSBoost(extensions, qs)
						}

						outcome := d.auctions.Run(auction.Request{
							Query:          query,
							MatchedKeyword: kw.Text,
							Entrants: []auction.Entrant{{
								Ad:           primaryAd,
								Bid:          finalBid,
								QualityScore: qs,
								BaseCTR:      expectedCTR,
								PredictedCVR: m.ExpectedCVR(),
							}},
							LearnedPool:          learnedPool,
							Hour:                 hour,
							DayOfWeek:            dayOfWeek,
							Device:               split.device,
							Geo:                  geo,
							Industry:             sc.Industry,
							RevenuePerConversion: sc.RevenuePerConversion,
						})

						// Learning feedback: the pool sees the slot-1 winner.
						winnerID := advertiserID
						if len(outcome.LearnedWinners) > 0 && outcome.LearnedWinners[0].Position == 1 {
							winnerID = outcome.LearnedWinners[0].ID
						}
						pool.RecordAuction(winnerID, 1)

						for _, r := range outcome.Results {
							pacer.RecordSpend(r.Cost)

							r.Day = day + 1
							r.Hour = hour
							r.DayOfWeek = dayOfWeek
							r.Campaign = sc.Campaign.Name
							r.BiddingStrategy = sc.Campaign.BiddingStrategy
							r.QualityScore = qs
							r.ExpectedCTR = expectedCTR
							r.AdRelevance = adRelevance
							r.LandingPageExp = lpExp
							r.KeywordBid = keywordBid
							r.DeviceAdj = deviceAdj
							r.FinalBid = finalBid
							r.ExtensionCount = len(extensions)

							rows = append(rows, r)
							stats.AuctionsRun++
						}
					}
				}
			}
		}

		status := pacer.GetStatus()
		log.Printf("[INFO] day %d/%d complete: spend=%.2f/%.2f throttle=%.2f",
			day+1, sc.Days, status.TotalSpend, status.DailyBudget, status.ThrottleFactor)
		if d.progress != nil {
			d.progress(day+1, sc.Days)
		}
	}

	top, counts := pool.Insights(5)
	for _, c := range top {
		log.Printf("[INFO] competitor %s (%s): win_rate=%.1f%% avg_position=%.1f",
			c.ID, c.Strategy, c.WinRate*100, c.AvgPosition)
	}

	return &Result{
		Rows:           rows,
		Stats:          stats,
		Seed:           seed,
		TopCompetitors: top,
		StrategyCounts: counts,
	}, nil
}
