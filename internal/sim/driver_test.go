package sim

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"AdAuctionSim/internal/competitor"
	"AdAuctionSim/internal/model"
	"AdAuctionSim/internal/planner"
)

func baseScenario() Scenario {
	return Scenario{
		Campaign: model.Campaign{
			ID:              "camp_1",
			Name:            "Shoe Launch",
			Status:          model.StatusEnabled,
			DailyBudget:     50,
			BiddingStrategy: model.StrategyManualCPC,
		},
		AdGroups: []model.AdGroup{{
			ID: "ag_1", CampaignID: "camp_1", Name: "Shoes",
			Status: model.StatusEnabled, DefaultBid: 1.50,
		}},
		Keywords: []model.Keyword{{
			ID: "kw_1", AdGroupID: "ag_1", Text: "running shoes",
			MatchType: model.MatchBroad, Status: model.StatusEnabled,
		}},
		Ads: []model.Ad{{
			ID: "ad_1", AdGroupID: "ag_1",
			Headlines:    []string{"Running Shoes", "Free Shipping", "Shop Today"},
			Descriptions: []string{"Lightweight running shoes for every distance."},
			FinalURL:     "https://example.com/running-shoes",
		}},
		Days: 1,
	}
}

func newTestDriver() *Driver {
	return NewDriver(planner.NewResolver(nil))
}

func TestRun_Preconditions(t *testing.T) {
	d := newTestDriver()

	sc := baseScenario()
	sc.Keywords = nil
	if _, err := d.Run(context.Background(), sc); !errors.Is(err, ErrNoKeywords) {
		t.Errorf("no keywords: got %v, want ErrNoKeywords", err)
	}

	sc = baseScenario()
	sc.Ads = nil
	if _, err := d.Run(context.Background(), sc); !errors.Is(err, ErrNoAds) {
		t.Errorf("no ads: got %v, want ErrNoAds", err)
	}
}

func TestRun_Deterministic(t *testing.T) {
	a, err := newTestDriver().Run(context.Background(), baseScenario())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	b, err := newTestDriver().Run(context.Background(), baseScenario())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if a.Seed != b.Seed {
		t.Fatalf("seeds differ: %d vs %d", a.Seed, b.Seed)
	}
	if !reflect.DeepEqual(a.Rows, b.Rows) {
		t.Fatal("identical scenarios produced different result tables")
	}
	if !reflect.DeepEqual(a.Stats, b.Stats) {
		t.Fatal("identical scenarios produced different stats")
	}
}

func TestSeed_OrderIndependent(t *testing.T) {
	kws := []model.Keyword{{Text: "running shoes"}, {Text: "trail shoes"}}
	reversed := []model.Keyword{{Text: "trail shoes"}, {Text: "running shoes"}}
	if Seed("c", kws) != Seed("c", reversed) {
		t.Error("seed should not depend on keyword order")
	}
	if Seed("campaign a", kws) == Seed("campaign b", kws) {
		t.Error("different campaign names should produce different seeds")
	}
}

func TestRun_WithBidHistory(t *testing.T) {
	history := make([]model.AuctionResult, 60)
	for i := range history {
		history[i] = model.AuctionResult{
			Device: model.DeviceDesktop, Hour: i % 24, DayOfWeek: i % 7,
			Impressions: 100, Clicks: 5, Conversions: 1,
		}
	}

	newHistoryDriver := func() *Driver {
		return NewDriver(planner.NewResolver(nil), WithBidHistory(history))
	}

	a, err := newHistoryDriver().Run(context.Background(), baseScenario())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if len(a.Rows) == 0 {
		t.Fatal("expected auction results with a trained predictor")
	}
	b, err := newHistoryDriver().Run(context.Background(), baseScenario())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !reflect.DeepEqual(a.Rows, b.Rows) {
		t.Fatal("trained predictor broke run determinism")
	}

	// Thin history degrades to the static path instead of failing the run.
	short, err := NewDriver(planner.NewResolver(nil), WithBidHistory(history[:5])).
		Run(context.Background(), baseScenario())
	if err != nil {
		t.Fatalf("run with thin history: %v", err)
	}
	if len(short.Rows) == 0 {
		t.Fatal("expected auction results on the static fallback path")
	}
}

// The canonical smoke scenario: one broad keyword, one ad, one day.
func TestRun_RunningShoesScenario(t *testing.T) {
	res, err := newTestDriver().Run(context.Background(), baseScenario())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Rows) == 0 {
		t.Fatal("expected at least one auction result")
	}

	totalCost := 0.0
	matched := false
	for i := range res.Rows {
		r := &res.Rows[i]
		if r.MatchedKeyword == "running shoes" {
			matched = true
		}
		if r.QualityScore < 1 || r.QualityScore > 10 {
			t.Errorf("quality score %.1f outside [1,10]", r.QualityScore)
		}
		if r.CPC > r.FinalBid+1e-9 {
			t.Errorf("CPC %.2f exceeds the bid %.2f submitted for that slot", r.CPC, r.FinalBid)
		}
		if r.Position < 1 || r.Position > 4 {
			t.Errorf("position %d outside [1,4]", r.Position)
		}
		if r.Day != 1 {
			t.Errorf("day: got %d, want 1", r.Day)
		}
		totalCost += r.Cost
	}
	if !matched {
		t.Error(`no result matched keyword "running shoes"`)
	}
	// Budget overshoot is bounded by the last auction's cost.
	if totalCost > 65 {
		t.Errorf("daily cost %.2f blew far past the $50 budget", totalCost)
	}
	if res.Stats.AuctionsRun != len(res.Rows) {
		t.Errorf("stats auctions %d != rows %d", res.Stats.AuctionsRun, len(res.Rows))
	}
	if res.Stats.TotalQueries == 0 {
		t.Error("stats recorded no queries")
	}
}

func TestRun_NegativeKeywordsSuppressEverything(t *testing.T) {
	sc := baseScenario()
	// A bare negative is a broad subset match; "running" hits every variant.
	sc.Campaign.NegativeKeywords = []string{"running"}

	res, err := newTestDriver().Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Rows) != 0 {
		t.Errorf("negative keyword leaked %d results", len(res.Rows))
	}
	if res.Stats.FilteredByNegatives == 0 {
		t.Error("no queries counted as negative-filtered")
	}
}

func TestRun_AdGroupNegatives(t *testing.T) {
	sc := baseScenario()
	sc.AdGroups[0].NegativeKeywords = []string{"running"}

	res, err := newTestDriver().Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Rows) != 0 {
		t.Errorf("ad group negative leaked %d results", len(res.Rows))
	}
}

func TestRun_Dayparting(t *testing.T) {
	sc := baseScenario()
	sc.Campaign.AdSchedule = model.AdSchedule{
		Enabled: true,
		Monday:  []int{9},
	}

	res, err := newTestDriver().Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for i := range res.Rows {
		if res.Rows[i].Hour != 9 {
			t.Errorf("row at hour %d outside the scheduled window", res.Rows[i].Hour)
		}
	}
	if res.Stats.FilteredBySchedule != 23 {
		t.Errorf("schedule-filtered hours: got %d, want 23", res.Stats.FilteredBySchedule)
	}
}

func TestRun_PausedKeywordSkipped(t *testing.T) {
	sc := baseScenario()
	sc.Keywords[0].Status = model.StatusPaused

	res, err := newTestDriver().Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Rows) != 0 {
		t.Errorf("paused keyword produced %d results", len(res.Rows))
	}
}

func TestRun_KeywordBidOverride(t *testing.T) {
	sc := baseScenario()
	sc.Keywords[0].CPCBid = 2.50

	res, err := newTestDriver().Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Rows) == 0 {
		t.Fatal("no results")
	}
	for i := range res.Rows {
		if res.Rows[i].KeywordBid != 2.50 {
			t.Errorf("keyword bid: got %.2f, want 2.50", res.Rows[i].KeywordBid)
		}
	}
}

func TestRun_DeviceBreakdown(t *testing.T) {
	res, err := newTestDriver().Run(context.Background(), baseScenario())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	bd := res.Stats.DeviceBreakdown
	if bd[model.DeviceDesktop] <= bd[model.DeviceMobile] ||
		bd[model.DeviceMobile] < bd[model.DeviceTablet] {
		t.Errorf("device breakdown out of order: %v", bd)
	}
}

func TestRun_DeviceAdjustmentApplied(t *testing.T) {
	sc := baseScenario()
	sc.Campaign.DeviceBidAdjustments = map[model.Device]float64{
		model.DeviceMobile: 0.5,
	}

	res, err := newTestDriver().Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for i := range res.Rows {
		r := &res.Rows[i]
		switch r.Device {
		case model.DeviceMobile:
			if r.DeviceAdj != 0.5 {
				t.Errorf("mobile adjustment: got %.2f, want 0.50", r.DeviceAdj)
			}
		default:
			if r.DeviceAdj != 1.0 {
				t.Errorf("%s adjustment: got %.2f, want 1.00", r.Device, r.DeviceAdj)
			}
		}
	}
}

func TestRun_MarketShiftNewEntrant(t *testing.T) {
	sc := baseScenario()
	sc.MarketShifts = []ShiftEvent{{Day: 0, Shift: competitor.ShiftNewEntrant}}

	res, err := newTestDriver().Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// Default pool of 10 carries 3 aggressive members; the entrant adds one.
	if got := res.StrategyCounts[competitor.StrategyAggressive]; got != 4 {
		t.Errorf("aggressive competitors: got %d, want 4", got)
	}
}

func TestRun_MultiDayBudgetIsolation(t *testing.T) {
	sc := baseScenario()
	sc.Days = 3

	res, err := newTestDriver().Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	perDay := map[int]float64{}
	for i := range res.Rows {
		perDay[res.Rows[i].Day] += res.Rows[i].Cost
	}
	for day, cost := range perDay {
		if cost > 65 {
			t.Errorf("day %d cost %.2f blew far past the $50 budget", day, cost)
		}
	}
	if len(perDay) == 0 {
		t.Fatal("no rows across 3 days")
	}
}
