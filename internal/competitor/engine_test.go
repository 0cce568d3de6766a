package competitor

import (
	"math"
	"reflect"
	"testing"
)

func TestNewEngine_PoolSeeding(t *testing.T) {
	e := NewEngine(10, 0.7)
	if e.Size() != 10 {
		t.Fatalf("pool size: got %d, want 10", e.Size())
	}

	profiles := e.Profiles()
	wantStrategies := []StrategyTag{
		StrategyConservative, StrategyBalanced, StrategyAggressive,
		StrategyConservative, StrategyBalanced, StrategyAggressive,
		StrategyConservative, StrategyBalanced, StrategyAggressive,
		StrategyConservative,
	}
	for i, p := range profiles {
		if p.Strategy != wantStrategies[i] {
			t.Errorf("competitor %d strategy: got %s, want %s", i, p.Strategy, wantStrategies[i])
		}
		if p.QualityScore < 3.0 || p.QualityScore > 7.0 {
			t.Errorf("competitor %d quality score %.2f outside [3,7]", i, p.QualityScore)
		}
		if p.Aggressiveness <= 0 || p.Aggressiveness > 1.0 {
			t.Errorf("competitor %d aggressiveness %.2f outside (0,1]", i, p.Aggressiveness)
		}
	}

	// Trait ramps per temperament.
	if profiles[0].BaseBid != 0.5 {
		t.Errorf("first conservative base bid: got %.2f, want 0.50", profiles[0].BaseBid)
	}
	if math.Abs(profiles[2].BaseBid-1.9) > 1e-9 {
		t.Errorf("first aggressive (index 2) base bid: got %.2f, want 1.90", profiles[2].BaseBid)
	}
}

func TestNewEngine_Defaults(t *testing.T) {
	e := NewEngine(0, 0)
	if e.Size() != 10 {
		t.Errorf("default pool size: got %d, want 10", e.Size())
	}
	if e.marketCompetition != 0.7 {
		t.Errorf("default market competition: got %.2f, want 0.70", e.marketCompetition)
	}
}

func TestAdjustBids_Deterministic(t *testing.T) {
	a := NewEngine(10, 0.7)
	b := NewEngine(10, 0.7)

	for day := 0; day < 5; day++ {
		ba := a.AdjustBids(2.50, day)
		bb := b.AdjustBids(2.50, day)
		if !reflect.DeepEqual(ba, bb) {
			t.Fatalf("day %d: identical engines diverged", day)
		}
	}
}

func TestAdjustBids_Bounds(t *testing.T) {
	e := NewEngine(10, 0.7)
	for day := 0; day < 30; day++ {
		for id, bid := range e.AdjustBids(9.0, day) {
			if bid < 0.10 || bid > 10.0 {
				t.Errorf("day %d %s: bid %.4f outside [0.10, 10.00]", day, id, bid)
			}
		}
	}
}

func TestAdjustBids_ChasesAdvertiser(t *testing.T) {
	low := NewEngine(10, 0.7)
	high := NewEngine(10, 0.7)

	lowBids := low.AdjustBids(0.10, 0)
	highBids := high.AdjustBids(8.00, 0)

	raised := 0
	for id := range lowBids {
		if highBids[id] > lowBids[id] {
			raised++
		}
	}
	if raised < 8 {
		t.Errorf("only %d/10 competitors raised against a higher advertiser bid", raised)
	}
}

func TestAdjustBids_LosersRaise(t *testing.T) {
	e := NewEngine(3, 1.0)
	day0 := e.AdjustBids(0.10, 0)

	// Drive win rates to zero: many auctions won by an outside id.
	for i := 0; i < 50; i++ {
		e.RecordAuction("someone_else", 1)
	}

	// A pool that keeps losing should not bid lower than it did on day 0.
	// Reuse day 0 so the strategy drift term cancels out.
	relearned := e.AdjustBids(0.10, 0)
	for id := range day0 {
		if relearned[id] < day0[id]*0.99 {
			t.Errorf("%s: persistent loser lowered its bid %.4f -> %.4f", id, day0[id], relearned[id])
		}
	}
}

func TestRecordAuction_EMA(t *testing.T) {
	e := NewEngine(2, 0.7)
	e.RecordAuction("comp_0", 1)

	p := e.Profiles()
	if math.Abs(p[0].WinRate-0.1) > 1e-9 {
		t.Errorf("winner win rate: got %.4f, want 0.1", p[0].WinRate)
	}
	if math.Abs(p[0].AvgPosition-(5.0*0.9+1*0.1)) > 1e-9 {
		t.Errorf("winner avg position: got %.4f, want %.4f", p[0].AvgPosition, 5.0*0.9+0.1)
	}
	if p[1].WinRate != 0 {
		t.Errorf("loser win rate: got %.4f, want 0", p[1].WinRate)
	}

	// Repeated wins converge toward 1.0.
	for i := 0; i < 100; i++ {
		e.RecordAuction("comp_0", 1)
	}
	p = e.Profiles()
	if p[0].WinRate < 0.95 {
		t.Errorf("win rate after 100 straight wins: got %.4f, want > 0.95", p[0].WinRate)
	}
}

func TestInsights(t *testing.T) {
	e := NewEngine(6, 0.7)
	for i := 0; i < 20; i++ {
		e.RecordAuction("comp_3", 2)
	}

	top, byStrategy := e.Insights(3)
	if len(top) != 3 {
		t.Fatalf("top insights: got %d, want 3", len(top))
	}
	if top[0].ID != "comp_3" {
		t.Errorf("top competitor: got %s, want comp_3", top[0].ID)
	}
	if byStrategy[StrategyConservative] != 2 || byStrategy[StrategyBalanced] != 2 || byStrategy[StrategyAggressive] != 2 {
		t.Errorf("strategy counts: %v", byStrategy)
	}
}

func TestApplyMarketShift(t *testing.T) {
	e := NewEngine(4, 0.7)

	e.ApplyMarketShift(ShiftNewEntrant)
	if e.Size() != 5 {
		t.Fatalf("pool after new entrant: got %d, want 5", e.Size())
	}
	entrant := e.Profiles()[4]
	if entrant.Strategy != StrategyAggressive || entrant.BaseBid != 2.0 {
		t.Errorf("entrant profile: strategy %s bid %.2f", entrant.Strategy, entrant.BaseBid)
	}

	before := make([]float64, e.Size())
	for i, p := range e.Profiles() {
		before[i] = p.BaseBid
	}
	e.ApplyMarketShift(ShiftBudgetCuts)
	for i, p := range e.Profiles() {
		if math.Abs(p.BaseBid-before[i]*0.8) > 1e-9 {
			t.Errorf("budget cut on %s: got %.4f, want %.4f", p.ID, p.BaseBid, before[i]*0.8)
		}
	}

	e.ApplyMarketShift(ShiftIncreasedCompetition)
	for _, p := range e.Profiles() {
		if p.Aggressiveness > 1.0 {
			t.Errorf("%s aggressiveness %.3f exceeds 1.0", p.ID, p.Aggressiveness)
		}
	}
}
