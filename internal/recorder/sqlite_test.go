package recorder

import (
	"path/filepath"
	"testing"

	"AdAuctionSim/internal/model"
)

func newTestRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRecorder: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func sampleRow() model.AuctionResult {
	return model.AuctionResult{
		Query:           "buy running shoes",
		MatchedKeyword:  "running shoes",
		AdID:            "ad_1",
		AdRank:          12.5,
		CPC:             1.42,
		Position:        1,
		Impressions:     80,
		Clicks:          4,
		Conversions:     1,
		Cost:            5.68,
		Revenue:         100,
		Device:          model.DeviceMobile,
		Geo:             "US",
		Day:             1,
		Hour:            14,
		DayOfWeek:       0,
		Campaign:        "Test Campaign",
		BiddingStrategy: model.StrategyManualCPC,
		QualityScore:    7.5,
		ExpectedCTR:     0.04,
		AdRelevance:     0.8,
		LandingPageExp:  0.7,
		KeywordBid:      1.5,
		DeviceAdj:       0.9,
		FinalBid:        1.35,
		ExtensionCount:  3,
	}
}

func TestRecordResults_RoundTrip(t *testing.T) {
	r := newTestRecorder(t)

	rows := []model.AuctionResult{sampleRow(), sampleRow()}
	rows[1].Day = 2
	rows[1].Position = 3

	if err := r.RecordResults("run_abc", rows); err != nil {
		t.Fatalf("RecordResults: %v", err)
	}

	var count int
	if err := r.db.QueryRow(
		`SELECT COUNT(*) FROM auction_results WHERE run_id = ?`, "run_abc",
	).Scan(&count); err != nil {
		t.Fatalf("count query: %v", err)
	}
	if count != 2 {
		t.Errorf("stored %d rows, want 2", count)
	}

	var query string
	var cpc, ctr float64
	var position int
	if err := r.db.QueryRow(
		`SELECT query, cpc, ctr, position FROM auction_results WHERE run_id = ? AND day = 1`,
		"run_abc",
	).Scan(&query, &cpc, &ctr, &position); err != nil {
		t.Fatalf("row query: %v", err)
	}
	if query != "buy running shoes" {
		t.Errorf("query = %q, want buy running shoes", query)
	}
	if cpc != 1.42 {
		t.Errorf("cpc = %v, want 1.42", cpc)
	}
	if ctr != 5.0 {
		t.Errorf("derived ctr = %v, want 5.0", ctr)
	}
	if position != 1 {
		t.Errorf("position = %v, want 1", position)
	}
}

func TestLoadResults(t *testing.T) {
	r := newTestRecorder(t)

	rows := make([]model.AuctionResult, 3)
	for i := range rows {
		rows[i] = sampleRow()
		rows[i].Day = i + 1
	}
	if err := r.RecordResults("run_hist", rows); err != nil {
		t.Fatalf("RecordResults: %v", err)
	}

	loaded, err := r.LoadResults(10)
	if err != nil {
		t.Fatalf("LoadResults: %v", err)
	}
	if len(loaded) != 3 {
		t.Fatalf("loaded %d rows, want 3", len(loaded))
	}
	// Oldest first.
	for i, row := range loaded {
		if row.Day != i+1 {
			t.Errorf("row %d: day = %d, want %d", i, row.Day, i+1)
		}
	}
	got := loaded[0]
	if got.Device != model.DeviceMobile || got.Hour != 14 ||
		got.Impressions != 80 || got.Clicks != 4 || got.Conversions != 1 {
		t.Errorf("loaded row fields = %+v, want the recorded values", got)
	}

	// Limit keeps the newest rows.
	tail, err := r.LoadResults(2)
	if err != nil {
		t.Fatalf("LoadResults limit: %v", err)
	}
	if len(tail) != 2 || tail[0].Day != 2 || tail[1].Day != 3 {
		t.Errorf("limited load = %d rows starting day %d, want days 2 and 3", len(tail), tail[0].Day)
	}
}

func TestRecordResults_EmptyBatch(t *testing.T) {
	r := newTestRecorder(t)
	if err := r.RecordResults("run_empty", nil); err != nil {
		t.Fatalf("RecordResults with no rows: %v", err)
	}
}

func TestRecordSummary(t *testing.T) {
	r := newTestRecorder(t)

	s := &RunSummary{
		RunID:               "run_xyz",
		Campaign:            "Test Campaign",
		Seed:                12345,
		Days:                7,
		TotalQueries:        5000,
		AuctionsRun:         4200,
		FilteredByNegatives: 300,
		FilteredBySchedule:  400,
		FilteredByBudget:    100,
		Impressions:         90000,
		Clicks:              2700,
		Conversions:         81,
		Cost:                1890.45,
		Revenue:             8100,
	}
	if err := r.RecordSummary(s); err != nil {
		t.Fatalf("RecordSummary: %v", err)
	}

	var campaign string
	var seed uint32
	var queries int
	var cost float64
	if err := r.db.QueryRow(
		`SELECT campaign, seed, total_queries, cost FROM run_summaries WHERE run_id = ?`,
		"run_xyz",
	).Scan(&campaign, &seed, &queries, &cost); err != nil {
		t.Fatalf("summary query: %v", err)
	}
	if campaign != "Test Campaign" || seed != 12345 || queries != 5000 || cost != 1890.45 {
		t.Errorf("stored summary = %q/%d/%d/%v, want Test Campaign/12345/5000/1890.45",
			campaign, seed, queries, cost)
	}

	// run_id is unique per run.
	if err := r.RecordSummary(s); err == nil {
		t.Error("expected unique constraint error on duplicate run_id")
	}
}
