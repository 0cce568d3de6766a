package recorder

import "AdAuctionSim/internal/model"

// RunSummary is the end-of-run rollup persisted alongside the per-auction
// rows, one record per simulation run.
type RunSummary struct {
	RunID        string
	Campaign     string
	Seed         uint32
	Days         int
	TotalQueries int
	AuctionsRun  int

	FilteredByNegatives int
	FilteredBySchedule  int
	FilteredByBudget    int

	Impressions int
	Clicks      int
	Conversions int
	Cost        float64
	Revenue     float64
}

// Recorder persists simulation output for dashboards and later analysis.
type Recorder interface {
	RecordResults(runID string, rows []model.AuctionResult) error
	RecordSummary(summary *RunSummary) error
	Close() error
}
