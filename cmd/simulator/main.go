package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"AdAuctionSim/internal/competitor"
	"AdAuctionSim/internal/config"
	"AdAuctionSim/internal/pacing"
	"AdAuctionSim/internal/planner"
	"AdAuctionSim/internal/recorder"
	"AdAuctionSim/internal/scheduler"
	"AdAuctionSim/internal/sim"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] AdAuctionSim starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init keyword metrics source
	var primary planner.MetricsSource
	if cfg.Metrics.File != "" {
		primary = planner.NewFileSource(cfg.Metrics.File)
		log.Printf("[INFO] keyword metrics source: file %s", cfg.Metrics.File)
	} else {
		log.Println("[INFO] keyword metrics source: deterministic mock")
	}
	resolver := planner.NewResolver(primary)

	// Init recorder
	var rec recorder.Recorder
	var sqliteRec *recorder.SQLiteRecorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			sqliteRec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	scenario, err := buildScenario(cfg)
	if err != nil {
		log.Fatalf("[FATAL] build scenario: %v", err)
	}

	opts := []sim.Option{sim.WithProgress(func(day, total int) {
		log.Printf("[INFO] progress: day %d/%d", day, total)
	})}
	if cfg.Bidding.TrainFromHistory {
		if sqliteRec == nil {
			log.Println("[WARN] bidding.train_from_history set but no sqlite recorder, using static bidding")
		} else if history, err := sqliteRec.LoadResults(cfg.Bidding.HistoryRows); err != nil {
			log.Printf("[WARN] load bid history failed, using static bidding: %v", err)
		} else {
			log.Printf("[INFO] loaded %d historical rows for the bidding predictor", len(history))
			opts = append(opts, sim.WithBidHistory(history))
		}
	}

	driver := sim.NewDriver(resolver, opts...)

	replay := func(ctx context.Context) error {
		return runOnce(ctx, driver, scenario, rec)
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := replay(ctx); err != nil {
		log.Fatalf("[FATAL] simulation: %v", err)
	}

	// Without a replay schedule this is a one-shot run.
	if cfg.Schedule.ReplayCron == "" {
		log.Println("[INFO] AdAuctionSim finished")
		return
	}

	sched := scheduler.New(ctx, replay)
	if err := sched.Register(cfg.Schedule.ReplayCron); err != nil {
		log.Fatalf("[FATAL] register replay schedule: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	log.Println("[INFO] AdAuctionSim is running scheduled replays. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
}

func buildScenario(cfg *config.Config) (sim.Scenario, error) {
	start, err := cfg.StartDate()
	if err != nil {
		return sim.Scenario{}, err
	}

	shifts := make([]sim.ShiftEvent, 0, len(cfg.Competitors.MarketShifts))
	for _, s := range cfg.Competitors.MarketShifts {
		shifts = append(shifts, sim.ShiftEvent{
			Day:   s.Day,
			Shift: competitor.MarketShift(s.Shift),
		})
	}

	return sim.Scenario{
		Campaign:             cfg.Campaign,
		AdGroups:             cfg.AdGroups,
		Keywords:             cfg.Keywords,
		Ads:                  cfg.Ads,
		Days:                 cfg.Simulation.Days,
		Industry:             cfg.Simulation.Industry,
		StartDate:            start,
		RevenuePerConversion: cfg.Simulation.RevenuePerConversion,
		PacingStrategy:       pacing.Strategy(cfg.Pacing.Strategy),
		PacingBeta:           cfg.Pacing.Beta,
		NumCompetitors:       cfg.Competitors.Count,
		MarketShifts:         shifts,
	}, nil
}

func runOnce(ctx context.Context, driver *sim.Driver, scenario sim.Scenario, rec recorder.Recorder) error {
	runID := uuid.NewString()
	res, err := driver.Run(ctx, scenario)
	if err != nil {
		return err
	}

	summary := &recorder.RunSummary{
		RunID:               runID,
		Campaign:            scenario.Campaign.Name,
		Seed:                res.Seed,
		Days:                scenario.Days,
		TotalQueries:        res.Stats.TotalQueries,
		AuctionsRun:         res.Stats.AuctionsRun,
		FilteredByNegatives: res.Stats.FilteredByNegatives,
		FilteredBySchedule:  res.Stats.FilteredBySchedule,
		FilteredByBudget:    res.Stats.FilteredByBudget,
	}
	for i := range res.Rows {
		r := &res.Rows[i]
		summary.Impressions += r.Impressions
		summary.Clicks += r.Clicks
		summary.Conversions += r.Conversions
		summary.Cost += r.Cost
		summary.Revenue += r.Revenue
	}

	if err := rec.RecordResults(runID, res.Rows); err != nil {
		log.Printf("[ERROR] record results: %v", err)
	}
	if err := rec.RecordSummary(summary); err != nil {
		log.Printf("[ERROR] record summary: %v", err)
	}

	log.Printf("[INFO] run %s complete: %s queries, %s auctions won, %s impressions, %s clicks, %s conversions",
		runID,
		humanize.Comma(int64(summary.TotalQueries)),
		humanize.Comma(int64(summary.AuctionsRun)),
		humanize.Comma(int64(summary.Impressions)),
		humanize.Comma(int64(summary.Clicks)),
		humanize.Comma(int64(summary.Conversions)))
	log.Printf("[INFO] run %s spend: cost=$%s revenue=$%s",
		runID,
		humanize.CommafWithDigits(summary.Cost, 2),
		humanize.CommafWithDigits(summary.Revenue, 2))
	return nil
}
