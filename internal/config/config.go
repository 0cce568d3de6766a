// Package config loads simulation scenarios and application settings from a
// YAML file, applies environment overrides, and validates the result.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"AdAuctionSim/internal/model"
)

// ShiftConfig schedules a market shift for the competitor pool.
type ShiftConfig struct {
	Day   int    `yaml:"day"`
	Shift string `yaml:"shift"` // new_entrant | budget_cuts | increased_competition
}

// Config holds all application configuration.
type Config struct {
	Campaign model.Campaign  `yaml:"campaign"`
	AdGroups []model.AdGroup `yaml:"ad_groups"`
	Keywords []model.Keyword `yaml:"keywords"`
	Ads      []model.Ad      `yaml:"ads"`

	Simulation struct {
		Days                 int     `yaml:"days"`
		Industry             string  `yaml:"industry"`
		StartDate            string  `yaml:"start_date"` // YYYY-MM-DD
		RevenuePerConversion float64 `yaml:"revenue_per_conversion"`
	} `yaml:"simulation"`

	Pacing struct {
		Strategy string  `yaml:"strategy"` // standard | accelerated | even
		Beta     float64 `yaml:"beta"`
	} `yaml:"pacing"`

	Bidding struct {
		// TrainFromHistory fits the empirical CTR/CVR predictor from rows
		// recorded by earlier runs; without enough history the static
		// formula path is used.
		TrainFromHistory bool `yaml:"train_from_history"`
		HistoryRows      int  `yaml:"history_rows"`
	} `yaml:"bidding"`

	Competitors struct {
		Count        int           `yaml:"count"`
		MarketShifts []ShiftConfig `yaml:"market_shifts"`
	} `yaml:"competitors"`

	Metrics struct {
		File string `yaml:"file"` // optional metrics YAML; empty means mock data
	} `yaml:"metrics"`

	Schedule struct {
		ReplayCron string `yaml:"replay_cron"` // optional cron spec for scheduled replays
	} `yaml:"schedule"`

	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Environment variable overrides
	if v := os.Getenv("SIM_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil {
			cfg.Simulation.Days = days
		}
	}
	if v := os.Getenv("SIM_INDUSTRY"); v != "" {
		cfg.Simulation.Industry = v
	}
	if v := os.Getenv("METRICS_FILE"); v != "" {
		cfg.Metrics.File = v
	}
	if v := os.Getenv("REPLAY_CRON"); v != "" {
		cfg.Schedule.ReplayCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("DAILY_BUDGET"); v != "" {
		if budget, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Campaign.DailyBudget = budget
		}
	}

	// Defaults
	if cfg.Simulation.Days == 0 {
		cfg.Simulation.Days = 7
	}
	if cfg.Simulation.Industry == "" {
		cfg.Simulation.Industry = "default"
	}
	if cfg.Simulation.RevenuePerConversion == 0 {
		cfg.Simulation.RevenuePerConversion = 100
	}
	if cfg.Pacing.Strategy == "" {
		cfg.Pacing.Strategy = "standard"
	}
	if cfg.Pacing.Beta == 0 {
		cfg.Pacing.Beta = 0.8
	}
	if cfg.Competitors.Count == 0 {
		cfg.Competitors.Count = 10
	}
	if cfg.Bidding.HistoryRows == 0 {
		cfg.Bidding.HistoryRows = 5000
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/adauctionsim.db"
	}
	if cfg.Campaign.Status == "" {
		cfg.Campaign.Status = model.StatusEnabled
	}
	if cfg.Campaign.BiddingStrategy == "" {
		cfg.Campaign.BiddingStrategy = model.StrategyManualCPC
	}
	for i := range cfg.AdGroups {
		if cfg.AdGroups[i].Status == "" {
			cfg.AdGroups[i].Status = model.StatusEnabled
		}
		if cfg.AdGroups[i].DefaultBid == 0 {
			cfg.AdGroups[i].DefaultBid = 1.0
		}
	}
	for i := range cfg.Keywords {
		if cfg.Keywords[i].Status == "" {
			cfg.Keywords[i].Status = model.StatusEnabled
		}
		if cfg.Keywords[i].MatchType == "" {
			cfg.Keywords[i].MatchType = model.MatchBroad
		}
	}

	return cfg, nil
}

// StartDate parses the configured start date, or returns the zero time when
// unset so the driver picks its fixed default.
func (c *Config) StartDate() (time.Time, error) {
	if c.Simulation.StartDate == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", c.Simulation.StartDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse simulation.start_date: %w", err)
	}
	return t, nil
}

// Validate checks that all required fields are set and cross-references hold.
func (c *Config) Validate() error {
	if c.Campaign.Name == "" {
		return fmt.Errorf("campaign.name is required")
	}
	if err := c.Campaign.Validate(); err != nil {
		return err
	}
	if c.Simulation.Days < 1 || c.Simulation.Days > 365 {
		return fmt.Errorf("simulation.days must be in [1, 365], got %d", c.Simulation.Days)
	}

	groups := make(map[string]bool, len(c.AdGroups))
	for i := range c.AdGroups {
		if err := c.AdGroups[i].Validate(); err != nil {
			return err
		}
		groups[c.AdGroups[i].ID] = true
	}
	for i := range c.Keywords {
		if err := c.Keywords[i].Validate(); err != nil {
			return err
		}
		if !groups[c.Keywords[i].AdGroupID] {
			return fmt.Errorf("keyword %q references unknown ad group %q",
				c.Keywords[i].Text, c.Keywords[i].AdGroupID)
		}
	}
	for i := range c.Ads {
		if err := c.Ads[i].Validate(); err != nil {
			return err
		}
		if !groups[c.Ads[i].AdGroupID] {
			return fmt.Errorf("ad %q references unknown ad group %q",
				c.Ads[i].ID, c.Ads[i].AdGroupID)
		}
	}

	switch c.Pacing.Strategy {
	case "standard", "accelerated", "even":
	default:
		return fmt.Errorf("pacing.strategy must be standard, accelerated, or even, got %q", c.Pacing.Strategy)
	}
	for _, s := range c.Competitors.MarketShifts {
		switch s.Shift {
		case "new_entrant", "budget_cuts", "increased_competition":
		default:
			return fmt.Errorf("unknown market shift %q", s.Shift)
		}
		if s.Day < 0 || s.Day >= c.Simulation.Days {
			return fmt.Errorf("market shift day %d outside simulation horizon", s.Day)
		}
	}
	return nil
}
