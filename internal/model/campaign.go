package model

import "fmt"

// Status is the lifecycle state of a campaign entity.
type Status string

const (
	StatusEnabled Status = "enabled"
	StatusPaused  Status = "paused"
	StatusRemoved Status = "removed"
)

// BiddingStrategy selects how the advertiser's bid is computed.
type BiddingStrategy string

const (
	StrategyManualCPC       BiddingStrategy = "manual_cpc"
	StrategyTargetCPA       BiddingStrategy = "target_cpa"
	StrategyTargetROAS      BiddingStrategy = "target_roas"
	StrategyMaximizeClicks  BiddingStrategy = "maximize_clicks"
	StrategyMaximizeConvs   BiddingStrategy = "maximize_conversions"
)

// Device identifies the simulated device segment.
type Device string

const (
	DeviceDesktop Device = "desktop"
	DeviceMobile  Device = "mobile"
	DeviceTablet  Device = "tablet"
)

// AdSchedule holds dayparting configuration: the hours (0-23) ads may serve
// on each weekday. A nil hour list means the full day. Day 0 is Monday.
type AdSchedule struct {
	Enabled   bool  `yaml:"enabled"`
	Monday    []int `yaml:"monday"`
	Tuesday   []int `yaml:"tuesday"`
	Wednesday []int `yaml:"wednesday"`
	Thursday  []int `yaml:"thursday"`
	Friday    []int `yaml:"friday"`
	Saturday  []int `yaml:"saturday"`
	Sunday    []int `yaml:"sunday"`
}

func (s *AdSchedule) dayHours(dayOfWeek int) []int {
	switch dayOfWeek {
	case 0:
		return s.Monday
	case 1:
		return s.Tuesday
	case 2:
		return s.Wednesday
	case 3:
		return s.Thursday
	case 4:
		return s.Friday
	case 5:
		return s.Saturday
	case 6:
		return s.Sunday
	}
	return nil
}

// IsActive reports whether ads may serve at the given day/hour (0=Monday).
func (s *AdSchedule) IsActive(dayOfWeek, hour int) bool {
	if s == nil || !s.Enabled {
		return true
	}
	hours := s.dayHours(dayOfWeek)
	if hours == nil {
		return true
	}
	for _, h := range hours {
		if h == hour {
			return true
		}
	}
	return false
}

// Campaign is the top-level simulation input.
type Campaign struct {
	ID                   string             `yaml:"id"`
	Name                 string             `yaml:"name"`
	Status               Status             `yaml:"status"`
	DailyBudget          float64            `yaml:"daily_budget"`
	BiddingStrategy      BiddingStrategy    `yaml:"bidding_strategy"`
	TargetCPA            float64            `yaml:"target_cpa"`
	TargetROAS           float64            `yaml:"target_roas"`
	GeoTargets           []string           `yaml:"geo_targets"`
	DeviceBidAdjustments map[Device]float64 `yaml:"device_bid_adjustments"`
	AdSchedule           AdSchedule         `yaml:"ad_schedule"`
	NegativeKeywords     []string           `yaml:"negative_keywords"`
}

// DeviceAdjustment returns the configured bid multiplier for a device,
// defaulting to 1.0.
func (c *Campaign) DeviceAdjustment(d Device) float64 {
	if adj, ok := c.DeviceBidAdjustments[d]; ok && adj > 0 {
		return adj
	}
	return 1.0
}

// Validate checks campaign invariants at construction time.
func (c *Campaign) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("campaign name is required")
	}
	if c.DailyBudget <= 0 {
		return fmt.Errorf("campaign %q: daily_budget must be positive", c.Name)
	}
	switch c.BiddingStrategy {
	case StrategyManualCPC, StrategyTargetCPA, StrategyTargetROAS,
		StrategyMaximizeClicks, StrategyMaximizeConvs:
	case "":
		return fmt.Errorf("campaign %q: bidding_strategy is required", c.Name)
	default:
		return fmt.Errorf("campaign %q: unknown bidding_strategy %q", c.Name, c.BiddingStrategy)
	}
	if c.BiddingStrategy == StrategyTargetCPA && c.TargetCPA <= 0 {
		return fmt.Errorf("campaign %q: target_cpa must be positive", c.Name)
	}
	if c.BiddingStrategy == StrategyTargetROAS && c.TargetROAS <= 0 {
		return fmt.Errorf("campaign %q: target_roas must be positive", c.Name)
	}
	for d, adj := range c.DeviceBidAdjustments {
		if adj < 0 {
			return fmt.Errorf("campaign %q: negative bid adjustment for device %q", c.Name, d)
		}
	}
	return nil
}

// AdGroup groups keywords and ads under a shared default bid.
type AdGroup struct {
	ID               string   `yaml:"id"`
	CampaignID       string   `yaml:"campaign_id"`
	Name             string   `yaml:"name"`
	Status           Status   `yaml:"status"`
	DefaultBid       float64  `yaml:"default_bid"`
	NegativeKeywords []string `yaml:"negative_keywords"`
}

// Validate checks ad group invariants.
func (g *AdGroup) Validate() error {
	if g.ID == "" {
		return fmt.Errorf("ad group id is required")
	}
	if g.DefaultBid <= 0 {
		return fmt.Errorf("ad group %q: default_bid must be positive", g.ID)
	}
	return nil
}
