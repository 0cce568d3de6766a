package model

// AuctionResult is one resolved auction slot won by the advertiser. It is the
// atomic unit of simulation output and immutable once emitted.
type AuctionResult struct {
	Query          string
	MatchedKeyword string
	AdID           string
	AdRank         float64
	CPC            float64
	Position       int
	Impressions    int
	Clicks         int
	Conversions    int
	Cost           float64
	Revenue        float64
	Device         Device
	Geo            string

	// Context columns appended by the driver.
	Day             int // 1-based simulated day
	Hour            int
	DayOfWeek       int // 0=Monday
	Campaign        string
	BiddingStrategy BiddingStrategy
	QualityScore    float64
	ExpectedCTR     float64
	AdRelevance     float64
	LandingPageExp  float64
	KeywordBid      float64
	DeviceAdj       float64
	FinalBid        float64
	ExtensionCount  int
}

// CTR is clicks per impression, as a percentage.
func (r *AuctionResult) CTR() float64 {
	if r.Impressions == 0 {
		return 0
	}
	return float64(r.Clicks) / float64(r.Impressions) * 100
}

// CVR is conversions per click, as a percentage.
func (r *AuctionResult) CVR() float64 {
	if r.Clicks == 0 {
		return 0
	}
	return float64(r.Conversions) / float64(r.Clicks) * 100
}

// ROAS is revenue divided by cost.
func (r *AuctionResult) ROAS() float64 {
	if r.Cost == 0 {
		return 0
	}
	return r.Revenue / r.Cost
}

// RunStats accumulates driver-level counters over one simulation run.
type RunStats struct {
	TotalQueries        int
	AuctionsRun         int
	FilteredByNegatives int
	FilteredBySchedule  int
	FilteredByBudget    int
	DeviceBreakdown     map[Device]int
}

// NewRunStats returns a zeroed stats accumulator.
func NewRunStats() *RunStats {
	return &RunStats{DeviceBreakdown: map[Device]int{
		DeviceDesktop: 0,
		DeviceMobile:  0,
		DeviceTablet:  0,
	}}
}
