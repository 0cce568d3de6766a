package model

// Competition levels reported by the keyword metrics source.
const (
	CompetitionLow    = "LOW"
	CompetitionMedium = "MEDIUM"
	CompetitionHigh   = "HIGH"
)

// KeywordMetrics is the per-keyword market data handed to the engine before a
// run. Same input must always produce the same metrics, whether they come
// from a live planner API snapshot or the mock generator.
type KeywordMetrics struct {
	Keyword            string  `json:"keyword" yaml:"keyword"`
	AvgMonthlySearches int     `json:"avg_monthly_searches" yaml:"avg_monthly_searches"`
	Competition        string  `json:"competition" yaml:"competition"`
	CPCLow             float64 `json:"cpc_low" yaml:"cpc_low"`
	CPCHigh            float64 `json:"cpc_high" yaml:"cpc_high"`
	QualityScore       float64 `json:"quality_score" yaml:"quality_score"`
}

// DailySearches converts the monthly volume to a daily average.
func (m *KeywordMetrics) DailySearches() float64 {
	return float64(m.AvgMonthlySearches) / 30.4
}

// ExpectedCTR estimates click-through rate from the competition level.
// More ads competing means a lower share of clicks per ad.
func (m *KeywordMetrics) ExpectedCTR() float64 {
	switch m.Competition {
	case CompetitionLow:
		return 0.055
	case CompetitionMedium:
		return 0.040
	case CompetitionHigh:
		return 0.028
	}
	return 0.035
}

// ExpectedCVR estimates conversion rate from the competition level.
// Competitive keywords tend to carry higher purchase intent.
func (m *KeywordMetrics) ExpectedCVR() float64 {
	switch m.Competition {
	case CompetitionLow:
		return 0.018
	case CompetitionMedium:
		return 0.025
	case CompetitionHigh:
		return 0.032
	}
	return 0.022
}
