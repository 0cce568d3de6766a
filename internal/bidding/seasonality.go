package bidding

// SeasonalityModel captures industry-specific search demand patterns by day
// of week, month, and major holidays.
type SeasonalityModel struct {
	industry string
}

// Day-of-week multipliers, Monday first.
var dowPatterns = map[string][7]float64{
	"general":   {0.95, 1.00, 1.05, 1.05, 1.00, 0.85, 0.75},
	"retail":    {0.90, 0.95, 1.00, 1.05, 1.10, 1.20, 1.15},
	"b2b":       {1.10, 1.15, 1.10, 1.05, 1.00, 0.60, 0.55},
	"travel":    {0.85, 0.90, 0.95, 1.00, 1.05, 1.20, 1.25},
	"education": {1.05, 1.10, 1.10, 1.05, 1.00, 0.80, 0.75},
}

// Month multipliers, January first.
var monthPatterns = map[string][12]float64{
	"general":   {1.0, 1.0, 1.0, 1.0, 1.0, 1.0, 1.0, 1.0, 1.0, 1.0, 1.0, 1.0},
	"retail":    {0.80, 0.75, 0.85, 0.90, 0.95, 0.95, 0.90, 0.95, 1.00, 1.05, 1.30, 1.50},
	"travel":    {0.90, 0.85, 1.00, 1.10, 1.15, 1.30, 1.35, 1.25, 1.00, 0.95, 0.90, 0.95},
	"b2b":       {1.05, 1.10, 1.10, 1.05, 1.00, 0.95, 0.85, 0.90, 1.05, 1.10, 1.05, 0.85},
	"education": {1.30, 1.25, 1.10, 1.00, 0.95, 0.70, 0.65, 1.20, 1.25, 1.10, 1.05, 0.85},
}

type monthDay struct{ month, day int }

// Major-holiday multipliers applied on top of the weekly/monthly patterns.
var holidayMultipliers = map[monthDay]float64{
	{1, 1}:   0.70, // New Year's Day
	{2, 14}:  1.20, // Valentine's Day
	{7, 4}:   0.80, // Independence Day
	{11, 24}: 1.40, // Black Friday (approximate)
	{12, 25}: 0.50, // Christmas
	{12, 31}: 0.70, // New Year's Eve
}

// NewSeasonalityModel returns the model for an industry; unknown industries
// fall back to the general pattern.
func NewSeasonalityModel(industry string) *SeasonalityModel {
	return &SeasonalityModel{industry: industry}
}

func (s *SeasonalityModel) dowPattern() [7]float64 {
	if p, ok := dowPatterns[s.industry]; ok {
		return p
	}
	return dowPatterns["general"]
}

func (s *SeasonalityModel) monthPattern() [12]float64 {
	if p, ok := monthPatterns[s.industry]; ok {
		return p
	}
	return monthPatterns["general"]
}

// Multiplier combines day-of-week (0=Monday), month (1-12), and holiday
// effects multiplicatively. Out-of-range inputs contribute 1.0.
func (s *SeasonalityModel) Multiplier(dayOfWeek, month, dayOfMonth int) float64 {
	mult := 1.0
	if dayOfWeek >= 0 && dayOfWeek < 7 {
		mult *= s.dowPattern()[dayOfWeek]
	}
	if month >= 1 && month <= 12 {
		mult *= s.monthPattern()[month-1]
	}
	if hm, ok := holidayMultipliers[monthDay{month, dayOfMonth}]; ok {
		mult *= hm
	}
	return mult
}

// IsHoliday reports whether the date is on the major-holiday calendar.
func IsHoliday(month, dayOfMonth int) bool {
	_, ok := holidayMultipliers[monthDay{month, dayOfMonth}]
	return ok
}
