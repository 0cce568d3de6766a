// Package quality computes the 1-10 quality score from expected CTR, ad
// relevance, and landing page experience, plus the CTR uplift contributed by
// ad extensions.
package quality

import (
	"math"
	"strings"

	"AdAuctionSim/internal/match"
	"AdAuctionSim/internal/model"
)

// Component weights approximating the published quality score factors.
const (
	weightExpectedCTR = 0.40
	weightAdRelevance = 0.35
	weightLandingPage = 0.25

	// A 15% expected CTR normalizes to a perfect CTR component.
	ctrCeiling = 0.15

	// Logistic steepness concentrating most scores in the 5-7 band.
	sigmoidSteepness = 6.0
)

// Engine computes quality scores.
type Engine struct{}

// NewEngine returns a quality engine.
func NewEngine() *Engine { return &Engine{} }

// ComputeQS combines the three components into a 1-10 score, rounded to one
// decimal. Inputs are clamped; the result is always within [1, 10].
func (e *Engine) ComputeQS(expectedCTR, adRelevance, landingPageExp float64) float64 {
	ctrNorm := math.Min(1.0, expectedCTR/ctrCeiling)
	relNorm := clamp01(adRelevance)
	lpNorm := clamp01(landingPageExp)

	raw := weightExpectedCTR*ctrNorm + weightAdRelevance*relNorm + weightLandingPage*lpNorm

	// Logistic transform centered at 0.5 to match the observed real-world
	// score distribution, then scale to 1-10.
	transformed := 1.0 / (1.0 + math.Exp(-sigmoidSteepness*(raw-0.5)))
	qs := 1.0 + transformed*9.0

	return clampQS(math.Round(qs*10) / 10)
}

// ExpectedCTR estimates click-through rate from how well the top headlines
// cover the keyword, anchored on the historical CTR baseline. Capped at 20%.
func (e *Engine) ExpectedCTR(keyword string, headlines []string, historicalCTR float64) float64 {
	kw := strings.ToLower(keyword)
	kwWords := wordSet(kw)

	var scores []float64
	top := headlines
	if len(top) > 3 {
		top = top[:3] // only the top 3 headlines render
	}
	for _, headline := range top {
		h := strings.ToLower(headline)
		hWords := wordSet(h)

		switch {
		case strings.Contains(h, kw):
			scores = append(scores, 1.0)
		case isSubset(kwWords, hWords):
			scores = append(scores, 0.8)
		default:
			overlap := intersectionSize(kwWords, hWords)
			if overlap > 0 {
				ratio := float64(overlap) / float64(len(kwWords))
				scores = append(scores, 0.4+ratio*0.4)
			} else {
				scores = append(scores, 0.2)
			}
		}
	}

	avgRelevance := 0.3
	if len(scores) > 0 {
		sum := 0.0
		for _, s := range scores {
			sum += s
		}
		avgRelevance = sum / float64(len(scores))
	}

	baseCTR := math.Max(0.01, historicalCTR)
	expected := baseCTR * (0.5 + avgRelevance*1.5)
	return math.Min(0.20, expected)
}

// AdRelevance scores keyword/ad/query alignment in [0.1, 1.0]. The three
// pairwise overlaps are weighted 0.4 / 0.4 / 0.2 with a 1.2x bonus when the
// keyword appears verbatim in the ad text.
func (e *Engine) AdRelevance(keyword, adText, query string) float64 {
	kwWords := wordSet(strings.ToLower(keyword))
	adWords := wordSet(strings.ToLower(adText))
	qWords := wordSet(strings.ToLower(query))

	kwQuery, adQuery, kwAd := 0.0, 0.0, 0.0
	if len(qWords) > 0 {
		kwQuery = float64(intersectionSize(kwWords, qWords)) / float64(len(qWords))
		adQuery = float64(intersectionSize(adWords, qWords)) / float64(len(qWords))
	}
	if len(kwWords) > 0 {
		kwAd = float64(intersectionSize(kwWords, adWords)) / float64(len(kwWords))
	}

	relevance := kwQuery*0.4 + adQuery*0.4 + kwAd*0.2

	if strings.Contains(strings.ToLower(adText), strings.ToLower(keyword)) {
		relevance = math.Min(1.0, relevance*1.2)
	}
	return math.Max(0.1, math.Min(1.0, relevance))
}

// LandingPageExperience scores URL quality signals in [0.1, 1.0]: HTTPS,
// keyword presence, URL complexity, mobile friendliness, load time buckets,
// and trusted TLDs.
func (e *Engine) LandingPageExperience(url, keyword string, mobileFriendly bool, loadTimeSeconds float64) float64 {
	if url == "" {
		return 0.5
	}
	score := 0.5
	lower := strings.ToLower(url)

	if strings.HasPrefix(lower, "https://") {
		score += 0.05
	}
	for _, w := range strings.Fields(strings.ToLower(keyword)) {
		if len(w) > 3 && strings.Contains(lower, w) {
			score += 0.08
		}
	}

	complexity := math.Min(1.0, float64(len(url))/80.0)
	score += 0.1 * (1 - complexity)

	if mobileFriendly {
		score += 0.15
	}
	switch {
	case loadTimeSeconds <= 2.0:
		score += 0.15
	case loadTimeSeconds <= 3.0:
		score += 0.10
	case loadTimeSeconds <= 4.0:
		score += 0.05
	}

	for _, tld := range []string{".com", ".org", ".edu", ".gov"} {
		if strings.Contains(lower, tld) {
			score += 0.05
			break
		}
	}
	return math.Max(0.1, math.Min(1.0, score))
}

// Breakdown reports the component ratings alongside the composite score.
type Breakdown struct {
	QualityScore      float64
	ExpectedCTR       float64
	CTRRating         string
	AdRelevance       float64
	RelevanceRating   string
	LandingPage       float64
	LandingPageRating string
}

// GetBreakdown returns a per-component rating, the way account UIs present
// quality score diagnostics.
func (e *Engine) GetBreakdown(expectedCTR, adRelevance, landingPageExp float64) Breakdown {
	return Breakdown{
		QualityScore:      e.ComputeQS(expectedCTR, adRelevance, landingPageExp),
		ExpectedCTR:       expectedCTR,
		CTRRating:         rateComponent(expectedCTR / ctrCeiling),
		AdRelevance:       adRelevance,
		RelevanceRating:   rateComponent(adRelevance),
		LandingPage:       landingPageExp,
		LandingPageRating: rateComponent(landingPageExp),
	}
}

func rateComponent(v float64) string {
	switch {
	case v >= 0.7:
		return "Above Average"
	case v >= 0.4:
		return "Average"
	}
	return "Below Average"
}

// QueryRelevanceInputs derives the engine inputs for one keyword/ad/query
// combination using shared normalization from the match package.
func (e *Engine) QueryRelevanceInputs(keyword string, ad *model.Ad, query string, historicalCTR float64) (expectedCTR, adRelevance, landingPage float64) {
	adText := strings.Join(append(append([]string{}, ad.Headlines...), ad.Descriptions...), " ")
	expectedCTR = e.ExpectedCTR(keyword, ad.Headlines, historicalCTR)
	adRelevance = e.AdRelevance(keyword, adText, query)
	landingPage = e.LandingPageExperience(ad.FinalURL, keyword, true, 2.0)
	return
}

func wordSet(text string) map[string]bool {
	set := map[string]bool{}
	for _, w := range strings.Fields(match.Normalize(text)) {
		set[w] = true
	}
	return set
}

func isSubset(sub, super map[string]bool) bool {
	for w := range sub {
		if !super[w] {
			return false
		}
	}
	return len(sub) > 0
}

func intersectionSize(a, b map[string]bool) int {
	n := 0
	for w := range a {
		if b[w] {
			n++
		}
	}
	return n
}

func clamp01(v float64) float64 {
	return math.Max(0.0, math.Min(1.0, v))
}

func clampQS(v float64) float64 {
	return math.Max(1.0, math.Min(10.0, v))
}
