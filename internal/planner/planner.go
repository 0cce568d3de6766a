// Package planner supplies keyword market metrics (search volume,
// competition, CPC range) to the simulation. Sources are pluggable; the
// deterministic mock generator is always available as a fallback so a run
// never aborts for lack of market data.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"

	"AdAuctionSim/internal/model"
)

// ErrNoValidMetrics means a source produced no usable rows for the
// requested keywords.
var ErrNoValidMetrics = errors.New("planner: source returned no valid keyword metrics")

// MetricsSource resolves market metrics for a batch of keyword strings.
// Implementations must be deterministic: the same input always yields the
// same output.
type MetricsSource interface {
	FetchMetrics(ctx context.Context, keywords []string) (map[string]model.KeywordMetrics, error)
}

// commercialTerms raise the intent level of a keyword; each hit counts once.
var commercialTerms = []string{
	"buy", "purchase", "price", "cheap", "best", "review",
	"deal", "discount", "sale", "shop", "order", "online",
	"compare", "vs", "versus", "cost", "affordable",
}

// baseCPCMatrix maps (competition, intent level 0-3) to a base CPC.
var baseCPCMatrix = map[string][4]float64{
	"HIGH":   {1.40, 1.90, 2.50, 3.20},
	"MEDIUM": {0.75, 1.00, 1.35, 1.80},
	"LOW":    {0.30, 0.45, 0.65, 0.90},
}

// MockSource generates realistic keyword metrics from the keyword text
// alone: volume falls with keyword length, rises with commercial intent,
// and CPC follows a competition/intent matrix with a per-keyword hash
// variation. Fully deterministic.
type MockSource struct{}

// NewMockSource returns the deterministic mock metrics generator.
func NewMockSource() *MockSource { return &MockSource{} }

// FetchMetrics implements MetricsSource. It never fails and never returns
// an empty map for a non-empty input.
func (s *MockSource) FetchMetrics(_ context.Context, keywords []string) (map[string]model.KeywordMetrics, error) {
	out := make(map[string]model.KeywordMetrics, len(keywords))
	for idx, kw := range keywords {
		out[kw] = s.generate(kw, idx)
	}
	return out, nil
}

func (s *MockSource) generate(keyword string, idx int) model.KeywordMetrics {
	lower := strings.ToLower(keyword)

	intentLevel := 0
	for _, term := range commercialTerms {
		if strings.Contains(lower, term) {
			intentLevel++
		}
	}
	if intentLevel > 3 {
		intentLevel = 3
	}

	wordCount := len(strings.Fields(keyword))

	baseVolume := 1500 + idx*400
	volumeMult := 1.0 + float64(intentLevel)*0.4
	lengthPenalty := 1.0 / (1.0 + float64(wordCount-1)*0.25)

	searches := int(float64(baseVolume) * volumeMult * lengthPenalty)
	if searches < 100 {
		searches = 100
	}
	if searches > 50000 {
		searches = 50000
	}

	var competition string
	switch {
	case searches > 10000 && intentLevel >= 2:
		competition = "HIGH"
	case searches > 3000 || intentLevel >= 1:
		competition = "MEDIUM"
	default:
		competition = "LOW"
	}

	baseCPC := 1.0
	if row, ok := baseCPCMatrix[competition]; ok {
		baseCPC = row[intentLevel]
	}

	// Per-keyword variation from a stable character sum, 0.85 to 1.15.
	hash := 0
	for _, c := range keyword {
		hash += int(c)
	}
	variation := 0.85 + float64(hash%100)/100*0.3

	cpcLow := round2(baseCPC * variation * 0.75)
	cpcHigh := round2(baseCPC * variation * 1.60)

	return model.KeywordMetrics{
		Keyword:            keyword,
		AvgMonthlySearches: searches,
		Competition:        competition,
		CPCLow:             math.Max(0.10, cpcLow),
		CPCHigh:            math.Max(0.20, cpcHigh),
		QualityScore:       7.0,
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

// sanitize enforces realistic bounds on a metrics row regardless of source.
func sanitize(m model.KeywordMetrics) model.KeywordMetrics {
	if m.AvgMonthlySearches < 10 {
		m.AvgMonthlySearches = 100
	}
	if m.Competition == "" {
		m.Competition = "MEDIUM"
	}
	if m.CPCLow <= 0 {
		m.CPCLow = 0.25
	}
	if m.CPCHigh <= m.CPCLow {
		m.CPCHigh = m.CPCLow * 2.5
	}
	if m.QualityScore <= 0 {
		m.QualityScore = 7.0
	}
	return m
}

// Resolver wraps a primary source with the mock fallback. A source error or
// an all-invalid batch degrades to mock data with a warning; it never
// aborts the run.
type Resolver struct {
	primary MetricsSource
	mock    *MockSource
}

// NewResolver builds a resolver over the given primary source. A nil
// primary means mock-only.
func NewResolver(primary MetricsSource) *Resolver {
	return &Resolver{primary: primary, mock: NewMockSource()}
}

// Resolve fetches sanitized metrics for the keywords, falling back to the
// mock generator when the primary source fails or yields nothing usable.
func (r *Resolver) Resolve(ctx context.Context, keywords []string) (map[string]model.KeywordMetrics, error) {
	if len(keywords) == 0 {
		return map[string]model.KeywordMetrics{}, nil
	}

	if r.primary != nil {
		fetched, err := r.primary.FetchMetrics(ctx, keywords)
		if err != nil {
			log.Printf("[WARN] keyword metrics source failed, using mock data: %v", err)
		} else {
			out := make(map[string]model.KeywordMetrics, len(keywords))
			for _, kw := range keywords {
				if m, ok := fetched[kw]; ok {
					out[kw] = sanitize(m)
				}
			}
			if len(out) > 0 {
				// Backfill keywords the source did not cover.
				missing := make([]string, 0)
				for _, kw := range keywords {
					if _, ok := out[kw]; !ok {
						missing = append(missing, kw)
					}
				}
				if len(missing) > 0 {
					log.Printf("[WARN] metrics source missing %d of %d keywords, backfilling from mock", len(missing), len(keywords))
					mocked, _ := r.mock.FetchMetrics(ctx, missing)
					for kw, m := range mocked {
						out[kw] = m
					}
				}
				return out, nil
			}
			log.Printf("[WARN] keyword metrics source returned no valid rows: %v", ErrNoValidMetrics)
		}
	}

	mocked, err := r.mock.FetchMetrics(ctx, keywords)
	if err != nil {
		return nil, fmt.Errorf("mock metrics generation: %w", err)
	}
	return mocked, nil
}
