package planner

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"AdAuctionSim/internal/model"
)

// FileSource reads keyword metrics from a YAML file, the offline stand-in
// for a live keyword-planner API. File layout:
//
//	keywords:
//	  - keyword: "running shoes"
//	    avg_monthly_searches: 12000
//	    competition: HIGH
//	    cpc_low: 0.90
//	    cpc_high: 2.40
type FileSource struct {
	path string
}

// NewFileSource creates a file-backed metrics source.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

type metricsFile struct {
	Keywords []model.KeywordMetrics `yaml:"keywords"`
}

// FetchMetrics implements MetricsSource. Keywords are matched
// case-insensitively; rows not requested are ignored.
func (s *FileSource) FetchMetrics(_ context.Context, keywords []string) (map[string]model.KeywordMetrics, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read metrics file %s: %w", s.path, err)
	}

	var f metricsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse metrics file %s: %w", s.path, err)
	}

	byText := make(map[string]model.KeywordMetrics, len(f.Keywords))
	for _, m := range f.Keywords {
		byText[strings.ToLower(strings.TrimSpace(m.Keyword))] = m
	}

	out := make(map[string]model.KeywordMetrics, len(keywords))
	for _, kw := range keywords {
		if m, ok := byText[strings.ToLower(strings.TrimSpace(kw))]; ok {
			m.Keyword = kw
			out[kw] = m
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s has no rows for the requested keywords", ErrNoValidMetrics, s.path)
	}
	return out, nil
}
