package match

import (
	"testing"

	"AdAuctionSim/internal/model"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Running Shoes", "running shoes"},
		{"  buy   SHOES!! ", "buy shoes"},
		{"what's-up", "what s up"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScore_ExactMatch(t *testing.T) {
	e := NewEngine()

	if got := e.Score("running shoes", "Running Shoes", model.MatchExact); got != 0.95 {
		t.Errorf("exact match on normalized-equal strings: got %.3f, want 0.95", got)
	}
	// Any non-identical query must score exactly zero.
	for _, q := range []string{"buy running shoes", "running shoe", "shoes", ""} {
		if got := e.Score("running shoes", q, model.MatchExact); got != 0 {
			t.Errorf("exact match %q: got %.3f, want 0", q, got)
		}
	}
}

func TestScore_PhraseMatch(t *testing.T) {
	e := NewEngine()

	// Full coverage: the query is exactly the phrase.
	if got := e.Score("running shoes", "running shoes", model.MatchPhrase); got < 0.69 || got > 0.71 {
		t.Errorf("full-coverage phrase: got %.3f, want 0.70", got)
	}
	// Partial coverage: phrase is half the four-word query.
	got := e.Score("running shoes", "durable trail running shoes", model.MatchPhrase)
	if got < 0.34 || got > 0.36 {
		t.Errorf("half-coverage phrase: got %.3f, want 0.35", got)
	}
	// Phrase must be contiguous.
	if got := e.Score("running shoes", "running red shoes", model.MatchPhrase); got != 0 {
		t.Errorf("non-contiguous phrase: got %.3f, want 0", got)
	}
}

func TestScore_BroadMatch(t *testing.T) {
	e := NewEngine()

	// All keyword words present in order: capture * order bonus.
	got := e.Score("running shoes", "best running shoes online", model.MatchBroad)
	if got < 0.47 || got > 0.49 {
		t.Errorf("broad in-order: got %.3f, want 0.48", got)
	}
	// Reversed order still matches, without the bonus.
	got = e.Score("running shoes", "shoes for running", model.MatchBroad)
	if got < 0.39 || got > 0.41 {
		t.Errorf("broad out-of-order: got %.3f, want 0.40", got)
	}
	// Partial overlap gives a proportional partial score.
	got = e.Score("running shoes store", "running shoes", model.MatchBroad)
	want := 0.40 * 2.0 / 3.0
	if got < want-0.01 || got > want+0.01 {
		t.Errorf("broad partial: got %.3f, want %.3f", got, want)
	}
}

func TestScore_SynonymExpansion(t *testing.T) {
	e := NewEngine()

	// "purchase" expands from "buy": keyword with "buy" should match a
	// query using the synonym path via variant generation on the query side.
	got := e.Score("purchase shoes", "buy shoes", model.MatchBroad)
	if got == 0 {
		t.Error("expected synonym-expanded broad match for purchase/buy")
	}
}

func TestScore_EmptyInputs(t *testing.T) {
	e := NewEngine()
	for _, mt := range []model.MatchType{model.MatchExact, model.MatchPhrase, model.MatchBroad} {
		if got := e.Score("", "query", mt); got != 0 {
			t.Errorf("empty keyword %s: got %.3f, want 0", mt, got)
		}
		if got := e.Score("keyword", "", mt); got != 0 {
			t.Errorf("empty query %s: got %.3f, want 0", mt, got)
		}
	}
}

func TestScore_BroadMatchesWheneverPhraseDoes(t *testing.T) {
	e := NewEngine()
	queries := []string{
		"running shoes",
		"buy running shoes",
		"best running shoes near me",
	}
	for _, q := range queries {
		phrase := e.Score("running shoes", q, model.MatchPhrase)
		broad := e.Score("running shoes", q, model.MatchBroad)
		if phrase > 0 && broad == 0 {
			t.Errorf("query %q: phrase matched (%.3f) but broad did not", q, phrase)
		}
	}
}

func TestIsNegativeHit(t *testing.T) {
	e := NewEngine()
	tests := []struct {
		query     string
		negatives []string
		want      bool
	}{
		{"free running shoes", []string{"free"}, true},
		{"running shoes", []string{"free"}, false},
		{"cheap used shoes", []string{`"used shoes"`}, true},
		{"used running shoes", []string{`"used shoes"`}, false},
		{"running shoes", []string{"[running shoes]"}, true},
		{"buy running shoes", []string{"[running shoes]"}, false},
		{"shoe repair kit", []string{"repair kit"}, true},
		{"shoe repair", []string{"repair kit"}, false},
		{"anything", nil, false},
		{"anything", []string{"", "  "}, false},
	}
	for _, tt := range tests {
		if got := e.IsNegativeHit(tt.query, tt.negatives); got != tt.want {
			t.Errorf("IsNegativeHit(%q, %v) = %v, want %v", tt.query, tt.negatives, got, tt.want)
		}
	}
}

func TestFindBestMatch_TieBreaksBySpecificity(t *testing.T) {
	e := NewEngine()
	broad := &model.Keyword{ID: "kw1", Text: "running shoes", MatchType: model.MatchBroad}
	exact := &model.Keyword{ID: "kw2", Text: "running shoes", MatchType: model.MatchExact}

	best, score := e.FindBestMatch("running shoes", []*model.Keyword{broad, exact})
	if best == nil || score == 0 {
		t.Fatal("expected a match")
	}
	if best.ID != "kw2" {
		t.Errorf("expected exact keyword to win, got %s", best.ID)
	}
}

func TestFindBestMatch_NoMatch(t *testing.T) {
	e := NewEngine()
	kw := &model.Keyword{ID: "kw1", Text: "running shoes", MatchType: model.MatchExact}
	best, score := e.FindBestMatch("laptop deals", []*model.Keyword{kw})
	if best != nil || score != 0 {
		t.Errorf("expected no match, got %v score %.3f", best, score)
	}
}

func TestGenerateQueries(t *testing.T) {
	e := NewEngine()

	queries := e.GenerateQueries("running shoes", model.MatchBroad, 10)
	if len(queries) == 0 {
		t.Fatal("expected generated queries")
	}
	if queries[0] != "running shoes" {
		t.Errorf("first query should be the keyword itself, got %q", queries[0])
	}
	if len(queries) > 10 {
		t.Errorf("expected at most 10 queries, got %d", len(queries))
	}
	seen := map[string]bool{}
	for _, q := range queries {
		if seen[q] {
			t.Errorf("duplicate query %q", q)
		}
		seen[q] = true
	}

	// Exact keywords only ever see their own text.
	exact := e.GenerateQueries("running shoes", model.MatchExact, 10)
	if len(exact) != 1 || exact[0] != "running shoes" {
		t.Errorf("exact match queries = %v, want just the keyword", exact)
	}
}
