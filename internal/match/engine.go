// Package match scores how well synthetic search queries match campaign
// keywords under the exact/phrase/broad match types, and detects negative
// keyword hits that suppress an auction.
package match

import (
	"sort"
	"strings"
	"unicode"

	"AdAuctionSim/internal/model"
)

// Match capture rates: the share of matching search volume each match type
// actually captures.
const (
	captureExact  = 0.95
	capturePhrase = 0.70
	captureBroad  = 0.40

	// Broad match bonus when keyword word order is preserved in the query.
	orderBonus = 1.2
)

// synonyms expands common commercial terms into close variants.
var synonyms = map[string][]string{
	"buy":    {"purchase", "order", "get", "shop"},
	"cheap":  {"affordable", "discount", "budget", "inexpensive"},
	"best":   {"top", "great", "excellent", "finest"},
	"phone":  {"smartphone", "mobile", "cell phone", "device"},
	"shoes":  {"footwear", "sneakers", "boots"},
	"laptop": {"notebook", "computer", "pc"},
	"car":    {"vehicle", "auto", "automobile"},
}

// modifiers are low-signal words stripped when generating query variants.
var modifiers = map[string][]string{
	"question":  {"how", "what", "where", "when", "why", "who"},
	"intent":    {"buy", "purchase", "order", "find", "compare"},
	"qualifier": {"best", "cheap", "affordable", "top", "good"},
	"location":  {"near me", "nearby", "local", "in"},
	"time":      {"today", "now", "tonight", "this week"},
}

// Engine implements keyword-to-query matching.
type Engine struct{}

// NewEngine returns a match engine.
func NewEngine() *Engine { return &Engine{} }

// Normalize lowercases, strips punctuation, and collapses whitespace.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// expandQuery produces the set of query variants used for broad matching:
// the original plus synonym swaps and modifier-stripped forms. Variants are
// returned sorted for deterministic iteration.
func expandQuery(normalized string) []string {
	words := strings.Fields(normalized)
	seen := map[string]bool{normalized: true}

	for _, w := range words {
		for _, syn := range synonyms[w] {
			seen[strings.ReplaceAll(normalized, w, syn)] = true
		}
	}

	for _, modifierWords := range modifiers {
		for _, mod := range modifierWords {
			if !containsWord(words, mod) {
				continue
			}
			kept := make([]string, 0, len(words))
			for _, w := range words {
				if w != mod {
					kept = append(kept, w)
				}
			}
			if len(kept) > 0 {
				seen[strings.Join(kept, " ")] = true
			}
		}
	}

	variants := make([]string, 0, len(seen))
	for v := range seen {
		variants = append(variants, v)
	}
	sort.Strings(variants)
	return variants
}

func containsWord(words []string, target string) bool {
	for _, w := range words {
		if w == target {
			return true
		}
	}
	return false
}

func wordSet(text string) map[string]bool {
	set := map[string]bool{}
	for _, w := range strings.Fields(text) {
		set[w] = true
	}
	return set
}

// Score returns the match strength in [0,1] between a keyword and a query
// under the given match type. Empty keyword or query scores 0.
func (e *Engine) Score(keyword, query string, matchType model.MatchType) float64 {
	kw := Normalize(keyword)
	q := Normalize(query)
	if kw == "" || q == "" {
		return 0
	}

	switch matchType {
	case model.MatchExact:
		if kw == q {
			return captureExact
		}
		return 0

	case model.MatchPhrase:
		// Keyword must appear as a contiguous substring of the query or one
		// of its expanded variants; score scales by how much of the variant
		// the keyword covers.
		best := 0.0
		for _, variant := range expandQuery(q) {
			if strings.Contains(variant, kw) {
				coverage := float64(len(strings.Fields(kw))) / float64(len(strings.Fields(variant)))
				if s := capturePhrase * coverage; s > best {
					best = s
				}
			}
		}
		return best

	case model.MatchBroad:
		kwWords := wordSet(kw)
		best := 0.0
		for _, variant := range expandQuery(q) {
			qWords := wordSet(variant)
			overlap := 0
			for w := range kwWords {
				if qWords[w] {
					overlap++
				}
			}
			if overlap == len(kwWords) {
				strength := captureBroad
				if wordOrderPreserved(kw, variant) {
					strength *= orderBonus
				}
				if strength > best {
					best = strength
				}
			} else if overlap > 0 {
				partial := captureBroad * float64(overlap) / float64(len(kwWords))
				if partial > best {
					best = partial
				}
			}
		}
		if best > 1 {
			return 1
		}
		return best
	}
	return 0
}

// wordOrderPreserved reports whether keyword words appear in the query in the
// same relative order.
func wordOrderPreserved(keyword, query string) bool {
	kwWords := strings.Fields(keyword)
	idx := 0
	for _, qw := range strings.Fields(query) {
		if idx < len(kwWords) && qw == kwWords[idx] {
			idx++
		}
	}
	return idx == len(kwWords)
}

// IsNegativeHit reports whether the query trips any negative keyword.
// Quoted negatives are phrase match, bracketed are exact, bare are broad
// word-subset. Any hit suppresses the auction for this query.
func (e *Engine) IsNegativeHit(query string, negatives []string) bool {
	q := Normalize(query)
	qWords := wordSet(q)

	for _, neg := range negatives {
		neg = strings.TrimSpace(neg)
		if neg == "" {
			continue
		}
		switch {
		case strings.HasPrefix(neg, `"`) && strings.HasSuffix(neg, `"`):
			phrase := Normalize(strings.Trim(neg, `"`))
			if phrase != "" && strings.Contains(q, phrase) {
				return true
			}
		case strings.HasPrefix(neg, "[") && strings.HasSuffix(neg, "]"):
			exact := Normalize(strings.Trim(neg, "[]"))
			if exact != "" && exact == q {
				return true
			}
		default:
			negWords := wordSet(Normalize(neg))
			if len(negWords) == 0 {
				continue
			}
			all := true
			for w := range negWords {
				if !qWords[w] {
					all = false
					break
				}
			}
			if all {
				return true
			}
		}
	}
	return false
}

// FindBestMatch picks the keyword with the highest match score for a query.
// Score ties break toward the more specific match type.
func (e *Engine) FindBestMatch(query string, keywords []*model.Keyword) (*model.Keyword, float64) {
	var best *model.Keyword
	bestScore := 0.0

	for _, kw := range keywords {
		score := e.Score(kw.Text, query, kw.MatchType)
		if score > bestScore {
			bestScore = score
			best = kw
		} else if score == bestScore && best != nil && score > 0 {
			if kw.MatchType.Specificity() > best.MatchType.Specificity() {
				best = kw
			}
		}
	}
	return best, bestScore
}

// GenerateQueries produces realistic search queries that would trigger the
// keyword under its match type. The first entry is always the keyword itself.
func (e *Engine) GenerateQueries(keyword string, matchType model.MatchType, limit int) []string {
	kw := Normalize(keyword)
	if kw == "" {
		return nil
	}
	words := strings.Fields(kw)
	queries := []string{kw}

	if matchType == model.MatchPhrase || matchType == model.MatchBroad {
		for _, qualifier := range modifiers["qualifier"][:3] {
			queries = append(queries, qualifier+" "+kw)
		}
		for _, intent := range modifiers["intent"][:2] {
			queries = append(queries, intent+" "+kw)
		}
		queries = append(queries, kw+" near me", kw+" online")
	}

	if matchType == model.MatchBroad {
		if len(words) > 1 {
			queries = append(queries, words[len(words)-1]+" "+strings.Join(words[:len(words)-1], " "))
		}
		queries = append(queries, "how to "+kw, "where to "+kw)
		for _, w := range words {
			if syns := synonyms[w]; len(syns) > 0 {
				queries = append(queries, strings.ReplaceAll(kw, w, syns[0]))
			}
		}
	}

	seen := map[string]bool{}
	unique := queries[:0]
	for _, q := range queries {
		if !seen[q] {
			seen[q] = true
			unique = append(unique, q)
		}
	}
	if limit > 0 && len(unique) > limit {
		unique = unique[:limit]
	}
	return unique
}
