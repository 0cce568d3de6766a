package model

import "fmt"

// MatchType controls how strictly a keyword matches search queries.
type MatchType string

const (
	MatchExact  MatchType = "exact"
	MatchPhrase MatchType = "phrase"
	MatchBroad  MatchType = "broad"
)

// Specificity ranks match types for tie-breaking: exact > phrase > broad.
func (m MatchType) Specificity() int {
	switch m {
	case MatchExact:
		return 3
	case MatchPhrase:
		return 2
	case MatchBroad:
		return 1
	}
	return 0
}

// Keyword is an immutable simulation input bound to an ad group.
type Keyword struct {
	ID        string    `yaml:"id"`
	AdGroupID string    `yaml:"ad_group_id"`
	Text      string    `yaml:"text"`
	MatchType MatchType `yaml:"match_type"`
	Status    Status    `yaml:"status"`
	// CPCBid, when positive, overrides the ad group default bid.
	CPCBid float64 `yaml:"cpc_bid"`
}

// EffectiveBid returns the keyword-level bid if set, else the ad group default.
func (k *Keyword) EffectiveBid(adGroupDefault float64) float64 {
	if k.CPCBid > 0 {
		return k.CPCBid
	}
	return adGroupDefault
}

// HasOwnBid reports whether a keyword-level CPC bid is configured.
func (k *Keyword) HasOwnBid() bool { return k.CPCBid > 0 }

// Validate checks keyword invariants.
func (k *Keyword) Validate() error {
	if k.Text == "" {
		return fmt.Errorf("keyword %q: text is required", k.ID)
	}
	if k.AdGroupID == "" {
		return fmt.Errorf("keyword %q: ad_group_id is required", k.Text)
	}
	switch k.MatchType {
	case MatchExact, MatchPhrase, MatchBroad:
	default:
		return fmt.Errorf("keyword %q: unknown match_type %q", k.Text, k.MatchType)
	}
	if k.CPCBid < 0 {
		return fmt.Errorf("keyword %q: cpc_bid must not be negative", k.Text)
	}
	return nil
}

// ExtensionType identifies an ad extension kind.
type ExtensionType string

const (
	ExtSitelink          ExtensionType = "sitelink"
	ExtCallout           ExtensionType = "callout"
	ExtStructuredSnippet ExtensionType = "structured_snippet"
	ExtCall              ExtensionType = "call"
	ExtLocation          ExtensionType = "location"
	ExtPrice             ExtensionType = "price"
	ExtApp               ExtensionType = "app"
	ExtPromotion         ExtensionType = "promotion"
	ExtImage             ExtensionType = "image"
)

// AdExtension is a single ad asset. Quality (0-1) scales its CTR impact;
// zero is treated as the 0.8 default.
type AdExtension struct {
	Type        ExtensionType `yaml:"type"`
	Text        string        `yaml:"text"`
	Description string        `yaml:"description"`
	Quality     float64       `yaml:"quality"`
}

// EffectiveQuality returns the asset quality with the 0.8 default applied.
func (e *AdExtension) EffectiveQuality() float64 {
	if e.Quality <= 0 {
		return 0.8
	}
	if e.Quality > 1 {
		return 1
	}
	return e.Quality
}

// Ad is a responsive search ad with its extensions.
type Ad struct {
	ID                 string              `yaml:"id"`
	AdGroupID          string              `yaml:"ad_group_id"`
	Status             Status              `yaml:"status"`
	Headlines          []string            `yaml:"headlines"`
	Descriptions       []string            `yaml:"descriptions"`
	FinalURL           string              `yaml:"final_url"`
	Sitelinks          []AdExtension       `yaml:"sitelinks"`
	Callouts           []string            `yaml:"callouts"`
	StructuredSnippets map[string][]string `yaml:"structured_snippets"`
}

// AllExtensions flattens sitelinks, callouts, and structured snippets into a
// single extension list.
func (a *Ad) AllExtensions() []AdExtension {
	exts := make([]AdExtension, 0, len(a.Sitelinks)+len(a.Callouts)+len(a.StructuredSnippets))
	exts = append(exts, a.Sitelinks...)
	for _, c := range a.Callouts {
		exts = append(exts, AdExtension{Type: ExtCallout, Text: c})
	}
	for header, values := range a.StructuredSnippets {
		desc := ""
		for i, v := range values {
			if i > 0 {
				desc += ", "
			}
			desc += v
		}
		exts = append(exts, AdExtension{Type: ExtStructuredSnippet, Text: header, Description: desc})
	}
	return exts
}

// Validate checks ad invariants.
func (a *Ad) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("ad id is required")
	}
	if a.AdGroupID == "" {
		return fmt.Errorf("ad %q: ad_group_id is required", a.ID)
	}
	if len(a.Headlines) == 0 {
		return fmt.Errorf("ad %q: at least one headline is required", a.ID)
	}
	if len(a.Descriptions) == 0 {
		return fmt.Errorf("ad %q: at least one description is required", a.ID)
	}
	if a.FinalURL == "" {
		return fmt.Errorf("ad %q: final_url is required", a.ID)
	}
	return nil
}
