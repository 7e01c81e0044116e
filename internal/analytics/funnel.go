package analytics

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"shoplens/internal/dataset"
)

// The product-detail pages of the demo catalog, also used by the funnel's
// combined product stage.
var productPageURLs = []string{
	"/the-original-mr-fuzzy",
	"/the-forever-love-bear",
	"/the-birthday-sugar-panda",
	"/the-hudson-river-mini-bear",
}

// StageRule maps pageview URLs onto one funnel stage. A URL belongs to the
// stage when it equals one of Exact or starts with one of Prefixes. Rules
// are evaluated in order and define the funnel's stage order.
type StageRule struct {
	Stage    string   `yaml:"stage"`
	Exact    []string `yaml:"exact,omitempty"`
	Prefixes []string `yaml:"prefixes,omitempty"`
}

// FunnelStage is one step of the computed funnel.
type FunnelStage struct {
	Stage  string  `json:"stage"`
	Visits int64   `json:"visits"`
	Pct    float64 `json:"pct"`
}

// DefaultStageRules returns the purchase funnel for the demo store: all
// landers collapse into one homepage stage and the four product-detail
// pages into one product stage.
func DefaultStageRules() []StageRule {
	return []StageRule{
		{Stage: "/homepages", Exact: []string{"/home"}, Prefixes: []string{"/lander"}},
		{Stage: "/products", Exact: []string{"/products"}},
		{Stage: "/one_of_the_product_page", Exact: productPageURLs},
		{Stage: "/cart", Exact: []string{"/cart"}},
		{Stage: "/shipping", Exact: []string{"/shipping"}},
		{Stage: "/billing", Prefixes: []string{"/billing"}},
		{Stage: "/thank-you-for-your-order", Exact: []string{"/thank-you-for-your-order"}},
	}
}

// LoadStageRules reads funnel stage rules from a YAML file.
func LoadStageRules(path string) ([]StageRule, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading stage rules %s: %w", path, err)
	}

	var rules []StageRule
	if err := yaml.Unmarshal(raw, &rules); err != nil {
		return nil, fmt.Errorf("parsing stage rules %s: %w", path, err)
	}
	for i, rule := range rules {
		if rule.Stage == "" {
			return nil, fmt.Errorf("stage rules %s: rule %d has no stage name", path, i)
		}
	}
	return rules, nil
}

// stageFor resolves a URL to its stage. URLs matching no rule are excluded
// from the funnel entirely.
func stageFor(url string, rules []StageRule) (string, bool) {
	for _, rule := range rules {
		for _, exact := range rule.Exact {
			if url == exact {
				return rule.Stage, true
			}
		}
		for _, prefix := range rule.Prefixes {
			if strings.HasPrefix(url, prefix) {
				return rule.Stage, true
			}
		}
	}
	return "", false
}

// FunnelStages counts pageview visits per stage, in rule order. Every
// matching pageview counts, so a session revisiting a stage (or viewing
// two pages that share one stage) contributes each time. Percentages are
// normalized against the busiest stage rather than the first one, so a
// mid-funnel stage with more traffic than the entry stage caps at 100.
func FunnelStages(ds *dataset.Dataset, rules []StageRule) []FunnelStage {
	visits := make(map[string]int64, len(rules))
	for _, pv := range ds.Pageviews {
		stage, ok := stageFor(pv.URL, rules)
		if !ok {
			continue
		}
		visits[stage]++
	}

	var max int64
	for _, n := range visits {
		if n > max {
			max = n
		}
	}

	stages := make([]FunnelStage, 0, len(rules))
	for _, rule := range rules {
		n := visits[rule.Stage]
		stages = append(stages, FunnelStage{
			Stage:  rule.Stage,
			Visits: n,
			Pct:    pct(float64(n), float64(max)),
		})
	}
	return stages
}
