package analytics_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoplens/internal/analytics"
	"shoplens/internal/dataset"
	"shoplens/internal/testsupport"
)

func TestFunnelStages(t *testing.T) {
	ds := storeFixture()
	stages := analytics.FunnelStages(ds, analytics.DefaultStageRules())
	require.Len(t, stages, 7)

	assert.Equal(t, analytics.FunnelStage{Stage: "/homepages", Visits: 4, Pct: 100}, stages[0])
	assert.Equal(t, analytics.FunnelStage{Stage: "/products", Visits: 2, Pct: 50}, stages[1])
	assert.Equal(t, analytics.FunnelStage{Stage: "/one_of_the_product_page", Visits: 2, Pct: 50}, stages[2])
	assert.Equal(t, analytics.FunnelStage{Stage: "/cart", Visits: 1, Pct: 25}, stages[3])
	assert.Equal(t, analytics.FunnelStage{Stage: "/shipping", Visits: 1, Pct: 25}, stages[4])
	// "/billing-2" matches the "/billing" prefix rule.
	assert.Equal(t, analytics.FunnelStage{Stage: "/billing", Visits: 1, Pct: 25}, stages[5])
	assert.Equal(t, analytics.FunnelStage{Stage: "/thank-you-for-your-order", Visits: 1, Pct: 25}, stages[6])
}

func TestFunnelNormalizesAgainstBusiestStage(t *testing.T) {
	ds := storeFixture()
	// Reverse the rule order so the busiest stage is last; it must still
	// read 100.
	rules := analytics.DefaultStageRules()
	for i, j := 0, len(rules)-1; i < j; i, j = i+1, j-1 {
		rules[i], rules[j] = rules[j], rules[i]
	}

	stages := analytics.FunnelStages(ds, rules)
	assert.Equal(t, 100.0, stages[len(stages)-1].Pct)
}

func TestFunnelCountsEveryStageVisit(t *testing.T) {
	at := testsupport.Day(2012, time.March, 19, 8)
	ds := testsupport.Finalize(&dataset.Dataset{
		Sessions: []dataset.Session{
			testsupport.Session(1, at, "gsearch", "mobile"),
			testsupport.Session(2, at, "gsearch", "desktop"),
		},
		Pageviews: []dataset.Pageview{
			testsupport.Pageview(1, 1, at, "/home"),
			testsupport.Pageview(2, 1, at.Add(time.Minute), "/cart"),
			testsupport.Pageview(3, 1, at.Add(2*time.Minute), "/cart"),
			testsupport.Pageview(4, 2, at, "/home"),
		},
	})
	rules := []analytics.StageRule{
		{Stage: "/homepages", Exact: []string{"/home"}},
		{Stage: "/cart", Exact: []string{"/cart"}},
	}

	stages := analytics.FunnelStages(ds, rules)
	require.Len(t, stages, 2)

	// One session hit the cart twice: both visits count, so the stage
	// matches the two homepage visits.
	assert.Equal(t, analytics.FunnelStage{Stage: "/homepages", Visits: 2, Pct: 100}, stages[0])
	assert.Equal(t, analytics.FunnelStage{Stage: "/cart", Visits: 2, Pct: 100}, stages[1])
}

func TestFunnelIgnoresUnmatchedURLs(t *testing.T) {
	ds := storeFixture()
	rules := []analytics.StageRule{{Stage: "/cart", Exact: []string{"/cart"}}}

	stages := analytics.FunnelStages(ds, rules)
	require.Len(t, stages, 1)
	assert.Equal(t, int64(1), stages[0].Visits)
	assert.Equal(t, 100.0, stages[0].Pct)
}

func TestFunnelEmptyDataset(t *testing.T) {
	stages := analytics.FunnelStages(storeFixtureEmpty(), analytics.DefaultStageRules())
	for _, s := range stages {
		assert.Zero(t, s.Visits)
		assert.Zero(t, s.Pct)
	}
}

func TestLoadStageRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "funnel.yaml")
	content := `
- stage: /entry
  exact: ["/home"]
  prefixes: ["/lander"]
- stage: /checkout
  exact: ["/cart", "/shipping"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rules, err := analytics.LoadStageRules(path)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "/entry", rules[0].Stage)
	assert.Equal(t, []string{"/lander"}, rules[0].Prefixes)
	assert.Equal(t, []string{"/cart", "/shipping"}, rules[1].Exact)
}

func TestLoadStageRulesRejectsUnnamedStage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "funnel.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- exact: [\"/home\"]\n"), 0o644))

	_, err := analytics.LoadStageRules(path)
	assert.Error(t, err)
}
