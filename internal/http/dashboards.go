package http

import (
	"context"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"shoplens/internal/analytics"
	"shoplens/internal/dataset"
	"shoplens/internal/filters"
	"shoplens/internal/pkg/async"
	"shoplens/internal/timeframe"
)

var titleCaser = cases.Title(language.AmericanEnglish)

// MetaResponse describes the dataset's bounds and dimension values, the
// data a client needs to render filter controls.
type MetaResponse struct {
	DatasetVersion string        `json:"dataset_version"`
	FirstDate      string        `json:"first_date"`
	LastDate       string        `json:"last_date"`
	UTMSources     []string      `json:"utm_sources"`
	Products       []MetaProduct `json:"products"`
}

type MetaProduct struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// OverviewResponse is the headline dashboard.
type OverviewResponse struct {
	Totals             analytics.Totals         `json:"totals"`
	ConversionRate     float64                  `json:"conversion_rate"`
	BounceRate         float64                  `json:"bounce_rate"`
	AvgPageDepth       float64                  `json:"avg_page_depth"`
	RepeatSessionRate  float64                  `json:"repeat_session_rate"`
	RefundRate         float64                  `json:"refund_rate"`
	AvgItemPrice       float64                  `json:"avg_item_price"`
	TopProduct         string                   `json:"top_product"`
	TopProductRevenue  float64                  `json:"top_product_revenue"`
	ConversionByDevice []analytics.Rate         `json:"conversion_by_device"`
	SessionsBySource   []analytics.SourceSeries `json:"sessions_by_source"`
}

// WebsiteResponse covers on-site behavior and the purchase funnel.
type WebsiteResponse struct {
	LandingPages            []analytics.Share       `json:"landing_pages"`
	ExitPages               []analytics.Share       `json:"exit_pages"`
	TopPages                []analytics.Rate        `json:"top_pages"`
	ExitRateByPage          []analytics.Rate        `json:"exit_rate_by_page"`
	BounceRateByLandingPage []analytics.Rate        `json:"bounce_rate_by_landing_page"`
	MonthlyBounceTrend      []timeframe.SeriesPoint `json:"monthly_bounce_trend"`
	ConversionByLandingPage []analytics.Rate        `json:"conversion_by_landing_page"`
	ConversionByBilling     []analytics.Rate        `json:"conversion_by_billing_page"`
	FunnelStages            []analytics.FunnelStage `json:"funnel_stages"`
}

// MarketingResponse covers acquisition channels and campaigns.
type MarketingResponse struct {
	SessionShareBySource   []analytics.Share               `json:"session_share_by_source"`
	SessionShareByCampaign []analytics.Share               `json:"session_share_by_campaign"`
	CampaignGrid           []analytics.CampaignPerformance `json:"campaign_grid"`
	ConversionBySource     []analytics.Rate                `json:"conversion_by_source"`
	RepeatRateBySource     []analytics.Rate                `json:"repeat_rate_by_source"`
	RepeatRateByCampaign   []analytics.CampaignRate        `json:"repeat_rate_by_source_campaign"`
	RepeatUserShare        []analytics.Rate                `json:"repeat_user_share_by_source"`
	SessionFrequency       []analytics.Share               `json:"session_frequency"`
	SessionsBySource       []analytics.SourceSeries        `json:"sessions_by_source"`
	PageDepthBySource      []analytics.LabeledValue        `json:"page_depth_by_source"`
}

// ProductsResponse covers catalog performance.
type ProductsResponse struct {
	RevenueShare     []analytics.Share              `json:"revenue_share"`
	MarginShare      []analytics.Share              `json:"margin_share"`
	UnitsShare       []analytics.Share              `json:"units_share"`
	RefundRates      []analytics.Rate               `json:"refund_rates"`
	MonthlySales     []analytics.ProductSeries      `json:"monthly_sales"`
	Seasonality      []timeframe.SeriesPoint        `json:"seasonality"`
	UnitsByDevice    []analytics.ProductDeviceUnits `json:"units_by_device"`
	CrossSellPairs   []analytics.ProductPair        `json:"cross_sell_pairs"`
	ItemsPerOrder    []analytics.Share              `json:"items_per_order"`
	ConversionByPage []analytics.Rate               `json:"conversion_by_product_page"`
}

func (a *API) handleMeta(c *fiber.Ctx) error {
	resp := a.cache.GetOrCompute(a.data.Version, "", "meta", func() any {
		return buildMeta(a.data)
	})
	return c.JSON(resp)
}

func buildMeta(ds *dataset.Dataset) MetaResponse {
	var first, last time.Time
	for _, s := range ds.Sessions {
		if s.CreatedAt.IsZero() {
			continue
		}
		if first.IsZero() || s.CreatedAt.Before(first) {
			first = s.CreatedAt
		}
		if last.IsZero() || s.CreatedAt.After(last) {
			last = s.CreatedAt
		}
	}

	sources := make(map[string]struct{})
	for _, s := range ds.Sessions {
		sources[s.UTMSource] = struct{}{}
	}
	sourceList := make([]string, 0, len(sources))
	for source := range sources {
		sourceList = append(sourceList, source)
	}
	sort.Strings(sourceList)

	products := make([]MetaProduct, 0, len(ds.Products))
	for _, p := range ds.Products {
		products = append(products, MetaProduct{ID: p.ProductID, Name: p.ProductName})
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })

	meta := MetaResponse{
		DatasetVersion: ds.Version,
		UTMSources:     sourceList,
		Products:       products,
	}
	if !first.IsZero() {
		meta.FirstDate = first.Format(timeframe.DateLayout)
		meta.LastDate = last.Format(timeframe.DateLayout)
	}
	return meta
}

func (a *API) handleOverview(c *fiber.Ctx) error {
	return a.handleDashboard(c, "overview", a.buildOverview)
}

func (a *API) handleWebsite(c *fiber.Ctx) error {
	return a.handleDashboard(c, "website", a.buildWebsite)
}

func (a *API) handleMarketing(c *fiber.Ctx) error {
	return a.handleDashboard(c, "marketing", a.buildMarketing)
}

func (a *API) handleProducts(c *fiber.Ctx) error {
	return a.handleDashboard(c, "products", a.buildProducts)
}

// handleDashboard parses the filter selection, applies it once and serves
// the named dashboard, memoized per (dataset version, filter key).
func (a *API) handleDashboard(c *fiber.Ctx, name string, build func(*dataset.Dataset) any) error {
	spec, err := parseFilterSpec(c)
	if err != nil {
		a.logger.Warn("rejected dashboard request", "dashboard", name, "error", err)
		return badRequest(c, err)
	}

	resp := a.cache.GetOrCompute(a.data.Version, spec.Key(), name, func() any {
		filtered := filters.Apply(a.data, spec)
		return build(filtered)
	})
	return c.JSON(resp)
}

func (a *API) buildOverview(ds *dataset.Dataset) any {
	resp := OverviewResponse{}

	pool := async.NewPool(a.workerCount)
	results := pool.Execute(context.Background(), []async.Task{
		{Name: "totals", Execute: func() (any, error) { return analytics.ComputeTotals(ds), nil }},
		{Name: "conversion", Execute: func() (any, error) { return analytics.OverallConversionRate(ds), nil }},
		{Name: "bounce", Execute: func() (any, error) { return analytics.BounceRate(ds), nil }},
		{Name: "depth", Execute: func() (any, error) { return analytics.AvgPageDepth(ds), nil }},
		{Name: "repeat", Execute: func() (any, error) { return analytics.OverallRepeatSessionRate(ds), nil }},
		{Name: "refund", Execute: func() (any, error) { return analytics.OverallRefundRate(ds), nil }},
		{Name: "itemPrice", Execute: func() (any, error) { return analytics.AvgItemPrice(ds), nil }},
		{Name: "byDevice", Execute: func() (any, error) { return analytics.ConversionByDevice(ds), nil }},
		{Name: "bySource", Execute: func() (any, error) { return analytics.MonthlySessionsBySource(ds), nil }},
	})

	resp.Totals, _ = results["totals"].Data.(analytics.Totals)
	resp.ConversionRate, _ = results["conversion"].Data.(float64)
	resp.BounceRate, _ = results["bounce"].Data.(float64)
	resp.AvgPageDepth, _ = results["depth"].Data.(float64)
	resp.RepeatSessionRate, _ = results["repeat"].Data.(float64)
	resp.RefundRate, _ = results["refund"].Data.(float64)
	resp.AvgItemPrice, _ = results["itemPrice"].Data.(float64)
	if rates, ok := results["byDevice"].Data.([]analytics.Rate); ok {
		resp.ConversionByDevice = titleLabels(rates)
	}
	resp.SessionsBySource, _ = results["bySource"].Data.([]analytics.SourceSeries)

	resp.TopProduct, resp.TopProductRevenue = analytics.TopProductByRevenue(ds)
	return resp
}

func (a *API) buildWebsite(ds *dataset.Dataset) any {
	return WebsiteResponse{
		LandingPages:            analytics.LandingPages(ds),
		ExitPages:               analytics.ExitPages(ds),
		TopPages:                analytics.TopPages(ds),
		ExitRateByPage:          analytics.ExitRateByPage(ds),
		BounceRateByLandingPage: analytics.BounceRateByLandingPage(ds),
		MonthlyBounceTrend:      analytics.MonthlyBounceTrend(ds),
		ConversionByLandingPage: analytics.ConversionByLandingPage(ds),
		ConversionByBilling:     analytics.ConversionByBillingPage(ds),
		FunnelStages:            analytics.FunnelStages(ds, a.rules),
	}
}

func (a *API) buildMarketing(ds *dataset.Dataset) any {
	return MarketingResponse{
		SessionShareBySource:   analytics.SessionShareBySource(ds),
		SessionShareByCampaign: analytics.SessionShareByCampaign(ds),
		CampaignGrid:           analytics.CampaignGrid(ds),
		ConversionBySource:     analytics.ConversionBySource(ds),
		RepeatRateBySource:     analytics.RepeatSessionRateBySource(ds),
		RepeatRateByCampaign:   analytics.RepeatSessionRateBySourceCampaign(ds),
		RepeatUserShare:        analytics.RepeatUserShareBySource(ds),
		SessionFrequency:       analytics.SessionFrequency(ds),
		SessionsBySource:       analytics.MonthlySessionsBySource(ds),
		PageDepthBySource:      analytics.AvgPageDepthBySource(ds),
	}
}

func (a *API) buildProducts(ds *dataset.Dataset) any {
	return ProductsResponse{
		RevenueShare:     analytics.RevenueShareByProduct(ds),
		MarginShare:      analytics.MarginShareByProduct(ds),
		UnitsShare:       analytics.UnitsShareByProduct(ds),
		RefundRates:      analytics.RefundRateByProduct(ds),
		MonthlySales:     analytics.MonthlySalesByProduct(ds),
		Seasonality:      analytics.MonthlyRevenueShare(ds),
		UnitsByDevice:    titleDevices(analytics.UnitsByProductDevice(ds)),
		CrossSellPairs:   analytics.CrossSellPairs(ds),
		ItemsPerOrder:    analytics.ItemsPerOrder(ds),
		ConversionByPage: analytics.ConversionByProductPage(ds),
	}
}

// titleLabels display-cases dimension labels like device types.
func titleLabels(rates []analytics.Rate) []analytics.Rate {
	out := make([]analytics.Rate, len(rates))
	for i, r := range rates {
		r.Label = titleCaser.String(r.Label)
		out[i] = r
	}
	return out
}

func titleDevices(rows []analytics.ProductDeviceUnits) []analytics.ProductDeviceUnits {
	out := make([]analytics.ProductDeviceUnits, len(rows))
	for i, r := range rows {
		r.Device = titleCaser.String(r.Device)
		out[i] = r
	}
	return out
}
