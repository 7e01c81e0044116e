// Package seeder generates a deterministic demo dataset so the server can
// run out of the box without real exports.
package seeder

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Seeder writes the six raw CSV tables into a data directory.
type Seeder struct {
	Logger       *slog.Logger
	SessionCount int
	Seed         uint64
}

// NewSeeder creates a seeder. The fixed seed keeps repeated runs identical.
func NewSeeder(logger *slog.Logger, sessionCount int) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	if sessionCount < 1 {
		sessionCount = 2000
	}
	return &Seeder{Logger: logger, SessionCount: sessionCount, Seed: 20120319}
}

var (
	sources   = []string{"gsearch", "gsearch", "gsearch", "bsearch", "socialbook", ""}
	campaigns = []string{"nonbrand", "nonbrand", "brand", "pilot"}
	devices   = []string{"mobile", "desktop", "desktop"}
	referrers = []string{"https://www.gsearch.com", "https://www.bsearch.com", "https://www.socialbook.com", ""}
	landers   = []string{"/home", "/lander-1", "/lander-2", "/lander-3"}

	productPages = []string{
		"/the-original-mr-fuzzy",
		"/the-forever-love-bear",
		"/the-birthday-sugar-panda",
		"/the-hudson-river-mini-bear",
	}

	productNames = []string{
		"The Original Mr. Fuzzy",
		"The Forever Love Bear",
		"The Birthday Sugar Panda",
		"The Hudson River Mini Bear",
	}

	productPrices = []float64{49.99, 59.99, 39.99, 29.99}
	productCogs   = []float64{19.49, 24.49, 15.99, 11.49}
)

// Run generates the demo store history and writes it to dir.
func (s *Seeder) Run(dir string) error {
	start := time.Now()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating data directory %s: %w", dir, err)
	}

	rng := rand.New(rand.NewPCG(s.Seed, 0))
	origin := time.Date(2012, time.March, 19, 0, 0, 0, 0, time.UTC)

	var (
		sessions   [][]string
		pageviews  [][]string
		orders     [][]string
		orderItems [][]string
		refunds    [][]string
	)

	var pageviewID, orderID, orderItemID, refundID int64
	userSessions := make(map[int64]int64)

	for i := int64(1); i <= int64(s.SessionCount); i++ {
		// Users come back occasionally; a third of sessions reuse one of
		// the first hundred user ids.
		userID := i
		if i > 100 && rng.IntN(3) == 0 {
			userID = rng.Int64N(100) + 1
		}
		repeat := "0"
		if userSessions[userID] > 0 {
			repeat = "1"
		}
		userSessions[userID]++

		at := origin.Add(time.Duration(rng.Int64N(365*24)) * time.Hour)
		source := sources[rng.IntN(len(sources))]
		referrer := ""
		if source == "" {
			referrer = referrers[rng.IntN(len(referrers))]
		}

		sessions = append(sessions, []string{
			strconv.FormatInt(i, 10),
			at.Format("2006-01-02 15:04:05"),
			strconv.FormatInt(userID, 10),
			repeat,
			source,
			campaigns[rng.IntN(len(campaigns))],
			"g_ad_" + strconv.Itoa(rng.IntN(3)+1),
			devices[rng.IntN(len(devices))],
			referrer,
		})

		// Walk the funnel with a decaying continuation chance.
		path := []string{landers[rng.IntN(len(landers))]}
		if rng.IntN(100) < 60 {
			path = append(path, "/products")
			if rng.IntN(100) < 75 {
				path = append(path, productPages[rng.IntN(len(productPages))])
				if rng.IntN(100) < 55 {
					path = append(path, "/cart")
					if rng.IntN(100) < 70 {
						path = append(path, "/shipping")
						if rng.IntN(100) < 80 {
							path = append(path, "/billing-2")
							if rng.IntN(100) < 65 {
								path = append(path, "/thank-you-for-your-order")
							}
						}
					}
				}
			}
		}

		for step, url := range path {
			pageviewID++
			pageviews = append(pageviews, []string{
				strconv.FormatInt(pageviewID, 10),
				at.Add(time.Duration(step) * time.Minute).Format("2006-01-02 15:04:05"),
				strconv.FormatInt(i, 10),
				url,
			})
		}

		if path[len(path)-1] != "/thank-you-for-your-order" {
			continue
		}

		orderID++
		orderAt := at.Add(time.Duration(len(path)) * time.Minute)
		orders = append(orders, []string{
			strconv.FormatInt(orderID, 10),
			orderAt.Format("2006-01-02 15:04:05"),
			strconv.FormatInt(i, 10),
			strconv.FormatInt(userID, 10),
		})

		itemCount := 1
		if rng.IntN(100) < 30 {
			itemCount = 2
		}
		picked := rng.Perm(len(productNames))[:itemCount]
		for _, p := range picked {
			orderItemID++
			orderItems = append(orderItems, []string{
				strconv.FormatInt(orderItemID, 10),
				orderAt.Format("2006-01-02 15:04:05"),
				strconv.FormatInt(orderID, 10),
				strconv.Itoa(p + 1),
				strconv.FormatFloat(productPrices[p], 'f', 2, 64),
				strconv.FormatFloat(productCogs[p], 'f', 2, 64),
			})

			if rng.IntN(100) < 5 {
				refundID++
				refunds = append(refunds, []string{
					strconv.FormatInt(refundID, 10),
					orderAt.AddDate(0, 0, rng.IntN(14)+1).Format("2006-01-02 15:04:05"),
					strconv.FormatInt(orderItemID, 10),
					strconv.FormatInt(orderID, 10),
					strconv.FormatFloat(productPrices[p], 'f', 2, 64),
				})
			}
		}
	}

	products := make([][]string, 0, len(productNames))
	for i, name := range productNames {
		products = append(products, []string{
			strconv.Itoa(i + 1),
			origin.Format("2006-01-02 15:04:05"),
			name,
		})
	}

	files := []struct {
		name   string
		header []string
		rows   [][]string
	}{
		{"website_sessions", []string{"website_session_id", "created_at", "user_id", "is_repeat_session", "utm_source", "utm_campaign", "utm_content", "device_type", "http_referer"}, sessions},
		{"website_pageviews", []string{"website_pageview_id", "created_at", "website_session_id", "pageview_url"}, pageviews},
		{"orders", []string{"order_id", "created_at", "website_session_id", "user_id"}, orders},
		{"order_items", []string{"order_item_id", "created_at", "order_id", "product_id", "price_usd", "cogs_usd"}, orderItems},
		{"products", []string{"product_id", "created_at", "product_name"}, products},
		{"order_item_refunds", []string{"order_item_refund_id", "created_at", "order_item_id", "order_id", "refund_amount_usd"}, refunds},
	}
	for _, f := range files {
		if err := writeCSV(filepath.Join(dir, f.name+".csv"), f.header, f.rows); err != nil {
			return err
		}
	}

	s.Logger.Info("seeded demo dataset",
		"dir", dir,
		"sessions", len(sessions),
		"orders", len(orders),
		"duration", time.Since(start))
	return nil
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing header of %s: %w", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("writing rows of %s: %w", path, err)
	}
	w.Flush()
	return w.Error()
}
