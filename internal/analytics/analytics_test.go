package analytics_test

import (
	"time"

	"shoplens/internal/dataset"
	"shoplens/internal/testsupport"
)

func storeFixtureEmpty() *dataset.Dataset {
	return &dataset.Dataset{Products: testsupport.Catalog(), Version: "empty"}
}

// storeFixture is a small but complete store history: three gsearch and one
// bsearch session across two months, one bounce, one funnel walk-through
// ending in a two-product order, and one refund.
func storeFixture() *dataset.Dataset {
	d19 := testsupport.Day(2012, time.March, 19, 8)
	d20 := testsupport.Day(2012, time.March, 20, 9)
	d21 := testsupport.Day(2012, time.April, 21, 10)

	buyer := testsupport.Session(1, d19, "gsearch", "mobile")
	bouncer := testsupport.Session(2, d20, "gsearch", "desktop")
	browser := testsupport.Session(3, d20.Add(time.Hour), "bsearch", "desktop")
	repeat := testsupport.Session(4, d21, "gsearch", "mobile")
	repeat.UserID = 1
	repeat.IsRepeat = true

	ds := &dataset.Dataset{
		Sessions: []dataset.Session{buyer, bouncer, browser, repeat},
		Pageviews: []dataset.Pageview{
			testsupport.Pageview(1, 1, d19, "/lander-1"),
			testsupport.Pageview(2, 1, d19.Add(time.Minute), "/products"),
			testsupport.Pageview(3, 1, d19.Add(2*time.Minute), "/the-forever-love-bear"),
			testsupport.Pageview(4, 1, d19.Add(3*time.Minute), "/cart"),
			testsupport.Pageview(5, 1, d19.Add(4*time.Minute), "/shipping"),
			testsupport.Pageview(6, 1, d19.Add(5*time.Minute), "/billing-2"),
			testsupport.Pageview(7, 1, d19.Add(6*time.Minute), "/thank-you-for-your-order"),

			testsupport.Pageview(8, 2, d20, "/home"),

			testsupport.Pageview(9, 3, d20.Add(time.Hour), "/home"),
			testsupport.Pageview(10, 3, d20.Add(61*time.Minute), "/products"),

			testsupport.Pageview(11, 4, d21, "/lander-2"),
			testsupport.Pageview(12, 4, d21.Add(time.Minute), "/the-original-mr-fuzzy"),
		},
		Orders: []dataset.Order{
			testsupport.Order(10, 1, d19.Add(6*time.Minute)),
		},
		OrderItems: []dataset.OrderItem{
			testsupport.Item(100, 10, 2, d19.Add(6*time.Minute), 60, 25),
			testsupport.Item(101, 10, 3, d19.Add(6*time.Minute), 40, 15),
		},
		Products: testsupport.Catalog(),
	}
	return testsupport.Finalize(ds, 101)
}
