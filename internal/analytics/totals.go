package analytics

import "shoplens/internal/dataset"

// Totals are the headline KPIs shown on every dashboard.
type Totals struct {
	Sessions           int64   `json:"sessions"`
	Users              int64   `json:"users"`
	Orders             int64   `json:"orders"`
	Revenue            float64 `json:"revenue"`
	Margin             float64 `json:"margin"`
	AvgSessionsPerUser float64 `json:"avg_sessions_per_user"`
	RevenuePerSession  float64 `json:"revenue_per_session"`
}

// ComputeTotals sums revenue and margin over orders and counts sessions,
// distinct users and orders.
func ComputeTotals(ds *dataset.Dataset) Totals {
	users := make(map[int64]struct{}, len(ds.Sessions))
	for _, s := range ds.Sessions {
		users[s.UserID] = struct{}{}
	}

	t := Totals{
		Sessions: int64(len(ds.Sessions)),
		Users:    int64(len(users)),
		Orders:   int64(len(ds.Orders)),
	}
	for _, o := range ds.Orders {
		t.Revenue += o.Revenue
		t.Margin += o.Margin
	}
	t.AvgSessionsPerUser = round2(ratio(float64(t.Sessions), float64(t.Users)))
	t.RevenuePerSession = round2(ratio(t.Revenue, float64(t.Sessions)))
	return t
}
