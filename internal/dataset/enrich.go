package dataset

// enrich derives the cross-table fields: refund flags on items, per-order
// revenue/margin/item-count rollups, and removal of orders whose session no
// longer exists anywhere in the sessions table.
func enrich(ds *Dataset, refunds *table) {
	refunded := refundedItemIDs(refunds)
	for i := range ds.OrderItems {
		ds.OrderItems[i].IsRefunded = refunded[ds.OrderItems[i].OrderItemID]
	}

	type rollup struct {
		revenue float64
		margin  float64
		items   int64
	}
	rollups := make(map[int64]rollup, len(ds.Orders))
	for _, item := range ds.OrderItems {
		r := rollups[item.OrderID]
		r.revenue += item.PriceUSD
		r.margin += item.Margin
		r.items++
		rollups[item.OrderID] = r
	}

	sessionIDs := make(map[int64]struct{}, len(ds.Sessions))
	for _, s := range ds.Sessions {
		sessionIDs[s.SessionID] = struct{}{}
	}

	// Orders without items keep zero rollups; orders pointing at a session
	// id absent from the sessions table are dropped once, here.
	kept := ds.Orders[:0]
	for _, order := range ds.Orders {
		if _, ok := sessionIDs[order.SessionID]; !ok {
			continue
		}
		r := rollups[order.OrderID]
		order.Revenue = r.revenue
		order.Margin = r.margin
		order.ItemCount = r.items
		kept = append(kept, order)
	}
	ds.Orders = kept
}

func refundedItemIDs(refunds *table) map[int64]bool {
	ids := make(map[int64]bool, len(refunds.rows))
	for _, row := range refunds.rows {
		if id := parseInt(refunds.cell(row, "order_item_id")); id != 0 {
			ids[id] = true
		}
	}
	return ids
}
