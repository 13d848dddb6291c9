package model

// StatusCount is one row of the orders-per-status aggregate
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// OrderSummary feeds the dashboard overview cards
type OrderSummary struct {
	Total     int64            `json:"total"`
	InTransit int64            `json:"inTransit"`
	Delivered int64            `json:"delivered"`
	ByStatus  map[string]int64 `json:"byStatus"`
}

// NewOrderSummary folds per-status counts; every known status is present in ByStatus.
func NewOrderSummary(counts []StatusCount) OrderSummary {
	summary := OrderSummary{ByStatus: make(map[string]int64, len(OrderStatuses))}
	for _, status := range OrderStatuses {
		summary.ByStatus[status] = 0
	}
	for _, c := range counts {
		summary.ByStatus[c.Status] += c.Count
		summary.Total += c.Count
	}
	summary.InTransit = summary.ByStatus[OrderStatusInTransit]
	summary.Delivered = summary.ByStatus[OrderStatusDelivered]
	return summary
}
