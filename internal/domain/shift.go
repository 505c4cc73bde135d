package domain

import "time"

// SoldItem is one append-only record in a shift's items_sold list,
// captured from an order line item at approval time.
type SoldItem struct {
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	LineTotal float64 `json:"lineTotal"`
}

// ShiftStatistic is the per-waiter, per-calendar-day accumulation row.
// It is created lazily on the first qualifying order of the day and
// deleted wholesale on shift reset.
type ShiftStatistic struct {
	ID           uint
	WaiterID     uint
	Date         string // YYYY-MM-DD, the store's calendar day
	ShiftStart   time.Time
	ShiftEnd     *time.Time
	TotalOrders  int
	TotalRevenue float64
	ItemsSold    []SoldItem
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
