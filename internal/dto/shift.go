package dto

import (
	"time"

	"brewtab/internal/domain"
)

// ShiftSnapshot combines live order totals with the ledger-captured
// product breakdown for one waiter's current day.
type ShiftSnapshot struct {
	WaiterID          uint          `json:"waiterId"`
	Date              string        `json:"date"`
	ShiftStart        *time.Time    `json:"shiftStart,omitempty"`
	TotalOrders       int           `json:"totalOrders"`
	TotalRevenue      float64       `json:"totalRevenue"`
	AverageOrderValue float64       `json:"averageOrderValue"`
	TotalItems        int           `json:"totalItems"`
	ProductBreakdown  []ProductSale `json:"productBreakdown"`
}

// LiveTotals are derived from today's approved/completed orders, not
// from the accumulated ledger row.
type LiveTotals struct {
	TotalOrders  int
	TotalRevenue float64
	TotalItems   int
}

type ProductSale struct {
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	Revenue   float64 `json:"revenue"`
}

type ShiftStatResponse struct {
	Date         string            `json:"date"`
	ShiftStart   time.Time         `json:"shiftStart"`
	ShiftEnd     *time.Time        `json:"shiftEnd,omitempty"`
	TotalOrders  int               `json:"totalOrders"`
	TotalRevenue float64           `json:"totalRevenue"`
	ItemsSold    []domain.SoldItem `json:"itemsSold"`
}

func NewShiftStatResponse(stat domain.ShiftStatistic) ShiftStatResponse {
	return ShiftStatResponse{
		Date:         stat.Date,
		ShiftStart:   stat.ShiftStart,
		ShiftEnd:     stat.ShiftEnd,
		TotalOrders:  stat.TotalOrders,
		TotalRevenue: stat.TotalRevenue,
		ItemsSold:    stat.ItemsSold,
	}
}
