package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusApproved  OrderStatus = "approved"
	OrderStatusCompleted OrderStatus = "completed"
)

func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusApproved, OrderStatusCompleted:
		return OrderStatus(s), true
	}
	return "", false
}

type Order struct {
	ID          uint
	TableID     uint
	TableNumber int
	OrderNumber int
	Status      OrderStatus
	TotalPrice  float64
	WaiterID    *uint
	WaiterName  *string
	Items       []OrderItem
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OrderItem is a snapshot of the menu item at order time; later menu price
// changes never affect it.
type OrderItem struct {
	ID         uint
	OrderID    uint
	MenuItemID uint
	Name       string
	Price      float64
	Quantity   int
	CreatedAt  time.Time
}

func (i OrderItem) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}

// ItemsTotal is the authoritative order total; the stored TotalPrice must
// equal it at creation.
func ItemsTotal(items []OrderItem) float64 {
	total := 0.0
	for _, it := range items {
		total += it.LineTotal()
	}
	return total
}

// CanTransition reports whether the status change is allowed. A repeated
// approved call is accepted as an idempotent no-op; completed has no
// outgoing edges.
func CanTransition(prev, next OrderStatus) bool {
	switch prev {
	case OrderStatusPending:
		return next == OrderStatusApproved || next == OrderStatusCompleted
	case OrderStatusApproved:
		return next == OrderStatusApproved || next == OrderStatusCompleted
	case OrderStatusCompleted:
		return false
	}
	return false
}

// IsQualifyingTransition reports whether the shift ledger must be updated
// for this status change: the order was not already approved before the
// call, or the call moves it into completed for the first time.
func IsQualifyingTransition(prev, next OrderStatus) bool {
	if next != OrderStatusApproved && next != OrderStatusCompleted {
		return false
	}
	wasApproved := prev == OrderStatusApproved
	wasCompleted := prev == OrderStatusCompleted
	return !wasApproved || (next == OrderStatusCompleted && !wasCompleted)
}

// RequiresStockDecrement reports whether inventory must be decremented:
// only on the first entry into approved/completed, never on repeat calls.
func RequiresStockDecrement(prev, next OrderStatus) bool {
	entering := next == OrderStatusApproved || next == OrderStatusCompleted
	wasIn := prev == OrderStatusApproved || prev == OrderStatusCompleted
	return entering && !wasIn
}
