package inventory

import "context"

type DecrementItem struct {
	MenuItemID uint
	Quantity   int
}

// Ledger owns the per-menu-item stock counters.
type Ledger interface {
	Decrement(ctx context.Context, items []DecrementItem)
	SetStock(ctx context.Context, menuItemID uint, stock int) error
}

type Repository interface {
	DecrementStock(ctx context.Context, menuItemID uint, quantity int) error
	SetStock(ctx context.Context, menuItemID uint, stock int) error
}
