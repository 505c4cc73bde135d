package dto

import (
	"time"

	"brewtab/internal/domain"
)

type CreateOrderRequest struct {
	TableID    uint              `json:"tableId"`
	Items      []CreateOrderItem `json:"items"`
	TotalPrice float64           `json:"totalPrice"`
}

type CreateOrderItem struct {
	MenuItemID uint `json:"menuItemId"`
	Quantity   int  `json:"quantity"`
}

type UpdateOrderStatusRequest struct {
	Status   string `json:"status"`
	WaiterID *uint  `json:"waiterId,omitempty"`
}

type OrderResponse struct {
	ID          uint                `json:"id"`
	TableID     uint                `json:"tableId"`
	TableNumber int                 `json:"tableNumber"`
	OrderNumber int                 `json:"orderNumber"`
	Status      string              `json:"status"`
	TotalPrice  float64             `json:"totalPrice"`
	WaiterID    *uint               `json:"waiterId,omitempty"`
	WaiterName  *string             `json:"waiterName,omitempty"`
	Items       []OrderItemResponse `json:"items"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

type OrderItemResponse struct {
	ID         uint    `json:"id"`
	MenuItemID uint    `json:"menuItemId"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
}

func NewOrderResponse(order *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, len(order.Items))
	for i, it := range order.Items {
		items[i] = OrderItemResponse{
			ID:         it.ID,
			MenuItemID: it.MenuItemID,
			Name:       it.Name,
			Price:      it.Price,
			Quantity:   it.Quantity,
		}
	}

	return OrderResponse{
		ID:          order.ID,
		TableID:     order.TableID,
		TableNumber: order.TableNumber,
		OrderNumber: order.OrderNumber,
		Status:      string(order.Status),
		TotalPrice:  order.TotalPrice,
		WaiterID:    order.WaiterID,
		WaiterName:  order.WaiterName,
		Items:       items,
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	}
}

func NewOrderListResponse(orders []domain.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = NewOrderResponse(&orders[i])
	}
	return out
}
