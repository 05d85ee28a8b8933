package payloads

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/marketplace-backend/pkg/enums"
)

// OrderCreatedEvent is emitted once per persisted order, including bulk inserts.
type OrderCreatedEvent struct {
	OrderID     uuid.UUID         `json:"orderId"`
	SellerID    uuid.UUID         `json:"sellerId"`
	CustomerID  uuid.UUID         `json:"customerId"`
	TotalAmount decimal.Decimal   `json:"totalAmount"`
	Charge      decimal.Decimal   `json:"charge"`
	Status      enums.OrderStatus `json:"status"`
	Courier     string            `json:"courier,omitempty"`
	Date        string            `json:"date"`
	ItemCount   int               `json:"itemCount"`
}

// OrderUpdatedEvent lists the columns a full or partial update touched.
type OrderUpdatedEvent struct {
	OrderID  uuid.UUID `json:"orderId"`
	SellerID uuid.UUID `json:"sellerId"`
	Fields   []string  `json:"fields"`
}

// OrderStatusChangedEvent carries the transition.
type OrderStatusChangedEvent struct {
	OrderID    uuid.UUID         `json:"orderId"`
	SellerID   uuid.UUID         `json:"sellerId"`
	CustomerID uuid.UUID         `json:"customerId"`
	From       enums.OrderStatus `json:"from"`
	To         enums.OrderStatus `json:"to"`
}

// OrderRemovedEvent is shared by soft and hard deletes.
type OrderRemovedEvent struct {
	OrderID uuid.UUID `json:"orderId"`
	Hard    bool      `json:"hard"`
}
