package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
)

const (
	// CourierLocal marks orders delivered by the seller.
	CourierLocal = "Local"
	// CourierServiceable filters for every order shipped through a carrier.
	CourierServiceable = "Serviceable"
	// StatusAll disables the status filter.
	StatusAll = "All"
)

type OrderItemInput struct {
	ProductID uuid.UUID       `json:"productId" validate:"required"`
	Quantity  int             `json:"quantity" validate:"min=1"`
	Price     decimal.Decimal `json:"price"`
}

// CreateOrderInput is the create payload. Seller and client surfaces override
// the owner id they are pinned to.
type CreateOrderInput struct {
	CustomerID  uuid.UUID         `json:"customerId"`
	SellerID    uuid.UUID         `json:"sellerId"`
	OrderItems  []OrderItemInput  `json:"orderItems" validate:"required,min=1,dive"`
	TotalAmount decimal.Decimal   `json:"totalAmount"`
	Charge      decimal.Decimal   `json:"charge"`
	Status      enums.OrderStatus `json:"status,omitempty"`
	Courier     string            `json:"courier,omitempty" validate:"max=64"`
	Date        string            `json:"date,omitempty"`
}

// UpdateOrderInput replaces every mutable field of an order.
type UpdateOrderInput struct {
	OrderItems  []OrderItemInput  `json:"orderItems" validate:"required,min=1,dive"`
	TotalAmount decimal.Decimal   `json:"totalAmount"`
	Charge      decimal.Decimal   `json:"charge"`
	Status      enums.OrderStatus `json:"status" validate:"required"`
	Courier     string            `json:"courier" validate:"max=64"`
	Date        string            `json:"date" validate:"required"`
}

// PatchOrderInput applies only the fields that are set.
type PatchOrderInput struct {
	OrderItems  *[]OrderItemInput  `json:"orderItems,omitempty" validate:"omitempty,min=1,dive"`
	TotalAmount *decimal.Decimal   `json:"totalAmount,omitempty"`
	Charge      *decimal.Decimal   `json:"charge,omitempty"`
	Status      *enums.OrderStatus `json:"status,omitempty"`
	Courier     *string            `json:"courier,omitempty" validate:"omitempty,max=64"`
	Date        *string            `json:"date,omitempty"`
}

func (p PatchOrderInput) empty() bool {
	return p.OrderItems == nil && p.TotalAmount == nil && p.Charge == nil &&
		p.Status == nil && p.Courier == nil && p.Date == nil
}

// ListFilters are the optional list/count filters shared by every surface.
type ListFilters struct {
	Status         string
	Courier        string
	Date           string
	CustomerID     *uuid.UUID
	IncludeDeleted bool
}

// BulkUpdateFilter selects the orders a bulk update touches. At least one
// field must be set.
type BulkUpdateFilter struct {
	IDs        []uuid.UUID        `json:"ids,omitempty"`
	SellerID   *uuid.UUID         `json:"sellerId,omitempty"`
	CustomerID *uuid.UUID         `json:"customerId,omitempty"`
	Status     *enums.OrderStatus `json:"status,omitempty"`
	Courier    *string            `json:"courier,omitempty"`
	Date       *string            `json:"date,omitempty"`
}

func (f BulkUpdateFilter) empty() bool {
	return len(f.IDs) == 0 && f.SellerID == nil && f.CustomerID == nil &&
		f.Status == nil && f.Courier == nil && f.Date == nil
}

// BulkUpdateRequest is the body of the bulk update endpoint.
type BulkUpdateRequest struct {
	Filter BulkUpdateFilter `json:"filter"`
	Patch  PatchOrderInput  `json:"patch"`
}

// IDsInput is the body of the many-id soft and hard delete endpoints.
type IDsInput struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1"`
}

// CourierMode describes how Criteria.Courier is compared.
type CourierMode int

const (
	CourierAny CourierMode = iota
	CourierEquals
	CourierNotLocal
)

// Criteria is the resolved WHERE clause the repository applies.
type Criteria struct {
	IDs            []uuid.UUID
	SellerID       *uuid.UUID
	CustomerID     *uuid.UUID
	Status         *enums.OrderStatus
	CourierMode    CourierMode
	Courier        string
	Date           string
	IncludeDeleted bool
}

// CountResult is returned by bulk and many-id operations.
type CountResult struct {
	Count int64 `json:"count"`
}

type OrderItemDTO struct {
	ProductID uuid.UUID       `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// OrderDTO is the wire shape of an order.
type OrderDTO struct {
	ID          uuid.UUID         `json:"id"`
	CustomerID  uuid.UUID         `json:"customerId"`
	SellerID    uuid.UUID         `json:"sellerId"`
	OrderItems  []OrderItemDTO    `json:"orderItems"`
	TotalAmount decimal.Decimal   `json:"totalAmount"`
	Charge      decimal.Decimal   `json:"charge"`
	Revenue     decimal.Decimal   `json:"revenue"`
	Status      enums.OrderStatus `json:"status"`
	Courier     string            `json:"courier"`
	Date        string            `json:"date"`
	IsDeleted   bool              `json:"isDeleted"`
	AddedBy     *uuid.UUID        `json:"addedBy,omitempty"`
	UpdatedBy   *uuid.UUID        `json:"updatedBy,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// ToDTO maps a persisted order to its wire shape.
func ToDTO(o models.Order) OrderDTO {
	items := make([]OrderItemDTO, 0, len(o.OrderItems))
	for _, item := range o.OrderItems {
		items = append(items, OrderItemDTO(item))
	}
	return OrderDTO{
		ID:          o.ID,
		CustomerID:  o.CustomerID,
		SellerID:    o.SellerID,
		OrderItems:  items,
		TotalAmount: o.TotalAmount,
		Charge:      o.Charge,
		Revenue:     o.Revenue(),
		Status:      o.Status,
		Courier:     o.Courier,
		Date:        o.Date,
		IsDeleted:   o.IsDeleted,
		AddedBy:     o.AddedBy,
		UpdatedBy:   o.UpdatedBy,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func toItems(in []OrderItemInput) []models.OrderItem {
	out := make([]models.OrderItem, 0, len(in))
	for _, item := range in {
		out = append(out, models.OrderItem(item))
	}
	return out
}
