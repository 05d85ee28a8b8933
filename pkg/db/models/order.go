package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/pkg/enums"
)

// OrderItem is one product line stored inline on the order.
type OrderItem struct {
	ProductID uuid.UUID       `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// OrderItems is stored as a JSON array. It implements the sql interfaces
// directly so map based updates serialize it the same way as inserts.
type OrderItems []OrderItem

func (items OrderItems) Value() (driver.Value, error) {
	if items == nil {
		items = OrderItems{}
	}
	raw, err := json.Marshal([]OrderItem(items))
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func (items *OrderItems) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*items = OrderItems{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("order items: unsupported type %T", src)
	}
	var out []OrderItem
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	*items = out
	return nil
}

// Order is a purchase owned by exactly one seller and one customer.
type Order struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID  uuid.UUID         `gorm:"column:customer_id;type:uuid;not null"`
	SellerID    uuid.UUID         `gorm:"column:seller_id;type:uuid;not null"`
	OrderItems  OrderItems        `gorm:"column:order_items;type:jsonb;not null"`
	TotalAmount decimal.Decimal   `gorm:"column:total_amount;type:numeric(12,2);not null"`
	Charge      decimal.Decimal   `gorm:"column:charge;type:numeric(12,2);not null"`
	Status      enums.OrderStatus `gorm:"column:status;type:text;not null"`
	Courier     string            `gorm:"column:courier;type:text"`
	Date        string            `gorm:"column:date;type:text;not null"`
	IsDeleted   bool              `gorm:"column:is_deleted;not null"`
	AddedBy     *uuid.UUID        `gorm:"column:added_by;type:uuid"`
	UpdatedBy   *uuid.UUID        `gorm:"column:updated_by;type:uuid"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Status == "" {
		o.Status = enums.OrderStatusPlaced
	}
	return nil
}

// Revenue is the seller's share of the order: total minus platform charge.
func (o Order) Revenue() decimal.Decimal {
	return o.TotalAmount.Sub(o.Charge)
}
