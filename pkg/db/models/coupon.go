package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/pkg/enums"
)

// Coupon is a discount code scoped to one seller. (seller_id, code) is unique.
type Coupon struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID      uuid.UUID          `gorm:"column:seller_id;type:uuid;not null"`
	Code          string             `gorm:"column:code;not null"`
	Description   *string            `gorm:"column:description"`
	DiscountType  enums.DiscountType `gorm:"column:discount_type;type:text;not null"`
	DiscountValue decimal.Decimal    `gorm:"column:discount_value;type:numeric(12,2);not null"`
	MinOrderValue decimal.Decimal    `gorm:"column:min_order_value;type:numeric(12,2);not null"`
	ValidFrom     *time.Time         `gorm:"column:valid_from"`
	ValidTo       *time.Time         `gorm:"column:valid_to"`
	IsActive      bool               `gorm:"column:is_active;not null"`
	IsDeleted     bool               `gorm:"column:is_deleted;not null"`
	AddedBy       *uuid.UUID         `gorm:"column:added_by;type:uuid"`
	UpdatedBy     *uuid.UUID         `gorm:"column:updated_by;type:uuid"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Coupon) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// ValidAt reports whether the coupon can be redeemed at t.
func (c Coupon) ValidAt(t time.Time) bool {
	if c.IsDeleted || !c.IsActive {
		return false
	}
	if c.ValidFrom != nil && t.Before(*c.ValidFrom) {
		return false
	}
	if c.ValidTo != nil && t.After(*c.ValidTo) {
		return false
	}
	return true
}
