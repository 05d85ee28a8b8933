package coupons

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
)

// CreateCouponInput is the coupon create payload. SellerID is only read for
// admin callers; sellers always create coupons for themselves.
type CreateCouponInput struct {
	SellerID      *uuid.UUID       `json:"sellerId,omitempty"`
	Code          string           `json:"code" validate:"required,min=3,max=32"`
	Description   *string          `json:"description,omitempty" validate:"omitempty,max=500"`
	DiscountType  string           `json:"discountType" validate:"required,oneof=percent flat"`
	DiscountValue decimal.Decimal  `json:"discountValue"`
	MinOrderValue *decimal.Decimal `json:"minOrderValue,omitempty"`
	ValidFrom     *time.Time       `json:"validFrom,omitempty"`
	ValidTo       *time.Time       `json:"validTo,omitempty"`
	IsActive      *bool            `json:"isActive,omitempty"`
}

// UpdateCouponInput changes the provided fields only.
type UpdateCouponInput struct {
	Code          *string          `json:"code,omitempty" validate:"omitempty,min=3,max=32"`
	Description   *string          `json:"description,omitempty" validate:"omitempty,max=500"`
	DiscountType  *string          `json:"discountType,omitempty" validate:"omitempty,oneof=percent flat"`
	DiscountValue *decimal.Decimal `json:"discountValue,omitempty"`
	MinOrderValue *decimal.Decimal `json:"minOrderValue,omitempty"`
	ValidFrom     *time.Time       `json:"validFrom,omitempty"`
	ValidTo       *time.Time       `json:"validTo,omitempty"`
	IsActive      *bool            `json:"isActive,omitempty"`
	IsDeleted     *bool            `json:"isDeleted,omitempty"`
}

func (u UpdateCouponInput) empty() bool {
	return u.Code == nil && u.Description == nil && u.DiscountType == nil &&
		u.DiscountValue == nil && u.MinOrderValue == nil && u.ValidFrom == nil &&
		u.ValidTo == nil && u.IsActive == nil && u.IsDeleted == nil
}

// ApplyCouponInput identifies a coupon by its code and the owning seller's username.
type ApplyCouponInput struct {
	Code           string `json:"code" validate:"required"`
	SellerUsername string `json:"sellerUsername" validate:"required"`
}

// ApplyResult reports whether a coupon can be used. Status is SUCCESS or FAILED.
type ApplyResult struct {
	Status  string     `json:"status"`
	Message string     `json:"message,omitempty"`
	Coupon  *CouponDTO `json:"coupon,omitempty"`
}

// ListFilters narrows coupon listings. A nil IsDeleted lists both live and
// deleted coupons.
type ListFilters struct {
	IsDeleted *bool
}

type CouponDTO struct {
	ID            uuid.UUID          `json:"id"`
	SellerID      uuid.UUID          `json:"sellerId"`
	Code          string             `json:"code"`
	Description   *string            `json:"description,omitempty"`
	DiscountType  enums.DiscountType `json:"discountType"`
	DiscountValue decimal.Decimal    `json:"discountValue"`
	MinOrderValue decimal.Decimal    `json:"minOrderValue"`
	ValidFrom     *time.Time         `json:"validFrom,omitempty"`
	ValidTo       *time.Time         `json:"validTo,omitempty"`
	IsActive      bool               `json:"isActive"`
	IsDeleted     bool               `json:"isDeleted"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

func ToDTO(c models.Coupon) CouponDTO {
	return CouponDTO{
		ID:            c.ID,
		SellerID:      c.SellerID,
		Code:          c.Code,
		Description:   c.Description,
		DiscountType:  c.DiscountType,
		DiscountValue: c.DiscountValue,
		MinOrderValue: c.MinOrderValue,
		ValidFrom:     c.ValidFrom,
		ValidTo:       c.ValidTo,
		IsActive:      c.IsActive,
		IsDeleted:     c.IsDeleted,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}
