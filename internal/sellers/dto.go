package sellers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/types"
)

// CreateSellerInput registers a shop pending onboarding.
type CreateSellerInput struct {
	ShopName          string                  `json:"shopName" validate:"required,max=120"`
	Username          string                  `json:"username" validate:"required,min=3,max=64,alphanum"`
	Email             string                  `json:"email" validate:"required,email"`
	MobileNo          string                  `json:"mobileNo" validate:"required,min=7,max=20"`
	AlternateMobileNo *string                 `json:"alternateMobileNo,omitempty" validate:"omitempty,min=7,max=20"`
	Password          string                  `json:"password" validate:"required,min=8,max=128"`
	Description       *string                 `json:"description,omitempty" validate:"omitempty,max=2000"`
	ShopAddress       types.ShopAddress       `json:"shopAddress"`
	SellingCategory   []types.SellingCategory `json:"sellingCategory,omitempty" validate:"omitempty,dive"`
	ReferredBy        *string                 `json:"referredBy,omitempty"`
	Charge            *decimal.Decimal        `json:"charge,omitempty"`
}

// UpdateSellerInput edits the seller profile. Nil fields are left unchanged.
type UpdateSellerInput struct {
	ShopName          *string                  `json:"shopName,omitempty" validate:"omitempty,max=120"`
	Email             *string                  `json:"email,omitempty" validate:"omitempty,email"`
	MobileNo          *string                  `json:"mobileNo,omitempty" validate:"omitempty,min=7,max=20"`
	AlternateMobileNo *string                  `json:"alternateMobileNo,omitempty" validate:"omitempty,min=7,max=20"`
	Description       *string                  `json:"description,omitempty" validate:"omitempty,max=2000"`
	Cover             *string                  `json:"cover,omitempty" validate:"omitempty,url"`
	Discount          *string                  `json:"discount,omitempty"`
	ShopAddress       *types.ShopAddress       `json:"shopAddress,omitempty"`
	SellingCategory   *[]types.SellingCategory `json:"sellingCategory,omitempty"`
	SocialLinks       *types.SocialLinks       `json:"socialLinks,omitempty"`
	Owner             *types.Owner             `json:"owner,omitempty"`
	Legal             *types.Legal             `json:"legal,omitempty"`
	DeliveryPartner   *types.DeliveryPartner   `json:"deliveryPartner,omitempty"`
	IsActive          *bool                    `json:"isActive,omitempty"`
}

const minPasswordLen = 8

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=128"`
}

// ListFilters narrows the admin seller listing.
type ListFilters struct {
	IsOnboarded    *bool
	IsActive       *bool
	IncludeDeleted bool
}

// SellerDTO never carries the password hash.
type SellerDTO struct {
	ID                uuid.UUID               `json:"id"`
	ShopName          string                  `json:"shopName"`
	Username          string                  `json:"username"`
	Email             string                  `json:"email"`
	MobileNo          string                  `json:"mobileNo"`
	AlternateMobileNo *string                 `json:"alternateMobileNo,omitempty"`
	Description       *string                 `json:"description,omitempty"`
	Cover             *string                 `json:"cover,omitempty"`
	ShopAddress       types.ShopAddress       `json:"shopAddress"`
	SellingCategory   []types.SellingCategory `json:"sellingCategory"`
	Discount          *string                 `json:"discount,omitempty"`
	SocialLinks       types.SocialLinks       `json:"socialLinks"`
	Owner             types.Owner             `json:"owner"`
	Legal             types.Legal             `json:"legal"`
	DeliveryPartner   types.DeliveryPartner   `json:"deliveryPartner"`
	ReferredBy        *string                 `json:"referredBy,omitempty"`
	Rating            decimal.Decimal         `json:"rating"`
	Charge            decimal.Decimal         `json:"charge"`
	IsActive          bool                    `json:"isActive"`
	IsOnboarded       bool                    `json:"isOnboarded"`
	IsDeleted         bool                    `json:"isDeleted"`
	CreatedAt         time.Time               `json:"createdAt"`
	UpdatedAt         time.Time               `json:"updatedAt"`
}

func FromModel(s *models.Seller) *SellerDTO {
	if s == nil {
		return nil
	}
	categories := s.SellingCategory
	if categories == nil {
		categories = []types.SellingCategory{}
	}
	return &SellerDTO{
		ID:                s.ID,
		ShopName:          s.ShopName,
		Username:          s.Username,
		Email:             s.Email,
		MobileNo:          s.MobileNo,
		AlternateMobileNo: s.AlternateMobileNo,
		Description:       s.Description,
		Cover:             s.Cover,
		ShopAddress:       s.ShopAddress,
		SellingCategory:   categories,
		Discount:          s.Discount,
		SocialLinks:       s.SocialLinks,
		Owner:             s.Owner,
		Legal:             s.Legal,
		DeliveryPartner:   s.DeliveryPartner,
		ReferredBy:        s.ReferredBy,
		Rating:            s.Rating,
		Charge:            s.Charge,
		IsActive:          s.IsActive,
		IsOnboarded:       s.IsOnboarded,
		IsDeleted:         s.IsDeleted,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}
