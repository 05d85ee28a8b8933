package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/pkg/types"
)

// Seller is a marketplace tenant running a shop.
type Seller struct {
	ID                uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ShopName          string                  `gorm:"column:shop_name;not null"`
	Username          string                  `gorm:"column:username;not null"`
	Email             string                  `gorm:"column:email;not null"`
	MobileNo          string                  `gorm:"column:mobile_no"`
	AlternateMobileNo *string                 `gorm:"column:alternate_mobile_no"`
	PasswordHash      string                  `gorm:"column:password_hash;not null"`
	Description       *string                 `gorm:"column:description"`
	Cover             *string                 `gorm:"column:cover"`
	ShopAddress       types.ShopAddress       `gorm:"column:shop_address;type:jsonb;serializer:json"`
	SellingCategory   []types.SellingCategory `gorm:"column:selling_category;type:jsonb;serializer:json"`
	Discount          *string                 `gorm:"column:discount"`
	SocialLinks       types.SocialLinks       `gorm:"column:social_links;type:jsonb;serializer:json"`
	Owner             types.Owner             `gorm:"column:owner;type:jsonb;serializer:json"`
	Legal             types.Legal             `gorm:"column:legal;type:jsonb;serializer:json"`
	DeliveryPartner   types.DeliveryPartner   `gorm:"column:delivery_partner;type:jsonb;serializer:json"`
	ReferredBy        *string                 `gorm:"column:referred_by"`
	Rating            decimal.Decimal         `gorm:"column:rating;type:numeric(3,2);not null"`
	Charge            decimal.Decimal         `gorm:"column:charge;type:numeric(12,2);not null"`
	IsActive          bool                    `gorm:"column:is_active;not null"`
	IsOnboarded       bool                    `gorm:"column:is_onboarded;not null"`
	IsDeleted         bool                    `gorm:"column:is_deleted;not null"`
	AddedBy           *uuid.UUID              `gorm:"column:added_by;type:uuid"`
	UpdatedBy         *uuid.UUID              `gorm:"column:updated_by;type:uuid"`
	CreatedAt         time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *Seller) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
