package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Referral records that a user brought a seller onto the platform.
// (referring_user_id, referred_seller_id) is unique.
type Referral struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ReferringUserID  uuid.UUID       `gorm:"column:referring_user_id;type:uuid;not null"`
	ReferredSellerID uuid.UUID       `gorm:"column:referred_seller_id;type:uuid;not null"`
	Amount           decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null"`
	Onboarded        bool            `gorm:"column:onboarded;not null"`
	Status           bool            `gorm:"column:status;not null"`
	IsDeleted        bool            `gorm:"column:is_deleted;not null"`
	AddedBy          *uuid.UUID      `gorm:"column:added_by;type:uuid"`
	UpdatedBy        *uuid.UUID      `gorm:"column:updated_by;type:uuid"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`

	ReferringUser  *User   `gorm:"foreignKey:ReferringUserID"`
	ReferredSeller *Seller `gorm:"foreignKey:ReferredSellerID"`
}

func (r *Referral) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
