package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/pkg/types"
)

// Ticket is a seller support request with a reply thread.
type Ticket struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID    uuid.UUID           `gorm:"column:seller_id;type:uuid;not null"`
	Type        string              `gorm:"column:type;not null"`
	Subject     string              `gorm:"column:subject;not null"`
	Description string              `gorm:"column:description;not null"`
	Replies     []types.TicketReply `gorm:"column:replies;type:jsonb;serializer:json;not null"`
	Closed      bool                `gorm:"column:closed;not null"`
	IsDeleted   bool                `gorm:"column:is_deleted;not null"`
	AddedBy     *uuid.UUID          `gorm:"column:added_by;type:uuid"`
	UpdatedBy   *uuid.UUID          `gorm:"column:updated_by;type:uuid"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`

	Seller *Seller `gorm:"foreignKey:SellerID"`
}

func (t *Ticket) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Replies == nil {
		t.Replies = []types.TicketReply{}
	}
	return nil
}
