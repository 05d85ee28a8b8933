package tickets

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/types"
)

// Reply authors.
const (
	FromSeller = "seller"
	FromAdmin  = "admin"
)

type CreateTicketInput struct {
	SellerID    *uuid.UUID `json:"sellerId,omitempty"`
	Type        string     `json:"type" validate:"required,max=64"`
	Subject     string     `json:"subject" validate:"required,max=200"`
	Description string     `json:"description" validate:"required,max=5000"`
}

type UpdateTicketInput struct {
	Type        *string `json:"type,omitempty" validate:"omitempty,max=64"`
	Subject     *string `json:"subject,omitempty" validate:"omitempty,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=5000"`
	Closed      *bool   `json:"closed,omitempty"`
	IsDeleted   *bool   `json:"isDeleted,omitempty"`
}

func (u UpdateTicketInput) empty() bool {
	return u.Type == nil && u.Subject == nil && u.Description == nil && u.Closed == nil && u.IsDeleted == nil
}

type ReplyInput struct {
	Message string `json:"message" validate:"required,max=5000"`
}

type ListFilters struct {
	Closed    *bool
	IsDeleted *bool
}

type SellerRef struct {
	ID       uuid.UUID `json:"id"`
	ShopName string    `json:"shopName"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

type TicketDTO struct {
	ID          uuid.UUID           `json:"id"`
	SellerID    uuid.UUID           `json:"sellerId"`
	Type        string              `json:"type"`
	Subject     string              `json:"subject"`
	Description string              `json:"description"`
	Replies     []types.TicketReply `json:"replies"`
	Closed      bool                `json:"closed"`
	IsDeleted   bool                `json:"isDeleted"`
	Seller      *SellerRef          `json:"seller,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

func ToDTO(t models.Ticket) TicketDTO {
	replies := t.Replies
	if replies == nil {
		replies = []types.TicketReply{}
	}
	dto := TicketDTO{
		ID:          t.ID,
		SellerID:    t.SellerID,
		Type:        t.Type,
		Subject:     t.Subject,
		Description: t.Description,
		Replies:     replies,
		Closed:      t.Closed,
		IsDeleted:   t.IsDeleted,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.Seller != nil {
		dto.Seller = &SellerRef{
			ID:       t.Seller.ID,
			ShopName: t.Seller.ShopName,
			Username: t.Seller.Username,
			Email:    t.Seller.Email,
		}
	}
	return dto
}
