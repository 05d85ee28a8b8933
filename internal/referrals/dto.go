package referrals

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/marketplace-backend/internal/users"
	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
)

type CreateReferralInput struct {
	ReferringUserID  uuid.UUID        `json:"referringUserId,omitempty"`
	ReferredSellerID uuid.UUID        `json:"referredSellerId" validate:"required"`
	Amount           *decimal.Decimal `json:"amount,omitempty"`
}

type UpdateReferralInput struct {
	Amount    *decimal.Decimal `json:"amount,omitempty"`
	Onboarded *bool            `json:"onboarded,omitempty"`
	Status    *bool            `json:"status,omitempty"`
}

func (u UpdateReferralInput) empty() bool {
	return u.Amount == nil && u.Onboarded == nil && u.Status == nil
}

// ListFilters narrows the admin referral listing.
type ListFilters struct {
	ReferringUserID  *uuid.UUID
	ReferredSellerID *uuid.UUID
	Onboarded        *bool
	IncludeDeleted   bool
}

// CreateResult carries SUCCESS with the new referral, or EXIST when the pair
// was already recorded.
type CreateResult struct {
	Status   string       `json:"status"`
	Referral *ReferralDTO `json:"referral,omitempty"`
}

// SellerRef is the seller shape embedded in a referral.
type SellerRef struct {
	ID          uuid.UUID `json:"id"`
	ShopName    string    `json:"shopName"`
	Username    string    `json:"username"`
	IsOnboarded bool      `json:"isOnboarded"`
}

type ReferralDTO struct {
	ID               uuid.UUID       `json:"id"`
	ReferringUserID  uuid.UUID       `json:"referringUserId"`
	ReferredSellerID uuid.UUID       `json:"referredSellerId"`
	Amount           decimal.Decimal `json:"amount"`
	Onboarded        bool            `json:"onboarded"`
	Status           bool            `json:"status"`
	IsDeleted        bool            `json:"isDeleted"`
	ReferringUser    *users.UserDTO  `json:"referringUser,omitempty"`
	ReferredSeller   *SellerRef      `json:"referredSeller,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

func ToDTO(r models.Referral) ReferralDTO {
	dto := ReferralDTO{
		ID:               r.ID,
		ReferringUserID:  r.ReferringUserID,
		ReferredSellerID: r.ReferredSellerID,
		Amount:           r.Amount,
		Onboarded:        r.Onboarded,
		Status:           r.Status,
		IsDeleted:        r.IsDeleted,
		ReferringUser:    users.FromModel(r.ReferringUser),
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
	if r.ReferredSeller != nil {
		dto.ReferredSeller = &SellerRef{
			ID:          r.ReferredSeller.ID,
			ShopName:    r.ReferredSeller.ShopName,
			Username:    r.ReferredSeller.Username,
			IsOnboarded: r.ReferredSeller.IsOnboarded,
		}
	}
	return dto
}
