package coupons

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/marketplace-backend/internal/scope"
	"github.com/angelmondragon/marketplace-backend/pkg/db"
	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/pagination"
	"github.com/angelmondragon/marketplace-backend/pkg/types"
)

const invalidCouponMessage = "Invalid Coupon"

type sellerLookup interface {
	FindByUsername(ctx context.Context, username string) (*models.Seller, error)
}

type Service interface {
	Create(ctx context.Context, sc scope.Scope, input CreateCouponInput) (*CouponDTO, error)
	Apply(ctx context.Context, input ApplyCouponInput) (*ApplyResult, error)
	List(ctx context.Context, sc scope.Scope, filters ListFilters, params pagination.Params) (*pagination.Page[CouponDTO], error)
	Get(ctx context.Context, sc scope.Scope, id uuid.UUID) (*CouponDTO, error)
	Update(ctx context.Context, sc scope.Scope, id uuid.UUID, input UpdateCouponInput) (*CouponDTO, error)
	Delete(ctx context.Context, sc scope.Scope, id uuid.UUID) error
	Count(ctx context.Context, sellerID uuid.UUID) (int64, error)
}

type service struct {
	repo    Repository
	sellers sellerLookup
	now     func() time.Time
}

func NewService(repo Repository, sellers sellerLookup) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupons repository required")
	}
	if sellers == nil {
		return nil, fmt.Errorf("seller lookup required")
	}
	return &service{
		repo:    repo,
		sellers: sellers,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Create(ctx context.Context, sc scope.Scope, input CreateCouponInput) (*CouponDTO, error) {
	sellerID, err := ownerFor(sc, input.SellerID)
	if err != nil {
		return nil, err
	}
	code := normalizeCode(input.Code)
	discountType, err := enums.ParseDiscountType(strings.ToLower(strings.TrimSpace(input.DiscountType)))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid discount type").
			WithDetails(map[string]any{"discountType": "must be percent or flat"})
	}
	minOrder := decimal.Zero
	if input.MinOrderValue != nil {
		minOrder = *input.MinOrderValue
	}
	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}

	coupon := &models.Coupon{
		SellerID:      sellerID,
		Code:          code,
		Description:   input.Description,
		DiscountType:  discountType,
		DiscountValue: input.DiscountValue,
		MinOrderValue: minOrder,
		ValidFrom:     input.ValidFrom,
		ValidTo:       input.ValidTo,
		IsActive:      active,
		AddedBy:       sc.ActorPtr(),
		UpdatedBy:     sc.ActorPtr(),
	}
	if err := validateCoupon(coupon); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, coupon); err != nil {
		if db.IsUniqueViolation(err, SellerCodeConstraint) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "coupon code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create coupon")
	}
	dto := ToDTO(*coupon)
	return &dto, nil
}

// Apply resolves the seller first so a bad username is a hard NotFound while a
// bad code is a FAILED result.
func (s *service) Apply(ctx context.Context, input ApplyCouponInput) (*ApplyResult, error) {
	username := strings.TrimSpace(input.SellerUsername)
	if username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller username is required").
			WithDetails(map[string]any{"sellerUsername": "required"})
	}
	seller, err := s.sellers.FindByUsername(ctx, username)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Seller not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find seller")
	}

	code := normalizeCode(input.Code)
	if code == "" {
		return failed(), nil
	}
	coupon, err := s.repo.FindByCode(ctx, seller.ID, code)
	if err != nil {
		if db.IsNotFound(err) {
			return failed(), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find coupon")
	}
	if !coupon.ValidAt(s.now()) {
		return failed(), nil
	}
	dto := ToDTO(*coupon)
	return &ApplyResult{Status: types.StatusSuccess, Coupon: &dto}, nil
}

func (s *service) List(ctx context.Context, sc scope.Scope, filters ListFilters, params pagination.Params) (*pagination.Page[CouponDTO], error) {
	if !sc.IsAdmin() && !sc.IsSeller() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "coupons are not visible to this role")
	}
	params = params.Normalize()
	rows, total, err := s.repo.List(ctx, sc.SellerFilter(), filters, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list coupons")
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no coupons found")
	}
	page := pagination.Map(pagination.NewPage(rows, total, params), ToDTO)
	return &page, nil
}

func (s *service) Get(ctx context.Context, sc scope.Scope, id uuid.UUID) (*CouponDTO, error) {
	coupon, err := s.loadOwned(ctx, sc, id)
	if err != nil {
		return nil, err
	}
	dto := ToDTO(*coupon)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, sc scope.Scope, id uuid.UUID, input UpdateCouponInput) (*CouponDTO, error) {
	if input.empty() {
		return nil, pkgerrors.New(pkgerrors.CodeBadRequest, "no fields to update")
	}
	coupon, err := s.loadOwned(ctx, sc, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Code != nil {
		coupon.Code = normalizeCode(*input.Code)
		updates["code"] = coupon.Code
	}
	if input.Description != nil {
		coupon.Description = input.Description
		updates["description"] = *input.Description
	}
	if input.DiscountType != nil {
		discountType, err := enums.ParseDiscountType(strings.ToLower(strings.TrimSpace(*input.DiscountType)))
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid discount type").
				WithDetails(map[string]any{"discountType": "must be percent or flat"})
		}
		coupon.DiscountType = discountType
		updates["discount_type"] = discountType
	}
	if input.DiscountValue != nil {
		coupon.DiscountValue = *input.DiscountValue
		updates["discount_value"] = *input.DiscountValue
	}
	if input.MinOrderValue != nil {
		coupon.MinOrderValue = *input.MinOrderValue
		updates["min_order_value"] = *input.MinOrderValue
	}
	if input.ValidFrom != nil {
		coupon.ValidFrom = input.ValidFrom
		updates["valid_from"] = *input.ValidFrom
	}
	if input.ValidTo != nil {
		coupon.ValidTo = input.ValidTo
		updates["valid_to"] = *input.ValidTo
	}
	if input.IsActive != nil {
		coupon.IsActive = *input.IsActive
		updates["is_active"] = *input.IsActive
	}
	if input.IsDeleted != nil {
		coupon.IsDeleted = *input.IsDeleted
		updates["is_deleted"] = *input.IsDeleted
	}
	if err := validateCoupon(coupon); err != nil {
		return nil, err
	}

	now := s.now()
	coupon.UpdatedBy = sc.ActorPtr()
	coupon.UpdatedAt = now
	updates["updated_by"] = sc.ActorPtr()
	updates["updated_at"] = now

	if err := s.repo.UpdateFields(ctx, id, updates); err != nil {
		if db.IsUniqueViolation(err, SellerCodeConstraint) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "coupon code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update coupon")
	}
	dto := ToDTO(*coupon)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, sc scope.Scope, id uuid.UUID) error {
	if _, err := s.loadOwned(ctx, sc, id); err != nil {
		return err
	}
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete coupon")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
	}
	return nil
}

func (s *service) Count(ctx context.Context, sellerID uuid.UUID) (int64, error) {
	total, err := s.repo.CountBySeller(ctx, sellerID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count coupons")
	}
	return total, nil
}

func (s *service) loadOwned(ctx context.Context, sc scope.Scope, id uuid.UUID) (*models.Coupon, error) {
	if !sc.IsAdmin() && !sc.IsSeller() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "coupons are not visible to this role")
	}
	coupon, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find coupon")
	}
	if sc.IsSeller() && coupon.SellerID != sc.OwnerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
	}
	return coupon, nil
}

func ownerFor(sc scope.Scope, requested *uuid.UUID) (uuid.UUID, error) {
	switch {
	case sc.IsSeller() && sc.Valid():
		return sc.OwnerID, nil
	case sc.IsAdmin():
		if requested == nil || *requested == uuid.Nil {
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "seller is required").
				WithDetails(map[string]any{"sellerId": "required"})
		}
		return *requested, nil
	}
	return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "coupons can only be created by admins or sellers")
}

func validateCoupon(c *models.Coupon) error {
	details := map[string]any{}
	if len(c.Code) < 3 {
		details["code"] = "must be at least 3 characters"
	}
	if !c.DiscountValue.IsPositive() {
		details["discountValue"] = "must be > 0"
	} else if c.DiscountType == enums.DiscountTypePercent && c.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
		details["discountValue"] = "percent discount must be <= 100"
	}
	if c.MinOrderValue.IsNegative() {
		details["minOrderValue"] = "must be >= 0"
	}
	if c.ValidFrom != nil && c.ValidTo != nil && c.ValidTo.Before(*c.ValidFrom) {
		details["validTo"] = "must be after validFrom"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid coupon").WithDetails(details)
	}
	return nil
}

// normalizeCode trims surrounding space. Codes match case-sensitively.
func normalizeCode(code string) string {
	return strings.TrimSpace(code)
}

func failed() *ApplyResult {
	return &ApplyResult{Status: types.StatusFailed, Message: invalidCouponMessage}
}
