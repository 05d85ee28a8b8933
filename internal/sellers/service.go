package sellers

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
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/pagination"
	"github.com/angelmondragon/marketplace-backend/pkg/types"
)

type passwordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
}

// Service manages seller accounts and their onboarding state.
type Service interface {
	Create(ctx context.Context, sc scope.Scope, input CreateSellerInput) (*SellerDTO, error)
	Get(ctx context.Context, sc scope.Scope, id uuid.UUID) (*SellerDTO, error)
	GetByUsername(ctx context.Context, username string) (*SellerDTO, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) (*pagination.Page[SellerDTO], error)
	Update(ctx context.Context, sc scope.Scope, id uuid.UUID, input UpdateSellerInput) (*SellerDTO, error)
	SetOnboarded(ctx context.Context, sc scope.Scope, id uuid.UUID, approve bool) (*SellerDTO, error)
	SoftDelete(ctx context.Context, sc scope.Scope, id uuid.UUID) (*SellerDTO, error)
	ChangePassword(ctx context.Context, sc scope.Scope, input ChangePasswordInput) error
}

type service struct {
	repo   Repository
	hasher passwordHasher
	now    func() time.Time
}

// NewService builds a seller service with the required dependencies.
func NewService(repo Repository, hasher passwordHasher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sellers repository required")
	}
	if hasher == nil {
		return nil, fmt.Errorf("password hasher required")
	}
	return &service{
		repo:   repo,
		hasher: hasher,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Create(ctx context.Context, sc scope.Scope, input CreateSellerInput) (*SellerDTO, error) {
	if !sc.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can create sellers")
	}
	username := strings.ToLower(strings.TrimSpace(input.Username))
	if username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username is required").
			WithDetails(map[string]any{"username": "required"})
	}
	if input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password is required").
			WithDetails(map[string]any{"password": "required"})
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	charge := decimal.Zero
	if input.Charge != nil {
		if input.Charge.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "charge cannot be negative").
				WithDetails(map[string]any{"charge": "must be >= 0"})
		}
		charge = *input.Charge
	}

	seller := &models.Seller{
		ShopName:          strings.TrimSpace(input.ShopName),
		Username:          username,
		Email:             strings.ToLower(strings.TrimSpace(input.Email)),
		MobileNo:          strings.TrimSpace(input.MobileNo),
		AlternateMobileNo: input.AlternateMobileNo,
		PasswordHash:      hash,
		Description:       input.Description,
		ShopAddress:       input.ShopAddress,
		SellingCategory:   input.SellingCategory,
		ReferredBy:        input.ReferredBy,
		Rating:            decimal.Zero,
		Charge:            charge,
		IsActive:          true,
		AddedBy:           sc.ActorPtr(),
		UpdatedBy:         sc.ActorPtr(),
	}
	if seller.SellingCategory == nil {
		seller.SellingCategory = []types.SellingCategory{}
	}

	if err := s.repo.Create(ctx, seller); err != nil {
		if db.IsUniqueViolation(err, UsernameConstraint) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "username already taken")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create seller")
	}
	return FromModel(seller), nil
}

func (s *service) Get(ctx context.Context, sc scope.Scope, id uuid.UUID) (*SellerDTO, error) {
	if err := canAccess(sc, id); err != nil {
		return nil, err
	}
	seller, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(seller), nil
}

func (s *service) GetByUsername(ctx context.Context, username string) (*SellerDTO, error) {
	if strings.TrimSpace(username) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeBadRequest, "username is required")
	}
	seller, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Seller not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find seller by username")
	}
	return FromModel(seller), nil
}

func (s *service) List(ctx context.Context, filters ListFilters, params pagination.Params) (*pagination.Page[SellerDTO], error) {
	params = params.Normalize()
	rows, total, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sellers")
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no sellers found")
	}
	page := pagination.Map(pagination.NewPage(rows, total, params), func(row models.Seller) SellerDTO {
		return *FromModel(&row)
	})
	return &page, nil
}

func (s *service) Update(ctx context.Context, sc scope.Scope, id uuid.UUID, input UpdateSellerInput) (*SellerDTO, error) {
	if err := canAccess(sc, id); err != nil {
		return nil, err
	}
	seller, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if seller.IsDeleted {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Seller not found")
	}

	applyUpdate(seller, input)
	if input.IsActive != nil {
		if !sc.IsAdmin() {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can change seller activity")
		}
		seller.IsActive = *input.IsActive
	}
	seller.UpdatedBy = sc.ActorPtr()
	seller.UpdatedAt = s.now()

	if err := s.repo.Save(ctx, seller); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update seller")
	}
	return FromModel(seller), nil
}

// SetOnboarded approves or unapproves a seller. Approval requires the shop
// address, legal documents and at least one fulfilment option.
func (s *service) SetOnboarded(ctx context.Context, sc scope.Scope, id uuid.UUID, approve bool) (*SellerDTO, error) {
	if !sc.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can approve sellers")
	}
	seller, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if seller.IsDeleted {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Seller not found")
	}
	if approve {
		if missing := missingOnboarding(seller); len(missing) > 0 {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "seller onboarding is incomplete").
				WithDetails(map[string]any{"missing": missing})
		}
	}

	updates := map[string]any{
		"is_onboarded": approve,
		"updated_by":   sc.ActorPtr(),
		"updated_at":   s.now(),
	}
	if _, err := s.repo.UpdateFields(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set seller onboarding")
	}
	seller.IsOnboarded = approve
	seller.UpdatedBy = sc.ActorPtr()
	return FromModel(seller), nil
}

func (s *service) SoftDelete(ctx context.Context, sc scope.Scope, id uuid.UUID) (*SellerDTO, error) {
	if !sc.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can delete sellers")
	}
	seller, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{
		"is_deleted": true,
		"is_active":  false,
		"updated_by": sc.ActorPtr(),
		"updated_at": s.now(),
	}
	if _, err := s.repo.UpdateFields(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete seller")
	}
	seller.IsDeleted = true
	seller.IsActive = false
	return FromModel(seller), nil
}

// ChangePassword rotates the calling seller's password after checking the
// current one.
func (s *service) ChangePassword(ctx context.Context, sc scope.Scope, input ChangePasswordInput) error {
	if !sc.IsSeller() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "seller access required")
	}
	if len(input.NewPassword) < minPasswordLen {
		return pkgerrors.New(pkgerrors.CodeValidation, "new password is too short").
			WithDetails(map[string]any{"newPassword": fmt.Sprintf("min %d characters", minPasswordLen)})
	}
	if input.NewPassword == input.CurrentPassword {
		return pkgerrors.New(pkgerrors.CodeValidation, "new password must differ from the current one").
			WithDetails(map[string]any{"newPassword": "must differ"})
	}
	seller, err := s.load(ctx, sc.OwnerID)
	if err != nil {
		return err
	}
	if seller.IsDeleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Seller not found")
	}

	ok, err := s.hasher.Verify(input.CurrentPassword, seller.PasswordHash)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "current password is incorrect").
			WithDetails(map[string]any{"currentPassword": "does not match"})
	}

	hash, err := s.hasher.Hash(input.NewPassword)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	updates := map[string]any{
		"password_hash": hash,
		"updated_by":    sc.ActorPtr(),
		"updated_at":    s.now(),
	}
	if _, err := s.repo.UpdateFields(ctx, seller.ID, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update password")
	}
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Seller, error) {
	seller, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Seller not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find seller")
	}
	return seller, nil
}

func canAccess(sc scope.Scope, id uuid.UUID) error {
	if sc.IsAdmin() {
		return nil
	}
	if sc.IsSeller() && sc.OwnerID == id {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "sellers may only access their own profile")
}

func applyUpdate(seller *models.Seller, input UpdateSellerInput) {
	if input.ShopName != nil {
		seller.ShopName = strings.TrimSpace(*input.ShopName)
	}
	if input.Email != nil {
		seller.Email = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if input.MobileNo != nil {
		seller.MobileNo = strings.TrimSpace(*input.MobileNo)
	}
	if input.AlternateMobileNo != nil {
		seller.AlternateMobileNo = input.AlternateMobileNo
	}
	if input.Description != nil {
		seller.Description = input.Description
	}
	if input.Cover != nil {
		seller.Cover = input.Cover
	}
	if input.Discount != nil {
		seller.Discount = input.Discount
	}
	if input.ShopAddress != nil {
		seller.ShopAddress = *input.ShopAddress
	}
	if input.SellingCategory != nil {
		seller.SellingCategory = *input.SellingCategory
	}
	if input.SocialLinks != nil {
		seller.SocialLinks = *input.SocialLinks
	}
	if input.Owner != nil {
		seller.Owner = *input.Owner
	}
	if input.Legal != nil {
		seller.Legal = *input.Legal
	}
	if input.DeliveryPartner != nil {
		seller.DeliveryPartner = *input.DeliveryPartner
	}
}

func missingOnboarding(seller *models.Seller) []string {
	var missing []string
	addr := seller.ShopAddress
	if addr.Address1 == "" || addr.City == "" || addr.Pincode == "" {
		missing = append(missing, "shopAddress")
	}
	if seller.Legal.PAN == "" || seller.Legal.Bank.AccountNumber == "" {
		missing = append(missing, "legal")
	}
	if !seller.DeliveryPartner.Personal.Have && !seller.DeliveryPartner.HasWarehouse() {
		missing = append(missing, "deliveryPartner")
	}
	return missing
}
