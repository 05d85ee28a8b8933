package referrals

import (
	"context"
	"fmt"
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

type userChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type sellerFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Seller, error)
}

type Service interface {
	Create(ctx context.Context, sc scope.Scope, input CreateReferralInput) (*CreateResult, error)
	List(ctx context.Context, sc scope.Scope, filters ListFilters, params pagination.Params) (*pagination.Page[ReferralDTO], error)
	ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*pagination.Page[ReferralDTO], error)
	Get(ctx context.Context, sc scope.Scope, id uuid.UUID) (*ReferralDTO, error)
	Update(ctx context.Context, sc scope.Scope, id uuid.UUID, input UpdateReferralInput) (*ReferralDTO, error)
	Delete(ctx context.Context, sc scope.Scope, id uuid.UUID) error
}

type service struct {
	repo    Repository
	users   userChecker
	sellers sellerFinder
	now     func() time.Time
}

func NewService(repo Repository, users userChecker, sellers sellerFinder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("referrals repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("user checker required")
	}
	if sellers == nil {
		return nil, fmt.Errorf("seller finder required")
	}
	return &service{
		repo:    repo,
		users:   users,
		sellers: sellers,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// Create records a referral. The pair index decides duplicates, so two
// concurrent creates for the same pair yield one row and one EXIST.
func (s *service) Create(ctx context.Context, sc scope.Scope, input CreateReferralInput) (*CreateResult, error) {
	if sc.IsCustomer() {
		input.ReferringUserID = sc.OwnerID
	} else if !sc.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "referrals can only be created by admins or users")
	}
	if input.ReferringUserID == uuid.Nil || input.ReferredSellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "referring user and referred seller are required").
			WithDetails(map[string]any{"referringUserId": "required", "referredSellerId": "required"})
	}
	amount := decimal.Zero
	if input.Amount != nil {
		if input.Amount.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount cannot be negative").
				WithDetails(map[string]any{"amount": "must be >= 0"})
		}
		amount = *input.Amount
	}

	exists, err := s.users.Exists(ctx, input.ReferringUserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find referring user")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "User not found")
	}
	seller, err := s.sellers.FindByID(ctx, input.ReferredSellerID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Seller not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find referred seller")
	}
	if seller.IsDeleted {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Seller not found")
	}

	referral := &models.Referral{
		ReferringUserID:  input.ReferringUserID,
		ReferredSellerID: input.ReferredSellerID,
		Amount:           amount,
		Onboarded:        seller.IsOnboarded,
		AddedBy:          sc.ActorPtr(),
		UpdatedBy:        sc.ActorPtr(),
	}
	if err := s.repo.Create(ctx, referral); err != nil {
		if db.IsUniqueViolation(err, PairConstraint) {
			return &CreateResult{Status: types.StatusExist}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create referral")
	}

	created, err := s.repo.FindByID(ctx, referral.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload referral")
	}
	dto := ToDTO(*created)
	return &CreateResult{Status: types.StatusSuccess, Referral: &dto}, nil
}

func (s *service) List(ctx context.Context, sc scope.Scope, filters ListFilters, params pagination.Params) (*pagination.Page[ReferralDTO], error) {
	switch {
	case sc.IsAdmin():
	case sc.IsCustomer() && sc.Valid():
		owner := sc.OwnerID
		filters.ReferringUserID = &owner
		filters.IncludeDeleted = false
	case sc.IsSeller() && sc.Valid():
		owner := sc.OwnerID
		filters.ReferredSellerID = &owner
		filters.IncludeDeleted = false
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "invalid scope")
	}

	params = params.Normalize()
	rows, total, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list referrals")
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no referrals found")
	}
	page := pagination.Map(pagination.NewPage(rows, total, params), ToDTO)
	return &page, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*pagination.Page[ReferralDTO], error) {
	return s.List(ctx, scope.Customer(userID), ListFilters{}, params)
}

func (s *service) Get(ctx context.Context, sc scope.Scope, id uuid.UUID) (*ReferralDTO, error) {
	referral, err := s.loadVisible(ctx, sc, id)
	if err != nil {
		return nil, err
	}
	dto := ToDTO(*referral)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, sc scope.Scope, id uuid.UUID, input UpdateReferralInput) (*ReferralDTO, error) {
	if !sc.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can update referrals")
	}
	if input.empty() {
		return nil, pkgerrors.New(pkgerrors.CodeBadRequest, "no fields to update")
	}
	if input.Amount != nil && input.Amount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount cannot be negative").
			WithDetails(map[string]any{"amount": "must be >= 0"})
	}
	if _, err := s.loadVisible(ctx, sc, id); err != nil {
		return nil, err
	}

	updates := map[string]any{
		"updated_by": sc.ActorPtr(),
		"updated_at": s.now(),
	}
	if input.Amount != nil {
		updates["amount"] = *input.Amount
	}
	if input.Onboarded != nil {
		updates["onboarded"] = *input.Onboarded
	}
	if input.Status != nil {
		updates["status"] = *input.Status
	}
	if err := s.repo.UpdateFields(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update referral")
	}
	return s.Get(ctx, sc, id)
}

func (s *service) Delete(ctx context.Context, sc scope.Scope, id uuid.UUID) error {
	if !sc.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only admins can delete referrals")
	}
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete referral")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "referral not found")
	}
	return nil
}

func (s *service) loadVisible(ctx context.Context, sc scope.Scope, id uuid.UUID) (*models.Referral, error) {
	referral, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "referral not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find referral")
	}
	visible := sc.IsAdmin() ||
		(sc.IsCustomer() && referral.ReferringUserID == sc.OwnerID) ||
		(sc.IsSeller() && referral.ReferredSellerID == sc.OwnerID)
	if !visible {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "referral not found")
	}
	return referral, nil
}
