// Package surface turns the authenticated request context into the scope
// every service call is filtered through.
package surface

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/marketplace-backend/api/middleware"
	"github.com/angelmondragon/marketplace-backend/api/validators"
	"github.com/angelmondragon/marketplace-backend/internal/scope"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
)

// Resolve builds the scope for the actor on r. Seller tokens must carry the
// seller they act for.
func Resolve(r *http.Request) (scope.Scope, error) {
	ctx := r.Context()
	actor, err := uuid.Parse(middleware.UserIDFromContext(ctx))
	if err != nil {
		return scope.Scope{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context required")
	}

	switch enums.Role(middleware.RoleFromContext(ctx)) {
	case enums.RoleAdmin:
		return scope.Admin(actor), nil
	case enums.RoleSeller:
		sellerID, err := uuid.Parse(middleware.SellerIDFromContext(ctx))
		if err != nil {
			return scope.Scope{}, pkgerrors.New(pkgerrors.CodeForbidden, "seller context required")
		}
		return scope.Seller(sellerID, actor), nil
	case enums.RoleClient:
		return scope.Customer(actor), nil
	}
	return scope.Scope{}, pkgerrors.New(pkgerrors.CodeForbidden, "unsupported role")
}

// SellerFilter resolves the seller a dashboard query is about. Sellers are
// pinned to themselves; admins may narrow with ?sellerId and otherwise see
// the whole platform.
func SellerFilter(r *http.Request, sc scope.Scope) (*uuid.UUID, error) {
	if sc.IsSeller() {
		return sc.SellerFilter(), nil
	}
	if !sc.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "seller or admin access required")
	}
	return validators.ParseQueryUUID(r, "sellerId")
}

// RequireSeller is SellerFilter for endpoints that need exactly one seller.
func RequireSeller(r *http.Request, sc scope.Scope) (uuid.UUID, error) {
	id, err := SellerFilter(r, sc)
	if err != nil {
		return uuid.Nil, err
	}
	if id == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "sellerId is required").
			WithDetails(map[string]string{"sellerId": "is required"})
	}
	return *id, nil
}
