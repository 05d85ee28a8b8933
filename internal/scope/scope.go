// Package scope carries who is acting and on whose behalf, so one service
// implementation can serve the admin, seller and client surfaces.
package scope

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/marketplace-backend/pkg/enums"
)

// Scope is built by the HTTP surface adapters and passed to every service call.
type Scope struct {
	Role enums.Role
	// OwnerID is the acting seller (seller scope) or customer (client scope). Nil for admin.
	OwnerID uuid.UUID
	// Actor is the authenticated user stamped into added_by/updated_by.
	Actor uuid.UUID
	// RoleAccess is reserved for finer-grained admin permissions; no rule reads it yet.
	RoleAccess *string
}

// Admin scopes a call to the whole platform.
func Admin(actor uuid.UUID) Scope {
	return Scope{Role: enums.RoleAdmin, Actor: actor}
}

// Seller scopes a call to one seller's rows.
func Seller(sellerID, actor uuid.UUID) Scope {
	return Scope{Role: enums.RoleSeller, OwnerID: sellerID, Actor: actor}
}

// Customer scopes a call to one customer's rows.
func Customer(customerID uuid.UUID) Scope {
	return Scope{Role: enums.RoleClient, OwnerID: customerID, Actor: customerID}
}

// WithRoleAccess returns a copy carrying the given role access tag.
func (s Scope) WithRoleAccess(access string) Scope {
	s.RoleAccess = &access
	return s
}

func (s Scope) IsAdmin() bool {
	return s.Role == enums.RoleAdmin
}

func (s Scope) IsSeller() bool {
	return s.Role == enums.RoleSeller
}

func (s Scope) IsCustomer() bool {
	return s.Role == enums.RoleClient
}

// OrderColumn names the orders column that ties a row to the scope owner.
// Empty for admin, which sees every row.
func (s Scope) OrderColumn() string {
	switch s.Role {
	case enums.RoleSeller:
		return "seller_id"
	case enums.RoleClient:
		return "customer_id"
	}
	return ""
}

// Owns reports whether a row with the given seller and customer belongs to the scope.
func (s Scope) Owns(sellerID, customerID uuid.UUID) bool {
	switch s.Role {
	case enums.RoleAdmin:
		return true
	case enums.RoleSeller:
		return s.OwnerID != uuid.Nil && s.OwnerID == sellerID
	case enums.RoleClient:
		return s.OwnerID != uuid.Nil && s.OwnerID == customerID
	}
	return false
}

// SellerFilter returns the seller id a seller scope is pinned to, or nil.
func (s Scope) SellerFilter() *uuid.UUID {
	if s.Role != enums.RoleSeller || s.OwnerID == uuid.Nil {
		return nil
	}
	id := s.OwnerID
	return &id
}

// ActorPtr returns the actor id for nullable audit columns.
func (s Scope) ActorPtr() *uuid.UUID {
	if s.Actor == uuid.Nil {
		return nil
	}
	id := s.Actor
	return &id
}

// Valid reports whether the scope has the owner its role requires.
func (s Scope) Valid() bool {
	switch s.Role {
	case enums.RoleAdmin:
		return true
	case enums.RoleSeller, enums.RoleClient:
		return s.OwnerID != uuid.Nil
	}
	return false
}
