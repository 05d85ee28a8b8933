package auth

import (
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID   uuid.UUID
	Role     enums.Role
	SellerID *uuid.UUID
	Platform enums.Platform
	JTI      string
}

// AccessTokenClaims represents the typed JWT issued to clients. The user id
// travels in the registered "sub" claim.
type AccessTokenClaims struct {
	Role     enums.Role     `json:"role"`
	SellerID *uuid.UUID     `json:"sellerId,omitempty"`
	Platform enums.Platform `json:"platform,omitempty"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *AccessTokenClaims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}
