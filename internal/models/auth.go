package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID      string      `json:"user_id"`
	VendorRole  VendorRole  `json:"vendor_role,omitempty"`
	ClientRole  ClientRole  `json:"client_role,omitempty"`
	HoldingRole HoldingRole `json:"holding_role,omitempty"`
	CompanyID   string      `json:"company_id,omitempty"`
	HoldingID   string      `json:"holding_id,omitempty"`
	jwt.RegisteredClaims
}

// Actor builds the request actor from the token claims.
func (c *JWTClaims) Actor() Actor {
	return Actor{
		UserID:      c.UserID,
		VendorRole:  c.VendorRole,
		ClientRole:  c.ClientRole,
		HoldingRole: c.HoldingRole,
		CompanyID:   c.CompanyID,
		HoldingID:   c.HoldingID,
	}
}
