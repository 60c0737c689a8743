package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Role is the dashboard permission level carried in the token.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleStaff:
		return true
	}
	return false
}

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	OrganizationID uuid.UUID
	Email          string
	Role           Role
	JTI            string
}

// AccessTokenClaims represents the typed JWT presented by dashboard clients.
// Tokens are minted by the provisioning tooling; the API only verifies them.
type AccessTokenClaims struct {
	OrganizationID uuid.UUID `json:"organization_id"`
	Email          string    `json:"email,omitempty"`
	Role           Role      `json:"role"`
	jwt.RegisteredClaims
}
