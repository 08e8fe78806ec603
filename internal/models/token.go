package models

import "github.com/golang-jwt/jwt/v5"

// UserRole mirrors the roles minted by the external identity service.
type UserRole string

const (
	RoleAdmin     UserRole = "ADMIN"
	RoleRegistrar UserRole = "REGISTRAR"
	RoleChair     UserRole = "DEPARTMENT_CHAIR"
)

// JWTClaims are the claims this service verifies on incoming access tokens.
// Token issuance and session management live in the identity service.
type JWTClaims struct {
	UserID string   `json:"uid"`
	Role   UserRole `json:"role"`
	jwt.RegisteredClaims
}
