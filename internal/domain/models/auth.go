package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// UserClaims are the claims this service reads from an already-issued access
// token. Token issuance and sessions are handled upstream; we only verify the
// signature and pull the owner identity out of the subject.
type UserClaims struct {
	jwt.RegisteredClaims
	Role  string `json:"role,omitempty"`
	Email string `json:"email,omitempty"`
}
