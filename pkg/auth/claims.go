package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenPayload captures the data available when minting a JWT.
// Tokens are minted by the account backend; the storefront mints only
// in tests and local development.
type AccessTokenPayload struct {
	UserID    string
	Name      string
	Email     string
	Phone     string
	AddressID string
	JTI       string
}

// AccessTokenClaims represents the typed JWT presented by the shopper.
// AddressID is the id of the single profile address, empty while the
// user has not created one yet.
type AccessTokenClaims struct {
	UserID    string `json:"user_id"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	AddressID string `json:"address_id,omitempty"`
	jwt.RegisteredClaims
}
