package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenRequest exchanges an owner API key for an access token.
type TokenRequest struct {
	OwnerID string `json:"owner_id" validate:"required"`
	APIKey  string `json:"api_key" validate:"required"`
}

// TokenResponse returns the issued access token.
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	OwnerID     string    `json:"owner_id"`
	Role        UserRole  `json:"role"`
	IssuedAt    time.Time `json:"issued_at"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	OwnerID string   `json:"owner_id"`
	Role    UserRole `json:"role"`
	jwt.RegisteredClaims
}
