package service

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/usermgmt/admin-console/internal/core/domain"
)

// tokenClaims is the payload layout issued by the backend.
type tokenClaims struct {
	Authorities []string `json:"authorities,omitempty"`
	jwt.RegisteredClaims
}

// JWTDecoder reads token claims without verifying the signature. The console
// never holds the signing key; the backend rejects tampered tokens.
type JWTDecoder struct {
	parser *jwt.Parser
}

func NewJWTDecoder() *JWTDecoder {
	return &JWTDecoder{parser: jwt.NewParser()}
}

// Decode returns the claims of token, or an error when the token is not a
// well-formed JWT.
func (d *JWTDecoder) Decode(token string) (domain.Claims, error) {
	var tc tokenClaims
	if _, _, err := d.parser.ParseUnverified(token, &tc); err != nil {
		return domain.Claims{}, fmt.Errorf("decode token: %w", err)
	}

	claims := domain.Claims{
		Subject:     tc.Subject,
		Issuer:      tc.Issuer,
		Authorities: tc.Authorities,
	}
	if tc.IssuedAt != nil {
		claims.IssuedAt = tc.IssuedAt.Time
	}
	if tc.ExpiresAt != nil {
		claims.ExpiresAt = tc.ExpiresAt.Time
	}
	return claims, nil
}
