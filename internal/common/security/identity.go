package security

import (
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

// NewTokenAuth builds the verifier for identity-provider session
// tokens. The provider signs HS256 tokens with a shared key and puts
// its user id in the "sub" claim.
func NewTokenAuth(key []byte) *jwtauth.JWTAuth {
	return jwtauth.New("HS256", key, nil)
}

// GenerateToken mirrors the identity provider's token format. The
// server never mints tokens in production; this exists for tests and
// local development against a stubbed provider.
func GenerateToken(tokenAuth *jwtauth.JWTAuth, providerUserID string, exp time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub": providerUserID,
		"exp": time.Now().Add(exp).Unix(),
		"iat": time.Now().Unix(),
	}
	_, tokenString, err := tokenAuth.Encode(claims)
	return tokenString, err
}

// GetProviderIDFromClaims extracts the provider user id from verified
// token claims.
func GetProviderIDFromClaims(claims map[string]interface{}) (string, error) {
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", errors.New("sub claim is missing or not a string")
	}
	return sub, nil
}
