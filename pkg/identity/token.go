package identity

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UIDFromToken extracts the driver uid from a Firebase ID token without
// verifying the signature. Verification belongs to the identity service;
// this client only needs the subject claim to key document operations.
func UIDFromToken(idToken string) (string, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(idToken, claims); err != nil {
		return "", fmt.Errorf("failed to parse ID token: %w", err)
	}

	if uid, ok := claims["user_id"].(string); ok && uid != "" {
		return uid, nil
	}
	if sub, ok := claims["sub"].(string); ok && sub != "" {
		return sub, nil
	}

	return "", fmt.Errorf("ID token carries no user id claim")
}

// TokenExpiry returns the expiry time encoded in a Firebase ID token.
func TokenExpiry(idToken string) (time.Time, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(idToken, claims); err != nil {
		return time.Time{}, fmt.Errorf("failed to parse ID token: %w", err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, fmt.Errorf("ID token carries no expiry claim")
	}

	return exp.Time, nil
}
