package testutil

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

// SignToken returns an HS256 token over claims, failing the test on error
func SignToken(t testing.TB, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return token
}
