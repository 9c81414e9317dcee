package identity

import (
	"fmt"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/mcoot/arcade-go/internal/model"
)

// Verifier checks bearer tokens issued elsewhere and extracts the caller's identity
type Verifier struct {
	keyfunc jwt.Keyfunc
	methods []string
}

// NewHMACVerifier verifies tokens signed with a shared secret
func NewHMACVerifier(secret string) *Verifier {
	key := []byte(secret)
	return &Verifier{
		keyfunc: func(*jwt.Token) (any, error) { return key, nil },
		methods: []string{"HS256", "HS384", "HS512"},
	}
}

// NewJWKSVerifier verifies tokens against the keys published at jwksURL.
// Keys are refreshed in the background.
func NewJWKSVerifier(jwksURL string) (*Verifier, error) {
	jwks, err := keyfunc.NewDefault([]string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("loading JWKS from %s: %w", jwksURL, err)
	}
	return &Verifier{
		keyfunc: jwks.Keyfunc,
		methods: []string{"RS256", "RS384", "RS512", "ES256", "ES384", "PS256", "EdDSA"},
	}, nil
}

// Verify validates the token and returns the identity it carries
func (v *Verifier) Verify(tokenString string) (model.Identity, error) {
	token, err := jwt.Parse(tokenString, v.keyfunc, jwt.WithValidMethods(v.methods))
	if err != nil {
		return model.Identity{}, fmt.Errorf("%w: %v", model.ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return model.Identity{}, model.ErrInvalidToken
	}
	return IdentityFromClaims(claims)
}

// IdentityFromClaims reads the user ID from "userId", "_id" or "sub" (first
// non-empty wins) along with the optional "username" and "avatar" claims
func IdentityFromClaims(claims jwt.MapClaims) (model.Identity, error) {
	var userID string
	for _, key := range []string{"userId", "_id", "sub"} {
		if v, ok := claims[key].(string); ok && v != "" {
			userID = v
			break
		}
	}
	if userID == "" {
		return model.Identity{}, fmt.Errorf("%w: no user id claim", model.ErrInvalidToken)
	}

	username, _ := claims["username"].(string)
	avatar, _ := claims["avatar"].(string)
	return model.Identity{
		UserID:   model.UserID(userID),
		Username: username,
		Avatar:   avatar,
	}, nil
}
