package api

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a client token cannot be resolved to a
// user identity
var ErrInvalidToken = errors.New("invalid or expired token")

// IdentityResolver decodes the platform's bearer tokens: HS256 JWTs whose
// payload carries the numeric user id under "user_id". Token issuance lives
// in the platform's auth service; this side only decodes.
type IdentityResolver struct {
	secret []byte
}

// NewIdentityResolver creates a resolver for tokens signed with secret
func NewIdentityResolver(secret string) *IdentityResolver {
	return &IdentityResolver{secret: []byte(secret)}
}

// Resolve returns the user id bound to the token. Expired, malformed or
// wrongly signed tokens all resolve to ErrInvalidToken.
func (r *IdentityResolver) Resolve(tokenString string) (int, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return r.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	userID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, ErrInvalidToken
	}
	return int(userID), nil
}
