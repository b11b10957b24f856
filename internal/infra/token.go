// README: Access-token verification (HS256, shared secret). Issuing tokens is not this service's job.
package infra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"cabbook/internal/types"
)

var ErrInvalidToken = errors.New("invalid token")

// Identity is the verified caller behind a token.
type Identity struct {
	UserID    types.ID
	ExpiresAt time.Time
}

// TokenVerifier verifies a raw access token and returns the caller identity.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, raw string) (*Identity, error)
}

type jwtVerifier struct {
	secret []byte
}

// NewJWTVerifier returns a TokenVerifier for HS256 tokens carrying the caller id in
// the "id" claim and a mandatory "exp".
func NewJWTVerifier(secret string) TokenVerifier {
	return &jwtVerifier{secret: []byte(secret)}
}

func (v *jwtVerifier) VerifyToken(_ context.Context, raw string) (*Identity, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !claims.VerifyExpiresAt(time.Now().Unix(), true) {
		return nil, fmt.Errorf("%w: missing or expired exp", ErrInvalidToken)
	}
	rawID, _ := claims["id"].(string)
	id, err := types.ParseID(rawID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad id claim", ErrInvalidToken)
	}
	exp, _ := claims["exp"].(float64)
	return &Identity{UserID: id, ExpiresAt: time.Unix(int64(exp), 0)}, nil
}
