package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for every verification failure: malformed
// envelope, unexpected algorithm, bad signature, expired token, missing
// claims. Callers get one uniform signal and must not probe further.
var ErrInvalidToken = errors.New("invalid token")

// DefaultTTL is how long an issued token stays valid.
const DefaultTTL = 15 * time.Minute

type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Codec signs and verifies HS256 access tokens. The secret is fixed at
// construction and never changes for the life of the process.
type Codec struct {
	secret []byte
}

func NewCodec(secret []byte) *Codec {
	return &Codec{secret: secret}
}

// Issue signs a token carrying username and role, expiring ttl from now.
// A zero ttl falls back to DefaultTTL.
func (c *Codec) Issue(username, role string, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	claims := Claims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().UTC().Add(ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.secret)
}

// Verify parses and validates a token string, returning its claims.
func (c *Codec) Verify(tokenStr string) (*Claims, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return c.secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Username == "" || claims.Role == "" || claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}

	return &claims, nil
}
