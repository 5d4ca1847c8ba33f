package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken marks an access token that fails parsing or validation.
var ErrInvalidToken = errors.New("invalid access token")

// Claims are the console's JWT claims for the auto-signin path.
type Claims struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// TokenCodec issues and parses HMAC-signed access tokens carrying a
// session principal. Used by the auto-signin filter
// ("/page?accessToken=...").
type TokenCodec struct {
	key    []byte
	issuer string
	ttl    time.Duration
}

// NewTokenCodec builds a codec with the given HMAC key.
func NewTokenCodec(key []byte, issuer string, ttl time.Duration) *TokenCodec {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenCodec{key: key, issuer: issuer, ttl: ttl}
}

// Issue signs a token for the principal.
func (c *TokenCodec) Issue(p Principal) (string, error) {
	now := time.Now()
	claims := Claims{
		Owner: p.Owner,
		Name:  p.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   p.ID(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
}

// Parse validates a token and returns its principal.
func (c *TokenCodec) Parse(token string) (Principal, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.key, nil
	}, jwt.WithIssuer(c.issuer))
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Owner == "" || claims.Name == "" {
		return Principal{}, ErrInvalidToken
	}
	return Principal{Owner: claims.Owner, Name: claims.Name}, nil
}
