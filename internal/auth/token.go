// Package auth issues and reads the bearer tokens exchanged with the backend.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"craftmart/internal/domain"
)

// Claims carried by every token
type Claims struct {
	UserID int64       `json:"userId"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Issue signs a token for the user
func Issue(userID int64, role domain.Role, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Verify checks signature and expiry
func Verify(tokenStr, secret string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}
	if claims.UserID == 0 {
		return nil, fmt.Errorf("%w: token without user", domain.ErrUnauthenticated)
	}
	return claims, nil
}

// Inspect reads claims without the signing secret; clients use it to know
// who they are and when the token lapses, the backend still verifies.
func Inspect(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}
	return claims, nil
}

// Expired reports whether the claims lapsed at now
func (c *Claims) Expired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return !now.Before(c.ExpiresAt.Time)
}
