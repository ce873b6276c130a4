// Package auth implements the session-token codec: claims, HS256
// signing, and verification with caller-visible expired/invalid kinds.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/saasbackend/authcore/internal/common"
	"github.com/saasbackend/authcore/internal/server/models"
)

// DefaultAccessTokenTTL is used when the caller does not request an
// explicit token lifetime.
const DefaultAccessTokenTTL = 30 * time.Minute

// Claims is the session-token claim set: identity fields plus the
// registered exp and jti claims. RegisteredClaims.ID carries the jti.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Credits  int64  `json:"credits"`
}

// GenerateToken signs a token for the given user with exp = now(UTC)+ttl and
// a fresh random jti. A zero ttl falls back to DefaultAccessTokenTTL.
func GenerateToken(user *models.User, secretKey []byte, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = DefaultAccessTokenTTL
	}

	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Credits:  user.Credits,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies the signature and returns the decoded claims.
// An elapsed expiry yields common.ErrTokenExpired together with the decoded
// claims, so callers cleaning up after a dead token still see its jti. Every
// other failure (bad signature, malformed structure, wrong algorithm)
// collapses to common.ErrInvalidToken with nil claims, so no further detail
// leaks to the caller.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return claims, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// ExtractBearer normalizes a bearer-token value as delivered at the
// transport boundary. Accepted grammar: the raw token, or the token with a
// case-insensitive "Bearer " prefix; surrounding whitespace is ignored.
func ExtractBearer(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) > 7 && strings.EqualFold(s[:7], "bearer ") {
		s = strings.TrimSpace(s[7:])
	}
	return s
}
