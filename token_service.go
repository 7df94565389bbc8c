package supportdesk

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// IsCompactToken reports whether raw has the structure of a compact signed
// token: exactly two dots delimiting three non-empty segments. It performs no
// cryptographic work; anything else is treated as an opaque lookup token.
func IsCompactToken(raw string) bool {
	if strings.Count(raw, ".") != 2 {
		return false
	}
	for _, segment := range strings.Split(raw, ".") {
		if segment == "" {
			return false
		}
	}
	return true
}

// TokenServiceImpl validates compact tokens issued by the external identity
// provider under a shared HS256 secret.
type TokenServiceImpl struct {
	signingKey []byte
	logger     Logger
}

var _ TokenValidator = (*TokenServiceImpl)(nil)

// NewTokenService creates a new TokenService instance. The signing key is
// injected here so the service is testable without process wide environment
// mutation.
func NewTokenService(signingKey []byte, logger Logger) *TokenServiceImpl {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenServiceImpl{
		signingKey: signingKey,
		logger:     logger,
	}
}

// Validate parses and validates a compact token string, returning its claims.
// Expiry is enforced once, by the jwt library; an expired token surfaces as
// ErrTokenExpired whether the library rejected it or the payload carried an
// exp already in the past.
func (ts *TokenServiceImpl) Validate(tokenString string) (*JWTClaims, error) {
	if len(ts.signingKey) == 0 {
		ts.logger.Error("TokenService validate called without a signing secret")
		return nil, ErrMissingSecret
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService validate encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		ts.logger.Error("TokenService validate could not decode or validate claims")
		return nil, ErrTokenMalformed
	}

	if claims.Email == "" {
		return nil, ErrMissingEmailClaim
	}

	return claims, nil
}

// SignClaims signs arbitrary claims using the configured signing key. The
// backend never issues credentials in production flows; this exists for
// fixtures and demo seeding.
func (ts *TokenServiceImpl) SignClaims(claims *JWTClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Sign mints a compact token carrying an email claim with the given lifetime.
func (ts *TokenServiceImpl) Sign(email string, ttl time.Duration) (string, error) {
	now := time.Now()
	return ts.SignClaims(&JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: email,
	})
}
