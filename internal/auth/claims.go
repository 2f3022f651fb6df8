package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const RoleOperator = "operator"

var (
	ErrTokensDisabled = errors.New("operator tokens are disabled")
	ErrInvalidToken   = errors.New("invalid token")
)

// OperatorClaims identify a caller allowed to mutate the board.
type OperatorClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// OperatorTokens signs and verifies operator JWTs with an HMAC secret.
// With an empty secret mutations are left open and Enabled reports false.
type OperatorTokens struct {
	secretKey []byte
}

func NewOperatorTokens(secret string) *OperatorTokens {
	return &OperatorTokens{secretKey: []byte(secret)}
}

func (t *OperatorTokens) Enabled() bool {
	return t != nil && len(t.secretKey) > 0
}

// Issue mints a token for subject valid for ttl.
func (t *OperatorTokens) Issue(subject string, ttl time.Duration) (string, error) {
	if !t.Enabled() {
		return "", ErrTokensDisabled
	}

	now := time.Now()
	claims := OperatorClaims{
		Role: RoleOperator,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a token and checks that it carries the operator role.
func (t *OperatorTokens) Verify(tokenString string) (*OperatorClaims, error) {
	if !t.Enabled() {
		return nil, ErrTokensDisabled
	}

	claims := &OperatorClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Role != RoleOperator {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
