// Package auth выпускает и проверяет токены операторов для status API.
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "chunk-inspector"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrNotOperator  = errors.New("operator is not authorized")
)

// Claims - полезная нагрузка токена оператора
type Claims struct {
	Operator string `json:"operator"`
	jwt.RegisteredClaims
}

// TokenIssuer подписывает токены HS256 для операторов из списка authorized
type TokenIssuer struct {
	secret    []byte
	operators map[string]struct{}
}

// NewTokenIssuer создаёт издателя. secret - base64 не короче 32 байт.
func NewTokenIssuer(secret string, operators []string) (*TokenIssuer, error) {
	decoded, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return nil, fmt.Errorf("jwt secret: %w", err)
	}
	if len(decoded) < 32 {
		return nil, errors.New("secret key must be at least 32 bytes")
	}

	ti := &TokenIssuer{secret: decoded, operators: make(map[string]struct{}, len(operators))}
	for _, op := range operators {
		ti.operators[strings.ToLower(strings.TrimSpace(op))] = struct{}{}
	}
	return ti, nil
}

// Issue создаёт токен оператора со сроком жизни ttl
func (ti *TokenIssuer) Issue(operator string, ttl time.Duration) (string, error) {
	if _, ok := ti.operators[strings.ToLower(operator)]; !ok {
		return "", fmt.Errorf("%w: %s", ErrNotOperator, operator)
	}

	now := time.Now()
	claims := &Claims{
		Operator: operator,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   operator,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(ti.secret)
}

// Validate проверяет подпись, срок и то, что оператор всё ещё в списке
func (ti *TokenIssuer) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return ti.secret, nil
	}, jwt.WithIssuer(issuer))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if _, ok := ti.operators[strings.ToLower(claims.Operator)]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotOperator, claims.Operator)
	}
	return claims, nil
}

// GenerateSecureSecret генерирует новый секрет в base64
func GenerateSecureSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
