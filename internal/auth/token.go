package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/frahmantamala/attendance-management/pkg/clock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenGeneratorAPI interface {
	GenerateAccessToken(userID int64, numericID int) (token string, claims *Claims, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

// JWTTokenGenerator signs HS256 access tokens. Every token carries a unique
// jti so it can be revoked on its own.
type JWTTokenGenerator struct {
	Secret         []byte
	AccessTokenTTL time.Duration
	clock          clock.Clock
}

func NewJWTTokenGenerator(secret string, ttl time.Duration, c clock.Clock) *JWTTokenGenerator {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &JWTTokenGenerator{
		Secret:         []byte(secret),
		AccessTokenTTL: ttl,
		clock:          c,
	}
}

func (j *JWTTokenGenerator) GenerateAccessToken(userID int64, numericID int) (string, *Claims, error) {
	now := j.clock.Now()
	claims := &Claims{
		UserID:    userID,
		NumericID: numericID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.AccessTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.Secret)
	if err != nil {
		return "", nil, err
	}
	return tokenString, claims, nil
}

func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.Secret, nil
	}, jwt.WithTimeFunc(j.clock.Now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
