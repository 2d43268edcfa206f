package utils

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type customerClaims struct {
	CustomerID string `json:"customer_id"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed JWT for the provided customer ID.
func GenerateToken(secret string, customerID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &customerClaims{
		CustomerID: customerID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   customerID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates the token and returns the embedded customer ID.
func ParseToken(secret, tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &customerClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return uuid.Nil, err
	}

	if claims, ok := token.Claims.(*customerClaims); ok && token.Valid {
		return uuid.Parse(claims.CustomerID)
	}

	return uuid.Nil, jwt.ErrTokenInvalidClaims
}

// TokenExpired reports whether a bearer token is a JWT whose exp lies
// before now. The signature is not checked; the client never holds the key.
// Opaque tokens and JWTs without exp are never expired.
func TokenExpired(tokenString string, now time.Time) bool {
	if strings.Count(tokenString, ".") != 2 {
		return false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(now)
}
