// Package tokens выпускает и проверяет JWT администраторов.
package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired  = errors.New("token expired")
	ErrInvalidClaims = errors.New("invalid claims")
)

const AdminRole = "admin"

type AdminClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// GenerateAdminJWT выпускает токен для subject (логин оператора или имя сервиса) со сроком жизни expire.
func GenerateAdminJWT(subject string, expire time.Duration, key []byte) (string, error) {
	now := time.Now()
	claims := AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expire)),
		},
		Role: AdminRole,
	}
	token, err := generateJWT(claims, key)
	if err != nil {
		return "", fmt.Errorf("generating admin jwt token: %s", err.Error())
	}
	return token, nil
}

func ValidateAdminJWT(tokenString string, key []byte) (*AdminClaims, error) {
	token, err := validateJWT(tokenString, new(AdminClaims), key)
	if err != nil {
		return nil, fmt.Errorf("validating admin jwt token: %w", err)
	}

	claims, ok := token.Claims.(*AdminClaims)
	if !ok || claims.Role != AdminRole || claims.Subject == "" {
		return nil, ErrInvalidClaims
	}
	return claims, nil
}

func generateJWT(claims jwt.Claims, key []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("generating jwt token: %s", err.Error())
	}

	return tokenString, nil
}

func validateJWT(tokenString string, claims jwt.Claims, key []byte) (*jwt.Token, error) {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{"HS256"}))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("parsing jwt token: %w", err)
	}

	return token, nil
}
