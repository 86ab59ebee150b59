package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ServiceClaims - клеймы межсервисного токена; Service - имя вызывающего сервиса.
type ServiceClaims struct {
	jwt.RegisteredClaims
	Service string
}

func GenerateServiceJWT(serviceName string, expire time.Duration, key []byte) (string, error) {
	serviceClaims := ServiceClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expire)),
		},
		Service: serviceName,
	}
	token, err := generateJWT(serviceClaims, key)
	if err != nil {
		return "", fmt.Errorf("generating service jwt token: %s", err.Error())
	}
	return token, nil
}

func ValidateServiceJWT(tokenString string, key []byte) (*jwt.Token, error) {
	token, err := validateJWT(tokenString, new(ServiceClaims), key)
	if err != nil {
		return nil, fmt.Errorf("validating service jwt token: %w", err)
	}

	_, ok := token.Claims.(*ServiceClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	return token, nil
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
	})
	if err != nil {
		return nil, fmt.Errorf("parsing jwt token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return token, nil
}
