package utils

import (
	"errors"
	"time"

	"visionvend/config"

	"github.com/golang-jwt/jwt"
)

// kioskSecret falls back to the kiosk id so a development kiosk works without JWT_SECRET.
// Production never falls back.
func kioskSecret() ([]byte, error) {
	if config.AppConfig.JWTSecret != "" {
		return []byte(config.AppConfig.JWTSecret), nil
	}
	if config.IsProduction() {
		return nil, config.ErrMissingJWTSecret
	}
	return []byte("visionvend:" + config.AppConfig.KioskID), nil
}

// GenerateToken creates a signed JWT token with the given subject (the customer id).
// The token expires after the specified duration.
func GenerateToken(subject string, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":   subject,
		"kiosk": config.AppConfig.KioskID,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(duration).Unix(),
	}
	secret, err := kioskSecret()
	if err != nil {
		return "", err
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken parses and validates a token string and returns the token if valid.
func ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Ensure that the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return kioskSecret()
	})
}

// ExtractIDFromToken extracts the subject from a valid JWT token string.
func ExtractIDFromToken(tokenString string) (string, error) {
	token, err := ValidateToken(tokenString)
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", errors.New("token does not contain a valid 'sub' claim")
	}

	return sub, nil
}
