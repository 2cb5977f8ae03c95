package token

import (
	"errors"
	"time"

	"github.com/beka-birhanu/vinom-labyrinth/service/i"
	"github.com/dgrijalva/jwt-go"
)

// Token errors.
var (
	ErrInvalidToken            = errors.New("invalid token")
	ErrUnexpectedSigningMethod = errors.New("unexpected signing method")
	ErrIssuerMismatch          = errors.New("token issued by another service")
)

// JwtService handles JWT operations.
// Implements i.Tokenizer.
type JwtService struct {
	secretKey string
	issuer    string
}

// NewJwtService creates a new JWT Service with the provided configuration.
func NewJwtService(secretKey, issuer string) i.Tokenizer {
	return &JwtService{
		secretKey: secretKey,
		issuer:    issuer,
	}
}

// Generate creates a JWT for the given claims, stamped with the service issuer.
func (s *JwtService) Generate(claims map[string]interface{}, expTime time.Duration) (string, error) {
	now := time.Now().UTC()
	jwtClaims := jwt.MapClaims{
		"exp": now.Add(expTime).Unix(),
		"iat": now.Unix(),
		"iss": s.issuer,
	}
	for key, val := range claims {
		jwtClaims[key] = val
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims)
	return token.SignedString([]byte(s.secretKey))
}

// Decode parses and validates a JWT, returning the claims if valid.
func (s *JwtService) Decode(tokenString string) (map[string]interface{}, error) {
	token, err := jwt.Parse(tokenString, s.getSigningKey)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if !claims.VerifyIssuer(s.issuer, true) {
		return nil, ErrIssuerMismatch
	}
	return claims, nil
}

// getSigningKey returns the signing key for token validation.
func (s *JwtService) getSigningKey(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, ErrUnexpectedSigningMethod
	}
	return []byte(s.secretKey), nil
}
