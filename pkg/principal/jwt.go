package principal

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Full authentication (credential verification, token issuance, refresh
// flows) is an external collaborator per spec.md §1. This JWTService only
// validates an already-issued token and turns its claims into a Principal,
// which is the minimal contract the core needs at its request edge.

var (
	ErrInvalidToken        = errors.New("invalid token")
	ErrExpiredToken        = errors.New("token has expired")
	ErrInvalidSecretLength = errors.New("JWT secret must be at least 32 characters")
)

// Claims is the JWT payload the external auth service is expected to issue.
type Claims struct {
	jwt.RegisteredClaims
	PrincipalKind Kind     `json:"kind"`
	BasicPath     string   `json:"basic_path"`
	Authorities   Authority `json:"authorities"`
	KeyInfo       string   `json:"key_info,omitempty"`
}

// ToPrincipal converts validated claims into a request-scoped Principal.
func (c *Claims) ToPrincipal() Principal {
	basicPath := c.BasicPath
	if basicPath == "" {
		basicPath = "/"
	}
	return Principal{
		Kind:        c.PrincipalKind,
		ID:          c.Subject,
		BasicPath:   basicPath,
		Authorities: c.Authorities,
		KeyInfo:     c.KeyInfo,
	}
}

// JWTConfig configures JWTService.
type JWTConfig struct {
	Secret string
	Issuer string
}

// JWTService validates bearer tokens issued by the external auth service.
type JWTService struct {
	config JWTConfig
}

// NewJWTService constructs a JWTService. Secret must be at least 32 bytes.
func NewJWTService(config JWTConfig) (*JWTService, error) {
	if len(config.Secret) < 32 {
		return nil, ErrInvalidSecretLength
	}
	if config.Issuer == "" {
		config.Issuer = "filegate"
	}
	return &JWTService{config: config}, nil
}

// ValidateToken parses and verifies a bearer token, returning its claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Authenticate validates tokenString and returns the resulting Principal.
func (s *JWTService) Authenticate(tokenString string) (Principal, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return Principal{}, err
	}
	return claims.ToPrincipal(), nil
}
