package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"protopia/internal/domain"
)

// TokenService validates access tokens issued by the external identity
// provider. The claims carry the demographic attributes the question
// selector consumes; this service never makes identity decisions itself.
type TokenService struct {
	secret    []byte
	accessTTL time.Duration
	issuer    string
}

// Claims are the identity-provider claims the assessment core reads.
type Claims struct {
	UserID     string `json:"uid"`
	Email      string `json:"email,omitempty"`
	AgeRange   string `json:"age_range,omitempty"`
	Gender     string `json:"gender,omitempty"`
	Profession string `json:"profession,omitempty"`
	TokenType  string `json:"typ"`
	jwt.RegisteredClaims
}

// User converts the claims into the domain identity the services use.
func (c Claims) User() domain.User {
	return domain.User{
		ID:         c.UserID,
		Email:      c.Email,
		AgeRange:   c.AgeRange,
		Gender:     c.Gender,
		Profession: c.Profession,
	}
}

var (
	ErrJWTInvalid = errors.New("jwt invalid")
	ErrJWTExpired = errors.New("jwt expired")
)

func NewTokenService(secret string, accessTTL time.Duration) *TokenService {
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	return &TokenService{
		secret:    []byte(secret),
		accessTTL: accessTTL,
		issuer:    "protopia",
	}
}

// GenerateAccessToken signs a token for the user. Used by tests and local
// tooling; production tokens come from the identity provider.
func (s *TokenService) GenerateAccessToken(user domain.User) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrJWTInvalid
	}
	now := time.Now().UTC()
	claims := Claims{
		UserID:     user.ID,
		Email:      user.Email,
		AgeRange:   user.AgeRange,
		Gender:     user.Gender,
		Profession: user.Profession,
		TokenType:  "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ParseAccessToken validates the signature, expiry, issuer, and token type.
func (s *TokenService) ParseAccessToken(accessToken string) (Claims, error) {
	if len(s.secret) == 0 || strings.TrimSpace(accessToken) == "" {
		return Claims{}, ErrJWTInvalid
	}

	var claims Claims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(accessToken, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrJWTExpired
		}
		return Claims{}, ErrJWTInvalid
	}

	if claims.TokenType != "access" {
		return Claims{}, ErrJWTInvalid
	}
	if !s.isValidClaims(claims) {
		return Claims{}, ErrJWTInvalid
	}
	return claims, nil
}

func (s *TokenService) isValidClaims(claims Claims) bool {
	if strings.TrimSpace(claims.UserID) == "" {
		return false
	}
	if claims.Subject != claims.UserID {
		return false
	}
	return strings.TrimSpace(claims.Issuer) == s.issuer
}
