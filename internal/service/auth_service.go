package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stemsi/exstem-proctor/internal/config"
	"golang.org/x/crypto/bcrypt"
)

// Common auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid admin session token")
	ErrTokenExpired       = fmt.Errorf("%w: expired", ErrInvalidToken)
)

// adminSubject is the only principal this service issues tokens for.
const adminSubject = "admin"

// Claims extends JWT standard claims for the admin session cookie.
type Claims struct {
	jwt.RegisteredClaims
}

// AuthService checks the admin password and issues signed session tokens.
type AuthService struct {
	passwordHash []byte
	secret       []byte
	ttl          time.Duration
	now          func() time.Time
}

// NewAuthService creates a new AuthService. A configured bcrypt hash is used
// as is; otherwise the plaintext password is hashed once here.
func NewAuthService(cfg *config.Config) (*AuthService, error) {
	hash := []byte(cfg.AdminPasswordHash)
	if len(hash) == 0 {
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), cfg.BcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
	} else if _, err := bcrypt.Cost(hash); err != nil {
		return nil, fmt.Errorf("ADMIN_PASSWORD_HASH is not a bcrypt hash: %w", err)
	}

	return &AuthService{
		passwordHash: hash,
		secret:       []byte(cfg.SessionSecret),
		ttl:          cfg.AdminSessionTTL,
		now:          time.Now,
	}, nil
}

// HashPassword hashes a password with the given bcrypt cost.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(hash), err
}

// TTL is how long an issued admin session stays valid.
func (s *AuthService) TTL() time.Duration {
	return s.ttl
}

// Login checks password and returns a signed session token.
func (s *AuthService) Login(password string) (string, error) {
	if password == "" {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.GenerateAdminToken()
}

// GenerateAdminToken creates a JWT for the admin session cookie.
func (s *AuthService) GenerateAdminToken() (string, error) {
	now := s.now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   adminSubject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a session token, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, ErrTokenExpired
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject != adminSubject {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
