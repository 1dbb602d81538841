package auth

import (
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"quizboard/internal/domain"
)

const issuer = "quizboard"

// Claims identify an authenticated operator.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Service checks operator credentials and issues bearer tokens.
type Service struct {
	email        string
	passwordHash []byte
	secret       []byte
	ttl          time.Duration
	now          func() time.Time
}

func NewService(email, passwordHash, secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &Service{
		email:        strings.ToLower(strings.TrimSpace(email)),
		passwordHash: []byte(passwordHash),
		secret:       []byte(secret),
		ttl:          ttl,
		now:          time.Now,
	}
}

// Enabled reports whether an operator account is configured.
func (s *Service) Enabled() bool {
	return s.email != "" && len(s.passwordHash) > 0 && len(s.secret) > 0
}

// Login verifies the credentials and returns a signed token.
func (s *Service) Login(email, password string) (string, time.Time, error) {
	if !s.Enabled() {
		return "", time.Time{}, domain.ErrUnauthorized
	}
	given := strings.ToLower(strings.TrimSpace(email))
	if subtle.ConstantTimeCompare([]byte(given), []byte(s.email)) != 1 {
		return "", time.Time{}, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return "", time.Time{}, domain.ErrUnauthorized
	}
	return s.Issue(s.email)
}

// Issue signs a token for email.
func (s *Service) Issue(email string) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.ttl)
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expires, nil
}

// Parse validates a token and returns its claims.
func (s *Service) Parse(raw string) (*Claims, error) {
	if len(s.secret) == 0 {
		return nil, domain.ErrUnauthorized
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, errors.Join(domain.ErrUnauthorized, err)
	}
	return claims, nil
}

// HashPassword returns a bcrypt hash suitable for the admin config.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
