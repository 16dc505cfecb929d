// Package auth checks operator credentials and issues the signed session tokens
// carried in the dashboard cookie.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const sessionTokenType = "session"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid or expired session")
)

// CredentialStore looks up the bcrypt hash for an operator.
type CredentialStore interface {
	Lookup(username string) (hash string, ok bool)
}

// StaticCredentials is the single configured operator account.
type StaticCredentials struct {
	Username     string
	PasswordHash string
}

func (s StaticCredentials) Lookup(username string) (string, bool) {
	if s.Username == "" || subtle.ConstantTimeCompare([]byte(username), []byte(s.Username)) != 1 {
		return "", false
	}
	return s.PasswordHash, true
}

// Session is what a verified token says about the caller.
type Session struct {
	ID        string
	Username  string
	ExpiresAt time.Time
}

type sessionClaims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

type Service struct {
	creds  CredentialStore
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewService(creds CredentialStore, secret string, ttl time.Duration) (*Service, error) {
	if secret == "" {
		return nil, errors.New("session secret not configured")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Service{creds: creds, secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL is how long an issued session stays valid.
func (s *Service) TTL() time.Duration { return s.ttl }

// Login checks the password and returns a signed session token.
func (s *Service) Login(username, password string) (string, error) {
	hash, ok := s.creds.Lookup(username)
	if !ok {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("comparing password hash: %w", err)
	}
	return s.issue(username)
}

func (s *Service) issue(username string) (string, error) {
	now := s.now()
	claims := sessionClaims{
		Type: sessionTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Verify parses a session token and checks signature, expiry and type.
func (s *Service) Verify(tokenString string) (*Session, error) {
	if tokenString == "" {
		return nil, ErrInvalidSession
	}
	claims := &sessionClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidSession
	}
	if claims.Type != sessionTokenType || claims.ExpiresAt == nil || !claims.ExpiresAt.After(s.now()) {
		return nil, ErrInvalidSession
	}
	return &Session{ID: claims.ID, Username: claims.Subject, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// HashPassword produces the bcrypt hash stored in ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}
