package security

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/blake2b"
)

const tokenIssuer = "quizmaster"

// ErrInvalidToken is returned for identity tokens that fail verification
var ErrInvalidToken = errors.New("invalid identity token")

// TokenSigner issues and verifies HS256 identity tokens whose subject is the
// user token
type TokenSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenSigner creates a signer. With an empty secret a random key is
// generated, so tokens do not survive a restart.
func NewTokenSigner(secret string, ttl time.Duration) (*TokenSigner, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("failed to generate token secret: %w", err)
		}
		log.Println("Warning: TOKEN_SECRET not set, identity cookies will be invalidated on restart")
	}
	return &TokenSigner{secret: key, ttl: ttl, now: time.Now}, nil
}

// TTL returns how long issued tokens stay valid
func (s *TokenSigner) TTL() time.Duration {
	return s.ttl
}

// DeriveKey returns a 32-byte key for purpose bound to the signing secret
func (s *TokenSigner) DeriveKey(purpose string) []byte {
	sum := blake2b.Sum256(append([]byte(purpose+":"), s.secret...))
	return sum[:]
}

// Issue signs a token for userID and returns it with its expiry
func (s *TokenSigner) Issue(userID string) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, errors.New("user ID is required")
	}

	now := s.now()
	expires := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expires, nil
}

// Parse verifies a token and returns the user token it carries
func (s *TokenSigner) Parse(tokenString string) (string, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	claims := &jwt.RegisteredClaims{}
	parsed, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}
