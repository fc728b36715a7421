package security

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenIssueAndParse(t *testing.T) {
	signer, err := NewTokenSigner("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenSigner() error = %v", err)
	}

	token, expires, err := signer.Issue("abc12345")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if time.Until(expires) <= 59*time.Minute {
		t.Errorf("expires = %v, want about an hour from now", expires)
	}

	userID, err := signer.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if userID != "abc12345" {
		t.Errorf("Parse() = %q, want abc12345", userID)
	}
}

func TestTokenRejections(t *testing.T) {
	signer, _ := NewTokenSigner("test-secret", time.Hour)
	other, _ := NewTokenSigner("other-secret", time.Hour)

	foreign, _, _ := other.Issue("abc12345")

	expired, _ := NewTokenSigner("test-secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, _, _ := expired.Issue("abc12345")

	noneToken, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   "abc12345",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
		{"wrong secret", foreign},
		{"expired", stale},
		{"unsigned", noneToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := signer.Parse(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Parse() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestIssueRequiresUser(t *testing.T) {
	signer, _ := NewTokenSigner("", time.Hour)
	if _, _, err := signer.Issue(""); err == nil {
		t.Error("Issue(\"\") expected error")
	}
}

func TestDeriveKey(t *testing.T) {
	a, _ := NewTokenSigner("one", time.Hour)
	b, _ := NewTokenSigner("two", time.Hour)

	if len(a.DeriveKey("csrf")) != 32 {
		t.Fatalf("DeriveKey() length = %d, want 32", len(a.DeriveKey("csrf")))
	}
	if string(a.DeriveKey("csrf")) == string(b.DeriveKey("csrf")) {
		t.Error("different secrets derived the same key")
	}
	if string(a.DeriveKey("csrf")) == string(a.DeriveKey("other")) {
		t.Error("different purposes derived the same key")
	}
}
