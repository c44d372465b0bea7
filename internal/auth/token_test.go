package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestMintAndVerify(t *testing.T) {
	ti := NewTokenIssuer("test-secret")

	token, err := ti.Mint("yewon", "#EC4899")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	claims, err := ti.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Username != "yewon" {
		t.Errorf("username = %q, want %q", claims.Username, "yewon")
	}
	if claims.Color != "#EC4899" {
		t.Errorf("color = %q, want %q", claims.Color, "#EC4899")
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	token, err := NewTokenIssuer("secret-a").Mint("sion", "#10B981")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	if _, err := NewTokenIssuer("secret-b").Verify(token); err == nil {
		t.Error("expected verification failure with wrong secret")
	}
}

func TestVerifyGarbage(t *testing.T) {
	ti := NewTokenIssuer("test-secret")

	if _, err := ti.Verify("not-a-token"); err == nil {
		t.Error("expected verification failure for garbage input")
	}
}

func TestVerifyExpired(t *testing.T) {
	ti := NewTokenIssuer("test-secret")

	// Hand-build a token that expired an hour ago.
	claims := Claims{
		Username: "dasol",
		Color:    "#8B5CF6",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "dasol",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := ti.Verify(signed); err == nil {
		t.Error("expected verification failure for expired token")
	}
}
