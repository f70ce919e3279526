package token

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestIssueAndVerifyRoundtrip(t *testing.T) {
	issuer := NewIssuer("secret", time.Hour)
	accountID := uuid.New()

	signed, err := issuer.Issue(accountID, "ada@example.com", "BSA-4830175926")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	identity, err := issuer.Verify(signed)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if identity.AccountID != accountID {
		t.Fatalf("expected account id %s, got %s", accountID, identity.AccountID)
	}
	if identity.AccountNumber != "BSA-4830175926" {
		t.Fatalf("expected account number BSA-4830175926, got %s", identity.AccountNumber)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	signed, err := NewIssuer("secret-a", time.Hour).Issue(uuid.New(), "ada@example.com", "BSA-4830175926")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, err := NewIssuer("secret-b", time.Hour).Verify(signed); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	issuer := NewIssuer("secret", -time.Minute)
	signed, err := issuer.Issue(uuid.New(), "ada@example.com", "BSA-4830175926")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, err := issuer.Verify(signed); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	issuer := NewIssuer("secret", time.Hour)
	for _, input := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := issuer.Verify(input); err != ErrInvalidToken {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", input, err)
		}
	}
}
