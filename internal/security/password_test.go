package security

import (
	"strings"
	"testing"
)

func TestHashPasswordNeverStoresPlaintext(t *testing.T) {
	hash, errHash := HashPassword("plaintext-secret")
	if errHash != nil {
		t.Fatalf("hash password: %v", errHash)
	}
	if hash == "plaintext-secret" || strings.Contains(hash, "plaintext-secret") {
		t.Fatalf("hash contains the plaintext")
	}
	if !CheckPassword(hash, "plaintext-secret") {
		t.Fatalf("hash does not verify the original password")
	}
	if CheckPassword(hash, "other-secret") {
		t.Fatalf("hash verifies a different password")
	}
}

func TestBurnPasswordCheckNeverMatches(t *testing.T) {
	// The decoy comparison only burns time; the result is discarded, so the
	// call just has to complete for any input.
	BurnPasswordCheck("")
	BurnPasswordCheck("anything at all")
}

func TestGeneratedTokensHavePrefixes(t *testing.T) {
	id, errID := GenerateInstanceID()
	if errID != nil {
		t.Fatalf("generate instance id: %v", errID)
	}
	if !strings.HasPrefix(id, "si_") || len(id) != len("si_")+32 {
		t.Fatalf("unexpected instance id shape %q", id)
	}

	token, errToken := GenerateAccessToken()
	if errToken != nil {
		t.Fatalf("generate access token: %v", errToken)
	}
	if !strings.HasPrefix(token, "uit_") || len(token) != len("uit_")+48 {
		t.Fatalf("unexpected access token shape %q", token)
	}

	sessionID, errSession := GenerateSessionID()
	if errSession != nil {
		t.Fatalf("generate session id: %v", errSession)
	}
	if len(sessionID) != 64 {
		t.Fatalf("unexpected session id length %d", len(sessionID))
	}

	other, _ := GenerateAccessToken()
	if other == token {
		t.Fatalf("consecutive tokens collide")
	}
}
