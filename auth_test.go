package main

import (
	"strings"
	"testing"
)

func TestRegisterLoginRoundtrip(t *testing.T) {
	db := testDB(t)
	auth := NewAuth(db)

	id, token, err := auth.Register("alice", "secret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if id == "" || token == "" {
		t.Fatal("register should yield an ID and a token")
	}

	loginID, loginToken, err := auth.Login("alice", "secret", "1.2.3.4")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if loginID != id || loginToken == "" {
		t.Error("login should resolve the same player")
	}

	if _, _, err := auth.Login("alice", "wrong", "1.2.3.4"); err == nil {
		t.Error("wrong password must be rejected")
	}
}

func TestRegisterValidation(t *testing.T) {
	db := testDB(t)
	auth := NewAuth(db)

	if _, _, err := auth.Register("a", "secret"); err == nil {
		t.Error("too-short username must be rejected")
	}
	if _, _, err := auth.Register("alice", "ab"); err == nil {
		t.Error("too-short password must be rejected")
	}

	if _, _, err := auth.Register("alice", "secret"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, err := auth.Register("alice", "secret2"); err == nil {
		t.Error("duplicate username must be rejected")
	}
}

func TestTokenValidation(t *testing.T) {
	db := testDB(t)
	auth := NewAuth(db)

	id, token, err := auth.Register("alice", "secret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	pid, username, err := auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if pid != id || username != "alice" {
		t.Errorf("claims mismatch: pid=%q username=%q", pid, username)
	}

	if _, _, err := auth.ValidateToken("garbage"); err == nil {
		t.Error("malformed token must be rejected")
	}
	if _, _, err := auth.ValidateToken(token + "x"); err == nil {
		t.Error("tampered token must be rejected")
	}
}

func TestSecretPersistsAcrossRestart(t *testing.T) {
	db := testDB(t)

	_, token, err := NewAuth(db).Register("alice", "secret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	// A fresh Auth over the same database must honor old tokens
	if _, _, err := NewAuth(db).ValidateToken(token); err != nil {
		t.Errorf("token should survive a restart: %v", err)
	}
}

func TestLoginRateLimit(t *testing.T) {
	db := testDB(t)
	auth := NewAuth(db)
	auth.Register("alice", "secret")

	for i := 0; i < maxLoginAttempts; i++ {
		auth.Login("alice", "wrong", "9.9.9.9")
	}
	_, _, err := auth.Login("alice", "secret", "9.9.9.9")
	if err == nil || !strings.Contains(err.Error(), "too many") {
		t.Errorf("expected rate limit error, got %v", err)
	}

	// Other IPs are unaffected
	if _, _, err := auth.Login("alice", "secret", "8.8.8.8"); err != nil {
		t.Errorf("rate limit must be per-IP: %v", err)
	}
}

func TestRegisterGuest(t *testing.T) {
	db := testDB(t)
	auth := NewAuth(db)

	id, username, token, err := auth.RegisterGuest()
	if err != nil {
		t.Fatalf("guest: %v", err)
	}
	if !strings.HasPrefix(username, "Guest_") {
		t.Errorf("unexpected guest name %q", username)
	}
	pid, _, err := auth.ValidateToken(token)
	if err != nil || pid != id {
		t.Error("guest token should validate")
	}
	player, _ := db.GetPlayerByID(id)
	if player == nil || !player.IsGuest {
		t.Error("guest account should be flagged")
	}
}
