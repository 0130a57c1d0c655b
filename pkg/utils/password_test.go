package utils

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	h := HashPassword("secret1")
	if h == "" || h == "secret1" {
		t.Fatalf("hash looks wrong: %q", h)
	}
	if !CheckPassword("secret1", h) {
		t.Fatal("correct password rejected")
	}
	if CheckPassword("secret2", h) {
		t.Fatal("wrong password accepted")
	}
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	if len(a) != 32 || len(b) != 32 {
		t.Fatalf("unexpected id length: %d/%d", len(a), len(b))
	}
	if a == b {
		t.Fatal("ids must be unique")
	}
}
