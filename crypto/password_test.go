package crypto

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	digest, err := HashPassword("Testing123!")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if len(digest) == 0 || len(digest) > 255 {
		t.Fatalf("unexpected digest length: %d", len(digest))
	}
	if !VerifyPassword("Testing123!", digest) {
		t.Fatalf("expected matching password to verify")
	}
	if VerifyPassword("wrong-password", digest) {
		t.Fatalf("expected mismatching password to fail")
	}
}

func TestVerifyPasswordMalformedDigest(t *testing.T) {
	if VerifyPassword("anything", []byte("not-a-bcrypt-digest")) {
		t.Fatalf("expected malformed digest to verify as false")
	}
	if VerifyPassword("anything", nil) {
		t.Fatalf("expected empty digest to verify as false")
	}
}

func TestHashPasswordSalted(t *testing.T) {
	first, err := HashPassword("same-input")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	second, err := HashPassword("same-input")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if string(first) == string(second) {
		t.Fatalf("expected distinct salts to produce distinct digests")
	}
}
