package service

import "testing"

func TestFingerprint_Deterministic(t *testing.T) {
	data := []byte("the same bytes")
	if Fingerprint(data) != Fingerprint(data) {
		t.Error("expected identical bytes to produce identical fingerprints")
	}
}

func TestFingerprint_DistinctInputs(t *testing.T) {
	// A single flipped bit must change the fingerprint — the cache key is
	// byte identity, not visual similarity.
	a := Fingerprint([]byte{0x00, 0x01, 0x02})
	b := Fingerprint([]byte{0x00, 0x01, 0x03})
	if a == b {
		t.Error("expected different bytes to produce different fingerprints")
	}
}

func TestFingerprint_KnownVector(t *testing.T) {
	// SHA-256 of the empty input is a published constant.
	got := Fingerprint(nil)
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
	if len(Fingerprint([]byte("x"))) != 64 {
		t.Error("expected 64 hex characters")
	}
}

func TestNormalizeName(t *testing.T) {
	if got := NormalizeName("  Guernica \n"); got != "Guernica" {
		t.Errorf("expected 'Guernica', got %q", got)
	}
	// Casing is preserved; the store folds case at query time instead.
	if got := NormalizeName("GUERNICA"); got != "GUERNICA" {
		t.Errorf("expected casing preserved, got %q", got)
	}
	if got := NormalizeName("   "); got != "" {
		t.Errorf("expected empty string for whitespace, got %q", got)
	}
}
