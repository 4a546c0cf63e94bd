package tinkfpe

import (
	cryptorand "crypto/rand"
	"fmt"
	"testing"

	"github.com/google/tink/go/keyset"
)

// TestBijectivity exhaustively checks that distinct 4-digit plaintexts under
// one key and tweak never collide, and that each round-trips.
func TestBijectivity(t *testing.T) {
	ensureKeyManagersRegistered()

	handle, err := keyset.NewHandle(DigitsKeyTemplateAES256())
	if err != nil {
		t.Fatalf("keyset.NewHandle: %v", err)
	}
	primitive, err := New(handle, []byte("bijectivity-test"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	const domainSize = 10000 // all 4-digit strings
	seen := make(map[string]bool, domainSize)
	for i := 0; i < domainSize; i++ {
		plaintext := fmt.Sprintf("%04d", i)
		ciphertext, err := primitive.Encrypt(plaintext)
		if err != nil {
			t.Fatalf("Encrypt(%q): %v", plaintext, err)
		}
		if seen[ciphertext] {
			t.Fatalf("not bijective: %q maps to %q, already seen", plaintext, ciphertext)
		}
		seen[ciphertext] = true

		decrypted, err := primitive.Decrypt(ciphertext)
		if err != nil {
			t.Fatalf("Decrypt(%q): %v", ciphertext, err)
		}
		if decrypted != plaintext {
			t.Fatalf("not invertible: %q -> %q -> %q", plaintext, ciphertext, decrypted)
		}
	}
}

// TestKeySensitivity verifies that distinct keys under the same tweak never
// collide on the same plaintext.
func TestKeySensitivity(t *testing.T) {
	ensureKeyManagersRegistered()

	const plaintext = "1234567890"
	const tweak = "key-sensitivity-test"

	const numKeys = 10
	ciphertexts := make(map[string]int, numKeys)
	for i := 0; i < numKeys; i++ {
		key := make([]byte, 32)
		if _, err := cryptorand.Read(key); err != nil {
			t.Fatalf("generate key %d: %v", i, err)
		}
		handle, err := NewKeysetHandleFromKey(DigitsKeyTypeURL, key)
		if err != nil {
			t.Fatalf("NewKeysetHandleFromKey %d: %v", i, err)
		}
		primitive, err := New(handle, []byte(tweak))
		if err != nil {
			t.Fatalf("New %d: %v", i, err)
		}
		ciphertext, err := primitive.Encrypt(plaintext)
		if err != nil {
			t.Fatalf("Encrypt %d: %v", i, err)
		}
		if existing, ok := ciphertexts[ciphertext]; ok {
			t.Fatalf("key %d and key %d both produced %q", existing, i, ciphertext)
		}
		ciphertexts[ciphertext] = i
	}
}

// TestTweakSensitivity verifies that distinct tweaks under the same key
// never collide on the same plaintext.
func TestTweakSensitivity(t *testing.T) {
	ensureKeyManagersRegistered()

	handle, err := keyset.NewHandle(DigitsKeyTemplateAES256())
	if err != nil {
		t.Fatalf("keyset.NewHandle: %v", err)
	}

	tweaks := []string{"", "tweak1", "tweak2", "tweak-3", "very-long-tweak-value-for-testing", "a", "b"}
	ciphertexts := make(map[string]string, len(tweaks))
	for _, tweak := range tweaks {
		primitive, err := New(handle, []byte(tweak))
		if err != nil {
			t.Fatalf("New(%q): %v", tweak, err)
		}
		ciphertext, err := primitive.Encrypt("1234567890")
		if err != nil {
			t.Fatalf("Encrypt under tweak %q: %v", tweak, err)
		}
		if existing, ok := ciphertexts[ciphertext]; ok {
			t.Fatalf("tweak %q and %q both produced %q", existing, tweak, ciphertext)
		}
		ciphertexts[ciphertext] = tweak
	}
}

// TestDeterminism verifies repeated encryptions under the same key and
// tweak always produce the same ciphertext (FF1 has no internal
// randomness).
func TestDeterminism(t *testing.T) {
	ensureKeyManagersRegistered()

	handle, err := keyset.NewHandle(UTFKeyTemplateAES256())
	if err != nil {
		t.Fatalf("keyset.NewHandle: %v", err)
	}
	primitive, err := New(handle, []byte("determinism-test"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	first, err := primitive.Encrypt("repeat me")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	for i := 0; i < 20; i++ {
		again, err := primitive.Encrypt("repeat me")
		if err != nil {
			t.Fatalf("Encrypt (rep %d): %v", i, err)
		}
		if again != first {
			t.Fatalf("non-deterministic: rep %d got %q want %q", i, again, first)
		}
	}
}
