package fpe_test

import (
	"strings"
	"testing"

	fpe "github.com/vdparikh/treefpe"
	"github.com/vdparikh/treefpe/alphabet"
)

func TestCipher_DigitsRoundTrip(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	c, err := fpe.New(key, []byte("#x"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	plaintext := "00000000314159265358"
	ciphertext, err := c.Encrypt(alphabet.Digits10, plaintext)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if len(ciphertext) != len(plaintext) {
		t.Fatalf("length not preserved: got %d want %d", len(ciphertext), len(plaintext))
	}
	if ciphertext == plaintext {
		t.Fatalf("ciphertext equals plaintext")
	}

	decrypted, err := c.Decrypt(alphabet.Digits10, ciphertext)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if decrypted != plaintext {
		t.Fatalf("round trip: got %q want %q", decrypted, plaintext)
	}
}

func TestCipher_UTFRoundTrip(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	c, err := fpe.New(key, []byte("#greeting"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	plaintext := "héllo wörld 世界"
	ciphertext, err := c.Encrypt(alphabet.UTF, plaintext)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if len([]rune(ciphertext)) != len([]rune(plaintext)) {
		t.Fatalf("code point length not preserved: got %d want %d", len([]rune(ciphertext)), len([]rune(plaintext)))
	}

	decrypted, err := c.Decrypt(alphabet.UTF, ciphertext)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if decrypted != plaintext {
		t.Fatalf("round trip: got %q want %q", decrypted, plaintext)
	}
}

func TestCipher_TweakSeparation(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	c1, _ := fpe.New(key, []byte("#a"))
	c2, _ := fpe.New(key, []byte("#b"))

	e1, err := c1.Encrypt(alphabet.UTF, "repeated plaintext value")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	e2, err := c2.Encrypt(alphabet.UTF, "repeated plaintext value")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if e1 == e2 {
		t.Fatalf("distinct tweaks produced identical ciphertexts")
	}
}

func TestCipher_KeySensitivity(t *testing.T) {
	keyA := []byte("0123456789abcdef0123456789abcdef")
	keyB := []byte("fedcba9876543210fedcba9876543210")

	cA, _ := fpe.New(keyA, []byte("#x"))
	cB, _ := fpe.New(keyB, []byte("#x"))

	plaintext := "sensitive-value"
	ciphertext, err := cA.Encrypt(alphabet.UTF, plaintext)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	decrypted, err := cB.Decrypt(alphabet.UTF, ciphertext)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if decrypted == plaintext {
		t.Fatalf("decrypting with the wrong key reproduced the plaintext")
	}
}

func TestCipher_SingleCharacterString(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	c, _ := fpe.New(key, []byte("#s"))

	ciphertext, err := c.Encrypt(alphabet.UTF, "x")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if ciphertext == "x" {
		t.Fatalf("single-character string was not encrypted")
	}
	decrypted, err := c.Decrypt(alphabet.UTF, ciphertext)
	if err != nil || decrypted != "x" {
		t.Fatalf("round trip failed: got %q err %v", decrypted, err)
	}
}

func TestCipher_RejectsNonDigitUnderDigits10(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	c, _ := fpe.New(key, []byte("#x"))

	if _, err := c.Encrypt(alphabet.Digits10, "12a4"); err == nil {
		t.Fatalf("expected an error for a non-digit under DIGITS10")
	} else if !strings.Contains(err.Error(), "alphabet") {
		t.Fatalf("unexpected error: %v", err)
	}
}
