package tinkfpe

import (
	"testing"

	"github.com/google/tink/go/keyset"
)

func TestKeyManager_DoesSupport(t *testing.T) {
	digits := NewDigitsKeyManager()
	if !digits.DoesSupport(DigitsKeyTypeURL) {
		t.Errorf("digits KeyManager should support %s", DigitsKeyTypeURL)
	}
	if digits.DoesSupport(UTFKeyTypeURL) {
		t.Error("digits KeyManager should not support the UTF type URL")
	}

	utf := NewUTFKeyManager()
	if !utf.DoesSupport(UTFKeyTypeURL) {
		t.Errorf("UTF KeyManager should support %s", UTFKeyTypeURL)
	}
	if utf.DoesSupport(DigitsKeyTypeURL) {
		t.Error("UTF KeyManager should not support the digits type URL")
	}
}

func TestKeyManager_TypeURL(t *testing.T) {
	if got := NewDigitsKeyManager().TypeURL(); got != DigitsKeyTypeURL {
		t.Errorf("got %s want %s", got, DigitsKeyTypeURL)
	}
	if got := NewUTFKeyManager().TypeURL(); got != UTFKeyTypeURL {
		t.Errorf("got %s want %s", got, UTFKeyTypeURL)
	}
}

func TestKeyManager_Primitive_RejectsBadKeySize(t *testing.T) {
	km := NewUTFKeyManager()
	if _, err := km.Primitive(make([]byte, 10)); err == nil {
		t.Fatal("expected an error for a 10-byte key")
	}
	if _, err := km.Primitive(make([]byte, 32)); err != nil {
		t.Fatalf("Primitive with a 32-byte key: %v", err)
	}
}

func TestNew_RoundTrip_Digits(t *testing.T) {
	ensureKeyManagersRegistered()

	handle, err := keyset.NewHandle(DigitsKeyTemplateAES256())
	if err != nil {
		t.Fatalf("keyset.NewHandle: %v", err)
	}
	primitive, err := New(handle, []byte("tweak"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ciphertext, err := primitive.Encrypt("0123456789")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if len(ciphertext) != len("0123456789") {
		t.Fatalf("length not preserved: got %d want %d", len(ciphertext), len("0123456789"))
	}
	plaintext, err := primitive.Decrypt(ciphertext)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if plaintext != "0123456789" {
		t.Fatalf("round trip: got %q want %q", plaintext, "0123456789")
	}
}

func TestNew_RoundTrip_UTF(t *testing.T) {
	ensureKeyManagersRegistered()

	handle, err := keyset.NewHandle(UTFKeyTemplateAES256())
	if err != nil {
		t.Fatalf("keyset.NewHandle: %v", err)
	}
	primitive, err := New(handle, []byte("tweak"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	const plaintext = "hello, 世界"
	ciphertext, err := primitive.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	got, err := primitive.Decrypt(ciphertext)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if got != plaintext {
		t.Fatalf("round trip: got %q want %q", got, plaintext)
	}
}

func TestNewKeysetHandleFromKey(t *testing.T) {
	ensureKeyManagersRegistered()

	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	handle, err := NewKeysetHandleFromKey(UTFKeyTypeURL, key)
	if err != nil {
		t.Fatalf("NewKeysetHandleFromKey: %v", err)
	}
	primitive, err := New(handle, []byte("imported"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ciphertext, err := primitive.Encrypt("imported key material")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if plaintext, err := primitive.Decrypt(ciphertext); err != nil || plaintext != "imported key material" {
		t.Fatalf("round trip failed: plaintext=%q err=%v", plaintext, err)
	}
}
