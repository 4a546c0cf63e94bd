// Package fpe implements Format-Preserving Encryption (FPE) using the FF1
// algorithm over arbitrary alphabets.
//
// It is the primitive the tree walker in package tree builds on: given a
// key, a tweak (a non-secret per-position value), and an Alphabet (DIGITS10
// or UTF), Cipher.Encrypt/Decrypt permute a plaintext string into a
// ciphertext string over the same alphabet and of the same length.
//
//	cipher, err := fpe.New(key, []byte("#name"))
//	if err != nil {
//		log.Fatal(err)
//	}
//	ciphertext, err := cipher.Encrypt(alphabet.UTF, "hello")
//	if err != nil {
//		log.Fatal(err)
//	}
package fpe

import (
	"fmt"

	"github.com/vdparikh/treefpe/alphabet"
	"github.com/vdparikh/treefpe/subtle"
)

// Cipher is an FF1 instance bound to a key and a tweak. It is deterministic:
// the same (key, tweak, alphabet, plaintext) always yields the same
// ciphertext.
type Cipher struct {
	ff1 *subtle.FF1
}

// New creates a Cipher for the given key and tweak. The key must be at
// least 16 bytes.
func New(key, tweak []byte) (*Cipher, error) {
	ff1, err := subtle.NewFF1(key, tweak)
	if err != nil {
		return nil, fmt.Errorf("fpe: %w", err)
	}
	return &Cipher{ff1: ff1}, nil
}

// Encrypt format-preserving-encrypts plaintext over the given alphabet.
// len(ciphertext) in alphabet symbols equals len(plaintext) in alphabet
// symbols.
func (c *Cipher) Encrypt(a alphabet.Alphabet, plaintext string) (string, error) {
	symbols, err := a.Encode(plaintext)
	if err != nil {
		return "", fmt.Errorf("fpe: encode plaintext: %w", err)
	}
	out, err := c.ff1.Encrypt(symbols, a.Radix())
	if err != nil {
		return "", fmt.Errorf("fpe: encrypt: %w", err)
	}
	ciphertext, err := a.Decode(out)
	if err != nil {
		return "", fmt.Errorf("fpe: decode ciphertext: %w", err)
	}
	return ciphertext, nil
}

// Decrypt is the inverse of Encrypt.
func (c *Cipher) Decrypt(a alphabet.Alphabet, ciphertext string) (string, error) {
	symbols, err := a.Encode(ciphertext)
	if err != nil {
		return "", fmt.Errorf("fpe: encode ciphertext: %w", err)
	}
	out, err := c.ff1.Decrypt(symbols, a.Radix())
	if err != nil {
		return "", fmt.Errorf("fpe: decrypt: %w", err)
	}
	plaintext, err := a.Decode(out)
	if err != nil {
		return "", fmt.Errorf("fpe: decode plaintext: %w", err)
	}
	return plaintext, nil
}
