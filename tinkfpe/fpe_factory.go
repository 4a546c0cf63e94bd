// Package tinkfpe provides Tink integration for Format-Preserving Encryption.
// This file contains the factory function for creating FPE primitives from
// Tink keyset handles.
package tinkfpe

import (
	"fmt"

	"github.com/google/tink/go/insecurecleartextkeyset"
	"github.com/google/tink/go/keyset"

	fpe "github.com/vdparikh/treefpe"
	"github.com/vdparikh/treefpe/alphabet"
)

// Primitive is an FF1 cipher bound to a Tink-managed key and the alphabet
// implied by that key's type URL, ready to encrypt or decrypt under one
// tweak.
//
// Example:
//
//	handle, err := keyset.NewHandle(tinkfpe.UTFKeyTemplateAES256())
//	if err != nil {
//	    return err
//	}
//	primitive, err := tinkfpe.New(handle, []byte("#name"))
//	if err != nil {
//	    return err
//	}
//	ciphertext, err := primitive.Encrypt("hello")
type Primitive struct {
	cipher   *fpe.Cipher
	alphabet alphabet.Alphabet
}

// New creates a Primitive from a Tink keyset handle's primary key. The
// keyset must have been created with DigitsKeyTemplateAES256 or
// UTFKeyTemplateAES256 (or imported via NewKeysetHandleFromKey), which is
// what determines whether the bound alphabet is Digits10 or UTF.
func New(handle *keyset.Handle, tweak []byte) (*Primitive, error) {
	if handle == nil {
		return nil, fmt.Errorf("tinkfpe: keyset handle cannot be nil")
	}

	primitives, err := handle.Primitives()
	if err != nil {
		return nil, fmt.Errorf("tinkfpe: get primitives: %w", err)
	}
	primary := primitives.Primary
	if primary == nil {
		return nil, fmt.Errorf("tinkfpe: no primary key in keyset")
	}

	// Extracted directly from the keyset material rather than through the
	// KeyManager.Primitive (key_manager.go), since the tweak needed here is supplied
	// per use and Tink's Primitives() API has no room to pass it through.
	ks := insecurecleartextkeyset.KeysetMaterial(handle)

	var keyBytes []byte
	var typeURL string
	for _, k := range ks.Key {
		if k.KeyId != primary.KeyID || k.KeyData == nil {
			continue
		}
		if k.KeyData.GetKeyMaterialType() != 2 { // SYMMETRIC
			return nil, fmt.Errorf("tinkfpe: key material type %v is not supported, only symmetric keys are", k.KeyData.GetKeyMaterialType())
		}
		keyBytes = k.KeyData.Value
		typeURL = k.KeyData.TypeUrl
		break
	}
	if keyBytes == nil {
		return nil, fmt.Errorf("tinkfpe: key with id %d not found in keyset", primary.KeyID)
	}

	var a alphabet.Alphabet
	switch typeURL {
	case DigitsKeyTypeURL:
		a = alphabet.Digits10
	case UTFKeyTypeURL:
		a = alphabet.UTF
	default:
		return nil, fmt.Errorf("tinkfpe: unrecognized key type %q", typeURL)
	}

	cipher, err := fpe.New(keyBytes, tweak)
	if err != nil {
		return nil, fmt.Errorf("tinkfpe: %w", err)
	}
	return &Primitive{cipher: cipher, alphabet: a}, nil
}

// Encrypt format-preserving-encrypts plaintext over the Primitive's bound
// alphabet.
func (p *Primitive) Encrypt(plaintext string) (string, error) {
	return p.cipher.Encrypt(p.alphabet, plaintext)
}

// Decrypt is the inverse of Encrypt.
func (p *Primitive) Decrypt(ciphertext string) (string, error) {
	return p.cipher.Decrypt(p.alphabet, ciphertext)
}

// KeyBytesForAlphabet scans every key in handle's keyset (not just the
// primary) for the one whose type URL is bound to a, and returns its raw
// symmetric key material. This lets package tree derive both the DIGITS10
// key (for numeral halves) and the UTF key (for string leaves) from a
// single Tink-managed keyset that carries one entry per alphabet.
func KeyBytesForAlphabet(handle *keyset.Handle, a alphabet.Alphabet) ([]byte, error) {
	if handle == nil {
		return nil, fmt.Errorf("tinkfpe: keyset handle cannot be nil")
	}

	var wantTypeURL string
	switch a {
	case alphabet.Digits10:
		wantTypeURL = DigitsKeyTypeURL
	case alphabet.UTF:
		wantTypeURL = UTFKeyTypeURL
	default:
		return nil, fmt.Errorf("tinkfpe: unsupported alphabet %v", a)
	}

	ks := insecurecleartextkeyset.KeysetMaterial(handle)
	for _, k := range ks.Key {
		if k.KeyData == nil || k.KeyData.TypeUrl != wantTypeURL {
			continue
		}
		if k.KeyData.GetKeyMaterialType() != 2 { // SYMMETRIC
			return nil, fmt.Errorf("tinkfpe: key material type %v is not supported, only symmetric keys are", k.KeyData.GetKeyMaterialType())
		}
		return k.KeyData.Value, nil
	}
	return nil, fmt.Errorf("tinkfpe: no key of type %q in keyset", wantTypeURL)
}
