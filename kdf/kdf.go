// Package kdf derives the engine's 32-byte secret key from a passphrase.
package kdf

import (
	"fmt"

	"golang.org/x/crypto/argon2"
)

// KeyLen is the length, in bytes, of a derived key.
const KeyLen = 32

// SaltLen is the length, in bytes, of the fixed salt.
const SaltLen = 16

// Argon2id parameters, left at the library's own recommended defaults
// (golang.org/x/crypto/argon2's godoc "recommended parameters" for
// interactive logins: 1 pass, 64 MiB, 4 threads).
const (
	argonTime    = 1
	argonMemory  = 64 * 1024 // KiB
	argonThreads = 4
)

// Derive produces a 32-byte key from password using Argon2id with an
// all-zero 16-byte salt.
//
// The salt is intentionally fixed rather than random: the scheme is
// content-addressed by passphrase, so the same passphrase always yields the
// same key, letting a standalone decryptor reproduce the key from the
// passphrase alone with no sidecar salt to transport or lose.
func Derive(password string) ([KeyLen]byte, error) {
	var key [KeyLen]byte

	salt := make([]byte, SaltLen) // all-zero
	out := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, KeyLen)
	if len(out) != KeyLen {
		// golang.org/x/crypto/argon2.IDKey cannot fail for valid parameters
		// and always returns exactly keyLen bytes; this guards against a
		// future parameter change breaking that contract silently.
		return key, &Error{Err: fmt.Errorf("argon2id returned %d bytes, expected %d", len(out), KeyLen)}
	}
	copy(key[:], out)
	return key, nil
}

// Error wraps a KDF failure.
type Error struct {
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("kdf: %v", e.Err) }
func (e *Error) Unwrap() error { return e.Err }
