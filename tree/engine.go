package tree

import (
	"fmt"

	"github.com/google/tink/go/keyset"

	"github.com/vdparikh/treefpe/alphabet"
	"github.com/vdparikh/treefpe/kdf"
	"github.com/vdparikh/treefpe/tinkfpe"
)

// EngineConfig holds the parameters an Engine was built with.
type EngineConfig struct {
	// Key is the 32-byte secret all FPE permutations in the document are
	// derived from, unless KeysetHandle is set.
	Key [32]byte
	// KeysetHandle, when set, supplies the DIGITS10 and UTF key material
	// from a Tink-managed keyset (e.g. KMS-wrapped) instead of Key. The
	// keyset must carry one entry per alphabet's type URL (see
	// tinkfpe.DigitsKeyTypeURL / tinkfpe.UTFKeyTypeURL).
	KeysetHandle *keyset.Handle
	// IncludeKeys, when true, additionally encrypts object keys (as String
	// leaves, under the parent node's tweak) rather than leaving them as
	// plaintext structural labels.
	IncludeKeys bool
	// MaxDepth, when nonzero, collapses any object deeper than this many
	// levels from the root into a single encrypted String leaf rather than
	// recursing into it. Zero means unbounded.
	MaxDepth uint32
}

// resolveKeys returns the raw key bytes to use for the DIGITS10 alphabet
// (numeral halves) and the UTF alphabet (string leaves, object keys, and the
// depth-collapse escape), taking KeysetHandle over Key when set.
func (cfg EngineConfig) resolveKeys() (digitsKey, utfKey []byte, err error) {
	if cfg.KeysetHandle == nil {
		return cfg.Key[:], cfg.Key[:], nil
	}
	digitsKey, err = tinkfpe.KeyBytesForAlphabet(cfg.KeysetHandle, alphabet.Digits10)
	if err != nil {
		return nil, nil, fmt.Errorf("tree: resolve DIGITS10 key from keyset: %w", err)
	}
	utfKey, err = tinkfpe.KeyBytesForAlphabet(cfg.KeysetHandle, alphabet.UTF)
	if err != nil {
		return nil, nil, fmt.Errorf("tree: resolve UTF key from keyset: %w", err)
	}
	return digitsKey, utfKey, nil
}

// Engine is the façade over the tree walker: a builder that accumulates
// configuration, then runs it over a decoded document.
type Engine struct {
	cfg EngineConfig
}

// New returns an Engine with no key set. Until WithKey, WithPassword or
// WithKeysetHandle is called, Encrypt and Decrypt use an all-zero key.
func New() *Engine {
	return &Engine{}
}

// WithKey sets the engine's secret key directly.
func (e *Engine) WithKey(key [32]byte) *Engine {
	e.cfg.Key = key
	return e
}

// WithPassword derives the engine's secret key from a passphrase via
// package kdf.
func (e *Engine) WithPassword(password string) (*Engine, error) {
	key, err := kdf.Derive(password)
	if err != nil {
		return nil, err
	}
	e.cfg.Key = key
	return e, nil
}

// WithIncludeKeys toggles whether object keys are themselves encrypted.
func (e *Engine) WithIncludeKeys(include bool) *Engine {
	e.cfg.IncludeKeys = include
	return e
}

// WithMaxDepth sets the depth at which objects are collapsed into a single
// encrypted string rather than recursed into.
func (e *Engine) WithMaxDepth(depth uint32) *Engine {
	e.cfg.MaxDepth = depth
	return e
}

// WithKeysetHandle sets a Tink-managed keyset as the engine's key source,
// taking precedence over WithKey/WithPassword. The keyset must carry one
// entry typed to tinkfpe.DigitsKeyTypeURL and one to tinkfpe.UTFKeyTypeURL
// (see tinkfpe.NewKeysetHandleFromKeys for constructing one from raw keys).
func (e *Engine) WithKeysetHandle(handle *keyset.Handle) *Engine {
	e.cfg.KeysetHandle = handle
	return e
}

// Encrypt walks doc in place, replacing every leaf with its
// format-preserving-encrypted counterpart.
func (e *Engine) Encrypt(doc *any) error {
	return traverse(doc, e.cfg, methodEncrypt)
}

// Decrypt walks doc in place, replacing every leaf with its decrypted
// plaintext. It is the inverse of Encrypt given the same EngineConfig.
func (e *Engine) Decrypt(doc *any) error {
	return traverse(doc, e.cfg, methodDecrypt)
}
