// Package tinkfpe provides Tink integration for Format-Preserving Encryption.
// This file contains the KeyManager implementations that register the
// engine's two FF1 key types — one per alphabet — with Tink's registry.
package tinkfpe

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/google/tink/go/core/registry"
	"github.com/google/tink/go/insecurecleartextkeyset"
	"github.com/google/tink/go/keyset"
	"github.com/google/tink/go/proto/tink_go_proto"
	"google.golang.org/protobuf/proto"

	"github.com/vdparikh/treefpe/alphabet"
)

const (
	// DigitsKeyTypeURL is the type URL for FF1 keys bound to the DIGITS10
	// alphabet (numeric halves).
	DigitsKeyTypeURL = "type.googleapis.com/treefpe.FpeFf1DigitsKey"
	// UTFKeyTypeURL is the type URL for FF1 keys bound to the full Unicode
	// scalar alphabet (string leaves, and the depth-collapse escape).
	UTFKeyTypeURL = "type.googleapis.com/treefpe.FpeFf1UTFKey"
)

// KeyManager implements registry.KeyManager for one of the engine's two FF1
// key types. A distinct KeyManager (and type URL) exists per alphabet so
// that a keyset handle's primary key alone determines which alphabet a
// Primitive built from it is bound to (see fpe_factory.go's New).
type KeyManager struct {
	typeURL  string
	alphabet alphabet.Alphabet
}

// NewDigitsKeyManager returns the KeyManager for DIGITS10-bound keys.
func NewDigitsKeyManager() *KeyManager {
	return &KeyManager{typeURL: DigitsKeyTypeURL, alphabet: alphabet.Digits10}
}

// NewUTFKeyManager returns the KeyManager for UTF-bound keys.
func NewUTFKeyManager() *KeyManager {
	return &KeyManager{typeURL: UTFKeyTypeURL, alphabet: alphabet.UTF}
}

// Primitive returns the raw key bytes and bound alphabet for serializedKey.
// The tweak an FF1 instance needs is supplied per use rather than fixed at
// key-registration time, so fpe_factory.go's New extracts key material
// directly from the keyset instead of routing through Primitives().
func (km *KeyManager) Primitive(serializedKey []byte) (interface{}, error) {
	if err := validateKeySize(len(serializedKey)); err != nil {
		return nil, err
	}
	return &boundKeyMaterial{key: serializedKey, alphabet: km.alphabet}, nil
}

// DoesSupport returns true if this KeyManager supports the given key type URL.
func (km *KeyManager) DoesSupport(typeURL string) bool {
	return typeURL == km.typeURL
}

// TypeURL returns the type URL of the keys managed by this KeyManager.
func (km *KeyManager) TypeURL() string {
	return km.typeURL
}

// NewKey generates a new key according to the given key template. treefpe
// only ever constructs keys through NewKeyData (via keyset.NewHandle), so
// this intentionally errors rather than duplicate that logic against a
// different return type.
func (km *KeyManager) NewKey(serializedKeyTemplate []byte) (proto.Message, error) {
	return nil, fmt.Errorf("tinkfpe: NewKey not implemented, use NewKeyData")
}

// NewKeyData creates a new KeyData from the given key template. The
// template's Value is a single byte giving the desired key size (16, 24, or
// 32), matching DigitsKeyTemplateAES256/UTFKeyTemplateAES256.
func (km *KeyManager) NewKeyData(serializedKeyTemplate []byte) (*tink_go_proto.KeyData, error) {
	keySize := 32
	if len(serializedKeyTemplate) > 0 {
		keySize = int(serializedKeyTemplate[0])
	}
	if err := validateKeySize(keySize); err != nil {
		return nil, err
	}

	key := make([]byte, keySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("tinkfpe: generate key: %w", err)
	}

	return &tink_go_proto.KeyData{
		TypeUrl:         km.typeURL,
		Value:           key,
		KeyMaterialType: 2, // SYMMETRIC
	}, nil
}

// Verify that KeyManager implements registry.KeyManager.
var _ registry.KeyManager = (*KeyManager)(nil)

// boundKeyMaterial carries raw key bytes alongside the alphabet its type URL
// implies.
type boundKeyMaterial struct {
	key      []byte
	alphabet alphabet.Alphabet
}

func keyTemplate(typeURL string, keySize byte) *tink_go_proto.KeyTemplate {
	return &tink_go_proto.KeyTemplate{
		TypeUrl:          typeURL,
		Value:            []byte{keySize},
		OutputPrefixType: tink_go_proto.OutputPrefixType_RAW,
	}
}

// DigitsKeyTemplateAES256 creates a key template for a DIGITS10-bound FF1
// key using AES-256 (32 bytes).
func DigitsKeyTemplateAES256() *tink_go_proto.KeyTemplate {
	return keyTemplate(DigitsKeyTypeURL, 32)
}

// UTFKeyTemplateAES256 creates a key template for a UTF-bound FF1 key using
// AES-256 (32 bytes).
func UTFKeyTemplateAES256() *tink_go_proto.KeyTemplate {
	return keyTemplate(UTFKeyTypeURL, 32)
}

// NewKeysetHandleFromKey creates a keyset handle from a raw key — e.g. the
// engine's own kdf.Derive output, or a key from an HSM — bound to typeURL
// (DigitsKeyTypeURL or UTFKeyTypeURL).
//
// The key must be 16, 24, or 32 bytes. This creates an unencrypted keyset;
// in production, encrypt it with keyset.Write() and an AEAD before storing.
func NewKeysetHandleFromKey(typeURL string, key []byte) (*keyset.Handle, error) {
	if err := validateKeySize(len(key)); err != nil {
		return nil, err
	}

	keyIDBytes := make([]byte, 4)
	if _, err := rand.Read(keyIDBytes); err != nil {
		return nil, fmt.Errorf("tinkfpe: generate key id: %w", err)
	}
	keyID := binary.BigEndian.Uint32(keyIDBytes)

	keyData := &tink_go_proto.KeyData{
		TypeUrl:         typeURL,
		Value:           key,
		KeyMaterialType: 2, // SYMMETRIC
	}
	keysetKey := &tink_go_proto.Keyset_Key{
		KeyData:          keyData,
		KeyId:            keyID,
		Status:           tink_go_proto.KeyStatusType_ENABLED,
		OutputPrefixType: tink_go_proto.OutputPrefixType_RAW,
	}
	ks := &tink_go_proto.Keyset{
		PrimaryKeyId: keyID,
		Key:          []*tink_go_proto.Keyset_Key{keysetKey},
	}

	buf := &keyset.MemReaderWriter{Keyset: ks}
	return insecurecleartextkeyset.Read(buf)
}

// NewKeysetHandleFromKeys builds a single keyset handle carrying one
// DIGITS10-bound entry and one UTF-bound entry, with the DIGITS10 entry as
// primary (both entries are RAW/ENABLED) — the shape KeyBytesForAlphabet and
// tree.Engine.WithKeysetHandle expect. Both keys must each be 16, 24, or 32
// bytes, independently.
func NewKeysetHandleFromKeys(digitsKey, utfKey []byte) (*keyset.Handle, error) {
	if err := validateKeySize(len(digitsKey)); err != nil {
		return nil, err
	}
	if err := validateKeySize(len(utfKey)); err != nil {
		return nil, err
	}

	digitsID, err := randomKeyID()
	if err != nil {
		return nil, err
	}
	utfID, err := randomKeyID()
	if err != nil {
		return nil, err
	}

	ks := &tink_go_proto.Keyset{
		PrimaryKeyId: digitsID,
		Key: []*tink_go_proto.Keyset_Key{
			{
				KeyData:          &tink_go_proto.KeyData{TypeUrl: DigitsKeyTypeURL, Value: digitsKey, KeyMaterialType: 2},
				KeyId:            digitsID,
				Status:           tink_go_proto.KeyStatusType_ENABLED,
				OutputPrefixType: tink_go_proto.OutputPrefixType_RAW,
			},
			{
				KeyData:          &tink_go_proto.KeyData{TypeUrl: UTFKeyTypeURL, Value: utfKey, KeyMaterialType: 2},
				KeyId:            utfID,
				Status:           tink_go_proto.KeyStatusType_ENABLED,
				OutputPrefixType: tink_go_proto.OutputPrefixType_RAW,
			},
		},
	}

	buf := &keyset.MemReaderWriter{Keyset: ks}
	return insecurecleartextkeyset.Read(buf)
}

func randomKeyID() (uint32, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return 0, fmt.Errorf("tinkfpe: generate key id: %w", err)
	}
	return binary.BigEndian.Uint32(b), nil
}

func validateKeySize(n int) error {
	if n != 16 && n != 24 && n != 32 {
		return fmt.Errorf("tinkfpe: invalid key size %d bytes (must be 16, 24, or 32)", n)
	}
	return nil
}
