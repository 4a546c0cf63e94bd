// Package subtle provides low-level cryptographic primitives for Format-Preserving Encryption.
// This package contains the core NIST FF1 algorithm implementation that works with raw keys.
// It should not be used directly by most users; instead use the high-level APIs in the parent package.
package subtle

import (
	"crypto/aes"
	"fmt"
	"math/big"
)

// FF1 implements an FF1-style Feistel permutation modelled on NIST SP 800-38G,
// using raw keys. Its round function is not byte-compatible with the reference
// FF1, so its ciphertexts do not match the NIST sample vectors.
// This is the low-level implementation that performs the actual cryptographic operations.
//
// Symbols are carried as uint32 rather than uint16 because the UTF alphabet
// (every Unicode scalar value) has over a million symbols, which does not
// fit a uint16 index.
type FF1 struct {
	key   []byte
	tweak []byte
}

// NewFF1 creates a new FF1 instance with the given raw key and tweak.
// The key should be at least 16 bytes (AES-128) or 32 bytes (AES-256).
// The tweak is a public, non-secret value that ensures different ciphertexts
// for the same plaintext when the tweak changes.
func NewFF1(key, tweak []byte) (*FF1, error) {
	if len(key) < 16 {
		return nil, fmt.Errorf("key must be at least 16 bytes, got %d", len(key))
	}
	return &FF1{
		key:   key,
		tweak: tweak,
	}, nil
}

// Encrypt performs FF1 format-preserving encryption on numeric data.
// This is the core encryption function that works with numeric arrays (base-radix representation).
//
// Thread safety: this method is safe for concurrent use by multiple goroutines,
// as it does not modify the FF1 instance state.
func (f *FF1) Encrypt(plaintext []uint32, radix int) ([]uint32, error) {
	n := len(plaintext)
	if n == 0 {
		return plaintext, nil
	}

	const maxInputLength = 100000 // 100k symbols
	if n > maxInputLength {
		return nil, fmt.Errorf("input too long: %d symbols (maximum %d)", n, maxInputLength)
	}

	aesKey := f.getAESKey()

	// A single symbol cannot be split into two non-empty Feistel halves;
	// see singleSymbolOffset for the degenerate case this would otherwise hit.
	if n == 1 {
		offset, err := f.singleSymbolOffset(radix, aesKey)
		if err != nil {
			return nil, err
		}
		return []uint32{(plaintext[0] + offset) % uint32(radix)}, nil
	}

	domainSize := new(big.Int).Exp(big.NewInt(int64(radix)), big.NewInt(int64(n)), nil)
	if domainSize.Cmp(big.NewInt(1000)) < 0 {
		return nil, fmt.Errorf("domain size too small: radix=%d, length=%d, domain_size=%s (minimum 1000 required for security)", radix, n, domainSize.String())
	}

	// Step 1: split into left and right halves, u = floor(n/2), v = ceil(n/2).
	u := n / 2
	v := n - u
	A := make([]uint32, u)
	B := make([]uint32, v)
	copy(A, plaintext[:u])
	copy(B, plaintext[u:])

	const rounds = 10
	for i := 0; i < rounds; i++ {
		C := f.feistelFunction(B, i, len(A), len(B), n, radix, aesKey)
		if len(C) != len(A) {
			newC := make([]uint32, len(A))
			copy(newC, C)
			C = newC
		}

		newB := make([]uint32, len(A))
		for j := 0; j < len(A); j++ {
			val := uint64(A[j]) + uint64(C[j])
			newB[j] = uint32(val % uint64(radix))
		}

		A, B = B, newB
	}

	result := make([]uint32, n)
	copy(result, A)
	copy(result[len(A):], B)
	return result, nil
}

// Decrypt performs FF1 format-preserving decryption on numeric data.
// This is the core decryption function that works with numeric arrays (base-radix representation).
//
// Thread safety: this method is safe for concurrent use by multiple goroutines,
// as it does not modify the FF1 instance state.
func (f *FF1) Decrypt(ciphertext []uint32, radix int) ([]uint32, error) {
	n := len(ciphertext)
	if n == 0 {
		return ciphertext, nil
	}

	const maxInputLength = 100000
	if n > maxInputLength {
		return nil, fmt.Errorf("input too long: %d symbols (maximum %d)", n, maxInputLength)
	}

	aesKey := f.getAESKey()

	if n == 1 {
		offset, err := f.singleSymbolOffset(radix, aesKey)
		if err != nil {
			return nil, err
		}
		val := uint32(radix) + ciphertext[0] - offset%uint32(radix)
		return []uint32{val % uint32(radix)}, nil
	}

	domainSize := new(big.Int).Exp(big.NewInt(int64(radix)), big.NewInt(int64(n)), nil)
	if domainSize.Cmp(big.NewInt(1000)) < 0 {
		return nil, fmt.Errorf("domain size too small: radix=%d, length=%d, domain_size=%s (minimum 1000 required for security)", radix, n, domainSize.String())
	}

	u := n / 2
	v := n - u
	A := make([]uint32, u)
	B := make([]uint32, v)
	copy(A, ciphertext[:u])
	copy(B, ciphertext[u:])

	const rounds = 10
	for i := rounds - 1; i >= 0; i-- {
		C := f.feistelFunction(A, i, len(B), len(A), n, radix, aesKey)
		if len(C) != len(B) {
			newC := make([]uint32, len(B))
			copy(newC, C)
			C = newC
		}

		oldA := make([]uint32, len(B))
		for j := 0; j < len(B); j++ {
			cVal := uint64(C[j])
			val := uint64(radix) + uint64(B[j]) - cVal%uint64(radix)
			oldA[j] = uint32(val % uint64(radix))
		}

		oldB := make([]uint32, len(A))
		copy(oldB, A)

		A = oldA
		B = oldB
	}

	result := make([]uint32, n)
	copy(result, A)
	copy(result[len(A):], B)
	return result, nil
}

// feistelFunction implements the round function F, modelled on (not identical
// to) the one in NIST SP 800-38G.
// This is the core PRF used in each Feistel round.
func (f *FF1) feistelFunction(B []uint32, roundNum, u, v, n, radix int, aesKey []byte) []uint32 {
	if len(B) == 0 {
		return make([]uint32, u)
	}

	Q := f.buildQArray(roundNum, B, radix)

	block, err := aes.NewCipher(aesKey)
	if err != nil {
		return make([]uint32, u)
	}

	blockSize := aes.BlockSize
	qLen := len(Q)
	paddedLen := ((qLen + blockSize - 1) / blockSize) * blockSize
	qPadded := make([]byte, paddedLen)
	copy(qPadded, Q)

	R := make([]byte, paddedLen)
	for i := 0; i < paddedLen; i += blockSize {
		block.Encrypt(R[i:], qPadded[i:])
	}

	d := (u*bitLength(radix) + 7) / 8
	if d < 1 {
		d = 1
	}
	if d > len(R) {
		d = len(R)
	}
	if d < 8 && len(R) >= 8 {
		d = 8
	}
	S := R[:d]

	y := new(big.Int).SetBytes(S)

	radixBig := big.NewInt(int64(radix))
	radixPowM := new(big.Int).Exp(radixBig, big.NewInt(int64(u)), nil)
	c := new(big.Int).Mod(y, radixPowM)

	return numradixDecode(c, radix, u)
}

// buildQArray constructs the Q array for a specific round as specified in NIST FF1.
func (f *FF1) buildQArray(roundNum int, B []uint32, radix int) []byte {
	Q := make([]byte, 0, 4+len(f.tweak)+len(B)*4)
	Q = append(Q, byte(roundNum), byte(roundNum), byte(roundNum), byte(roundNum))
	Q = append(Q, f.tweak...)
	Q = append(Q, numradixToBytes(B, radix)...)

	blockSize := aes.BlockSize
	qLen := len(Q)
	paddedLen := ((qLen + blockSize - 1) / blockSize) * blockSize
	if paddedLen > qLen {
		Q = append(Q, make([]byte, paddedLen-qLen)...)
	}
	return Q
}

// singleSymbolOffset derives a keyed, tweak-separated additive shift for the
// degenerate n=1 case, where the two-branch Feistel split above produces one
// empty half every round and never mixes the input at all. It reuses the
// same AES-keyed construction as buildQArray/feistelFunction, just without a
// B half to fold in (since there is none left after the split).
func (f *FF1) singleSymbolOffset(radix int, aesKey []byte) (uint32, error) {
	block, err := aes.NewCipher(aesKey)
	if err != nil {
		return 0, fmt.Errorf("singleSymbolOffset: %w", err)
	}

	buf := make([]byte, 0, 4+len(f.tweak))
	buf = append(buf, 'F', 'F', '1', '1')
	buf = append(buf, f.tweak...)

	blockSize := aes.BlockSize
	paddedLen := ((len(buf) + blockSize - 1) / blockSize) * blockSize
	Q := make([]byte, paddedLen)
	copy(Q, buf)

	R := make([]byte, paddedLen)
	for i := 0; i < paddedLen; i += blockSize {
		block.Encrypt(R[i:], Q[i:])
	}

	d := 8
	if d > len(R) {
		d = len(R)
	}
	y := new(big.Int).SetBytes(R[:d])
	return uint32(new(big.Int).Mod(y, big.NewInt(int64(radix))).Int64()), nil
}

// getAESKey returns the AES key properly sized (16, 24, or 32 bytes).
func (f *FF1) getAESKey() []byte {
	keyLen := len(f.key)

	if keyLen == 16 || keyLen == 24 || keyLen == 32 {
		return f.key
	}
	if keyLen < 16 {
		padded := make([]byte, 16)
		copy(padded, f.key)
		return padded
	}
	if keyLen < 24 {
		return f.key[:16]
	}
	if keyLen < 32 {
		return f.key[:24]
	}
	return f.key[:32]
}
