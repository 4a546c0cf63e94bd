// Package tree implements the document-shaped engine: a walker that visits
// every leaf of a JSON-like value tree and replaces it with its
// format-preserving-encrypted (or decrypted) counterpart, deriving a
// per-node tweak from the node's structural path so that no two positions
// in the document share a permutation.
package tree

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	fpe "github.com/vdparikh/treefpe"
	"github.com/vdparikh/treefpe/alphabet"
	"github.com/vdparikh/treefpe/numeric"
)

type method int

const (
	methodEncrypt method = iota
	methodDecrypt
)

// maxArrayIndex is the largest array index the tweak encoding can carry: the
// index is appended to the tweak as a single byte, so arrays longer than 256
// elements cannot be addressed (see DESIGN.md's Open Question on this cap).
const maxArrayIndex = 255

// rootTweak is the structural path of the document root.
const rootTweak = "#"

// maxTraversalDepth bounds how deep the explicit-stack walker will recurse
// into nested objects, independent of cfg.MaxDepth's collapse semantics.
// Where MaxDepth collapses subtrees into ciphertext on the encrypt side
// only, this is a hard safety cap on both encrypt and decrypt, protecting
// against pathologically deep documents rather than document shape.
const maxTraversalDepth = 10000

// collapsePrefix marks a string leaf as an encrypted, serialized subtree
// rather than a plain text value (see collapseObject/tryExpandCollapse).
const collapsePrefix = "json"

// frame is one pending node in the iterative, explicit-stack traversal.
// set writes the processed replacement back into the parent container; it
// is a closure rather than a pointer because Go map values are not
// addressable.
type frame struct {
	value any
	tweak []byte
	depth uint32
	set   func(any)
}

// traverse walks doc in place, encrypting or decrypting every leaf.
func traverse(doc *any, cfg EngineConfig, m method) error {
	digitsKey, utfKey, err := cfg.resolveKeys()
	if err != nil {
		return err
	}

	stack := []frame{{
		value: *doc,
		tweak: []byte(rootTweak),
		depth: 1,
		set:   func(v any) { *doc = v },
	}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch v := f.value.(type) {
		case nil, bool:
			// No FPE-meaningful space; left exactly as found.

		case json.Number:
			out, err := processNumber(digitsKey, f.tweak, string(v), m)
			if err != nil {
				return err
			}
			f.set(json.Number(out))

		case string:
			out, err := processString(utfKey, f.tweak, v, m)
			if err != nil {
				return err
			}
			f.set(out)

		case []any:
			for i, elem := range v {
				if i > maxArrayIndex {
					return &SchemaError{Err: fmt.Errorf("array has %d elements, exceeding the %d this engine can address", len(v), maxArrayIndex+1)}
				}
				idx := i
				childTweak := extendTweak(f.tweak, []byte{byte(idx)})
				stack = append(stack, frame{
					value: elem,
					tweak: childTweak,
					depth: f.depth,
					set:   func(nv any) { v[idx] = nv },
				})
			}

		case map[string]any:
			if m == methodEncrypt && cfg.MaxDepth > 0 && f.depth > cfg.MaxDepth {
				collapsed, err := collapseObject(utfKey, f.tweak, v)
				if err != nil {
					return err
				}
				f.set(collapsed)
				continue
			}
			if f.depth+1 > maxTraversalDepth {
				return &DepthOverflowError{Err: fmt.Errorf("object nesting exceeds the %d-level traversal limit", maxTraversalDepth)}
			}
			if err := pushObjectChildren(&stack, utfKey, f, v, cfg, m); err != nil {
				return err
			}

		default:
			return fmt.Errorf("tree: unsupported document value type %T", v)
		}
	}

	return nil
}

// pushObjectChildren pushes one frame per (key, value) pair in v, and, when
// include_keys is set, renames v's keys in place to their encrypted or
// decrypted form before pushing — so each pushed frame's setter targets the
// final key.
func pushObjectChildren(stack *[]frame, utfKey []byte, f frame, v map[string]any, cfg EngineConfig, m method) error {
	type entry struct {
		origKey, storedKey string
		val                any
	}
	entries := make([]entry, 0, len(v))
	for k, val := range v {
		stored := k
		if cfg.IncludeKeys {
			out, err := cryptString(utfKey, f.tweak, k, m)
			if err != nil {
				return err
			}
			stored = out
		}
		entries = append(entries, entry{origKey: k, storedKey: stored, val: val})
	}

	if cfg.IncludeKeys {
		for k := range v {
			delete(v, k)
		}
	}

	for _, e := range entries {
		// The child tweak must derive from the plaintext key bytes on both
		// encrypt and decrypt. On encrypt, origKey (the key as found in the
		// document) already is plaintext. On decrypt, origKey is the
		// ciphertext key read from the document and storedKey is what
		// cryptString just decrypted it to, i.e. the plaintext.
		tweakKey := e.origKey
		if cfg.IncludeKeys && m == methodDecrypt {
			tweakKey = e.storedKey
		}
		childTweak := extendTweak(f.tweak, []byte(tweakKey))
		storedKey := e.storedKey
		v[storedKey] = e.val
		*stack = append(*stack, frame{
			value: e.val,
			tweak: childTweak,
			depth: f.depth + 1,
			set:   func(nv any) { v[storedKey] = nv },
		})
	}
	return nil
}

// extendTweak derives a child tweak by appending suffix to parent. It
// always copies, since parent's backing array is shared across siblings.
func extendTweak(parent, suffix []byte) []byte {
	out := make([]byte, 0, len(parent)+len(suffix))
	out = append(out, parent...)
	out = append(out, suffix...)
	return out
}

// processNumber encrypts or decrypts a JSON number literal by splitting it
// on '.' into an integral and an optional fractional half, each keyed under
// the node's tweak extended by a half selector byte (0x00 integral, 0x01
// fractional).
func processNumber(key, tweak []byte, s string, m method) (string, error) {
	left, right, hasFrac := strings.Cut(s, ".")

	integralTweak := extendTweak(tweak, []byte{0x00})
	var leftOut string
	var err error
	if m == methodEncrypt {
		leftOut, err = numeric.EncryptIntegral(key, integralTweak, left)
	} else {
		leftOut, err = numeric.DecryptIntegral(key, integralTweak, left)
	}
	if err != nil {
		return "", &EncodingError{Err: err}
	}

	if !hasFrac {
		if m == methodDecrypt && !validNumberLiteral(leftOut) {
			return "", &EncodingError{Err: fmt.Errorf("decrypted numeral %q does not re-parse as a number", leftOut)}
		}
		return leftOut, nil
	}

	fractionalTweak := extendTweak(tweak, []byte{0x01})
	var rightOut string
	if m == methodEncrypt {
		rightOut, err = numeric.EncryptFractional(key, fractionalTweak, right)
	} else {
		rightOut, err = numeric.DecryptFractional(key, fractionalTweak, right)
	}
	if err != nil {
		return "", &EncodingError{Err: err}
	}

	out := leftOut + "." + rightOut
	if m == methodDecrypt && !validNumberLiteral(out) {
		return "", &EncodingError{Err: fmt.Errorf("decrypted numeral %q does not re-parse as a number", out)}
	}
	return out, nil
}

// processString handles a String leaf. On decrypt, if the recovered
// plaintext carries the collapse prefix, it is expanded back into the
// structured subtree it was collapsed from.
func processString(key, tweak []byte, s string, m method) (any, error) {
	if m == methodEncrypt {
		return cryptString(key, tweak, s, m)
	}

	plaintext, err := cryptString(key, tweak, s, m)
	if err != nil {
		return nil, err
	}
	if expanded, ok := tryExpandCollapse(plaintext); ok {
		return expanded, nil
	}
	return plaintext, nil
}

// cryptString runs s through the FF1 cipher over the full Unicode alphabet.
func cryptString(key, tweak []byte, s string, m method) (string, error) {
	cipher, err := fpe.New(key, tweak)
	if err != nil {
		return "", &FpeError{Err: err}
	}
	var out string
	if m == methodEncrypt {
		out, err = cipher.Encrypt(alphabet.UTF, s)
	} else {
		out, err = cipher.Decrypt(alphabet.UTF, s)
	}
	if err != nil {
		return "", &FpeError{Err: err}
	}
	return out, nil
}

// collapseObject serializes v to canonical JSON, marks it with the collapse
// prefix, and encrypts the whole thing as a single String leaf. Used when
// the walker reaches max_depth on the encrypt side.
func collapseObject(key, tweak []byte, v map[string]any) (string, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("tree: marshal subtree for depth collapse: %w", err)
	}
	ciphertext, err := cryptString(key, tweak, collapsePrefix+string(payload), methodEncrypt)
	if err != nil {
		return "", err
	}
	return ciphertext, nil
}

// tryExpandCollapse recognizes a decrypted string as a collapsed subtree and
// parses it back into a document value. It only accepts payloads that
// decode to an object, since collapseObject only ever collapses objects.
func tryExpandCollapse(plaintext string) (any, bool) {
	rest, ok := strings.CutPrefix(plaintext, collapsePrefix)
	if !ok {
		return nil, false
	}

	dec := json.NewDecoder(strings.NewReader(rest))
	dec.UseNumber()
	var obj any
	if err := dec.Decode(&obj); err != nil {
		return nil, false
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, false
	}
	if _, isObject := obj.(map[string]any); !isObject {
		return nil, false
	}
	return obj, true
}
