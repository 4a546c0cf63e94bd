package tree

import "fmt"

// FpeError wraps a failure from the underlying FPE primitive (package fpe),
// e.g. a ciphertext symbol falling outside the expected alphabet.
type FpeError struct{ Err error }

func (e *FpeError) Error() string { return fmt.Sprintf("tree: fpe: %v", e.Err) }
func (e *FpeError) Unwrap() error { return e.Err }

// EncodingError indicates that a decrypted numeral failed to re-parse as a
// number literal — a strong signal of a wrong key or tampered ciphertext.
type EncodingError struct{ Err error }

func (e *EncodingError) Error() string { return fmt.Sprintf("tree: encoding: %v", e.Err) }
func (e *EncodingError) Unwrap() error { return e.Err }

// SchemaError indicates the document violates a structural constraint the
// engine depends on — here, an array longer than 256 elements, since the
// tweak byte for an array index is a single byte (see DESIGN.md's Open
// Question on widening it).
type SchemaError struct{ Err error }

func (e *SchemaError) Error() string { return fmt.Sprintf("tree: schema: %v", e.Err) }
func (e *SchemaError) Unwrap() error { return e.Err }

// DepthOverflowError indicates the document's object nesting exceeded the
// walker's traversal limit (maxTraversalDepth), protecting against
// pathologically deep documents rather than exhausting memory.
type DepthOverflowError struct{ Err error }

func (e *DepthOverflowError) Error() string { return fmt.Sprintf("tree: depth overflow: %v", e.Err) }
func (e *DepthOverflowError) Unwrap() error { return e.Err }
