package tinkfpe

import (
	"sync"

	"github.com/google/tink/go/core/registry"
)

var registerOnce sync.Once

// ensureKeyManagersRegistered registers both of the engine's KeyManagers
// with Tink's registry. Safe to call from multiple test files; registration
// only happens once per process.
func ensureKeyManagersRegistered() {
	registerOnce.Do(func() {
		_ = registry.RegisterKeyManager(NewDigitsKeyManager())
		_ = registry.RegisterKeyManager(NewUTFKeyManager())
	})
}
