package kdf_test

import (
	"testing"

	"github.com/vdparikh/treefpe/kdf"
)

func TestDerive_Deterministic(t *testing.T) {
	k1, err := kdf.Derive("correct horse battery staple")
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	k2, err := kdf.Derive("correct horse battery staple")
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if k1 != k2 {
		t.Fatalf("same passphrase produced different keys across runs")
	}
}

func TestDerive_DistinctPassphrases(t *testing.T) {
	k1, err := kdf.Derive("passphrase one")
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	k2, err := kdf.Derive("passphrase two")
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if k1 == k2 {
		t.Fatalf("distinct passphrases produced the same key")
	}
}
