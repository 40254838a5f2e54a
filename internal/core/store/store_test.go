package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/telefetch/telefetch/internal/core/format"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")

	s := NewFileStore(path)
	if _, ok := s.Get(42); ok {
		t.Fatal("fresh store should have no preference")
	}

	s.Set(42, format.TierHigh)
	s.Set(-100123, format.TierLow)

	// Reload from disk.
	s2 := NewFileStore(path)
	if tier, ok := s2.Get(42); !ok || tier != format.TierHigh {
		t.Errorf("Get(42) = %v, %v; want TierHigh", tier, ok)
	}
	if tier, ok := s2.Get(-100123); !ok || tier != format.TierLow {
		t.Errorf("Get(-100123) = %v, %v; want TierLow", tier, ok)
	}
	if _, ok := s2.Get(7); ok {
		t.Error("Get(7) should be absent")
	}
}

func TestFileStoreMissingFile(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "nope", "prefs.json"))
	if _, ok := s.Get(1); ok {
		t.Error("missing file should behave as empty store")
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	s := NewFileStore(path)
	if _, ok := s.Get(1); ok {
		t.Error("corrupt file should behave as empty store")
	}

	// The store must still be writable afterwards.
	s.Set(1, format.TierMedium)
	if tier, ok := NewFileStore(path).Get(1); !ok || tier != format.TierMedium {
		t.Errorf("after corrupt reload: Get(1) = %v, %v", tier, ok)
	}
}

func TestFileStoreIgnoresBadStoredValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	if err := os.WriteFile(path, []byte(`{"5": "ultra"}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, ok := NewFileStore(path).Get(5); ok {
		t.Error("unparseable stored quality should read as absent")
	}
}
