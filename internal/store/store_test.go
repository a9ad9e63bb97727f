package store

import (
	"path/filepath"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "coindeck.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutAndLoad(t *testing.T) {
	s := testStore(t)

	in := []string{"bitcoin", "ethereum"}
	if err := s.Put(KeySelectedCoins, in); err != nil {
		t.Fatalf("Put: %v", err)
	}

	var out []string
	found, err := s.Load(KeySelectedCoins, &out)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !found {
		t.Fatal("expected key to exist")
	}
	if len(out) != 2 || out[0] != "bitcoin" || out[1] != "ethereum" {
		t.Errorf("Load = %v, want %v", out, in)
	}
}

func TestLoadMissingKey(t *testing.T) {
	s := testStore(t)

	var out []string
	found, err := s.Load(KeySelectedCoins, &out)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if found {
		t.Error("expected missing key to report not found")
	}
}

func TestPutOverwrites(t *testing.T) {
	s := testStore(t)

	if err := s.Put(KeyUserPrefs, map[string]any{"show24h": false}); err != nil {
		t.Fatalf("first Put: %v", err)
	}
	if err := s.Put(KeyUserPrefs, map[string]any{"show24h": true}); err != nil {
		t.Fatalf("second Put: %v", err)
	}

	var out map[string]any
	if _, err := s.Load(KeyUserPrefs, &out); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if v, ok := out["show24h"].(bool); !ok || !v {
		t.Errorf("show24h = %v, want true", out["show24h"])
	}
}

func TestDelete(t *testing.T) {
	s := testStore(t)

	if err := s.Put(KeySelectedCoins, []string{"bitcoin"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(KeySelectedCoins); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	var out []string
	found, err := s.Load(KeySelectedCoins, &out)
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Error("expected key to be gone after Delete")
	}

	// Deleting a missing key is a no-op.
	if err := s.Delete("neverWritten"); err != nil {
		t.Errorf("Delete missing key: %v", err)
	}
}

func TestReopenPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coindeck.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Put(KeySelectedCoins, []string{"bitcoin"}); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	var out []string
	found, err := s2.Load(KeySelectedCoins, &out)
	if err != nil {
		t.Fatal(err)
	}
	if !found || len(out) != 1 || out[0] != "bitcoin" {
		t.Errorf("after reopen: found=%v out=%v", found, out)
	}
}
