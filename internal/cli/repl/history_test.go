package repl

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewHistory(t *testing.T) {
	h := NewHistory("", 0)
	if h.maxSize != DefaultHistorySize {
		t.Errorf("maxSize = %d, want %d", h.maxSize, DefaultHistorySize)
	}
	if h.Len() != 0 {
		t.Errorf("Len() = %d, want 0", h.Len())
	}
}

func TestHistory_Add(t *testing.T) {
	h := NewHistory("", 10)
	h.Add("GET a")
	h.Add("GET a")
	h.Add("PUT a 1")
	h.Add("GET a")

	want := []string{"GET a", "PUT a 1", "GET a"}
	got := h.Entries()
	if len(got) != len(want) {
		t.Fatalf("Entries() = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Entries()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestHistory_Add_MaxSize(t *testing.T) {
	h := NewHistory("", 3)
	for _, cmd := range []string{"a", "b", "c", "d", "e"} {
		h.Add(cmd)
	}

	if h.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", h.Len())
	}
	if h.Get(0) != "e" || h.Get(2) != "c" {
		t.Errorf("entries = %q", h.Entries())
	}
}

func TestHistory_Get(t *testing.T) {
	h := NewHistory("", 10)
	h.Add("first")
	h.Add("second")

	tests := []struct {
		index int
		want  string
	}{
		{0, "second"},
		{1, "first"},
		{2, ""},
		{-1, ""},
	}
	for _, tt := range tests {
		if got := h.Get(tt.index); got != tt.want {
			t.Errorf("Get(%d) = %q, want %q", tt.index, got, tt.want)
		}
	}
}

func TestHistory_SaveLoad(t *testing.T) {
	file := filepath.Join(t.TempDir(), "nested", "history")

	h := NewHistory(file, 10)
	h.Add("PUT a 1")
	h.Add("BEGIN")
	if err := h.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(file)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("file mode = %o, want 600", perm)
	}

	loaded := NewHistory(file, 10)
	if err := loaded.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Len() != 2 || loaded.Get(0) != "BEGIN" {
		t.Errorf("loaded = %q", loaded.Entries())
	}
}

func TestHistory_Load_TrimsToMax(t *testing.T) {
	file := filepath.Join(t.TempDir(), "history")
	if err := os.WriteFile(file, []byte("a\n\nb\nc\nd\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	h := NewHistory(file, 2)
	if err := h.Load(); err != nil {
		t.Fatal(err)
	}
	if h.Len() != 2 || h.Get(1) != "c" || h.Get(0) != "d" {
		t.Errorf("entries = %q", h.Entries())
	}
}

func TestHistory_NoFile(t *testing.T) {
	h := NewHistory("", 10)
	h.Add("x")
	if err := h.Save(); err != nil {
		t.Errorf("Save() error = %v", err)
	}
	if err := h.Load(); err != nil {
		t.Errorf("Load() error = %v", err)
	}

	missing := NewHistory(filepath.Join(t.TempDir(), "missing"), 10)
	if err := missing.Load(); err != nil {
		t.Errorf("Load() of missing file error = %v", err)
	}
}
