package store

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"fat-go/internal/fat"
)

func TestFileSystemStore(t *testing.T) {
	testRecordStore(t, func(t *testing.T) fat.RecordStore {
		s, err := NewFileSystemStore(t.TempDir())
		if err != nil {
			t.Fatalf("NewFileSystemStore() error = %v", err)
		}
		return s
	})
}

func TestFileSystemStore_Layout(t *testing.T) {
	root := t.TempDir()
	s, err := NewFileSystemStore(root)
	if err != nil {
		t.Fatalf("NewFileSystemStore() error = %v", err)
	}

	s.Put("catalog", []byte("[]"))
	s.Put("notes-id-1_block_0", []byte("{}"))
	s.Put("a/b", []byte("x"))

	want := []string{
		filepath.Join(root, "catalog.json"),
		filepath.Join(root, "data_blocks", "notes-id-1_block_0.json"),
		filepath.Join(root, url.PathEscape("a/b")+".json"),
	}
	for _, p := range want {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("expected record file %s: %v", p, err)
		}
	}

	entries, err := os.ReadDir(filepath.Join(root, "data_blocks"))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("data_blocks holds %d files, want 1 (no temp files left)", len(entries))
	}
}

func TestFileSystemStore_Reopen(t *testing.T) {
	root := t.TempDir()
	first, _ := NewFileSystemStore(root)
	first.Put("users", []byte(`{"admin":{}}`))

	second, err := NewFileSystemStore(root)
	if err != nil {
		t.Fatalf("NewFileSystemStore() error = %v", err)
	}
	got, err := second.Get("users")
	if err != nil || string(got) != `{"admin":{}}` {
		t.Errorf("Get() after reopen = %q, %v", got, err)
	}
}
