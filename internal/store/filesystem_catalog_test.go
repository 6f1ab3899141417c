package store_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fat-go/internal/fat"
	"fat-go/internal/store"
	"fat-go/internal/testutil"
)

func TestFileSystemStore_LongFileNames(t *testing.T) {
	root := t.TempDir()
	s, err := store.NewFileSystemStore(root)
	if err != nil {
		t.Fatalf("NewFileSystemStore() error = %v", err)
	}
	e := testutil.NewTestEngine(t, s, nil, fat.Options{ChunkSize: 2})

	name := strings.Repeat("a", 255)
	if _, err := e.Catalog.Create(name, "hello", "bob"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if got, err := e.Catalog.Read(name, "bob"); err != nil || got != "hello" {
		t.Errorf("Read() = %q, %v; want %q", got, err, "hello")
	}

	files, err := os.ReadDir(filepath.Join(root, "data_blocks"))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(files) != 3 {
		t.Errorf("data_blocks holds %d files, want 3", len(files))
	}
	for _, f := range files {
		if len(f.Name()) > 255 {
			t.Errorf("block file name is %d bytes: %s", len(f.Name()), f.Name())
		}
	}
}
