package store

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"fat-go/internal/fat"
)

// FileSystemStore keeps one file per record under a root directory:
//
//	<root>/
//	  catalog.json
//	  users.json
//	  data_blocks/
//	    <base>_block_<n>.json
//
// Keys are path-escaped, so any key maps to a single file name.
type FileSystemStore struct {
	root      string
	blocksDir string
}

// NewFileSystemStore creates the directory layout under root.
func NewFileSystemStore(root string) (*FileSystemStore, error) {
	blocksDir := filepath.Join(root, "data_blocks")
	if err := os.MkdirAll(blocksDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileSystemStore{root: root, blocksDir: blocksDir}, nil
}

// path maps a key to its file. Block keys go to data_blocks/.
func (s *FileSystemStore) path(key string) string {
	dir := s.root
	if isBlockKey(key) {
		dir = s.blocksDir
	}
	return filepath.Join(dir, url.PathEscape(key)+".json")
}

// Put writes the record with an atomic write (temp file + rename).
func (s *FileSystemStore) Put(key string, value []byte) error {
	destPath := s.path(key)

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(value); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write record %s: %w", key, err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

func (s *FileSystemStore) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", fat.ErrRecordNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read record %s: %w", key, err)
	}
	return data, nil
}

func (s *FileSystemStore) Delete(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete record %s: %w", key, err)
	}
	return nil
}

func (s *FileSystemStore) Exists(key string) (bool, error) {
	_, err := os.Stat(s.path(key))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat record %s: %w", key, err)
}

func (s *FileSystemStore) Close() error { return nil }

// Compile-time check that FileSystemStore implements fat.RecordStore
var _ fat.RecordStore = (*FileSystemStore)(nil)
