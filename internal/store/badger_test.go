package store

import (
	"testing"

	"fat-go/internal/fat"
)

func TestBadgerStore(t *testing.T) {
	testRecordStore(t, func(t *testing.T) fat.RecordStore {
		s, err := NewBadgerStore("")
		if err != nil {
			t.Fatalf("NewBadgerStore() error = %v", err)
		}
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestBadgerStore_Reopen(t *testing.T) {
	dir := t.TempDir()

	first, err := NewBadgerStore(dir)
	if err != nil {
		t.Fatalf("NewBadgerStore() error = %v", err)
	}
	first.Put("session", []byte(`{"user":"bob"}`))
	if err := first.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	second, err := NewBadgerStore(dir)
	if err != nil {
		t.Fatalf("reopening NewBadgerStore() error = %v", err)
	}
	defer second.Close()

	got, err := second.Get("session")
	if err != nil || string(got) != `{"user":"bob"}` {
		t.Errorf("Get() after reopen = %q, %v", got, err)
	}
}
