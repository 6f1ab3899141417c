package store

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"fat-go/internal/fat"
)

// testRecordStore runs the behaviour every RecordStore backend shares.
func testRecordStore(t *testing.T, newStore func(t *testing.T) fat.RecordStore) {
	t.Run("put and get", func(t *testing.T) {
		s := newStore(t)

		tests := []struct {
			key   string
			value string
		}{
			{key: "catalog", value: `[{"name":"notes"}]`},
			{key: "notes-id-1_block_0", value: `{"payload":"hello","is_last":true}`},
			{key: "odd key/with:chars", value: "x"},
			{key: "large", value: strings.Repeat("z", 64*1024)},
		}
		for _, tt := range tests {
			if err := s.Put(tt.key, []byte(tt.value)); err != nil {
				t.Fatalf("Put(%q) error = %v", tt.key, err)
			}
			got, err := s.Get(tt.key)
			if err != nil {
				t.Fatalf("Get(%q) error = %v", tt.key, err)
			}
			if string(got) != tt.value {
				t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.value)
			}
		}
	})

	t.Run("put overwrites", func(t *testing.T) {
		s := newStore(t)
		s.Put("users", []byte("v1"))
		if err := s.Put("users", []byte("v2")); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		if got, _ := s.Get("users"); string(got) != "v2" {
			t.Errorf("Get() = %q, want %q", got, "v2")
		}
	})

	t.Run("missing key", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.Get("absent"); !errors.Is(err, fat.ErrRecordNotFound) {
			t.Errorf("Get() error = %v, want ErrRecordNotFound", err)
		}
		ok, err := s.Exists("absent")
		if err != nil || ok {
			t.Errorf("Exists() = %v, %v; want false, nil", ok, err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		s := newStore(t)
		s.Put("doc_block_3", []byte("payload"))

		if ok, _ := s.Exists("doc_block_3"); !ok {
			t.Fatal("Exists() = false after Put")
		}
		if err := s.Delete("doc_block_3"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if ok, _ := s.Exists("doc_block_3"); ok {
			t.Error("Exists() = true after Delete")
		}
		if err := s.Delete("doc_block_3"); err != nil {
			t.Errorf("Delete() of missing key error = %v", err)
		}
	})

	t.Run("returned value is not aliased", func(t *testing.T) {
		s := newStore(t)
		value := []byte("original")
		s.Put("k", value)
		value[0] = 'X'

		got, _ := s.Get("k")
		if !bytes.Equal(got, []byte("original")) {
			t.Errorf("Get() = %q after caller mutated its buffer", got)
		}
	})
}

func TestMemoryStore(t *testing.T) {
	testRecordStore(t, func(t *testing.T) fat.RecordStore { return NewMemoryStore() })
}

func TestMemoryStore_Keys(t *testing.T) {
	s := NewMemoryStore()
	for _, k := range []string{"users", "catalog", "a_block_0"} {
		s.Put(k, nil)
	}
	if got := strings.Join(s.Keys(), ","); got != "a_block_0,catalog,users" {
		t.Errorf("Keys() = %s, want sorted keys", got)
	}
}

func TestIsBlockKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{key: "notes_block_0", want: true},
		{key: "my_file-id-7_block_12", want: true},
		{key: "catalog", want: false},
		{key: "users", want: false},
		{key: "session", want: false},
		{key: "notes_block_", want: false},
		{key: "notes_block_x", want: false},
		{key: "_block_1_backup", want: false},
	}
	for _, tt := range tests {
		if got := isBlockKey(tt.key); got != tt.want {
			t.Errorf("isBlockKey(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}
