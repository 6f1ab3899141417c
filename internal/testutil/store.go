package testutil

import (
	"errors"
	"strings"
	"sync"

	"fat-go/internal/fat"
	"fat-go/internal/store"
)

// ErrInjected is returned by FaultyStore hooks.
var ErrInjected = errors.New("injected store failure")

// FaultyStore is an in-memory record store whose writes and deletes can be
// made to fail. Hooks run before the operation; a non-nil error aborts it.
type FaultyStore struct {
	*store.MemoryStore

	mu         sync.Mutex
	putHook    func(key string) error
	deleteHook func(key string) error
}

func NewFaultyStore() *FaultyStore {
	return &FaultyStore{MemoryStore: store.NewMemoryStore()}
}

// OnPut installs a hook consulted before every Put.
func (f *FaultyStore) OnPut(hook func(key string) error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.putHook = hook
}

// OnDelete installs a hook consulted before every Delete.
func (f *FaultyStore) OnDelete(hook func(key string) error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteHook = hook
}

// FailBlockPutsAfter makes every block Put after the first n fail.
func (f *FaultyStore) FailBlockPutsAfter(n int) {
	count := 0
	f.OnPut(func(key string) error {
		if !strings.Contains(key, "_block_") {
			return nil
		}
		count++
		if count > n {
			return ErrInjected
		}
		return nil
	})
}

// FailPutsTo makes Puts to key fail.
func (f *FaultyStore) FailPutsTo(key string) {
	f.OnPut(func(k string) error {
		if k == key {
			return ErrInjected
		}
		return nil
	})
}

func (f *FaultyStore) Put(key string, value []byte) error {
	f.mu.Lock()
	hook := f.putHook
	f.mu.Unlock()
	if hook != nil {
		if err := hook(key); err != nil {
			return err
		}
	}
	return f.MemoryStore.Put(key, value)
}

func (f *FaultyStore) Delete(key string) error {
	f.mu.Lock()
	hook := f.deleteHook
	f.mu.Unlock()
	if hook != nil {
		if err := hook(key); err != nil {
			return err
		}
	}
	return f.MemoryStore.Delete(key)
}

// BlockKeys returns the stored keys that name data blocks.
func BlockKeys(s *store.MemoryStore) []string {
	var out []string
	for _, k := range s.Keys() {
		if strings.Contains(k, "_block_") {
			out = append(out, k)
		}
	}
	return out
}

var _ fat.RecordStore = (*FaultyStore)(nil)
