package store

import (
	"fmt"

	"fat-go/internal/fat"
)

// Cipher seals and opens record values. internal/encryption provides the
// age and test implementations.
type Cipher interface {
	Seal(plaintext []byte) ([]byte, error)
	Open(ciphertext []byte) ([]byte, error)
}

// EncryptedStore encrypts values before they reach the wrapped store.
// Keys are stored in the clear so lookups still work.
type EncryptedStore struct {
	inner  fat.RecordStore
	cipher Cipher
}

// NewEncryptedStore wraps inner so that every value is sealed with cipher.
func NewEncryptedStore(inner fat.RecordStore, cipher Cipher) *EncryptedStore {
	return &EncryptedStore{inner: inner, cipher: cipher}
}

func (s *EncryptedStore) Put(key string, value []byte) error {
	sealed, err := s.cipher.Seal(value)
	if err != nil {
		return fmt.Errorf("encrypting record %s: %w", key, err)
	}
	return s.inner.Put(key, sealed)
}

func (s *EncryptedStore) Get(key string) ([]byte, error) {
	sealed, err := s.inner.Get(key)
	if err != nil {
		return nil, err
	}
	plain, err := s.cipher.Open(sealed)
	if err != nil {
		return nil, fmt.Errorf("decrypting record %s: %w", key, err)
	}
	return plain, nil
}

func (s *EncryptedStore) Delete(key string) error { return s.inner.Delete(key) }

func (s *EncryptedStore) Exists(key string) (bool, error) { return s.inner.Exists(key) }

func (s *EncryptedStore) Close() error { return s.inner.Close() }

// Compile-time check that EncryptedStore implements fat.RecordStore
var _ fat.RecordStore = (*EncryptedStore)(nil)
