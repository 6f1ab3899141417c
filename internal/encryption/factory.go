package encryption

import (
	"fmt"

	"fat-go/internal/config"
	"fat-go/internal/store"
)

// NewCipherFromConfig returns the cipher selected by cfg, or nil when
// encryption is disabled. passphrase is only consulted for "age".
func NewCipherFromConfig(cfg config.EncryptionConfig, passphrase func() (string, error)) (store.Cipher, error) {
	switch cfg.Type {
	case "none", "":
		return nil, nil
	case "test":
		return TestCipher{}, nil
	case "age":
		enc := NewAgeEncryptor(cfg)
		if !enc.IsConfigured() {
			return nil, fmt.Errorf("age keys not found at %s: run `fat config init --encrypt`", cfg.PrivateKeyPath)
		}
		pass, err := passphrase()
		if err != nil {
			return nil, fmt.Errorf("reading passphrase: %w", err)
		}
		return enc.Unlock(pass)
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}
