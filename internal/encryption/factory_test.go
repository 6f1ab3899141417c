package encryption

import (
	"errors"
	"testing"

	"fat-go/internal/config"
)

func TestNewCipherFromConfig(t *testing.T) {
	noPrompt := func() (string, error) {
		t.Error("passphrase requested unexpectedly")
		return "", errors.New("unexpected")
	}

	for _, typ := range []string{"", "none"} {
		c, err := NewCipherFromConfig(config.EncryptionConfig{Type: typ}, noPrompt)
		if err != nil || c != nil {
			t.Errorf("type %q: got %v, %v; want nil cipher", typ, c, err)
		}
	}

	c, err := NewCipherFromConfig(config.EncryptionConfig{Type: "test"}, noPrompt)
	if err != nil {
		t.Fatalf("test cipher error = %v", err)
	}
	if _, ok := c.(TestCipher); !ok {
		t.Errorf("got %T, want TestCipher", c)
	}

	if _, err := NewCipherFromConfig(config.EncryptionConfig{Type: "rot13"}, noPrompt); err == nil {
		t.Error("unknown type accepted")
	}
}

func TestNewCipherFromConfig_Age(t *testing.T) {
	enc, cfg := newTestAgeEncryptor(t)

	if _, err := NewCipherFromConfig(cfg, func() (string, error) { return "pw", nil }); err == nil {
		t.Fatal("age without keys accepted")
	}

	if err := enc.Setup("pw"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	prompted := false
	c, err := NewCipherFromConfig(cfg, func() (string, error) {
		prompted = true
		return "pw", nil
	})
	if err != nil {
		t.Fatalf("NewCipherFromConfig() error = %v", err)
	}
	if !prompted {
		t.Error("passphrase was not requested")
	}
	if _, ok := c.(*AgeCipher); !ok {
		t.Errorf("got %T, want *AgeCipher", c)
	}

	_, err = NewCipherFromConfig(cfg, func() (string, error) { return "", errors.New("no tty") })
	if err == nil {
		t.Error("passphrase error not returned")
	}
}
