package encryption

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"fat-go/internal/config"
)

func newTestAgeEncryptor(t *testing.T) (*AgeEncryptor, config.EncryptionConfig) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.EncryptionConfig{
		Type:           "age",
		PublicKeyPath:  filepath.Join(dir, "keys", "fat.pub"),
		PrivateKeyPath: filepath.Join(dir, "keys", "fat.key"),
	}
	return NewAgeEncryptor(cfg), cfg
}

func TestAgeEncryptor_SetupAndUnlock(t *testing.T) {
	enc, cfg := newTestAgeEncryptor(t)

	if enc.IsConfigured() {
		t.Fatal("IsConfigured() = true before Setup")
	}
	if err := enc.Setup("correct horse"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if !enc.IsConfigured() {
		t.Fatal("IsConfigured() = false after Setup")
	}

	info, err := os.Stat(cfg.PrivateKeyPath)
	if err != nil {
		t.Fatalf("stat private key: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("private key mode = %o, want 600", perm)
	}
	priv, _ := os.ReadFile(cfg.PrivateKeyPath)
	if bytes.Contains(priv, []byte("AGE-SECRET-KEY")) {
		t.Error("private key stored unencrypted")
	}

	cipher, err := enc.Unlock("correct horse")
	if err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}

	plaintext := []byte(`[{"name":"notes","owner":"bob"}]`)
	sealed, err := cipher.Seal(plaintext)
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	if bytes.Contains(sealed, []byte("notes")) {
		t.Error("sealed record contains plaintext")
	}
	opened, err := cipher.Open(sealed)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if !bytes.Equal(opened, plaintext) {
		t.Errorf("Open() = %q, want %q", opened, plaintext)
	}
}

func TestAgeEncryptor_WrongPassphrase(t *testing.T) {
	enc, _ := newTestAgeEncryptor(t)
	if err := enc.Setup("right"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	if _, err := enc.Unlock("wrong"); err == nil {
		t.Fatal("Unlock() with wrong passphrase succeeded")
	}
}

func TestAgeCipher_RejectsTamperedData(t *testing.T) {
	enc, _ := newTestAgeEncryptor(t)
	enc.Setup("pass")
	cipher, err := enc.Unlock("pass")
	if err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}

	sealed, _ := cipher.Seal([]byte("payload"))
	sealed[len(sealed)-1] ^= 0xFF
	if _, err := cipher.Open(sealed); err == nil {
		t.Error("Open() of tampered data succeeded")
	}
}

func TestAgeEncryptor_UnlockWithoutKeys(t *testing.T) {
	enc, _ := newTestAgeEncryptor(t)
	if _, err := enc.Unlock("pass"); err == nil {
		t.Fatal("Unlock() without key files succeeded")
	}
}
