package encryption

import (
	"bytes"
	"fmt"

	"fat-go/internal/store"
)

// testHeader is prepended by TestCipher so sealed records differ from
// plaintext while staying deterministic and trivially reversible.
var testHeader = []byte("FATENC\x00\x00")

// TestCipher is a deterministic cipher for tests. It needs no keys.
type TestCipher struct{}

var _ store.Cipher = TestCipher{}

func (TestCipher) Seal(plaintext []byte) ([]byte, error) {
	return append(bytes.Clone(testHeader), plaintext...), nil
}

func (TestCipher) Open(ciphertext []byte) ([]byte, error) {
	if !bytes.HasPrefix(ciphertext, testHeader) {
		return nil, fmt.Errorf("invalid test encryption header")
	}
	return bytes.Clone(ciphertext[len(testHeader):]), nil
}
