package encryption

import (
	"bytes"
	"testing"
)

func TestTestCipher_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "record", data: []byte(`{"payload":"hello","is_last":true}`)},
		{name: "empty", data: []byte{}},
		{name: "binary", data: []byte{0, 1, 2, 255}},
	}

	c := TestCipher{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sealed, err := c.Seal(tt.data)
			if err != nil {
				t.Fatalf("Seal() error = %v", err)
			}
			if !bytes.HasPrefix(sealed, testHeader) {
				t.Errorf("Seal() output missing header: %q", sealed)
			}
			opened, err := c.Open(sealed)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			if !bytes.Equal(opened, tt.data) {
				t.Errorf("Open() = %q, want %q", opened, tt.data)
			}
		})
	}
}

func TestTestCipher_RejectsUnsealed(t *testing.T) {
	if _, err := (TestCipher{}).Open([]byte("plain")); err == nil {
		t.Error("Open() of unsealed data succeeded")
	}
}
