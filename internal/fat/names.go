package fat

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	maxFileNameLen = 255
	maxUserNameLen = 64
	minPasswordLen = 3
)

// ValidateFileName checks the catalog naming rules.
func ValidateFileName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty file name", ErrInvalidName)
	case len(name) > maxFileNameLen:
		return fmt.Errorf("%w: file name longer than %d bytes", ErrInvalidName, maxFileNameLen)
	case strings.TrimSpace(name) != name:
		return fmt.Errorf("%w: %q has leading or trailing whitespace", ErrInvalidName, name)
	}
	for _, r := range name {
		if r == '/' || r == '\\' || unicode.IsControl(r) {
			return fmt.Errorf("%w: %q contains a path separator or control character", ErrInvalidName, name)
		}
	}
	return nil
}

// ValidateUsername checks account naming rules: 1-64 chars of [A-Za-z0-9_.-].
func ValidateUsername(name string) error {
	if name == "" || len(name) > maxUserNameLen {
		return fmt.Errorf("%w: username must be 1-%d characters", ErrInvalidName, maxUserNameLen)
	}
	for _, r := range name {
		if !isKeyRune(r) && r != '.' {
			return fmt.Errorf("%w: username %q may only contain letters, digits, '.', '_' and '-'", ErrInvalidName, name)
		}
	}
	return nil
}

// SanitizeBaseName lowercases name, maps spaces to underscores and drops
// everything except ASCII letters, digits, '_' and '-'.
func SanitizeBaseName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if r == ' ' {
			r = '_'
		}
		if isKeyRune(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "file"
	}
	return b.String()
}

func isKeyRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-'
}
