package store

import "strings"

// isBlockKey reports whether key names a data block rather than one of the
// catalog, user directory or session records.
func isBlockKey(key string) bool {
	i := strings.LastIndex(key, "_block_")
	if i < 0 || i+len("_block_") == len(key) {
		return false
	}
	for _, r := range key[i+len("_block_"):] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
