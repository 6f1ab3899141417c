package fat

// RecordStore is the persistence substrate: opaque string keys mapped to
// byte values. Implementations live in internal/store.
type RecordStore interface {
	// Put stores value under key, replacing any previous value.
	Put(key string, value []byte) error

	// Get returns the value for key, or an error wrapping ErrRecordNotFound.
	Get(key string) ([]byte, error)

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error

	// Exists reports whether key is present.
	Exists(key string) (bool, error)

	// Close releases any underlying resources.
	Close() error
}
