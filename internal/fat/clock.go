package fat

import (
	"time"

	"github.com/google/uuid"
)

// Clock abstracts time retrieval so catalog timestamps are deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time in UTC.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now().UTC() }

// IDGenerator produces the unique part of block chain names.
type IDGenerator interface {
	New() string
}

// UUIDGenerator produces random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.New().String() }

// PasswordHasher is the one-way password hashing capability used by the
// user directory. internal/auth provides the bcrypt implementation.
type PasswordHasher interface {
	Hash(password string) (string, error)

	// Compare returns nil iff password matches hash.
	Compare(hash, password string) error
}
