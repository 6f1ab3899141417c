package fat

import (
	"slices"
	"time"
)

// Role is the account role stored in the user directory.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Capability is a per-file access right.
type Capability string

const (
	CapRead  Capability = "read"
	CapWrite Capability = "write"
)

// ParseCapability maps "read"/"write" to a Capability.
func ParseCapability(s string) (Capability, bool) {
	switch Capability(s) {
	case CapRead, CapWrite:
		return Capability(s), true
	}
	return "", false
}

// UserSet is a set of user names kept sorted so it serializes stably.
type UserSet []string

// Has reports whether user is in the set.
func (s UserSet) Has(user string) bool {
	_, found := slices.BinarySearch(s, user)
	return found
}

// Add returns the set with user inserted and whether it changed.
func (s UserSet) Add(user string) (UserSet, bool) {
	i, found := slices.BinarySearch(s, user)
	if found {
		return s, false
	}
	return slices.Insert(slices.Clone(s), i, user), true
}

// Remove returns the set without user and whether it changed.
func (s UserSet) Remove(user string) (UserSet, bool) {
	i, found := slices.BinarySearch(s, user)
	if !found {
		return s, false
	}
	return slices.Delete(slices.Clone(s), i, i+1), true
}

// FileEntry is one row of the catalog. Trashed entries stay in the catalog
// and keep their blocks until restored.
type FileEntry struct {
	Name          string     `json:"name"`
	FirstBlockKey string     `json:"first_block_key"`
	Trashed       bool       `json:"trashed"`
	Size          int        `json:"size"`
	CreatedAt     time.Time  `json:"created_at"`
	ModifiedAt    time.Time  `json:"modified_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
	Owner         string     `json:"owner"`
	Readers       UserSet    `json:"readers"`
	Writers       UserSet    `json:"writers"`
}

// clone returns a deep copy so callers cannot alias catalog state.
func (e FileEntry) clone() FileEntry {
	c := e
	c.Readers = slices.Clone(e.Readers)
	c.Writers = slices.Clone(e.Writers)
	if e.DeletedAt != nil {
		t := *e.DeletedAt
		c.DeletedAt = &t
	}
	return c
}

// set returns the capability set matching c.
func (e *FileEntry) set(c Capability) *UserSet {
	if c == CapWrite {
		return &e.Writers
	}
	return &e.Readers
}

// DataBlock is one link of a chain. IsLast is true iff NextKey is empty.
type DataBlock struct {
	Payload string `json:"payload"`
	NextKey string `json:"next_key"`
	IsLast  bool   `json:"is_last"`
}

// UserRecord is a user directory account.
type UserRecord struct {
	Username     string `json:"-"`
	PasswordHash string `json:"password_hash"`
	Role         Role   `json:"role"`
}
