package fat

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"unicode/utf8"
)

const usersKey = "users"

// dummyPassword is hashed once and compared against when a login names an
// unknown user, so both paths cost one hash comparison.
const dummyPassword = "fat-directory-dummy-password"

// BootstrapUser is an account seeded into an empty directory.
type BootstrapUser struct {
	Username string
	Password string
	Role     Role
}

// UserDirectory holds accounts and roles. The whole directory is persisted
// as a single record on every change.
type UserDirectory struct {
	mu      sync.RWMutex
	records RecordStore
	hasher  PasswordHasher
	logger  Logger
	users   map[string]UserRecord

	dummyOnce sync.Once
	dummyHash string
}

// OpenUserDirectory loads the directory from records, seeding it with
// bootstrap when no directory has been persisted yet.
func OpenUserDirectory(records RecordStore, hasher PasswordHasher, logger Logger, bootstrap []BootstrapUser) (*UserDirectory, error) {
	d := &UserDirectory{
		records: records,
		hasher:  hasher,
		logger:  withComponent(logger, "users"),
		users:   make(map[string]UserRecord),
	}

	data, err := records.Get(usersKey)
	switch {
	case errors.Is(err, ErrRecordNotFound):
		return d, d.seed(bootstrap)
	case err != nil:
		return nil, fmt.Errorf("loading user directory: %w", err)
	}

	if err := json.Unmarshal(data, &d.users); err != nil {
		return nil, fmt.Errorf("decoding user directory: %w", err)
	}
	for name, u := range d.users {
		u.Username = name
		d.users[name] = u
	}
	return d, nil
}

func (d *UserDirectory) seed(bootstrap []BootstrapUser) error {
	next := make(map[string]UserRecord, len(bootstrap))
	for _, b := range bootstrap {
		rec, err := d.newRecord(b.Username, b.Password, b.Role)
		if err != nil {
			return fmt.Errorf("seeding user %q: %w", b.Username, err)
		}
		next[rec.Username] = rec
	}
	if err := d.persist(next); err != nil {
		return err
	}
	d.users = next
	d.logger.Info("user directory seeded", "users", len(next))
	return nil
}

// CreateUser adds an account. Only the hash of password is stored.
func (d *UserDirectory) CreateUser(username, password string, role Role) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.users[username]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateUser, username)
	}
	rec, err := d.newRecord(username, password, role)
	if err != nil {
		return err
	}

	next := maps.Clone(d.users)
	next[username] = rec
	if err := d.persist(next); err != nil {
		return err
	}
	d.users = next
	d.logger.Info("user created", "user", username, "role", string(role))
	return nil
}

func (d *UserDirectory) newRecord(username, password string, role Role) (UserRecord, error) {
	if err := ValidateUsername(username); err != nil {
		return UserRecord{}, err
	}
	if role != RoleAdmin && role != RoleUser {
		return UserRecord{}, fmt.Errorf("%w: role %q", ErrInvalidName, role)
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return UserRecord{}, fmt.Errorf("%w: need at least %d characters", ErrWeakPassword, minPasswordLen)
	}
	hash, err := d.hasher.Hash(password)
	if err != nil {
		return UserRecord{}, fmt.Errorf("hashing password: %w", err)
	}
	return UserRecord{Username: username, PasswordHash: hash, Role: role}, nil
}

func (d *UserDirectory) persist(users map[string]UserRecord) error {
	data, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("encoding user directory: %w", err)
	}
	if err := d.records.Put(usersKey, data); err != nil {
		return fmt.Errorf("persisting user directory: %w", err)
	}
	return nil
}

// Verify reports whether password matches the stored hash for username.
// Unknown users return false after the same amount of hashing work.
func (d *UserDirectory) Verify(username, password string) bool {
	d.mu.RLock()
	rec, ok := d.users[username]
	d.mu.RUnlock()

	if !ok {
		_ = d.hasher.Compare(d.dummy(), password)
		return false
	}
	return d.hasher.Compare(rec.PasswordHash, password) == nil
}

func (d *UserDirectory) dummy() string {
	d.dummyOnce.Do(func() {
		h, err := d.hasher.Hash(dummyPassword)
		if err != nil {
			d.logger.Error("hashing dummy password", "error", err)
		}
		d.dummyHash = h
	})
	return d.dummyHash
}

// IsAdmin reports whether username exists with the admin role.
func (d *UserDirectory) IsAdmin(username string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.users[username].Role == RoleAdmin
}

// Exists reports whether username has an account.
func (d *UserDirectory) Exists(username string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.users[username]
	return ok
}

// List returns all accounts sorted by name, without password hashes.
func (d *UserDirectory) List() []UserRecord {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]UserRecord, 0, len(d.users))
	for _, name := range slices.Sorted(maps.Keys(d.users)) {
		out = append(out, UserRecord{Username: name, Role: d.users[name].Role})
	}
	return out
}
