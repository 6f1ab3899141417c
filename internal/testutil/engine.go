package testutil

import (
	"testing"

	"golang.org/x/crypto/bcrypt"

	"fat-go/internal/auth"
	"fat-go/internal/fat"
)

// Accounts seeded by NewTestEngine. Every password equals the username.
var TestAccounts = []fat.BootstrapUser{
	{Username: "admin", Password: "admin", Role: fat.RoleAdmin},
	{Username: "bob", Password: "bob", Role: fat.RoleUser},
	{Username: "bob2", Password: "bob2", Role: fat.RoleUser},
}

// NewTestHasher returns a bcrypt hasher at minimum cost.
func NewTestHasher() fat.PasswordHasher {
	return auth.NewBcryptHasher(bcrypt.MinCost)
}

// NewTestEngine builds an engine over records with a fixed clock, sequential
// chain ids and TestAccounts. opts.Bootstrap is filled in when empty.
func NewTestEngine(t *testing.T, records fat.RecordStore, logger fat.Logger, opts fat.Options) *fat.Engine {
	t.Helper()
	return NewTestEngineWithClock(t, records, logger, FixedClock(), opts)
}

// NewTestEngineWithClock is NewTestEngine driven by clock.
func NewTestEngineWithClock(t *testing.T, records fat.RecordStore, logger fat.Logger, clock fat.Clock, opts fat.Options) *fat.Engine {
	t.Helper()

	if len(opts.Bootstrap) == 0 {
		opts.Bootstrap = TestAccounts
	}
	if logger == nil {
		logger = fat.NewNopLogger()
	}

	e, err := fat.NewEngine(records, NewTestHasher(), logger, clock, NewSequentialIDs(), opts)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}
