package fat_test

import (
	"errors"
	"strings"
	"testing"

	"fat-go/internal/fat"
	"fat-go/internal/store"
	"fat-go/internal/testutil"
)

func openDirectory(t *testing.T, s fat.RecordStore, bootstrap []fat.BootstrapUser) *fat.UserDirectory {
	t.Helper()
	d, err := fat.OpenUserDirectory(s, testutil.NewTestHasher(), nil, bootstrap)
	if err != nil {
		t.Fatalf("OpenUserDirectory() error = %v", err)
	}
	return d
}

func TestUserDirectory_Bootstrap(t *testing.T) {
	s := store.NewMemoryStore()
	d := openDirectory(t, s, testutil.TestAccounts)

	if !d.IsAdmin("admin") {
		t.Error("admin is not an administrator")
	}
	if d.IsAdmin("bob") || !d.Exists("bob") {
		t.Error("bob should exist as a regular user")
	}
	if !d.Verify("bob2", "bob2") {
		t.Error("Verify(bob2) with seeded password failed")
	}

	// A second open must not reseed over the persisted directory.
	again := openDirectory(t, s, []fat.BootstrapUser{{Username: "root", Password: "root", Role: fat.RoleAdmin}})
	if again.Exists("root") {
		t.Error("existing directory was reseeded")
	}
	if !again.Verify("admin", "admin") {
		t.Error("persisted admin account not loaded")
	}
}

func TestUserDirectory_BootstrapInvalid(t *testing.T) {
	_, err := fat.OpenUserDirectory(store.NewMemoryStore(), testutil.NewTestHasher(), nil,
		[]fat.BootstrapUser{{Username: "x", Password: "no", Role: fat.RoleUser}})
	if !errors.Is(err, fat.ErrWeakPassword) {
		t.Errorf("OpenUserDirectory() error = %v, want ErrWeakPassword", err)
	}
}

func TestUserDirectory_CreateUser(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		role     fat.Role
		wantErr  error
	}{
		{name: "regular user", username: "carol", password: "s3cret", role: fat.RoleUser},
		{name: "admin", username: "ops", password: "s3cret", role: fat.RoleAdmin},
		{name: "duplicate", username: "bob", password: "s3cret", role: fat.RoleUser, wantErr: fat.ErrDuplicateUser},
		{name: "weak password", username: "carol", password: "ab", role: fat.RoleUser, wantErr: fat.ErrWeakPassword},
		{name: "invalid name", username: "ca rol", password: "s3cret", role: fat.RoleUser, wantErr: fat.ErrInvalidName},
		{name: "invalid role", username: "carol", password: "s3cret", role: "root", wantErr: fat.ErrInvalidName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := openDirectory(t, store.NewMemoryStore(), testutil.TestAccounts)

			err := d.CreateUser(tt.username, tt.password, tt.role)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("CreateUser() error = %v, want %v", err, tt.wantErr)
				}
				if tt.wantErr != fat.ErrDuplicateUser && d.Exists(tt.username) {
					t.Errorf("rejected user %q was added", tt.username)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateUser() error = %v", err)
			}
			if !d.Verify(tt.username, tt.password) {
				t.Error("Verify() with new password failed")
			}
			if got := d.IsAdmin(tt.username); got != (tt.role == fat.RoleAdmin) {
				t.Errorf("IsAdmin() = %v, want %v", got, tt.role == fat.RoleAdmin)
			}
		})
	}
}

func TestUserDirectory_StoresOnlyHashes(t *testing.T) {
	s := store.NewMemoryStore()
	d := openDirectory(t, s, nil)
	if err := d.CreateUser("carol", "plaintext-password", fat.RoleUser); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	raw, err := s.Get("users")
	if err != nil {
		t.Fatalf("Get(users) error = %v", err)
	}
	if strings.Contains(string(raw), "plaintext-password") {
		t.Error("password stored in clear")
	}
	for _, u := range d.List() {
		if u.PasswordHash != "" {
			t.Errorf("List() exposed hash for %s", u.Username)
		}
	}
}

func TestUserDirectory_Verify(t *testing.T) {
	d := openDirectory(t, store.NewMemoryStore(), testutil.TestAccounts)

	tests := []struct {
		user, password string
		want           bool
	}{
		{user: "bob", password: "bob", want: true},
		{user: "bob", password: "Bob", want: false},
		{user: "bob", password: "", want: false},
		{user: "nobody", password: "nobody", want: false},
		{user: "", password: "", want: false},
	}
	for _, tt := range tests {
		if got := d.Verify(tt.user, tt.password); got != tt.want {
			t.Errorf("Verify(%q, %q) = %v, want %v", tt.user, tt.password, got, tt.want)
		}
	}
}

func TestUserDirectory_List(t *testing.T) {
	d := openDirectory(t, store.NewMemoryStore(), testutil.TestAccounts)

	var got []string
	for _, u := range d.List() {
		got = append(got, u.Username+":"+string(u.Role))
	}
	if want := "admin:admin,bob:user,bob2:user"; strings.Join(got, ",") != want {
		t.Errorf("List() = %v, want %s", got, want)
	}
}

func TestUserDirectory_PersistFailure(t *testing.T) {
	s := testutil.NewFaultyStore()
	d := openDirectory(t, s, testutil.TestAccounts)
	s.FailPutsTo("users")

	if err := d.CreateUser("carol", "s3cret", fat.RoleUser); !errors.Is(err, testutil.ErrInjected) {
		t.Fatalf("CreateUser() error = %v, want ErrInjected", err)
	}
	if d.Exists("carol") {
		t.Error("user visible although persisting failed")
	}
}
