package app

import (
	"errors"
	"fmt"
	"os"

	"fat-go/internal/auth"
	"fat-go/internal/config"
	"fat-go/internal/encryption"
	"fat-go/internal/fat"
	"fat-go/internal/store"
)

// FatApp is the application layer between the CLI and the engine.
// It constructs all dependencies from config, resolves the acting user from
// the persisted session, and closes the record store on Close.
type FatApp struct {
	cfg     *config.Config
	engine  *fat.Engine
	logger  fat.Logger
	op      *Operation
	logFile *os.File
}

// NewFatApp creates a fully wired FatApp from the given config.
// operation identifies the CLI command being run (e.g. "CreateFile", "Grant").
// The caller must call Close when done.
func NewFatApp(cfg *config.Config, operation string) (*FatApp, error) {
	op := NewOperation(operation, fat.RealClock{}.Now())

	slogger, logFile, err := newLogger(cfg.LogDir, op.ID, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	records, err := store.NewRecordStoreFromConfig(cfg.Store)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating record store: %w", err)
	}

	cipher, err := encryption.NewCipherFromConfig(cfg.Encryption, passphrase)
	if err != nil {
		records.Close()
		logFile.Close()
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	if cipher != nil {
		records = store.NewEncryptedStore(records, cipher)
	}

	engine, err := fat.NewEngine(records, auth.NewBcryptHasher(cfg.Users.BcryptCost), logger,
		fat.RealClock{}, fat.UUIDGenerator{}, engineOptions(cfg))
	if err != nil {
		records.Close()
		logFile.Close()
		return nil, fmt.Errorf("opening engine: %w", err)
	}

	logger.Debug("operation started", "operation", op.Name, "store", cfg.Store.Type)
	return &FatApp{
		cfg:     cfg,
		engine:  engine,
		logger:  logger,
		op:      op,
		logFile: logFile,
	}, nil
}

func engineOptions(cfg *config.Config) fat.Options {
	opts := fat.Options{
		ChunkSize:     cfg.Catalog.ChunkSize,
		MaxHops:       cfg.Catalog.MaxHops,
		AdminCanTrash: cfg.Catalog.AdminCanTrash,
	}
	for _, u := range cfg.Users.Bootstrap {
		opts.Bootstrap = append(opts.Bootstrap, fat.BootstrapUser{
			Username: u.Username,
			Password: u.Password,
			Role:     fat.Role(u.Role),
		})
	}
	return opts
}

// actor returns the logged-in user.
func (a *FatApp) actor() (string, error) {
	user, err := a.engine.Session.Current()
	if errors.Is(err, fat.ErrNoSession) {
		return "", fmt.Errorf("%w: run `fat login USER` first", err)
	}
	if err != nil {
		return "", err
	}
	a.op.Actor = user
	return user, nil
}

// Login verifies the credentials and starts a session.
func (a *FatApp) Login(username, password string) error {
	a.op.Actor = username
	return a.op.Record(a.engine.Session.Login(username, password))
}

// Logout ends the current session.
func (a *FatApp) Logout() error {
	return a.op.Record(a.engine.Session.Logout())
}

// WhoAmI returns the logged-in user and whether they are an administrator.
func (a *FatApp) WhoAmI() (string, bool, error) {
	user, err := a.actor()
	if err != nil {
		return "", false, a.op.Record(err)
	}
	return user, a.engine.Users.IsAdmin(user), nil
}

// CreateUser adds an account. Only administrators may create accounts.
func (a *FatApp) CreateUser(username, password string, admin bool) error {
	actor, err := a.actor()
	if err != nil {
		return a.op.Record(err)
	}
	if !a.engine.Users.IsAdmin(actor) {
		return a.op.Record(fmt.Errorf("%w: only administrators create users", fat.ErrPermissionDenied))
	}
	role := fat.RoleUser
	if admin {
		role = fat.RoleAdmin
	}
	return a.op.Record(a.engine.Users.CreateUser(username, password, role))
}

// ListUsers returns every account without password hashes.
func (a *FatApp) ListUsers() ([]fat.UserRecord, error) {
	if _, err := a.actor(); err != nil {
		return nil, a.op.Record(err)
	}
	return a.engine.Users.List(), nil
}

// CreateFile stores content under name, owned by the logged-in user.
func (a *FatApp) CreateFile(name, content string) (fat.FileEntry, error) {
	actor, err := a.actor()
	if err != nil {
		return fat.FileEntry{}, a.op.Record(err)
	}
	entry, err := a.engine.Catalog.Create(name, content, actor)
	return entry, a.op.Record(err)
}

// ListFiles returns active files, plus trashed ones when all is set.
func (a *FatApp) ListFiles(all bool) ([]fat.FileEntry, error) {
	actor, err := a.actor()
	if err != nil {
		return nil, a.op.Record(err)
	}
	entries, err := a.engine.Catalog.List(actor, all)
	return entries, a.op.Record(err)
}

// ListTrash returns the files in the recycle bin.
func (a *FatApp) ListTrash() ([]fat.FileEntry, error) {
	actor, err := a.actor()
	if err != nil {
		return nil, a.op.Record(err)
	}
	entries, err := a.engine.Catalog.ListTrash(actor)
	return entries, a.op.Record(err)
}

// ReadFile returns the content of name. On a broken chain the recoverable
// prefix is returned together with the error.
func (a *FatApp) ReadFile(name string) (string, error) {
	actor, err := a.actor()
	if err != nil {
		return "", a.op.Record(err)
	}
	content, err := a.engine.Catalog.Read(name, actor)
	return content, a.op.Record(err)
}

// StatFile returns the metadata of name.
func (a *FatApp) StatFile(name string) (fat.FileEntry, error) {
	actor, err := a.actor()
	if err != nil {
		return fat.FileEntry{}, a.op.Record(err)
	}
	entry, err := a.engine.Catalog.Stat(name, actor)
	return entry, a.op.Record(err)
}

// Chain returns the blocks backing name.
func (a *FatApp) Chain(name string) ([]fat.ChainLink, error) {
	actor, err := a.actor()
	if err != nil {
		return nil, a.op.Record(err)
	}
	links, err := a.engine.Catalog.Chain(name, actor)
	return links, a.op.Record(err)
}

// UpdateFile replaces the content of name.
func (a *FatApp) UpdateFile(name, content string) error {
	actor, err := a.actor()
	if err != nil {
		return a.op.Record(err)
	}
	return a.op.Record(a.engine.Catalog.Update(name, content, actor))
}

// TrashFile moves name to the recycle bin.
func (a *FatApp) TrashFile(name string) error {
	actor, err := a.actor()
	if err != nil {
		return a.op.Record(err)
	}
	return a.op.Record(a.engine.Catalog.Trash(name, actor))
}

// RestoreFile brings name back from the recycle bin.
func (a *FatApp) RestoreFile(name string) error {
	actor, err := a.actor()
	if err != nil {
		return a.op.Record(err)
	}
	return a.op.Record(a.engine.Catalog.Restore(name, actor))
}

// Grant gives target the capability on name.
func (a *FatApp) Grant(name, target, capability string) error {
	return a.editPermission(name, target, capability, a.engine.Catalog.Grant)
}

// Revoke takes the capability on name away from target.
func (a *FatApp) Revoke(name, target, capability string) error {
	return a.editPermission(name, target, capability, a.engine.Catalog.Revoke)
}

func (a *FatApp) editPermission(name, target, capability string, edit func(string, string, fat.Capability, string) error) error {
	actor, err := a.actor()
	if err != nil {
		return a.op.Record(err)
	}
	c, ok := fat.ParseCapability(capability)
	if !ok {
		return a.op.Record(fmt.Errorf("%w: capability must be read or write, got %q", fat.ErrNotApplicable, capability))
	}
	return a.op.Record(edit(name, target, c, actor))
}

// Close reports the outcome of the operation and releases the record store
// and log file.
func (a *FatApp) Close() error {
	a.logger.Debug("operation finished", "operation", a.op.Name, "actor", a.op.Actor, "status", a.op.Status)

	var firstErr error
	if err := a.engine.Close(); err != nil {
		firstErr = fmt.Errorf("closing record store: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}
