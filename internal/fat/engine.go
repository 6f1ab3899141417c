package fat

import "fmt"

// Options configures an Engine.
type Options struct {
	ChunkSize     int
	MaxHops       int
	AdminCanTrash bool
	Bootstrap     []BootstrapUser
}

// Engine bundles the components that share one record store. Front ends
// talk to Catalog, Users and Session only.
type Engine struct {
	Blocks  *BlockStore
	Catalog *Catalog
	Users   *UserDirectory
	Session *Session

	records RecordStore
}

// NewEngine loads the user directory and catalog from records and wires the
// block store, guard and session around them.
func NewEngine(records RecordStore, hasher PasswordHasher, logger Logger, clock Clock, idgen IDGenerator, opts Options) (*Engine, error) {
	if logger == nil {
		logger = NewNopLogger()
	}

	users, err := OpenUserDirectory(records, hasher, logger, opts.Bootstrap)
	if err != nil {
		return nil, fmt.Errorf("opening user directory: %w", err)
	}

	blocks := NewBlockStore(records, logger, opts.ChunkSize, opts.MaxHops)
	catalog, err := OpenCatalog(records, blocks, users, logger, clock, idgen, CatalogOptions{
		ChunkSize:     opts.ChunkSize,
		AdminCanTrash: opts.AdminCanTrash,
	})
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}

	return &Engine{
		Blocks:  blocks,
		Catalog: catalog,
		Users:   users,
		Session: NewSession(records, users, clock, logger),
		records: records,
	}, nil
}

// Close closes the underlying record store. The catalog is persisted on
// every mutation, so there is nothing left to flush.
func (e *Engine) Close() error {
	return e.records.Close()
}
