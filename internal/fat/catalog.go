package fat

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"
)

const catalogKey = "catalog"

// CatalogOptions configures a Catalog.
type CatalogOptions struct {
	// ChunkSize is passed to BlockStore.Write; <= 0 uses the block store default.
	ChunkSize int

	// AdminCanTrash lets admins trash and restore files they do not own.
	AdminCanTrash bool
}

// Users is what the catalog needs from the user directory.
type Users interface {
	RoleLookup
	Exists(user string) bool
}

// Catalog is the FAT table: an ordered list of FileEntry mirrored to the
// record store. Every mutation is applied to a copy, persisted in full and
// only then made visible, so memory never runs ahead of storage.
type Catalog struct {
	mu      sync.RWMutex
	entries []FileEntry

	records RecordStore
	blocks  *BlockStore
	users   Users
	logger  Logger
	clock   Clock
	idgen   IDGenerator
	opts    CatalogOptions
}

// OpenCatalog loads the catalog from records. A missing catalog record is
// an empty catalog.
func OpenCatalog(records RecordStore, blocks *BlockStore, users Users, logger Logger, clock Clock, idgen IDGenerator, opts CatalogOptions) (*Catalog, error) {
	c := &Catalog{
		records: records,
		blocks:  blocks,
		users:   users,
		logger:  withComponent(logger, "catalog"),
		clock:   clock,
		idgen:   idgen,
		opts:    opts,
	}

	data, err := records.Get(catalogKey)
	switch {
	case errors.Is(err, ErrRecordNotFound):
		return c, nil
	case err != nil:
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	if err := json.Unmarshal(data, &c.entries); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	c.logger.Debug("catalog loaded", "entries", len(c.entries))
	return c, nil
}

// Create adds a new file owned by actor with content stored as a fresh chain.
func (c *Catalog) Create(name, content, actor string) (FileEntry, error) {
	if err := ValidateFileName(name); err != nil {
		return FileEntry{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkActor(actor); err != nil {
		return FileEntry{}, err
	}
	if c.active(name) >= 0 {
		return FileEntry{}, fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}

	first, err := c.blocks.Write(content, c.chainName(name), c.opts.ChunkSize)
	if err != nil {
		return FileEntry{}, fmt.Errorf("creating %q: %w", name, err)
	}

	now := c.clock.Now()
	entry := FileEntry{
		Name:          name,
		FirstBlockKey: first,
		Size:          utf8.RuneCountInString(content),
		CreatedAt:     now,
		ModifiedAt:    now,
		Owner:         actor,
		Readers:       UserSet{actor},
		Writers:       UserSet{actor},
	}

	next := append(c.snapshot(), entry)
	if err := c.commit(next); err != nil {
		if ferr := c.blocks.Free(first); ferr != nil {
			c.logger.Error("freeing chain of uncommitted file", "name", name, "error", ferr)
		}
		return FileEntry{}, err
	}

	c.logger.Info("file created", "name", name, "actor", actor, "size", entry.Size)
	return entry.clone(), nil
}

// Read returns the content of an active file. A corrupted chain yields the
// recoverable prefix and an error wrapping ErrCorruption.
func (c *Catalog) Read(name, actor string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, err := c.authorize(name, actor, CapRead)
	if err != nil {
		return "", err
	}
	content, err := c.blocks.Read(entry.FirstBlockKey)
	if err != nil {
		return content, fmt.Errorf("reading %q: %w", name, err)
	}
	return content, nil
}

// Stat returns the metadata of an active file readable by actor.
func (c *Catalog) Stat(name, actor string) (FileEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, err := c.authorize(name, actor, CapRead)
	if err != nil {
		return FileEntry{}, err
	}
	return entry.clone(), nil
}

// Chain returns the blocks of an active file readable by actor.
func (c *Catalog) Chain(name, actor string) ([]ChainLink, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, err := c.authorize(name, actor, CapRead)
	if err != nil {
		return nil, err
	}
	return c.blocks.Links(entry.FirstBlockKey)
}

// Update replaces the content of an active file. The old chain is freed
// before the new one is written; if the write then fails the file is left
// empty and the write error is returned. If the catalog cannot be persisted
// afterwards, the new chain is freed too and the in-memory entry is left
// empty, since its old chain no longer exists.
func (c *Catalog) Update(name, content, actor string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.authorize(name, actor, CapWrite); err != nil {
		return err
	}
	if err := CheckContent(content); err != nil {
		return fmt.Errorf("updating %q: %w", name, err)
	}

	next := c.snapshot()
	i := c.active(name)
	entry := &next[i]

	if err := c.blocks.Free(entry.FirstBlockKey); err != nil {
		return fmt.Errorf("freeing old chain of %q: %w", name, err)
	}

	first, werr := c.blocks.Write(content, c.chainName(name), c.opts.ChunkSize)
	entry.ModifiedAt = c.clock.Now()
	if werr != nil {
		entry.FirstBlockKey, entry.Size = "", 0
		c.logger.Error("content lost after failed rewrite", "name", name, "error", werr)
	} else {
		entry.FirstBlockKey, entry.Size = first, utf8.RuneCountInString(content)
	}

	if err := c.commit(next); err != nil {
		if ferr := c.blocks.Free(first); ferr != nil {
			c.logger.Error("freeing chain of uncommitted update", "name", name, "error", ferr)
		}
		c.entries[i].FirstBlockKey, c.entries[i].Size = "", 0
		c.logger.Error("content lost after failed update commit", "name", name, "error", err)
		return errors.Join(err, werr)
	}
	if werr != nil {
		return fmt.Errorf("updating %q: %w", name, werr)
	}

	c.logger.Info("file updated", "name", name, "actor", actor, "size", entry.Size)
	return nil
}

// Trash moves an active file to the recycle bin. Its blocks are kept.
func (c *Catalog) Trash(name, actor string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkActor(actor); err != nil {
		return err
	}
	i := c.active(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if !CanTrash(c.entries[i], actor, c.users, c.opts.AdminCanTrash) {
		return fmt.Errorf("%w: only the owner may delete %q", ErrPermissionDenied, name)
	}

	next := c.snapshot()
	now := c.clock.Now()
	next[i].Trashed = true
	next[i].DeletedAt = &now
	if err := c.commit(next); err != nil {
		return err
	}

	c.logger.Info("file trashed", "name", name, "actor", actor)
	return nil
}

// Restore brings the most recently trashed file called name back. It fails
// with ErrDuplicateName when an active file already uses the name.
func (c *Catalog) Restore(name, actor string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkActor(actor); err != nil {
		return err
	}
	i := c.trashed(name)
	if i < 0 {
		return fmt.Errorf("%w: %q is not in the trash", ErrNotFound, name)
	}
	if !CanTrash(c.entries[i], actor, c.users, c.opts.AdminCanTrash) {
		return fmt.Errorf("%w: only the owner may restore %q", ErrPermissionDenied, name)
	}
	if c.active(name) >= 0 {
		return fmt.Errorf("%w: %q is in use by an active file", ErrDuplicateName, name)
	}

	next := c.snapshot()
	next[i].Trashed = false
	next[i].DeletedAt = nil
	if err := c.commit(next); err != nil {
		return err
	}

	c.logger.Info("file restored", "name", name, "actor", actor)
	return nil
}

// Grant adds target to the capability set of an active file. Admins only.
func (c *Catalog) Grant(name, target string, capability Capability, actor string) error {
	return c.editPermission(name, target, capability, actor, true)
}

// Revoke removes target from the capability set of an active file. Admins only.
func (c *Catalog) Revoke(name, target string, capability Capability, actor string) error {
	return c.editPermission(name, target, capability, actor, false)
}

func (c *Catalog) editPermission(name, target string, capability Capability, actor string, grant bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkActor(actor); err != nil {
		return err
	}
	if !c.users.IsAdmin(actor) {
		return fmt.Errorf("%w: only administrators manage permissions", ErrPermissionDenied)
	}
	if _, ok := ParseCapability(string(capability)); !ok {
		return fmt.Errorf("%w: unknown capability %q", ErrNotApplicable, capability)
	}
	i := c.active(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if !c.users.Exists(target) {
		return fmt.Errorf("%w: %q", ErrUnknownUser, target)
	}

	next := c.snapshot()
	set := next[i].set(capability)
	var changed bool
	if grant {
		*set, changed = set.Add(target)
	} else {
		*set, changed = set.Remove(target)
	}
	if !changed {
		verb := "already has"
		if !grant {
			verb = "does not have"
		}
		return fmt.Errorf("%w: %q %s %s access to %q", ErrNotApplicable, target, verb, capability, name)
	}

	if err := c.commit(next); err != nil {
		return err
	}
	c.logger.Info("permission changed", "name", name, "target", target,
		"capability", string(capability), "grant", grant, "actor", actor)
	return nil
}

// List returns entries in insertion order. Listing is not gated by read
// permission; trashed entries are included only when includeTrashed is set.
func (c *Catalog) List(actor string, includeTrashed bool) ([]FileEntry, error) {
	return c.filter(actor, func(e FileEntry) bool { return includeTrashed || !e.Trashed })
}

// ListTrash returns only the trashed entries, in insertion order.
func (c *Catalog) ListTrash(actor string) ([]FileEntry, error) {
	return c.filter(actor, func(e FileEntry) bool { return e.Trashed })
}

func (c *Catalog) filter(actor string, keep func(FileEntry) bool) ([]FileEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := c.checkActor(actor); err != nil {
		return nil, err
	}
	var out []FileEntry
	for _, e := range c.entries {
		if keep(e) {
			out = append(out, e.clone())
		}
	}
	return out, nil
}

// authorize resolves an active entry and checks capability c for actor.
// Callers hold c.mu.
func (c *Catalog) authorize(name, actor string, capability Capability) (FileEntry, error) {
	if err := c.checkActor(actor); err != nil {
		return FileEntry{}, err
	}
	i := c.active(name)
	if i < 0 {
		return FileEntry{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if !Allowed(c.entries[i], actor, capability, c.users) {
		return FileEntry{}, fmt.Errorf("%w: %s access to %q", ErrPermissionDenied, capability, name)
	}
	return c.entries[i], nil
}

func (c *Catalog) checkActor(actor string) error {
	if !c.users.Exists(actor) {
		return fmt.Errorf("%w: acting user %q", ErrUnknownUser, actor)
	}
	return nil
}

// active returns the index of the active entry called name, or -1.
func (c *Catalog) active(name string) int {
	for i, e := range c.entries {
		if e.Name == name && !e.Trashed {
			return i
		}
	}
	return -1
}

// trashed returns the index of the most recently trashed entry called name, or -1.
func (c *Catalog) trashed(name string) int {
	best := -1
	for i, e := range c.entries {
		if e.Name != name || !e.Trashed {
			continue
		}
		if best < 0 || e.DeletedAt == nil || c.entries[best].DeletedAt == nil ||
			!e.DeletedAt.Before(*c.entries[best].DeletedAt) {
			best = i
		}
	}
	return best
}

// maxChainPrefix caps the name-derived part of a chain's base name so block
// keys stay short enough to be file names.
const maxChainPrefix = 64

// chainName returns a base name unique to one write of name.
func (c *Catalog) chainName(name string) string {
	prefix := SanitizeBaseName(name)
	if len(prefix) > maxChainPrefix {
		prefix = prefix[:maxChainPrefix]
	}
	return prefix + "-" + c.idgen.New()
}

func (c *Catalog) snapshot() []FileEntry {
	out := make([]FileEntry, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.clone()
	}
	return out
}

// commit persists next as the whole catalog and then installs it.
func (c *Catalog) commit(next []FileEntry) error {
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}
	if err := c.records.Put(catalogKey, data); err != nil {
		return fmt.Errorf("persisting catalog: %w", err)
	}
	c.entries = next
	return nil
}
