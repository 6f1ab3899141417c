package fat

// RoleLookup answers role questions for the guard.
type RoleLookup interface {
	IsAdmin(user string) bool
}

// Allowed reports whether user holds capability c on entry. The owner and
// admins always pass; everyone else must be listed in the matching set.
func Allowed(entry FileEntry, user string, c Capability, roles RoleLookup) bool {
	if user == "" {
		return false
	}
	if user == entry.Owner || roles.IsAdmin(user) {
		return true
	}
	switch c {
	case CapRead:
		return entry.Readers.Has(user)
	case CapWrite:
		return entry.Writers.Has(user)
	}
	return false
}

// CanTrash reports whether user may move entry to the trash or restore it.
// Only the owner may, unless adminCanTrash extends the right to admins.
func CanTrash(entry FileEntry, user string, roles RoleLookup, adminCanTrash bool) bool {
	if user == "" {
		return false
	}
	if user == entry.Owner {
		return true
	}
	return adminCanTrash && roles.IsAdmin(user)
}
