package fat

import "errors"

// Error taxonomy. Callers match with errors.Is; operations wrap these with
// the offending name so messages stay useful.
var (
	ErrInvalidName      = errors.New("invalid name")
	ErrDuplicateName    = errors.New("file already exists")
	ErrDuplicateUser    = errors.New("user already exists")
	ErrWeakPassword     = errors.New("password too short")
	ErrUnknownUser      = errors.New("unknown user")
	ErrNotFound         = errors.New("file not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrSizeExceeded     = errors.New("content exceeds size limit")
	ErrInvalidContent   = errors.New("content is not valid UTF-8")
	ErrNotApplicable    = errors.New("permission change not applicable")
	ErrNoSession        = errors.New("no user logged in")

	// ErrCorruption is returned together with best-effort partial content
	// when a chain cannot be walked to its end. It is never fatal.
	ErrCorruption = errors.New("block chain corrupted")

	// ErrRecordNotFound is returned by RecordStore.Get for absent keys.
	ErrRecordNotFound = errors.New("record not found")
)
