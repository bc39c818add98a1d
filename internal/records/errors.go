package records

import "errors"

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
	// ErrInvalidReference covers folder, parent, and tag references that do
	// not exist or belong to another owner.
	ErrInvalidReference = errors.New("invalid record reference")
	// ErrConflict is returned when an expected updated_at no longer matches.
	ErrConflict = errors.New("record modified concurrently")
)
