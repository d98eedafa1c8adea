package form

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrDuplicateName reports an attach whose name is already in use.
	ErrDuplicateName = errors.New("form: duplicate field name")
	// ErrTooManyFields reports an attach beyond the configured field limit.
	ErrTooManyFields = errors.New("form: too many fields")
	// ErrNilField reports an attach of a nil field.
	ErrNilField = errors.New("form: field is nil")
)

// DuplicateNameError carries the colliding field name. It unwraps to
// ErrDuplicateName.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("form: there already exists a field with the name %q", e.Name)
}

func (e *DuplicateNameError) Unwrap() error {
	return ErrDuplicateName
}
