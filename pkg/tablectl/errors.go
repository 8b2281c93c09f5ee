package tablectl

import (
	"fmt"

	"github.com/iota-uz/suggestion-admin/pkg/fields"
	"github.com/iota-uz/suggestion-admin/pkg/serrors"
)

var (
	ErrBusy       = serrors.NewError("BUSY", "operation already in progress", "Table.Errors.Busy")
	ErrReadOnly   = serrors.NewError("ROW_READ_ONLY", "saved rows change only through an open edit", "Table.Errors.ReadOnly")
	ErrValidation = serrors.NewError("VALIDATION_FAILED", "rows failed validation", "Table.Errors.Validation")
	ErrRemote     = serrors.NewError("REMOTE_FAILED", "backend request failed", "Table.Errors.Remote")
	ErrNoPending  = serrors.NewError("NOTHING_TO_SUBMIT", "there are no unsaved rows to submit", "Table.Errors.NoPending")
)

// ValidationError blocks a submit or save. It matches ErrValidation.
type ValidationError struct {
	Result fields.Result
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %d violation(s)", ErrValidation.Message, len(e.Result.Violations))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// RemoteFailure is a backend call that did not succeed. It matches ErrRemote
// and unwraps to the transport error.
type RemoteFailure struct {
	Op  Op
	Err error
}

func (e *RemoteFailure) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrRemote.Message, e.Op, e.Err)
}

func (e *RemoteFailure) Unwrap() []error {
	return []error{ErrRemote, e.Err}
}
