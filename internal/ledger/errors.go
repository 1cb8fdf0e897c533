package ledger

import (
	"errors"
	"fmt"
)

// Kind classifies a failed ledger operation for callers that map failures to
// transport-level responses.
type Kind int

const (
	KindValidation Kind = iota + 1 // malformed or out-of-range input
	KindNotFound                   // referenced entity does not exist
	KindConflict                   // concurrent mutation raced on the same key
	KindStorage                    // persistence layer could not commit
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindStorage:
		return "storage"
	}
	return "unknown"
}

// Error is a structured ledger failure. Validation and NotFound errors are
// raised before any mutation; Storage errors mean the whole unit of work was
// rolled back.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func notFoundf(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func conflictf(format string, args ...any) error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

func storage(msg string, err error) error {
	return &Error{Kind: KindStorage, Msg: msg, Err: err}
}

// KindOf extracts the Kind from an error chain, or KindStorage for errors that
// did not originate in the ledger.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}
