package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrModeFieldMismatch signals a parse mode that cannot be combined with the given field list.
	ErrModeFieldMismatch = errors.New("mode field mismatch")
	// ErrIncompatibleParseMode signals a parse mode that cannot compile the given keys.
	ErrIncompatibleParseMode = errors.New("incompatible parse mode")
	// ErrSortUnsupported signals a field the engine cannot sort by.
	ErrSortUnsupported = errors.New("sort unsupported")
	// ErrUnknownDataType signals a data type missing from the registry.
	ErrUnknownDataType = errors.New("unknown data type")
	// ErrInvalidKeys signals a malformed generic key structure.
	ErrInvalidKeys = errors.New("invalid keys")
)

// QueryError is the single error kind raised while building a query.
// Kind is one of the sentinels above.
type QueryError struct {
	Kind    error
	Message string
}

func (e *QueryError) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Message
}

func (e *QueryError) Unwrap() error { return e.Kind }

// NewQueryError creates a QueryError of the given kind with a formatted message.
func NewQueryError(kind error, format string, args ...any) error {
	return &QueryError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
