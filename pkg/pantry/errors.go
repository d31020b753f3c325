package pantry

import (
	"fmt"
	"slices"
	"strings"
)

// ErrorKind categorizes an encoding error.
type ErrorKind string

const (
	// KindTypeMismatch: the value's type is incompatible with the attribute's
	// declared storage type, or the container cannot hold it at all.
	KindTypeMismatch ErrorKind = "type_mismatch"
	// KindValueNotFound: null was encoded for a non-optional attribute.
	KindValueNotFound ErrorKind = "value_not_found"
	// KindKeyNotFound: a write had no addressable key.
	KindKeyNotFound ErrorKind = "key_not_found"
	// KindAttributeNotFound: the record's schema has no attribute for the key.
	KindAttributeNotFound ErrorKind = "attribute_not_found"
)

// Sentinels for errors.Is. They match any *EncodingError of the same kind.
var (
	ErrTypeMismatch      = &EncodingError{Kind: KindTypeMismatch}
	ErrValueNotFound     = &EncodingError{Kind: KindValueNotFound}
	ErrKeyNotFound       = &EncodingError{Kind: KindKeyNotFound}
	ErrAttributeNotFound = &EncodingError{Kind: KindAttributeNotFound}
)

// EncodingError is a recoverable encoding failure.
type EncodingError struct {
	Kind   ErrorKind
	Path   Path   // field path at the point of failure
	Detail string // human-readable description
	Cause  error  // underlying error, if any
}

func (e *EncodingError) Error() string {
	var b strings.Builder
	b.WriteString("encode ")
	b.WriteString(strings.ReplaceAll(string(e.Kind), "_", " "))
	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(e.Path.String())
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *EncodingError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *EncodingError of the same kind.
func (e *EncodingError) Is(target error) bool {
	if t, ok := target.(*EncodingError); ok {
		return e.Kind == t.Kind
	}
	return false
}

// InvariantError is the panic value raised when the encoding model is used
// outside its contract. It is never returned as an error.
type InvariantError struct {
	Path   Path
	Detail string
}

func (e *InvariantError) Error() string {
	if len(e.Path) == 0 {
		return "pantry: invariant violated: " + e.Detail
	}
	return fmt.Sprintf("pantry: invariant violated at %s: %s", e.Path, e.Detail)
}

func fault(path Path, format string, args ...any) {
	panic(&InvariantError{
		Path:   slices.Clone(path),
		Detail: fmt.Sprintf(format, args...),
	})
}
