package pantry

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// Encodable is implemented by values that drive their own encoding. An
// implementation asks enc for one container and writes its fields into it.
type Encodable interface {
	EncodeRecord(enc *Encoder) error
}

// Codable is an Encodable value that also identifies the record backing it.
type Codable interface {
	Encodable
	RecordIdentifier() Identifier
}

// Encoder holds the state of one encoding pass: the bound record, the store
// it came from, the field path, and the caller's user info. An Encoder is
// owned by a single encode call and must not be shared across goroutines.
type Encoder struct {
	store     types.Store
	record    types.Record
	path      Path
	userInfo  map[string]any
	strictNil bool
	logger    *zap.Logger
}

func newEncoder(store types.Store, record types.Record, userInfo map[string]any, strictNil bool, logger *zap.Logger) *Encoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Encoder{
		store:     store,
		record:    record,
		userInfo:  userInfo,
		strictNil: strictNil,
		logger:    logger,
	}
}

// Record returns the record being encoded.
func (e *Encoder) Record() types.Record { return e.record }

// Store returns the store the record belongs to.
func (e *Encoder) Store() types.Store { return e.store }

// Path returns a copy of the current field path.
func (e *Encoder) Path() Path { return slices.Clone(e.path) }

// UserInfo returns a copy of the caller-supplied options.
func (e *Encoder) UserInfo() map[string]any { return maps.Clone(e.userInfo) }

// UserValue returns one caller-supplied option.
func (e *Encoder) UserValue(key string) (any, bool) {
	v, ok := e.userInfo[key]
	return v, ok
}

// KeyedContainer returns a container addressing attributes by field name.
func (e *Encoder) KeyedContainer() *KeyedContainer {
	return &KeyedContainer{enc: e}
}

// UnkeyedContainer returns a container for sequential values. Records have
// no ordered attributes, so it rejects every value.
func (e *Encoder) UnkeyedContainer() *UnkeyedContainer {
	return &UnkeyedContainer{enc: e}
}

// SingleValueContainer returns a container writing one value to the
// attribute named by the innermost key of the current path.
func (e *Encoder) SingleValueContainer() *SingleValueContainer {
	return &SingleValueContainer{enc: e}
}

// withKey runs fn with key pushed onto the path. The key is popped on every
// exit, including panics.
func (e *Encoder) withKey(key CodingKey, fn func() error) error {
	e.path = append(e.path, key)
	defer func() { e.path = e.path[:len(e.path)-1] }()
	return fn()
}

// setAttribute writes v into the attribute named by key on the bound record.
// It is the single point through which every container stores a value.
func (e *Encoder) setAttribute(v types.Value, key CodingKey) error {
	if key.IsIndex() || key.Name == "" {
		return e.errorf(KindKeyNotFound, nil, "key %q does not name an attribute", key.String())
	}
	attr, ok := e.record.Attribute(key.Name)
	if !ok {
		return e.errorf(KindAttributeNotFound, types.ErrAttributeNotFound,
			"entity %s has no attribute %q", e.record.EntityName(), key.Name)
	}

	stored, err := attr.Coerce(v)
	if err != nil {
		if errors.Is(err, types.ErrValueRequired) {
			return e.errorf(KindValueNotFound, err, "attribute %q is not optional", key.Name)
		}
		return e.errorf(KindTypeMismatch, err, "cannot store %s value in %s attribute %q", v.Kind(), attr.Type, key.Name)
	}

	if err := e.record.SetValue(key.Name, stored); err != nil {
		switch {
		case errors.Is(err, types.ErrValueRequired):
			return e.errorf(KindValueNotFound, err, "attribute %q is not optional", key.Name)
		case errors.Is(err, types.ErrTypeMismatch):
			return e.errorf(KindTypeMismatch, err, "record rejected %s value for attribute %q", v.Kind(), key.Name)
		case errors.Is(err, types.ErrAttributeNotFound):
			return e.errorf(KindAttributeNotFound, err, "record has no attribute %q", key.Name)
		}
		return fmt.Errorf("set %s.%s at %s: %w", e.record.EntityName(), key.Name, e.Path(), err)
	}
	return nil
}

func (e *Encoder) errorf(kind ErrorKind, cause error, format string, args ...any) *EncodingError {
	return &EncodingError{
		Kind:   kind,
		Path:   e.Path(),
		Detail: fmt.Sprintf(format, args...),
		Cause:  cause,
	}
}
