package types

import "errors"

// Record is a handle to one persisted entity instance. Reads and writes on a
// record are immediate; they reach the backing storage on Store.Save.
type Record interface {
	// ID returns the store-assigned record ID.
	ID() string

	// EntityName returns the entity kind of the record.
	EntityName() string

	// Attribute returns the declared attribute with the given name.
	Attribute(name string) (Attribute, bool)

	// Schema returns the record's attribute schema keyed by name.
	Schema() map[string]Attribute

	// Value returns the current value of an attribute.
	// Returns ErrAttributeNotFound if the schema has no such attribute.
	Value(name string) (Value, error)

	// SetValue writes v into the named attribute slot. Null clears the slot.
	// Returns ErrAttributeNotFound, ErrValueRequired or ErrTypeMismatch.
	SetValue(name string, v Value) error
}

// Store is the record store consumed by the encoder.
type Store interface {
	// FetchOne returns the first record of the entity whose attribute equals
	// key. Returns ErrNotFound if no record matches.
	FetchOne(entity, attribute string, key Value) (Record, error)

	// Insert creates a new, uncommitted record of the entity.
	Insert(entity string) (Record, error)

	// Save commits all pending inserts and mutations.
	Save() error
}

// Discarder is implemented by stores that can drop an unsaved insert.
// Encoders discard a record they created when encoding into it fails, so
// the half-written record never reaches Save.
type Discarder interface {
	// Discard removes r from the pending inserts. Saved records, and
	// records the store does not know, are left unchanged.
	Discard(r Record) error
}

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
)

// Record and schema errors.
var (
	ErrNotFound             = errors.New("record not found")
	ErrEntityNotFound       = errors.New("entity not found")
	ErrAttributeNotFound    = errors.New("attribute not found")
	ErrDuplicateAttribute   = errors.New("duplicate attribute")
	ErrInvalidAttributeType = errors.New("invalid attribute type")
	ErrInvalidIdentifier    = errors.New("invalid identifier attribute")
	ErrInvalidName          = errors.New("invalid name")
	ErrTypeMismatch         = errors.New("type mismatch")
	ErrValueRequired        = errors.New("value required")
)
