// Package types defines the record store contracts consumed by the encoder:
// the declared attribute types of an entity schema, the store-native Value,
// the Record and Store interfaces, backend configuration, and the standard
// error values shared by store implementations.
package types
