// Package pantry encodes structured Go values onto records of a record store.
//
// A value drives its own encoding: it implements Encodable and, given an
// Encoder bound to one record, asks for a keyed, unkeyed or single-value
// container and writes its fields through it. Every write funnels through the
// encoder, which matches the field key to an attribute of the record's schema,
// coerces the boxed primitive against the declared attribute type, and stores
// it. Nested Encodable fields are flattened onto the same record.
//
// Values that implement Codable also name the record they belong to through
// an Identifier. RecordEncoder resolves that identifier with find-or-create
// semantics, so encoding the same value twice mutates one record:
//
//	enc := pantry.NewRecordEncoder(store)
//	rec, err := enc.Encode(counter)
//	if err != nil {
//		return err
//	}
//	err = store.Save()
//
// The encoder never saves. Errors are *EncodingError values carrying the
// field path at the point of failure; misuse of the encoding model itself
// (unsupported nested containers, unboxable leaf types) panics with an
// *InvariantError.
//
// An encode pass is single-threaded. Callers sharing a store across
// goroutines must serialize encode calls per store.
package pantry
