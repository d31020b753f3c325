package pantry

import (
	"errors"
	"fmt"
	"maps"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// BatchPolicy decides what EncodeAll does when one element fails.
type BatchPolicy int

const (
	// FailFast stops at the first failing element and returns no records.
	FailFast BatchPolicy = iota
	// ContinueOnError skips failing elements, returns the records of the
	// others in input order, and joins the element errors.
	ContinueOnError
)

// Option configures a RecordEncoder.
type Option func(*RecordEncoder)

// WithUserInfo sets caller options exposed to Encodable values through
// Encoder.UserInfo. The core does not interpret them.
func WithUserInfo(info map[string]any) Option {
	return func(r *RecordEncoder) { r.userInfo = maps.Clone(info) }
}

// WithStrictNil makes unkeyed containers reject nil instead of ignoring it.
func WithStrictNil(strict bool) Option {
	return func(r *RecordEncoder) { r.strictNil = strict }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(r *RecordEncoder) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithBatchPolicy sets the EncodeAll failure policy.
func WithBatchPolicy(p BatchPolicy) Option {
	return func(r *RecordEncoder) { r.policy = p }
}

// RecordEncoder encodes Codable values into records of one store. Saving is
// left to the caller.
type RecordEncoder struct {
	store     types.Store
	userInfo  map[string]any
	strictNil bool
	policy    BatchPolicy
	logger    *zap.Logger
}

// NewRecordEncoder returns an encoder writing into store.
func NewRecordEncoder(store types.Store, opts ...Option) *RecordEncoder {
	r := &RecordEncoder{
		store:    store,
		userInfo: map[string]any{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Encode resolves the record identified by v, creating it when absent, and
// encodes v onto it. The record is returned even though it is not saved.
//
// When encoding fails the record is rolled back: a record created by this
// call is discarded from the store, and the previous values of an existing
// record are written back.
func (r *RecordEncoder) Encode(v Codable) (types.Record, error) {
	id := v.RecordIdentifier()
	if id == nil {
		fault(nil, "%T has no record identifier", v)
	}
	tracker := &insertTracker{Store: r.store}
	record, err := id.FindOrCreate(tracker)
	if err != nil {
		for _, created := range tracker.inserted {
			r.discard(created)
		}
		return nil, fmt.Errorf("resolve record: %w", err)
	}

	created := tracker.created(record)
	var before map[string]types.Value
	if !created {
		before = snapshot(record)
	}

	enc := newEncoder(r.store, record, r.userInfo, r.strictNil, r.logger)
	if err := v.EncodeRecord(enc); err != nil {
		if created {
			r.discard(record)
		} else {
			r.restore(record, before)
		}
		return nil, err
	}

	r.logger.Debug("encoded record",
		zap.String("entity", record.EntityName()),
		zap.String("record_id", record.ID()),
		zap.Bool("created", created))
	return record, nil
}

// discard drops a record created by a failed encode.
func (r *RecordEncoder) discard(record types.Record) {
	d, ok := r.store.(types.Discarder)
	if !ok {
		r.logger.Warn("store cannot discard records; failed record stays pending",
			zap.String("entity", record.EntityName()),
			zap.String("record_id", record.ID()))
		return
	}
	if err := d.Discard(record); err != nil {
		r.logger.Warn("discard failed record",
			zap.String("entity", record.EntityName()),
			zap.String("record_id", record.ID()),
			zap.Error(err))
	}
}

// restore writes back the attribute values captured by snapshot.
func (r *RecordEncoder) restore(record types.Record, before map[string]types.Value) {
	for name, old := range before {
		cur, err := record.Value(name)
		if err != nil || cur.Equal(old) {
			continue
		}
		if err := record.SetValue(name, old); err != nil {
			r.logger.Warn("restore attribute",
				zap.String("entity", record.EntityName()),
				zap.String("attribute", name),
				zap.Error(err))
		}
	}
}

func snapshot(record types.Record) map[string]types.Value {
	values := make(map[string]types.Value)
	for name := range record.Schema() {
		if v, err := record.Value(name); err == nil {
			values[name] = v
		}
	}
	return values
}

// insertTracker remembers the records inserted through it, so Encode can
// tell a created record from a fetched one.
type insertTracker struct {
	types.Store
	inserted []types.Record
}

func (t *insertTracker) Insert(entity string) (types.Record, error) {
	record, err := t.Store.Insert(entity)
	if err == nil {
		t.inserted = append(t.inserted, record)
	}
	return record, err
}

func (t *insertTracker) created(record types.Record) bool {
	for _, r := range t.inserted {
		if r == record {
			return true
		}
	}
	return false
}

// EncodeAll encodes values in order and returns their records in the same
// order. Failures are handled according to the encoder's BatchPolicy. A
// failed element is rolled back as in Encode; under FailFast the records of
// the elements before it stay pending in the store.
func EncodeAll[T Codable](r *RecordEncoder, values []T) ([]types.Record, error) {
	records := make([]types.Record, 0, len(values))
	var errs []error
	for i, v := range values {
		record, err := r.Encode(v)
		if err != nil {
			err = fmt.Errorf("element %d: %w", i, err)
			if r.policy == FailFast {
				return nil, err
			}
			r.logger.Warn("skipping element", zap.Int("index", i), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		records = append(records, record)
	}
	return records, errors.Join(errs...)
}

// Encode encodes v into store with default options.
func Encode(store types.Store, v Codable) (types.Record, error) {
	return NewRecordEncoder(store).Encode(v)
}
