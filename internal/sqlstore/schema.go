package sqlstore

import "fmt"

// Schema DDL. Every statement is idempotent so Attach can run it against an
// existing database.
const (
	createEntities = `CREATE TABLE IF NOT EXISTS entities (
    name TEXT PRIMARY KEY,
    identifier TEXT NOT NULL
)`

	createAttributes = `CREATE TABLE IF NOT EXISTS attributes (
    entity TEXT NOT NULL,
    name TEXT NOT NULL,
    type TEXT NOT NULL,
    optional INTEGER NOT NULL,
    ordinal INTEGER NOT NULL,
    PRIMARY KEY (entity, name)
)`

	createRecords = `CREATE TABLE IF NOT EXISTS records (
    record_id TEXT PRIMARY KEY,
    entity TEXT NOT NULL,
    created_at TEXT NOT NULL
)`

	createRecordValues = `CREATE TABLE IF NOT EXISTS record_values (
    record_id TEXT NOT NULL,
    attribute TEXT NOT NULL,
    kind TEXT NOT NULL,
    value %s,
    lookup TEXT,
    PRIMARY KEY (record_id, attribute)
)`

	createRecordsIndex = `CREATE INDEX IF NOT EXISTS idx_records_entity ON records (entity, created_at)`

	createLookupIndex = `CREATE INDEX IF NOT EXISTS idx_record_values_lookup ON record_values (attribute, lookup)`
)

// schemaStatements returns the DDL for d in execution order.
func schemaStatements(d dialect) []string {
	return []string{
		createEntities,
		createAttributes,
		createRecords,
		fmt.Sprintf(createRecordValues, d.blobType),
		createRecordsIndex,
		createLookupIndex,
	}
}

// Queries, written with ? placeholders.
const (
	selectEntities = `SELECT e.name, e.identifier, a.name, a.type, a.optional
FROM entities e JOIN attributes a ON a.entity = e.name
ORDER BY e.name, a.ordinal`

	upsertEntity = `INSERT INTO entities (name, identifier) VALUES (?, ?)
ON CONFLICT (name) DO UPDATE SET identifier = excluded.identifier`

	deleteAttributes = `DELETE FROM attributes WHERE entity = ?`

	insertAttribute = `INSERT INTO attributes (entity, name, type, optional, ordinal) VALUES (?, ?, ?, ?, ?)`

	selectRecordByKey = `SELECT r.record_id FROM records r
JOIN record_values v ON v.record_id = r.record_id
WHERE r.entity = ? AND v.attribute = ? AND v.lookup = ?
ORDER BY r.created_at, r.record_id LIMIT 1`

	selectRecordIDs = `SELECT record_id FROM records WHERE entity = ? ORDER BY created_at, record_id`

	countRecords = `SELECT COUNT(*) FROM records WHERE entity = ?`

	selectRecordValues = `SELECT attribute, kind, value FROM record_values WHERE record_id = ?`

	insertRecord = `INSERT INTO records (record_id, entity, created_at) VALUES (?, ?, ?)`

	upsertRecordValue = `INSERT INTO record_values (record_id, attribute, kind, value, lookup) VALUES (?, ?, ?, ?, ?)
ON CONFLICT (record_id, attribute) DO UPDATE SET kind = excluded.kind, value = excluded.value, lookup = excluded.lookup`
)
