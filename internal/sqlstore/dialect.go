package sqlstore

import (
	"strconv"
	"strings"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// dialect captures the SQL differences between the supported engines.
// Queries are written with ? placeholders and rebound per dialect.
type dialect struct {
	name       string // database/sql driver name
	blobType   string // column type for CBOR payloads
	positional bool   // $1, $2, ... instead of ?
}

var (
	sqliteDialect   = dialect{name: "sqlite", blobType: "BLOB"}
	postgresDialect = dialect{name: "postgres", blobType: "BYTEA", positional: true}
)

func dialectFor(backend string) (dialect, error) {
	switch backend {
	case types.BackendSQLite:
		return sqliteDialect, nil
	case types.BackendPostgres:
		return postgresDialect, nil
	}
	return dialect{}, types.ErrBackendUnknown
}

// rebind rewrites ? placeholders into the dialect's form.
func (d dialect) rebind(query string) string {
	if !d.positional {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
