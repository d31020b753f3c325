// Package sqlstore implements the reference record store: entity schemas and
// records kept in SQL (SQLite or PostgreSQL) behind an in-memory unit of
// work. Inserted records and attribute writes stay pending until Save.
package sqlstore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// dbFileName is the SQLite database file inside the data directory.
const dbFileName = "pantry.db"

// timestampLayout is fixed width so created_at sorts lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

// Backend implements types.Store over a SQL database.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	dialect  dialect
	entities map[string]types.Entity

	// Unit of work: every record handed out since the last Save or Reset,
	// in registration order.
	records map[string]*record
	order   []*record
}

var _ types.Store = (*Backend)(nil)

// NewBackend creates a new backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{
		entities: make(map[string]types.Entity),
		records:  make(map[string]*record),
	}
}

// Attach opens the database named by config, creates the schema if needed,
// and loads the defined entities.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}
	d, err := dialectFor(config.Backend)
	if err != nil {
		return err
	}

	dsn := config.DSN
	if config.Backend == types.BackendSQLite {
		dataDir := config.DataDir
		if dataDir == "" {
			dataDir = "."
		}
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return err
		}
		dsn = filepath.Join(dataDir, dbFileName)
	}

	db, err := sql.Open(d.name, dsn)
	if err != nil {
		return err
	}
	if config.Backend == types.BackendSQLite {
		// One writer; transactions would otherwise hit SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}
	if err := b.attachDB(db, d); err != nil {
		db.Close()
		return err
	}
	b.config = config

	Logger().Debug("attached store",
		zap.String("backend", config.Backend),
		zap.Int("entities", len(b.entities)))
	return nil
}

// attachDB prepares an open database. The caller must hold b.mu.
func (b *Backend) attachDB(db *sql.DB, d dialect) error {
	for _, stmt := range schemaStatements(d) {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	entities, err := loadEntities(db, d)
	if err != nil {
		return fmt.Errorf("load entities: %w", err)
	}

	b.db = db
	b.dialect = d
	b.entities = entities
	b.records = make(map[string]*record)
	b.order = nil
	b.attached = true
	return nil
}

// Detach releases the database connection and discards unsaved state.
// After Detach, all operations return ErrStoreDetached.
// Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	if len(b.order) > 0 {
		Logger().Debug("discarding unsaved records", zap.Int("records", len(b.order)))
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}

	b.attached = false
	b.entities = make(map[string]types.Entity)
	b.records = make(map[string]*record)
	b.order = nil
	return nil
}

// Config returns the configuration the backend was attached with.
func (b *Backend) Config() types.Config {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.config
}

// generateUUID generates a new UUID v7 for record IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}

func now() time.Time { return time.Now().UTC() }
