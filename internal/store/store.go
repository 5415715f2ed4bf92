// Package store is the durable persistence gateway. Entities are staged with
// Insert and made durable only by Commit, which flushes all staged inserts in
// one transaction: they succeed together or none are durable and the staged
// set is kept for retry. Records are stored as JSON documents in per-kind
// rows, fetched back in insertion order.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/habitcards/assistant/internal/models"
	"go.uber.org/zap"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS items (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	kind TEXT NOT NULL,
	id TEXT NOT NULL UNIQUE,
	data TEXT NOT NULL,
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_items_kind ON items(kind);

CREATE TABLE IF NOT EXISTS profiles (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	name TEXT NOT NULL,
	avatar_index INTEGER NOT NULL,
	created_at DATETIME NOT NULL
);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS items (
	seq BIGSERIAL PRIMARY KEY,
	kind TEXT NOT NULL,
	id TEXT NOT NULL UNIQUE,
	data TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_items_kind ON items(kind);

CREATE TABLE IF NOT EXISTS profiles (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	name TEXT NOT NULL,
	avatar_index INTEGER NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
`

// Gateway provides staged-insert/atomic-commit access to the durable store.
// It is the single writer: staging and commits are serialized internally.
type Gateway struct {
	db     *sql.DB
	logger *zap.Logger

	mu     sync.Mutex
	staged []stagedItem
}

type stagedItem struct {
	kind      string
	id        uuid.UUID
	data      []byte
	createdAt time.Time
}

// Open connects to the store and runs idempotent schema migrations. The
// sqlite driver creates the database file's directory if needed.
func Open(driver, dsn string, logger *zap.Logger) (*Gateway, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		db     *sql.DB
		schema string
		err    error
	)
	switch driver {
	case DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
		// modernc's driver takes pragmas as _pragma=name(value) pairs.
		db, err = sql.Open("sqlite", dsn+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
		if err == nil {
			// SQLite supports one writer at a time.
			db.SetMaxOpenConns(1)
			db.SetMaxIdleConns(1)
		}
		schema = sqliteSchema
	case DriverPostgres:
		db, err = sql.Open("postgres", dsn)
		schema = postgresSchema
	default:
		return nil, fmt.Errorf("unsupported store driver: %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logger.Warn("failed_to_close_store_after_migrate_error", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("migrate store: %w", err)
	}

	return &Gateway{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (g *Gateway) Close() error { return g.db.Close() }

// Ping verifies the store connection.
func (g *Gateway) Ping(ctx context.Context) error { return g.db.PingContext(ctx) }

// Insert stages an entity for durable storage. Nothing is durable until
// Commit succeeds.
func (g *Gateway) Insert(item models.Item) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal %s item: %w", item.Collection(), err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.staged = append(g.staged, stagedItem{
		kind:      item.Collection(),
		id:        item.ItemID(),
		data:      data,
		createdAt: time.Now().UTC(),
	})
	return nil
}

// StagedCount reports how many inserts are waiting for the next commit.
func (g *Gateway) StagedCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.staged)
}

// Commit flushes all staged inserts in one transaction. On failure nothing is
// durable and the staged set is kept so the caller can retry.
func (g *Gateway) Commit(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.staged) == 0 {
		return nil
	}

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin commit: %w", err)
	}

	for _, item := range g.staged {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO items (kind, id, data, created_at) VALUES ($1, $2, $3, $4)`,
			item.kind, item.id.String(), string(item.data), item.createdAt,
		); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				g.logger.Warn("failed_to_rollback_commit", zap.Error(rbErr))
			}
			return fmt.Errorf("failed to insert %s item: %w", item.kind, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	g.logger.Debug("store_commit", zap.Int("items", len(g.staged)))
	g.staged = nil
	return nil
}

// DiscardStaged drops all staged inserts without committing them.
func (g *Gateway) DiscardStaged() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.staged = nil
}

// Count returns the number of durable entities in a collection without
// materializing them.
func (g *Gateway) Count(ctx context.Context, kind string) (int, error) {
	var n int
	err := g.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM items WHERE kind = $1`, kind,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s items: %w", kind, err)
	}
	return n, nil
}

// fetchRaw returns the JSON documents of a collection in insertion order.
func (g *Gateway) fetchRaw(ctx context.Context, kind string) ([][]byte, error) {
	rows, err := g.db.QueryContext(ctx,
		`SELECT data FROM items WHERE kind = $1 ORDER BY seq`, kind,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s items: %w", kind, err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			g.logger.Warn("failed_to_close_rows", zap.Error(closeErr))
		}
	}()

	var docs [][]byte
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan %s item: %w", kind, err)
		}
		docs = append(docs, data)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s items: %w", kind, err)
	}
	return docs, nil
}

// Update rewrites a committed entity's document, used for user-driven toggles
// (step completed flags, alarm/block on-off) that are persisted as part of
// the owning entity.
func (g *Gateway) Update(ctx context.Context, item models.Item) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal %s item: %w", item.Collection(), err)
	}

	result, err := g.db.ExecContext(ctx,
		`UPDATE items SET data = $1 WHERE id = $2 AND kind = $3`,
		string(data), item.ItemID().String(), item.Collection(),
	)
	if err != nil {
		return fmt.Errorf("failed to update %s item: %w", item.Collection(), err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%s item not found", item.Collection())
	}
	return nil
}

// InsertRaw stores a pre-serialized document directly, bypassing staging.
// Used by the backend server whose CRUD contract commits immediately.
func (g *Gateway) InsertRaw(ctx context.Context, kind, id string, data []byte) error {
	if _, err := g.db.ExecContext(ctx,
		`INSERT INTO items (kind, id, data, created_at) VALUES ($1, $2, $3, $4)`,
		kind, id, string(data), time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("failed to insert %s item: %w", kind, err)
	}
	return nil
}

// FetchRawByID returns one document by id, or (nil, nil) if absent.
func (g *Gateway) FetchRawByID(ctx context.Context, kind, id string) ([]byte, error) {
	var data []byte
	err := g.db.QueryRowContext(ctx,
		`SELECT data FROM items WHERE kind = $1 AND id = $2`, kind, id,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s item: %w", kind, err)
	}
	return data, nil
}

// Delete removes one document by id.
func (g *Gateway) Delete(ctx context.Context, kind, id string) error {
	if _, err := g.db.ExecContext(ctx,
		`DELETE FROM items WHERE kind = $1 AND id = $2`, kind, id,
	); err != nil {
		return fmt.Errorf("failed to delete %s item: %w", kind, err)
	}
	return nil
}

// FetchRawAll exposes a collection's documents in insertion order for the
// backend's list endpoints.
func (g *Gateway) FetchRawAll(ctx context.Context, kind string) ([][]byte, error) {
	return g.fetchRaw(ctx, kind)
}

// Profile returns the singleton user profile, or (nil, nil) when onboarding
// has not completed.
func (g *Gateway) Profile(ctx context.Context) (*models.UserProfile, error) {
	p := &models.UserProfile{}
	err := g.db.QueryRowContext(ctx,
		`SELECT name, avatar_index, created_at FROM profiles WHERE id = 1`,
	).Scan(&p.Name, &p.AvatarIndex, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

// SaveProfile commits the singleton user profile.
func (g *Gateway) SaveProfile(ctx context.Context, p *models.UserProfile) error {
	if _, err := g.db.ExecContext(ctx,
		`INSERT INTO profiles (id, name, avatar_index, created_at) VALUES (1, $1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET name = $1, avatar_index = $2`,
		p.Name, p.AvatarIndex, p.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}
