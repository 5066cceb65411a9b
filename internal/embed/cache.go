package embed

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"
	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// Cache stores embedding vectors in SQLite, keyed by model and text.
type Cache struct {
	db *sql.DB
}

// OpenCache opens or creates the cache database at path.
func OpenCache(path string) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("embed cache: create dir: %w", err)
		}
	}

	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("embed cache: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("embed cache: pragma %q: %w", p, err)
		}
	}

	c := &Cache{db: db}
	if err := c.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("embed cache: migration: %w", err)
	}
	return c, nil
}

func (c *Cache) migrate() error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS embeddings (
			key        TEXT PRIMARY KEY,
			model      TEXT    NOT NULL,
			dims       INTEGER NOT NULL,
			vector     BLOB    NOT NULL,
			created_at TEXT    NOT NULL DEFAULT (datetime('now'))
		);
	`)
	return err
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Key returns the cache key for text embedded with model.
func Key(model, text string) string {
	hasher := blake3.New()
	_, _ = hasher.Write([]byte(model))
	_, _ = hasher.Write([]byte{0})
	_, _ = hasher.Write([]byte(text))
	return fmt.Sprintf("%x", hasher.Sum(nil))
}

// Get returns the cached vector, if present.
func (c *Cache) Get(ctx context.Context, model, text string) ([]float32, bool, error) {
	var blob []byte
	err := c.db.QueryRowContext(ctx,
		`SELECT vector FROM embeddings WHERE key = ?`, Key(model, text)).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("embed cache: get: %w", err)
	}
	return bytesToFloat32(blob), true, nil
}

// Put stores a vector, replacing any previous one for the same key.
func (c *Cache) Put(ctx context.Context, model, text string, vector []float32) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO embeddings (key, model, dims, vector) VALUES (?, ?, ?, ?)`,
		Key(model, text), model, len(vector), float32ToBytes(vector))
	if err != nil {
		return fmt.Errorf("embed cache: put: %w", err)
	}
	return nil
}

// Count returns the number of cached vectors.
func (c *Cache) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM embeddings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("embed cache: count: %w", err)
	}
	return n, nil
}

func float32ToBytes(vec []float32) []byte {
	buf := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func bytesToFloat32(buf []byte) []float32 {
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vec
}
