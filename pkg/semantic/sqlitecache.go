package semantic

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	"github.com/zeebo/blake3"
	_ "modernc.org/sqlite"
)

// SQLiteCache persists embeddings across runs. Rows are keyed by a BLAKE3
// hash of model identifier and text, so vectors from one model can never be
// served for another. An in-memory cache in front provides the
// single-flight discipline and keeps hot vectors off disk.
type SQLiteCache struct {
	conn  *sql.DB
	model string
	mem   *MemoryCache
}

// OpenSQLiteCache opens or creates the cache database at path.
func OpenSQLiteCache(path, model string) (*SQLiteCache, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening embedding cache: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("setting pragma: %w", err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS embeddings (
			key TEXT PRIMARY KEY,
			model TEXT NOT NULL,
			vector BLOB NOT NULL,
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_embeddings_model ON embeddings(model);
	`
	if _, err := conn.Exec(schema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("initializing embedding cache schema: %w", err)
	}

	return &SQLiteCache{
		conn:  conn,
		model: model,
		mem:   NewMemoryCache(),
	}, nil
}

// GetOrCompute checks memory, then disk, then computes. Stored vectors are
// only written after a successful computation.
func (c *SQLiteCache) GetOrCompute(ctx context.Context, text string, compute func(context.Context) ([]float32, error)) ([]float32, error) {
	return c.mem.GetOrCompute(ctx, text, func(ctx context.Context) ([]float32, error) {
		key := c.key(text)
		if vec, ok := c.lookup(ctx, key); ok {
			return vec, nil
		}
		vec, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		c.store(ctx, key, vec)
		return vec, nil
	})
}

// Close closes the underlying database.
func (c *SQLiteCache) Close() error {
	return c.conn.Close()
}

func (c *SQLiteCache) key(text string) string {
	h := blake3.New()
	_, _ = h.Write([]byte(c.model))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

func (c *SQLiteCache) lookup(ctx context.Context, key string) ([]float32, bool) {
	var blob []byte
	err := c.conn.QueryRowContext(ctx, "SELECT vector FROM embeddings WHERE key = ?", key).Scan(&blob)
	if err != nil {
		return nil, false
	}
	vec, err := decodeVector(blob)
	if err != nil {
		return nil, false
	}
	return vec, true
}

// store is best effort; a write failure degrades the cache, not the
// comparison. INSERT OR IGNORE keeps concurrent writers idempotent.
func (c *SQLiteCache) store(ctx context.Context, key string, vec []float32) {
	_, _ = c.conn.ExecContext(ctx,
		"INSERT OR IGNORE INTO embeddings (key, model, vector, created_at) VALUES (?, ?, ?, ?)",
		key, c.model, encodeVector(vec), time.Now().Unix())
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("malformed vector blob of %d bytes", len(blob))
	}
	vec := make([]float32, len(blob)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vec, nil
}
