package checkpoint

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jarvisai/jarvis/internal/observability"
	"github.com/jarvisai/jarvis/pkg/models"
	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// SQLiteCheckpointer is the required local single-file embedded Checkpointer
// backend (spec §4.6). It reuses the storage shape the teacher's
// internal/memory/backend/sqlitevec package established for its own
// embedded table (one row per version, monotonic version column, blob/JSON
// payload), generalized here to a checkpoint row instead of a vector-memory
// row.
type SQLiteCheckpointer struct {
	db      *sql.DB
	merge   MergeFunc
	metrics *observability.Metrics
}

// SetMetrics attaches a metrics recorder that Put/UpdatePartial report write
// latency to. Nil (the default) disables recording entirely.
func (c *SQLiteCheckpointer) SetMetrics(m *observability.Metrics) {
	c.metrics = m
}

// SQLiteConfig configures the durable checkpointer.
type SQLiteConfig struct {
	// Path to the SQLite database file. ":memory:" is valid but defeats the
	// point of a durable backend - callers that want in-memory semantics
	// should use MemoryCheckpointer instead.
	Path string
}

// NewSQLiteCheckpointer opens (creating if necessary) a durable checkpoint
// store at cfg.Path. merge is typically agent.MergeMessages.
func NewSQLiteCheckpointer(cfg SQLiteConfig, merge MergeFunc) (*SQLiteCheckpointer, error) {
	if cfg.Path == "" {
		return nil, errors.New("checkpoint: sqlite path is required")
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: open database: %w", err)
	}

	c := &SQLiteCheckpointer{db: db, merge: merge}
	if err := c.init(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func (c *SQLiteCheckpointer) init() error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS checkpoints (
			thread_id TEXT NOT NULL,
			version   INTEGER NOT NULL,
			state     TEXT NOT NULL,
			next      TEXT NOT NULL,
			PRIMARY KEY (thread_id, version)
		)
	`)
	if err != nil {
		return fmt.Errorf("checkpoint: create table: %w", err)
	}
	return nil
}

// GetLatest returns the highest-version row for threadID (monotonicity,
// spec §4.6/I2: every write is a new row with a strictly higher version, so
// MAX(version) is always the most recently committed write).
func (c *SQLiteCheckpointer) GetLatest(ctx context.Context, threadID string) (*Checkpoint, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT version, state, next FROM checkpoints
		WHERE thread_id = ? ORDER BY version DESC LIMIT 1
	`, threadID)

	var version int64
	var stateJSON, nextJSON string
	if err := row.Scan(&version, &stateJSON, &nextJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("checkpoint: get latest: %w", err)
	}

	return decodeCheckpoint(threadID, version, stateJSON, nextJSON)
}

// Put writes a full checkpoint as a new row. The write happens inside a
// transaction that reads the current max version and inserts version+1, so
// a partial write is never observable (spec §4.6: atomic per write) - either
// the new row commits whole or the transaction rolls back and GetLatest
// keeps returning the prior version.
func (c *SQLiteCheckpointer) Put(ctx context.Context, threadID string, state *models.AgentState, next []string) (*Checkpoint, error) {
	start := time.Now()
	defer c.recordWrite(start)

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: begin tx: %w", err)
	}
	defer tx.Rollback()

	version, err := nextVersion(ctx, tx, threadID)
	if err != nil {
		return nil, err
	}

	cp := &Checkpoint{ThreadID: threadID, Version: version, State: state.Clone(), Next: append([]string(nil), next...)}
	if err := insertCheckpoint(ctx, tx, cp); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("checkpoint: commit: %w", err)
	}
	return cp.Clone(), nil
}

// UpdatePartial folds delta into the latest checkpoint's state and writes
// the result as a new version, within a single transaction so the read of
// the prior state and the write of the new one are atomic with respect to
// concurrent writers for the same thread_id.
func (c *SQLiteCheckpointer) UpdatePartial(ctx context.Context, threadID string, delta StateDelta, next []string) (*Checkpoint, error) {
	start := time.Now()
	defer c.recordWrite(start)

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT version, state FROM checkpoints
		WHERE thread_id = ? ORDER BY version DESC LIMIT 1
	`, threadID)

	var version int64
	var stateJSON string
	if err := row.Scan(&version, &stateJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("checkpoint: update partial: read latest: %w", err)
	}

	var existingState models.AgentState
	if err := json.Unmarshal([]byte(stateJSON), &existingState); err != nil {
		return nil, fmt.Errorf("checkpoint: decode state: %w", err)
	}

	newState, err := ApplyDelta(&existingState, delta, c.merge)
	if err != nil {
		return nil, err
	}

	cp := &Checkpoint{ThreadID: threadID, Version: version + 1, State: newState, Next: append([]string(nil), next...)}
	if err := insertCheckpoint(ctx, tx, cp); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("checkpoint: commit: %w", err)
	}
	return cp.Clone(), nil
}

func (c *SQLiteCheckpointer) Close() error {
	return c.db.Close()
}

func (c *SQLiteCheckpointer) recordWrite(start time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.RecordCheckpointWrite("sqlite", time.Since(start).Seconds())
}

func nextVersion(ctx context.Context, tx *sql.Tx, threadID string) (int64, error) {
	var maxVersion sql.NullInt64
	err := tx.QueryRowContext(ctx, `SELECT MAX(version) FROM checkpoints WHERE thread_id = ?`, threadID).Scan(&maxVersion)
	if err != nil {
		return 0, fmt.Errorf("checkpoint: read max version: %w", err)
	}
	if !maxVersion.Valid {
		return 1, nil
	}
	return maxVersion.Int64 + 1, nil
}

func insertCheckpoint(ctx context.Context, tx *sql.Tx, cp *Checkpoint) error {
	stateJSON, err := json.Marshal(cp.State)
	if err != nil {
		return fmt.Errorf("checkpoint: encode state: %w", err)
	}
	nextJSON, err := json.Marshal(cp.Next)
	if err != nil {
		return fmt.Errorf("checkpoint: encode next: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO checkpoints (thread_id, version, state, next) VALUES (?, ?, ?, ?)
	`, cp.ThreadID, cp.Version, string(stateJSON), string(nextJSON))
	if err != nil {
		return fmt.Errorf("checkpoint: insert: %w", err)
	}
	return nil
}

func decodeCheckpoint(threadID string, version int64, stateJSON, nextJSON string) (*Checkpoint, error) {
	var state models.AgentState
	if err := json.Unmarshal([]byte(stateJSON), &state); err != nil {
		return nil, fmt.Errorf("checkpoint: decode state: %w", err)
	}
	var next []string
	if err := json.Unmarshal([]byte(nextJSON), &next); err != nil {
		return nil, fmt.Errorf("checkpoint: decode next: %w", err)
	}
	return &Checkpoint{ThreadID: threadID, Version: version, State: &state, Next: next}, nil
}
