package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/appdom/internal/dom"
)

// SaveSnapshot records d as the state of app after every patch stored so
// far. The snapshot takes the highest sequence number in the app's history.
// Saving the same content twice is a no-op; saving different content at an
// occupied sequence moves the snapshot one step past it, so the next patch
// continues from the returned Seq.
//
// The Dom is written as canonical JSON and addressed by dom.Hash.
func (s *Store) SaveSnapshot(ctx context.Context, app string, d *dom.Dom) (Snapshot, error) {
	data, err := dom.Encode(d)
	if err != nil {
		return Snapshot{}, fmt.Errorf("save snapshot: %w", err)
	}
	hash, err := dom.Hash(d)
	if err != nil {
		return Snapshot{}, fmt.Errorf("save snapshot: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("save snapshot: begin: %w", err)
	}
	defer tx.Rollback()

	seq, err := headSeq(ctx, tx, app)
	if err != nil {
		return Snapshot{}, fmt.Errorf("save snapshot: %w", err)
	}

	var existing string
	err = tx.QueryRowContext(ctx,
		`SELECT hash FROM snapshots WHERE app = ? AND seq = ?`, app, seq,
	).Scan(&existing)
	switch {
	case err == nil && existing == hash:
		return Snapshot{App: app, Seq: seq, Hash: hash, Dom: d}, nil
	case err == nil:
		seq++
	case !errors.Is(err, sql.ErrNoRows):
		return Snapshot{}, fmt.Errorf("save snapshot: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (app, seq, hash, version, nodes, data)
		VALUES (?, ?, ?, ?, ?, ?)
	`, app, seq, hash, d.Version(), d.Len(), data)
	if err != nil {
		return Snapshot{}, fmt.Errorf("save snapshot: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Snapshot{}, fmt.Errorf("save snapshot: commit: %w", err)
	}

	slog.Debug("snapshot written", "app", app, "seq", seq, "hash", hash, "nodes", d.Len())
	return Snapshot{App: app, Seq: seq, Hash: hash, Dom: d}, nil
}

// AppendPatch records p as change number seq of app.
// Uses ON CONFLICT DO NOTHING for idempotency: writing the same patch at
// the same seq again succeeds, a different patch returns ErrSeqConflict.
func (s *Store) AppendPatch(ctx context.Context, app string, seq int64, p dom.Patch) error {
	if seq <= 0 {
		return fmt.Errorf("append patch: seq must be positive, got %d", seq)
	}
	data, err := dom.EncodePatch(p)
	if err != nil {
		return fmt.Errorf("append patch: %w", err)
	}
	hash, err := dom.HashPatch(p)
	if err != nil {
		return fmt.Errorf("append patch: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO patches (app, seq, hash, size, data)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(app, seq) DO NOTHING
	`, app, seq, hash, p.Len(), data)
	if err != nil {
		return fmt.Errorf("append patch: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("append patch: %w", err)
	}
	if n == 1 {
		return nil
	}

	var existing string
	if err := s.db.QueryRowContext(ctx,
		`SELECT hash FROM patches WHERE app = ? AND seq = ?`, app, seq,
	).Scan(&existing); err != nil {
		return fmt.Errorf("append patch: %w", err)
	}
	if existing != hash {
		return fmt.Errorf("append patch %s@%d: %w", app, seq, ErrSeqConflict)
	}
	return nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// headSeq returns the highest sequence number used by app, or 0.
func headSeq(ctx context.Context, q queryRower, app string) (int64, error) {
	var seq int64
	err := q.QueryRowContext(ctx, `
		SELECT MAX(
			COALESCE((SELECT MAX(seq) FROM patches WHERE app = ?), 0),
			COALESCE((SELECT MAX(seq) FROM snapshots WHERE app = ?), 0)
		)
	`, app, app).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("head seq: %w", err)
	}
	return seq, nil
}
