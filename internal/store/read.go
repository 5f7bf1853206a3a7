package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/appdom/internal/dom"
)

// Snapshot is a stored Dom together with the sequence number it covers.
type Snapshot struct {
	App  string
	Seq  int64
	Hash string
	Dom  *dom.Dom
}

// PatchRecord is one stored change.
type PatchRecord struct {
	App   string
	Seq   int64
	Hash  string
	Patch dom.Patch
}

// Entry kinds reported by History.
const (
	EntryPatch    = "patch"
	EntrySnapshot = "snapshot"
)

// Entry summarizes one history record without decoding it.
// Size is the node count for snapshots and the entry count for patches.
type Entry struct {
	Seq  int64  `json:"seq"`
	Type string `json:"type"`
	Hash string `json:"hash"`
	Size int    `json:"size"`
}

// LatestSnapshot returns the snapshot of app with the highest seq.
// Returns ErrNoSnapshot if the app has none. The stored hash is checked
// against the decoded Dom.
func (s *Store) LatestSnapshot(ctx context.Context, app string) (Snapshot, error) {
	var (
		snap = Snapshot{App: app}
		data []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT seq, hash, data
		FROM snapshots
		WHERE app = ?
		ORDER BY seq DESC
		LIMIT 1
	`, app).Scan(&snap.Seq, &snap.Hash, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, fmt.Errorf("latest snapshot %s: %w", app, ErrNoSnapshot)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("latest snapshot %s: %w", app, err)
	}

	d, err := dom.Decode(data)
	if err != nil {
		return Snapshot{}, fmt.Errorf("latest snapshot %s@%d: %w", app, snap.Seq, err)
	}
	hash, err := dom.Hash(d)
	if err != nil {
		return Snapshot{}, fmt.Errorf("latest snapshot %s@%d: %w", app, snap.Seq, err)
	}
	if hash != snap.Hash {
		return Snapshot{}, fmt.Errorf("latest snapshot %s@%d: %w", app, snap.Seq, ErrHashMismatch)
	}
	snap.Dom = d
	return snap, nil
}

// ReadPatches returns the patches of app with seq greater than afterSeq,
// ordered by seq. Returns an empty slice (not nil) if there are none.
func (s *Store) ReadPatches(ctx context.Context, app string, afterSeq int64) ([]PatchRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, hash, data
		FROM patches
		WHERE app = ? AND seq > ?
		ORDER BY seq ASC
	`, app, afterSeq)
	if err != nil {
		return nil, fmt.Errorf("query patches: %w", err)
	}
	defer rows.Close()

	records := []PatchRecord{}
	for rows.Next() {
		rec := PatchRecord{App: app}
		var data []byte
		if err := rows.Scan(&rec.Seq, &rec.Hash, &data); err != nil {
			return nil, fmt.Errorf("scan patch: %w", err)
		}
		p, err := dom.DecodePatch(data)
		if err != nil {
			return nil, fmt.Errorf("patch %s@%d: %w", app, rec.Seq, err)
		}
		hash, err := dom.HashPatch(p)
		if err != nil {
			return nil, fmt.Errorf("patch %s@%d: %w", app, rec.Seq, err)
		}
		if hash != rec.Hash {
			return nil, fmt.Errorf("patch %s@%d: %w", app, rec.Seq, ErrHashMismatch)
		}
		rec.Patch = p
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate patches: %w", err)
	}
	return records, nil
}

// Apps lists every app with at least one stored record, sorted.
func (s *Store) Apps(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT app FROM snapshots
		UNION
		SELECT app FROM patches
		ORDER BY app COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query apps: %w", err)
	}
	defer rows.Close()

	apps := []string{}
	for rows.Next() {
		var app string
		if err := rows.Scan(&app); err != nil {
			return nil, fmt.Errorf("scan app: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate apps: %w", err)
	}
	return apps, nil
}

// History lists the snapshots and patches of app in seq order. A patch
// sorts before a snapshot with the same seq, since the snapshot includes it.
func (s *Store) History(ctx context.Context, app string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, 'patch' AS type, hash, size FROM patches WHERE app = ?
		UNION ALL
		SELECT seq, 'snapshot' AS type, hash, nodes FROM snapshots WHERE app = ?
		ORDER BY seq ASC, type ASC
	`, app, app)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Seq, &e.Type, &e.Hash, &e.Size); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return entries, nil
}

// Head returns the highest seq recorded for app, or 0.
func (s *Store) Head(ctx context.Context, app string) (int64, error) {
	return headSeq(ctx, s.db, app)
}
