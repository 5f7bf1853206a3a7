package store

import (
	"context"
	"fmt"

	"github.com/roach88/appdom/internal/dom"
)

// Load rebuilds the current Dom of app: the latest snapshot with every later
// patch applied in seq order. Returns the Dom and the seq it reflects.
//
// The patches must continue the snapshot without gaps, and the result must
// satisfy dom.Verify; otherwise the history is reported as corrupt.
func (s *Store) Load(ctx context.Context, app string) (*dom.Dom, int64, error) {
	snap, err := s.LatestSnapshot(ctx, app)
	if err != nil {
		return nil, 0, fmt.Errorf("load %s: %w", app, err)
	}
	patches, err := s.ReadPatches(ctx, app, snap.Seq)
	if err != nil {
		return nil, 0, fmt.Errorf("load %s: %w", app, err)
	}

	d, seq := snap.Dom, snap.Seq
	for _, rec := range patches {
		if rec.Seq != seq+1 {
			return nil, 0, fmt.Errorf("load %s: expected seq %d, found %d: %w", app, seq+1, rec.Seq, ErrGap)
		}
		d = dom.ApplyPatch(d, rec.Patch)
		seq = rec.Seq
	}

	if vs := dom.Verify(d); len(vs) > 0 {
		return nil, 0, fmt.Errorf("load %s@%d: %w", app, seq, &dom.Error{
			Code:    dom.ErrCodeCorrupt,
			Message: vs[0].String(),
		})
	}
	return d, seq, nil
}
