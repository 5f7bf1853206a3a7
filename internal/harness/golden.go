package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/appdom/internal/ir"
	"github.com/roach88/appdom/internal/render"
)

// Snapshot captures the trace and final render tree of a scenario run.
type Snapshot struct {
	ScenarioName string
	Trace        []TraceEvent
	Render       ir.IRValue
}

// NewSnapshot builds the golden snapshot of a result.
func NewSnapshot(name string, result *Result) (*Snapshot, error) {
	s := &Snapshot{ScenarioName: name, Trace: result.Trace}
	if result.Final != nil {
		data, err := render.Project(result.Final).MarshalJSON()
		if err != nil {
			return nil, err
		}
		if s.Render, err = ir.UnmarshalIRValue(data); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// toCanonicalMap converts a Snapshot to a map[string]any for canonical JSON
// serialization.
func (s *Snapshot) toCanonicalMap() map[string]any {
	trace := make([]any, len(s.Trace))
	for i, ev := range s.Trace {
		m := map[string]any{
			"seq":     ev.Seq,
			"op":      ev.Op,
			"entries": ev.Entries,
		}
		if ev.Node != "" {
			m["node"] = ev.Node
		}
		if ev.Error != "" {
			m["error"] = ev.Error
		}
		trace[i] = m
	}
	return map[string]any{
		"scenario": s.ScenarioName,
		"trace":    trace,
		"render":   s.Render,
	}
}

// MarshalCanonical encodes the snapshot as canonical JSON.
func (s *Snapshot) MarshalCanonical() ([]byte, error) {
	return ir.MarshalCanonical(s.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can also check Pass.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	snap, err := NewSnapshot(name, result)
	if err != nil {
		return err
	}
	data, err := snap.MarshalCanonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
