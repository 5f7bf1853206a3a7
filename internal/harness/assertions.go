package harness

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/appdom/internal/dom"
	"github.com/roach88/appdom/internal/ir"
	"github.com/roach88/appdom/internal/render"
	"github.com/roach88/appdom/internal/store"
)

// AssertionContext is what assertions evaluate against.
type AssertionContext struct {
	Ctx    context.Context
	Dom    *dom.Dom
	Seq    int64
	App    string
	Store  *store.Store
	Labels map[string]dom.NodeID
}

func (a *AssertionContext) resolve(label string) dom.NodeID {
	if id, ok := a.Labels[label]; ok {
		return id
	}
	return dom.NodeID(label)
}

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for i, ev := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] seq=%d %s", i+1, ev.Seq, ev.Op)
		if ev.Node != "" {
			fmt.Fprintf(&buf, " node=%s", ev.Node)
		}
		if ev.Error != "" {
			fmt.Fprintf(&buf, " error=%s", ev.Error)
		}
		buf.WriteByte('\n')
	}

	return buf.String()
}

// EvaluateAssertions runs all assertions and returns failure messages.
// An empty slice means every assertion held.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var failures []string
	for i, a := range assertions {
		if err := evaluate(a, actx, result.Trace); err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return failures
}

func evaluate(a Assertion, actx *AssertionContext, trace []TraceEvent) error {
	fail := func(expected, actual string) error {
		return &AssertionError{Type: a.Type, Expected: expected, Actual: actual, Trace: trace}
	}
	d := actx.Dom

	switch a.Type {
	case AssertValid:
		if vs := dom.Verify(d); len(vs) > 0 {
			msgs := make([]string, len(vs))
			for i, v := range vs {
				msgs[i] = v.String()
			}
			return fail("no violations", strings.Join(msgs, "; "))
		}

	case AssertCount:
		n := 0
		for _, node := range d.Nodes() {
			if a.Kind == "" || node.Kind == dom.Kind(a.Kind) {
				n++
			}
		}
		if n != *a.Count {
			return fail(fmt.Sprintf("%d %s nodes", *a.Count, kindLabel(a.Kind)), fmt.Sprintf("%d", n))
		}

	case AssertSeq:
		if actx.Seq != int64(*a.Count) {
			return fail(fmt.Sprintf("seq %d", *a.Count), fmt.Sprintf("seq %d", actx.Seq))
		}

	case AssertAbsent:
		if id := actx.resolve(a.Node); d.Has(id) {
			return fail(fmt.Sprintf("%s absent", a.Node), fmt.Sprintf("%s present as %s", a.Node, id))
		}

	case AssertPresent:
		if id := actx.resolve(a.Node); !d.Has(id) {
			return fail(fmt.Sprintf("%s present", a.Node), fmt.Sprintf("no node %s", id))
		}

	case AssertName:
		n, err := d.Get(actx.resolve(a.Node))
		if err != nil {
			return fail(fmt.Sprintf("name %v", a.Equals), err.Error())
		}
		if want := fmt.Sprint(a.Equals); n.Name != want {
			return fail(fmt.Sprintf("name %q", want), fmt.Sprintf("name %q", n.Name))
		}

	case AssertChildren:
		id := actx.resolve(a.Node)
		if !d.Has(id) {
			return fail(fmt.Sprintf("children of %s", a.Node), fmt.Sprintf("no node %s", id))
		}
		var got []string
		for _, c := range d.ChildrenOf(id, a.Relation) {
			got = append(got, c.Name)
		}
		if !slices.Equal(got, a.Names) {
			return fail(fmt.Sprintf("%s.%s = %v", a.Node, a.Relation, a.Names), fmt.Sprintf("%v", got))
		}

	case AssertParent:
		n, err := d.Get(actx.resolve(a.Node))
		if err != nil {
			return fail(fmt.Sprintf("parent %s", a.Parent), err.Error())
		}
		want := actx.resolve(a.Parent)
		if n.ParentID != want || (a.Relation != "" && n.ParentRelation != a.Relation) {
			return fail(fmt.Sprintf("parent %s.%s", want, a.Relation),
				fmt.Sprintf("parent %s.%s", n.ParentID, n.ParentRelation))
		}

	case AssertProp, AssertParam:
		n, err := d.Get(actx.resolve(a.Node))
		if err != nil {
			return fail(fmt.Sprintf("%s %s", a.Type, a.Key), err.Error())
		}
		got := n.Prop(a.Key)
		if a.Type == AssertParam {
			got = n.Param(a.Key)
		}
		if a.Equals == nil {
			if got != nil {
				return fail(fmt.Sprintf("%s %s unset", a.Type, a.Key), formatValue(got))
			}
			return nil
		}
		want, err := ir.FromAny(a.Equals)
		if err != nil {
			return fmt.Errorf("equals: %w", err)
		}
		if !ir.Equal(got, want) {
			return fail(formatValue(want), formatValue(got))
		}

	case AssertRendered:
		id := actx.resolve(a.Node)
		visible := render.Project(d).Dom().Has(id)
		if visible == a.Hidden {
			return fail(fmt.Sprintf("%s hidden=%t", a.Node, a.Hidden), fmt.Sprintf("hidden=%t", !visible))
		}

	case AssertReplay:
		loaded, seq, err := actx.Store.Load(actx.Ctx, actx.App)
		if err != nil {
			return fail("store replays the document", err.Error())
		}
		if seq != actx.Seq {
			return fail(fmt.Sprintf("replayed seq %d", actx.Seq), fmt.Sprintf("seq %d", seq))
		}
		want, err := dom.Hash(d)
		if err != nil {
			return err
		}
		got, err := dom.Hash(loaded)
		if err != nil {
			return err
		}
		if got != want {
			return fail("hash "+want, "hash "+got)
		}

	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

func kindLabel(k string) string {
	if k == "" {
		return "total"
	}
	return k
}

func formatValue(v ir.IRValue) string {
	if v == nil {
		return "<unset>"
	}
	b, err := ir.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
