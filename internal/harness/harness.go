package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/appdom/internal/dom"
	"github.com/roach88/appdom/internal/ident"
	"github.com/roach88/appdom/internal/ir"
	"github.com/roach88/appdom/internal/naming"
	"github.com/roach88/appdom/internal/session"
	"github.com/roach88/appdom/internal/store"
)

// RootLabel is always bound to the app root.
const RootLabel = "root"

// IDPrefix prefixes the sequential node ids of a scenario run.
const IDPrefix = "n"

// Harness is the scenario execution engine. It drives one session backed
// by an in-memory store.
type Harness struct {
	store   *store.Store
	session *session.Session
	logger  *slog.Logger
	labels  map[string]dom.NodeID
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Execution flow:
//  1. Create the app root and a session recording into the store
//  2. Execute each step, checking expected errors
//  3. Evaluate assertions against the final document
//
// Step and assertion failures are reported in the result. The returned
// error is reserved for failures of the harness itself.
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gen := ident.NewSequence(IDPrefix)

	d, err := dom.NewApp(gen, scenario.App)
	if err != nil {
		return nil, fmt.Errorf("failed to create app: %w", err)
	}

	sess, err := session.New(ctx, d,
		session.WithGenerator(gen),
		session.WithStore(st),
		session.WithLogger(logger),
		session.WithID("scenario:"+scenario.Name),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	defer sess.Stop()

	h := &Harness{
		store:   st,
		session: sess,
		logger:  logger,
		labels:  map[string]dom.NodeID{RootLabel: d.Root()},
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		h.executeStep(ctx, i, step, result)
	}

	actx := &AssertionContext{
		Ctx:    ctx,
		Dom:    sess.Current(),
		Seq:    sess.Seq(),
		App:    sess.App(),
		Store:  st,
		Labels: h.labels,
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}
	result.Final = sess.Current()

	return result, nil
}

// executeStep applies one step and records its trace event.
func (h *Harness) executeStep(ctx context.Context, index int, st Step, result *Result) {
	res, err := h.apply(ctx, st)

	ev := TraceEvent{Seq: h.session.Seq(), Op: st.Op}
	if err != nil {
		ev.Error = ErrorCode(err)
		result.AddTrace(ev)
		switch {
		case st.ExpectError == "":
			result.AddError(fmt.Sprintf("steps[%d] %s: unexpected error: %v", index, st.Op, err))
		case st.ExpectError != ev.Error:
			result.AddError(fmt.Sprintf("steps[%d] %s: expected error %s, got %s (%v)",
				index, st.Op, st.ExpectError, ev.Error, err))
		}
		return
	}

	ev.Node = string(res.Node)
	ev.Entries = res.Patch.Len()
	result.AddTrace(ev)

	if st.ExpectError != "" {
		result.AddError(fmt.Sprintf("steps[%d] %s: expected error %s, got success", index, st.Op, st.ExpectError))
	}
	if st.As != "" && res.Node != "" {
		h.labels[st.As] = res.Node
	}
}

func (h *Harness) apply(ctx context.Context, st Step) (session.Result, error) {
	switch st.Op {
	case OpUndo:
		return h.session.Undo(ctx)
	case OpRedo:
		return h.session.Redo(ctx)
	}
	cmd, err := h.command(st)
	if err != nil {
		return session.Result{}, err
	}
	return h.session.Apply(ctx, cmd)
}

// command translates a step into a session command.
func (h *Harness) command(st Step) (session.Command, error) {
	switch st.Op {
	case OpAdd:
		kind := dom.Kind(st.Kind)
		init := dom.NodeInit{Name: st.Name, Layout: st.Layout}
		var err error
		if st.Attributes != nil {
			if init.Attributes, err = parseAttributes(kind, st.Attributes); err != nil {
				return nil, err
			}
		}
		if init.Props, err = ir.ObjectFromAny(st.Props); err != nil {
			return nil, fmt.Errorf("props: %w", err)
		}
		if init.Params, err = ir.ObjectFromAny(st.Params); err != nil {
			return nil, fmt.Errorf("params: %w", err)
		}
		return session.AddNode{
			Kind:     kind,
			Init:     init,
			ParentID: h.resolve(st.Parent),
			Relation: st.Relation,
			OrderKey: st.OrderKey,
		}, nil
	case OpMove:
		return session.MoveNode{
			ID:       h.resolve(st.Node),
			ParentID: h.resolve(st.Parent),
			Relation: st.Relation,
			OrderKey: st.OrderKey,
		}, nil
	case OpRemove:
		return session.RemoveNode{ID: h.resolve(st.Node)}, nil
	case OpDuplicate:
		return session.DuplicateNode{ID: h.resolve(st.Node)}, nil
	case OpRename:
		return session.RenameNode{ID: h.resolve(st.Node), To: st.Name}, nil
	case OpSetProp, OpSetParam:
		var value ir.IRValue
		if st.Value != nil {
			v, err := ir.FromAny(st.Value)
			if err != nil {
				return nil, fmt.Errorf("value: %w", err)
			}
			value = v
		}
		if st.Op == OpSetProp {
			return session.SetProp{ID: h.resolve(st.Node), Key: st.Key, Value: value}, nil
		}
		return session.SetParam{ID: h.resolve(st.Node), Key: st.Key, Value: value}, nil
	case OpSetLayout:
		return session.SetLayout{ID: h.resolve(st.Node), Layout: st.Layout}, nil
	case OpSetAttributes:
		id := h.resolve(st.Node)
		n, err := h.session.Current().Get(id)
		if err != nil {
			return nil, err
		}
		attrs, err := parseAttributes(n.Kind, st.Attributes)
		if err != nil {
			return nil, err
		}
		return session.SetAttributes{ID: id, Attributes: attrs}, nil
	default:
		return nil, fmt.Errorf("unknown op %q", st.Op)
	}
}

// resolve maps a label to its node id. Unbound labels are used verbatim.
func (h *Harness) resolve(label string) dom.NodeID {
	if id, ok := h.labels[label]; ok {
		return id
	}
	return dom.NodeID(label)
}

func parseAttributes(kind dom.Kind, m map[string]any) (dom.Attributes, error) {
	obj, err := ir.ObjectFromAny(m)
	if err != nil {
		return nil, fmt.Errorf("attributes: %w", err)
	}
	attrs, err := dom.ParseAttributes(kind, obj)
	if err != nil {
		return nil, fmt.Errorf("attributes: %w", err)
	}
	return attrs, nil
}

// ErrorCode returns the stable code of a session, dom or naming error, or
// "ERROR" for anything else.
func ErrorCode(err error) string {
	var se *session.Error
	if errors.As(err, &se) {
		return string(se.Code)
	}
	var de *dom.Error
	if errors.As(err, &de) {
		return string(de.Code)
	}
	var ve *naming.ValidationError
	if errors.As(err, &ve) {
		return ve.Code
	}
	return "ERROR"
}
