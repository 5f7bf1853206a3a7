package session

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/roach88/appdom/internal/dom"
	"github.com/roach88/appdom/internal/ident"
	"github.com/roach88/appdom/internal/store"
)

// DefaultMaxHistory is the default number of undo steps a session keeps.
const DefaultMaxHistory = 100

const tracerName = "github.com/roach88/appdom/internal/session"

// Update is published to subscribers after every change.
type Update struct {
	Seq     int64
	Command string
	Patch   dom.Patch
	Dom     *dom.Dom
}

// Result reports the outcome of one command. Changed is false when the
// command left the document as it was; Seq is then the unchanged clock.
type Result struct {
	Seq     int64
	Node    dom.NodeID
	Changed bool
	Patch   dom.Patch
	Err     error
}

// Session owns the current Dom of one app and is its single writer.
//
// Thread-safety model:
//   - Enqueue, Apply, Undo, Redo: safe from any goroutine; changes are
//     serialized and applied one at a time
//   - Run: must be called from exactly one goroutine
//   - Current, Seq, Subscribe: safe from any goroutine
//
// Every change gets the next clock value, is appended to the store when
// one is configured, and is then published to subscribers in seq order.
type Session struct {
	id            string
	app           string
	gen           ident.Generator
	clock         *Clock
	queue         *commandQueue
	logger        *slog.Logger
	metrics       *Metrics
	tracer        trace.Tracer
	store         *store.Store
	maxHistory    int
	snapshotEvery int

	current atomic.Pointer[dom.Dom]

	// mu serializes writers and guards the history stacks.
	mu            sync.Mutex
	undo          []*dom.Dom
	redo          []*dom.Dom
	sinceSnapshot int

	subMu   sync.Mutex
	subs    map[int]func(Update)
	nextSub int
}

// Option configures a Session.
type Option func(*Session)

// WithMaxHistory bounds the undo stack. Zero or less keeps no history.
func WithMaxHistory(n int) Option {
	return func(s *Session) {
		s.maxHistory = n
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithStore records every change in st. The session writes a snapshot
// when it starts and continues the app's seq from there.
func WithStore(st *store.Store) Option {
	return func(s *Session) {
		s.store = st
	}
}

// WithSnapshotEvery writes a snapshot after every n stored patches.
// Zero disables periodic snapshots. Only used together with WithStore.
func WithSnapshotEvery(n int) Option {
	return func(s *Session) {
		s.snapshotEvery = n
	}
}

// WithMetrics reports to m. Default: no metrics.
func WithMetrics(m *Metrics) Option {
	return func(s *Session) {
		s.metrics = m
	}
}

// WithTracer sets the tracer for command spans. Default: the tracer of
// the global OpenTelemetry provider.
func WithTracer(t trace.Tracer) Option {
	return func(s *Session) {
		s.tracer = t
	}
}

// WithGenerator sets the id generator for new nodes.
// Default: ident.Random.
func WithGenerator(gen ident.Generator) Option {
	return func(s *Session) {
		s.gen = gen
	}
}

// WithID sets the session id. Default: a fresh UUIDv7.
func WithID(id string) Option {
	return func(s *Session) {
		s.id = id
	}
}

func newSession(d *dom.Dom, opts []Option) *Session {
	s := &Session{
		app:        string(d.Root()),
		gen:        ident.Random{},
		clock:      NewClock(),
		queue:      newCommandQueue(),
		logger:     slog.Default(),
		maxHistory: DefaultMaxHistory,
		subs:       make(map[int]func(Update)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = ident.NewSessionID()
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	s.current.Store(d)
	return s
}

// New starts a session editing d. With a store configured, d is saved as
// a snapshot first and the clock continues from the app's stored history.
func New(ctx context.Context, d *dom.Dom, opts ...Option) (*Session, error) {
	s := newSession(d, opts)
	if s.store != nil {
		snap, err := s.store.SaveSnapshot(ctx, s.app, d)
		if err != nil {
			return nil, fmt.Errorf("start session: %w", err)
		}
		s.clock = NewClockAt(snap.Seq)
	}
	s.logger.Info("session started", "session", s.id, "app", s.app, "seq", s.clock.Current())
	return s, nil
}

// Resume starts a session from the stored history of app.
func Resume(ctx context.Context, st *store.Store, app string, opts ...Option) (*Session, error) {
	d, seq, err := st.Load(ctx, app)
	if err != nil {
		return nil, fmt.Errorf("resume session: %w", err)
	}
	s := newSession(d, append(opts, WithStore(st)))
	s.clock = NewClockAt(seq)
	s.logger.Info("session resumed", "session", s.id, "app", s.app, "seq", seq)
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// App returns the id of the app root this session edits.
func (s *Session) App() string { return s.app }

// Current returns the latest published Dom.
func (s *Session) Current() *dom.Dom { return s.current.Load() }

// Seq returns the seq of the latest published change.
func (s *Session) Seq() int64 { return s.clock.Current() }

// CanUndo reports whether Undo has a step to revert.
func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undo) > 0
}

// CanRedo reports whether Redo has a step to reapply.
func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redo) > 0
}

// Subscribe registers fn to receive every Update. fn is called from the
// writing goroutine in seq order and must not call Apply, Undo or Redo.
// The returned function unsubscribes.
func (s *Session) Subscribe(fn func(Update)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

// Enqueue submits cmd to the Run loop. The result is delivered on the
// returned channel once the command has been applied. After Stop the
// channel carries a closed-session error.
func (s *Session) Enqueue(cmd Command) <-chan Result {
	reply := make(chan Result, 1)
	if !s.queue.Enqueue(request{cmd: cmd, reply: reply}) {
		reply <- Result{Seq: s.clock.Current(), Err: s.closedError(cmd.Name())}
	}
	return reply
}

// Apply runs cmd synchronously. A command that changes nothing succeeds
// with Changed false and publishes nothing.
func (s *Session) Apply(ctx context.Context, cmd Command) (Result, error) {
	if s.queue.Closed() {
		err := s.closedError(cmd.Name())
		return Result{Seq: s.clock.Current(), Err: err}, err
	}
	return s.run(ctx, cmd.Name(), func(d *dom.Dom) (*dom.Dom, dom.NodeID, error) {
		return cmd.apply(d, s.gen)
	}, s.recordEdit)
}

// Undo reverts the latest change. The revert is itself a published change
// with its own seq.
func (s *Session) Undo(ctx context.Context) (Result, error) {
	return s.run(ctx, "undo", func(d *dom.Dom) (*dom.Dom, dom.NodeID, error) {
		if len(s.undo) == 0 {
			return nil, "", &Error{Code: ErrCodeNothingToUndo, Message: "history is empty", Command: "undo"}
		}
		return s.undo[len(s.undo)-1], "", nil
	}, func(prev *dom.Dom) {
		s.undo = s.undo[:len(s.undo)-1]
		s.redo = append(s.redo, prev)
	})
}

// Redo reapplies the latest undone change.
func (s *Session) Redo(ctx context.Context) (Result, error) {
	return s.run(ctx, "redo", func(d *dom.Dom) (*dom.Dom, dom.NodeID, error) {
		if len(s.redo) == 0 {
			return nil, "", &Error{Code: ErrCodeNothingToRedo, Message: "nothing was undone", Command: "redo"}
		}
		return s.redo[len(s.redo)-1], "", nil
	}, func(prev *dom.Dom) {
		s.redo = s.redo[:len(s.redo)-1]
		s.pushUndo(prev)
	})
}

// Run starts the single-writer loop. It blocks until ctx is cancelled or
// Stop is called and the queue has drained.
//
// A failing command is logged and reported on its result channel; the
// loop continues with the next command.
func (s *Session) Run(ctx context.Context) error {
	s.logger.Info("session running", "session", s.id, "app", s.app)

	for {
		req, ok := s.queue.TryDequeue()
		if ok {
			res, err := s.run(ctx, req.cmd.Name(), func(d *dom.Dom) (*dom.Dom, dom.NodeID, error) {
				return req.cmd.apply(d, s.gen)
			}, s.recordEdit)
			if err != nil {
				s.logger.Warn("command failed", "session", s.id, "command", req.cmd.Name(), "error", err)
			}
			req.reply <- res
			continue
		}

		select {
		case <-ctx.Done():
			s.logger.Info("session stopping: context cancelled", "session", s.id)
			s.queue.Close()
			s.drain()
			return ctx.Err()

		case <-s.queue.Wait():
			// The signal channel closes with the queue. A stale signal for
			// an already dequeued command just loops back.
			if s.queue.Closed() && s.queue.Len() == 0 {
				s.logger.Info("session stopping: queue closed", "session", s.id)
				return nil
			}
		}
	}
}

// Stop closes the queue. Run applies the commands already queued and
// returns; later commands fail with a closed-session error.
func (s *Session) Stop() {
	s.queue.Close()
}

// drain fails every queued command after cancellation.
func (s *Session) drain() {
	for {
		req, ok := s.queue.TryDequeue()
		if !ok {
			return
		}
		req.reply <- Result{Seq: s.clock.Current(), Err: s.closedError(req.cmd.Name())}
	}
}

func (s *Session) closedError(command string) error {
	return &Error{Code: ErrCodeClosed, Message: "session is closed", Command: command}
}

// run computes the next Dom with step and, if it differs, commits it and
// lets record update the history stacks with the previous Dom.
func (s *Session) run(
	ctx context.Context,
	name string,
	step func(*dom.Dom) (*dom.Dom, dom.NodeID, error),
	record func(prev *dom.Dom),
) (Result, error) {
	ctx, span := s.tracer.Start(ctx, "session."+name,
		trace.WithAttributes(
			attribute.String("appdom.session_id", s.id),
			attribute.String("appdom.app", s.app),
			attribute.String("appdom.command", name),
		),
	)
	defer span.End()
	start := time.Now()

	res, err := s.commitStep(ctx, name, step, record)

	switch {
	case err != nil:
		s.metrics.observe(name, statusError, time.Since(start).Seconds())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		res.Err = err
		return res, err
	case !res.Changed:
		s.metrics.observe(name, statusNoop, time.Since(start).Seconds())
	default:
		s.metrics.observe(name, statusApplied, time.Since(start).Seconds())
	}
	span.SetAttributes(
		attribute.Int64("appdom.seq", res.Seq),
		attribute.Int("appdom.patch_entries", res.Patch.Len()),
	)
	span.SetStatus(codes.Ok, "")
	return res, nil
}

func (s *Session) commitStep(
	ctx context.Context,
	name string,
	step func(*dom.Dom) (*dom.Dom, dom.NodeID, error),
	record func(prev *dom.Dom),
) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.current.Load()
	next, node, err := step(prev)
	if err != nil {
		return Result{Seq: s.clock.Current()}, err
	}
	if next == prev {
		s.logger.Debug("command changed nothing", "session", s.id, "command", name)
		return Result{Seq: s.clock.Current(), Node: node}, nil
	}

	patch := dom.Diff(prev, next)
	seq := s.clock.Current() + 1
	if s.store != nil {
		if err := s.store.AppendPatch(ctx, s.app, seq, patch); err != nil {
			return Result{Seq: s.clock.Current()}, &Error{
				Code:    ErrCodePersist,
				Message: "record patch",
				Command: name,
				Err:     err,
			}
		}
	}
	s.clock.Next()
	s.current.Store(next)
	record(prev)

	s.logger.Info("command applied", "session", s.id, "command", name, "seq", seq, "entries", patch.Len())
	s.metrics.published(patch.Len(), len(s.undo))
	s.maybeSnapshot(ctx, next)
	s.notify(Update{Seq: seq, Command: name, Patch: patch, Dom: next})

	return Result{Seq: seq, Node: node, Changed: true, Patch: patch}, nil
}

// recordEdit is the history update for ordinary commands.
func (s *Session) recordEdit(prev *dom.Dom) {
	s.pushUndo(prev)
	clear(s.redo)
	s.redo = s.redo[:0]
}

func (s *Session) pushUndo(prev *dom.Dom) {
	if s.maxHistory <= 0 {
		return
	}
	s.undo = append(s.undo, prev)
	if over := len(s.undo) - s.maxHistory; over > 0 {
		s.undo = slices.Delete(s.undo, 0, over)
	}
}

// maybeSnapshot writes a snapshot once enough patches have been stored.
// A failure is logged only: the patch log alone still rebuilds the state.
func (s *Session) maybeSnapshot(ctx context.Context, d *dom.Dom) {
	if s.store == nil || s.snapshotEvery <= 0 {
		return
	}
	s.sinceSnapshot++
	if s.sinceSnapshot < s.snapshotEvery {
		return
	}
	if _, err := s.store.SaveSnapshot(ctx, s.app, d); err != nil {
		s.logger.Warn("snapshot failed", "session", s.id, "error", err)
		return
	}
	s.sinceSnapshot = 0
}

func (s *Session) notify(u Update) {
	s.subMu.Lock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(Update), len(ids))
	for i, id := range ids {
		fns[i] = s.subs[id]
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(u)
	}
}
