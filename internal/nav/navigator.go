package nav

import (
	"slices"
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/jask/biovalue/internal/observe"
)

// DefaultTransitionDelay is the animated transition window.
const DefaultTransitionDelay = 150 * time.Millisecond

// State is a snapshot of the navigator published to subscribers.
type State struct {
	Current      Tab
	History      []Tab
	InTransition bool
	// Pending is the tab an animated transition will commit to. Only meaningful
	// while InTransition is set.
	Pending Tab
}

// CanGoBack mirrors Navigator.CanGoBack for a snapshot.
func (s State) CanGoBack() bool { return len(s.History) > 1 }

// Observer is told about every committed tab change. Errors and panics are
// logged and otherwise ignored; they never touch navigation state.
type Observer func(Tab) error

// Timer is the handle of a scheduled commit.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d. *time.Timer satisfies Timer, so the default
// scheduler is a thin wrapper over time.AfterFunc.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type clockScheduler struct{}

func (clockScheduler) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Option configures a Navigator.
type Option func(*Navigator)

// WithDelay sets the animated transition window. Zero or negative delays make
// animated selections commit synchronously.
func WithDelay(d time.Duration) Option { return func(n *Navigator) { n.delay = d } }

// WithHistoryLimit caps the history length.
func WithHistoryLimit(limit int) Option { return func(n *Navigator) { n.limit = limit } }

// WithScheduler replaces the wall-clock scheduler.
func WithScheduler(s Scheduler) Option { return func(n *Navigator) { n.scheduler = s } }

// WithLogger sets the logger used for observer failures.
func WithLogger(l *zap.Logger) Option { return func(n *Navigator) { n.log = l } }

// WithObserver registers an observer at construction.
func WithObserver(o Observer) Option {
	return func(n *Navigator) {
		if o != nil {
			n.observers = append(n.observers, o)
		}
	}
}

// WithStart sets the initial tab.
func WithStart(t Tab) Option { return func(n *Navigator) { n.start = t } }

// Navigator owns the selected tab, the history and the in-transition flag.
//
// Animated selections are a two-phase commit: the flag is raised at once and
// the commit is scheduled after the delay. Each selection takes a new sequence
// token; a scheduled commit whose token is no longer current is dropped, so the
// most recent request wins.
type Navigator struct {
	mu           sync.Mutex
	current      Tab
	history      *History
	inTransition bool
	pending      Tab
	timer        Timer
	closed       bool
	observers    []Observer

	seq atomic.Uint64

	start     Tab
	limit     int
	delay     time.Duration
	scheduler Scheduler
	log       *zap.Logger
	hub       observe.Hub[State]
}

// New builds a navigator sitting on its start tab with a one-entry history.
func New(opts ...Option) *Navigator {
	n := &Navigator{
		start:     DefaultTab,
		limit:     DefaultHistoryLimit,
		delay:     DefaultTransitionDelay,
		scheduler: clockScheduler{},
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	if !n.start.Valid() {
		n.start = DefaultTab
	}
	n.current = n.start
	n.history = NewHistory(n.limit, n.start)
	return n
}

// SelectTab moves to target. See the type comment for the animated path.
// Invalid tabs are ignored.
func (n *Navigator) SelectTab(target Tab, animated bool) {
	if !target.Valid() {
		n.log.Debug("ignoring invalid tab", zap.Int("tab", int(target)))
		return
	}

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	seq := n.seq.Inc()
	n.stopTimerLocked()

	if !animated || n.delay <= 0 {
		wasInTransition := n.inTransition
		n.inTransition = false
		changed := n.commitLocked(target)
		st := n.snapshotLocked()
		n.mu.Unlock()
		if changed || wasInTransition {
			n.hub.Publish(st)
		}
		if changed {
			n.notifyObservers(target)
		}
		return
	}

	if target == n.current && !n.inTransition {
		n.mu.Unlock()
		return
	}
	n.inTransition = true
	n.pending = target
	n.timer = n.scheduler.AfterFunc(n.delay, func() { n.finishTransition(seq) })
	st := n.snapshotLocked()
	n.mu.Unlock()
	n.hub.Publish(st)
}

func (n *Navigator) finishTransition(seq uint64) {
	if n.seq.Load() != seq {
		return
	}
	n.mu.Lock()
	if n.closed || n.seq.Load() != seq || !n.inTransition {
		n.mu.Unlock()
		return
	}
	n.timer = nil
	n.inTransition = false
	target := n.pending
	changed := n.commitLocked(target)
	st := n.snapshotLocked()
	n.mu.Unlock()

	n.hub.Publish(st)
	if changed {
		n.notifyObservers(target)
	}
}

// GoBack returns to the previous history entry. It reports false, and changes
// nothing, when there is nowhere to go. A pending animated transition is
// cancelled.
func (n *Navigator) GoBack() bool {
	n.mu.Lock()
	if n.closed || n.history.Len() < 2 {
		n.mu.Unlock()
		return false
	}
	n.seq.Inc()
	n.stopTimerLocked()
	n.inTransition = false

	n.history.Pop()
	prev, ok := n.history.Last()
	if !ok {
		prev = DefaultTab
		n.history.Push(prev)
	}
	n.current = prev
	st := n.snapshotLocked()
	n.mu.Unlock()

	n.hub.Publish(st)
	n.notifyObservers(prev)
	return true
}

// CanGoBack reports whether GoBack would succeed.
func (n *Navigator) CanGoBack() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.history.Len() > 1
}

func (n *Navigator) Current() Tab {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

func (n *Navigator) InTransition() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.inTransition
}

// History returns a copy of the history, oldest first.
func (n *Navigator) History() []Tab {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.history.Entries()
}

func (n *Navigator) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.snapshotLocked()
}

// Subscribe registers fn for a snapshot after every state change.
//
// Snapshots are published after the lock is released, so the transition timer
// and a concurrent caller may deliver them out of order. Treat each call as a
// change notification and read State for the current value; do not replay the
// snapshots as an ordered log.
func (n *Navigator) Subscribe(fn func(State)) (unsubscribe func()) {
	return n.hub.Subscribe(fn)
}

// AddObserver registers an observer for committed tab changes.
func (n *Navigator) AddObserver(o Observer) {
	if o == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.observers = append(n.observers, o)
}

// Close cancels any pending transition and drops subscribers and observers.
// Further selections are ignored. Safe to call more than once.
func (n *Navigator) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	n.seq.Inc()
	n.stopTimerLocked()
	n.inTransition = false
	n.observers = nil
	n.mu.Unlock()
	n.hub.Close()
}

func (n *Navigator) commitLocked(target Tab) bool {
	if target == n.current {
		return false
	}
	n.current = target
	n.history.Push(target)
	return true
}

func (n *Navigator) stopTimerLocked() {
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}

func (n *Navigator) snapshotLocked() State {
	return State{
		Current:      n.current,
		History:      n.history.Entries(),
		InTransition: n.inTransition,
		Pending:      n.pending,
	}
}

func (n *Navigator) notifyObservers(t Tab) {
	n.mu.Lock()
	observers := slices.Clone(n.observers)
	n.mu.Unlock()
	for _, o := range observers {
		n.observe(o, t)
	}
}

func (n *Navigator) observe(o Observer, t Tab) {
	defer func() {
		if r := recover(); r != nil {
			n.log.Warn("navigation observer panicked", zap.String("tab", t.ID()), zap.Any("panic", r))
		}
	}()
	if err := o(t); err != nil {
		n.log.Warn("navigation observer failed", zap.String("tab", t.ID()), zap.Error(err))
	}
}
