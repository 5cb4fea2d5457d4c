// Package stats keeps the dashboard summary figures alive with a periodic
// random-walk refresh. The figures are display-only.
package stats

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jask/biovalue/internal/observe"
)

const (
	DefaultInterval    = 3 * time.Second
	DefaultHistorySize = 30
)

// ErrRunning is returned by Run when the refresher is already running.
var ErrRunning = errors.New("stats refresher already running")

// Summary is one set of dashboard figures.
type Summary struct {
	Companies     int
	Evaluations   int
	AvgScore      float64 // 0-10
	PipelineValue float64 // $M
	ActiveDeals   int
	At            time.Time
}

// Option configures a Refresher.
type Option func(*Refresher)

func WithInterval(d time.Duration) Option {
	return func(r *Refresher) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithRand replaces the random source, for deterministic tests.
func WithRand(rng *rand.Rand) Option { return func(r *Refresher) { r.rng = rng } }

func WithLogger(l *zap.Logger) Option { return func(r *Refresher) { r.log = l } }

func WithHistorySize(n int) Option {
	return func(r *Refresher) {
		if n > 0 {
			r.historySize = n
		}
	}
}

// WithClock replaces time.Now for the At stamp.
func WithClock(now func() time.Time) Option { return func(r *Refresher) { r.now = now } }

// Refresher perturbs a Summary at a fixed interval from a single goroutine.
type Refresher struct {
	interval    time.Duration
	historySize int
	rng         *rand.Rand
	log         *zap.Logger
	now         func() time.Time

	mu      sync.Mutex
	current Summary
	history []Summary
	cancel  context.CancelFunc
	done    chan struct{}

	hub observe.Hub[Summary]
}

func New(initial Summary, opts ...Option) *Refresher {
	r := &Refresher{
		interval:    DefaultInterval,
		historySize: DefaultHistorySize,
		log:         zap.NewNop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.rng == nil {
		r.rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed))
	}
	if initial.At.IsZero() {
		initial.At = r.now()
	}
	r.current = initial
	r.history = []Summary{initial}
	return r
}

// Start runs the refresh loop in the background until ctx is done or Stop is
// called. Starting a running refresher does nothing.
func (r *Refresher) Start(ctx context.Context) {
	ctx, done, ok := r.begin(ctx)
	if !ok {
		return
	}
	go r.loop(ctx, done)
}

// Run is the blocking form of Start. It returns nil when ctx is cancelled or
// Stop is called.
func (r *Refresher) Run(ctx context.Context) error {
	ctx, done, ok := r.begin(ctx)
	if !ok {
		return ErrRunning
	}
	r.loop(ctx, done)
	return nil
}

// Stop ends the loop and waits for it. Safe to call repeatedly and before
// Start.
func (r *Refresher) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether a loop is active.
func (r *Refresher) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancel != nil
}

func (r *Refresher) begin(parent context.Context) (context.Context, chan struct{}, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return nil, nil, false
	}
	ctx, cancel := context.WithCancel(parent)
	r.cancel = cancel
	r.done = make(chan struct{})
	return ctx, r.done, true
}

func (r *Refresher) loop(ctx context.Context, done chan struct{}) {
	r.log.Debug("stats refresher started", zap.Duration("interval", r.interval))
	ticker := time.NewTicker(r.interval)
	defer func() {
		ticker.Stop()
		r.mu.Lock()
		r.cancel()
		r.cancel = nil
		r.done = nil
		r.mu.Unlock()
		r.log.Debug("stats refresher stopped")
		close(done)
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Tick()
		}
	}
}

// Tick applies one random-walk step and notifies subscribers.
func (r *Refresher) Tick() Summary {
	r.mu.Lock()
	next := r.current
	next.PipelineValue = max(0, next.PipelineValue*(1+r.jitter(0.02)))
	if next.Evaluations > 0 {
		next.AvgScore = min(10, max(0, next.AvgScore+r.jitter(0.15)))
	}
	next.ActiveDeals = max(0, next.ActiveDeals+r.rng.IntN(3)-1)
	next.At = r.now()
	r.current = next
	r.history = append(r.history, next)
	if over := len(r.history) - r.historySize; over > 0 {
		r.history = slices.Delete(r.history, 0, over)
	}
	r.mu.Unlock()
	r.hub.Publish(next)
	return next
}

// Reseed replaces the counts from storage, keeping the walk going from there.
// With no evaluations the average score is zero.
func (r *Refresher) Reseed(companies, evaluations int, avgScore float64) {
	r.mu.Lock()
	r.current.Companies = companies
	r.current.Evaluations = evaluations
	r.current.AvgScore = 0
	if evaluations > 0 {
		r.current.AvgScore = avgScore
	}
	next := r.current
	r.mu.Unlock()
	r.hub.Publish(next)
}

func (r *Refresher) jitter(scale float64) float64 {
	return (r.rng.Float64()*2 - 1) * scale
}

func (r *Refresher) Current() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// History returns recent summaries, oldest first.
func (r *Refresher) History() []Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.history)
}

func (r *Refresher) Subscribe(fn func(Summary)) (unsubscribe func()) {
	return r.hub.Subscribe(fn)
}
