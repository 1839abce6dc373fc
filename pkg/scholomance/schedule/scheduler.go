// Package schedule drives asynchronous enrichment: a debounced pump
// drains a deduplicated queue of tokens under a concurrency limit.
package schedule

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/cognicore/scholomance/internal/logging"
	"github.com/cognicore/scholomance/pkg/scholomance/metrics"
	"github.com/cognicore/scholomance/pkg/scholomance/result"
)

// Defaults for Options.
const (
	DefaultConcurrency = 3
	DefaultDelay       = 120 * time.Millisecond
)

// State is where a token sits in the scheduler.
type State int

const (
	Unrequested State = iota
	Queued
	InFlight
)

func (s State) String() string {
	switch s {
	case Queued:
		return "queued"
	case InFlight:
		return "in-flight"
	default:
		return "unrequested"
	}
}

// Job is one unit of enrichment work. Generation is the scheduler
// generation current when the job started; Reset bumps it.
type Job struct {
	Token      string
	Generation uint64
}

// RunFunc performs a job. Its return value settles the job's Pending.
type RunFunc func(ctx context.Context, job Job) *result.Result

// Options configures a Scheduler.
type Options struct {
	Concurrency int
	Delay       time.Duration
	Run         RunFunc
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
}

// Scheduler deduplicates enrichment requests per token and runs at most
// Concurrency of them at once.
type Scheduler struct {
	run     RunFunc
	logger  *slog.Logger
	metrics *metrics.Metrics
	sem     *semaphore.Weighted
	pump    *Debouncer

	mu         sync.Mutex
	queue      []*Pending
	tracked    map[string]*Pending // queued or in flight
	inflight   map[string]*Pending
	running    int
	changed    chan struct{} // closed and replaced when work settles
	generation uint64
	disposed   bool
}

// New creates a Scheduler.
func New(opts Options) *Scheduler {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	if opts.Logger == nil {
		opts.Logger = logging.New("schedule")
	}
	s := &Scheduler{
		run:      opts.Run,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		sem:      semaphore.NewWeighted(int64(opts.Concurrency)),
		tracked:  make(map[string]*Pending),
		inflight: make(map[string]*Pending),
		changed:  make(chan struct{}),
	}
	s.pump = NewDebouncer(opts.Delay, s.drain)
	return s
}

// Request enqueues token, or returns the existing handle if the token
// is already queued or in flight. After Dispose it returns a handle
// settled with nil.
func (s *Scheduler) Request(token string) *Pending {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return Resolved(token, nil)
	}
	if p, ok := s.tracked[token]; ok {
		s.metrics.Request(metrics.RequestDeduped)
		return p
	}

	p := newPending(token)
	s.tracked[token] = p
	s.queue = append(s.queue, p)
	s.metrics.Request(metrics.RequestQueued)
	s.pump.Schedule()
	return p
}

// State reports where token currently sits.
func (s *Scheduler) State(token string) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.inflight[token]; ok {
		return InFlight
	}
	if _, ok := s.tracked[token]; ok {
		return Queued
	}
	return Unrequested
}

// Generation returns the current generation.
func (s *Scheduler) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// QueueLen returns the number of queued tokens.
func (s *Scheduler) QueueLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Reset drops all queued and in-flight bookkeeping and bumps the
// generation. Queued handles settle with nil; running jobs finish on
// their own and carry the old generation.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	dropped := s.queue
	s.queue = nil
	s.tracked = make(map[string]*Pending)
	s.inflight = make(map[string]*Pending)
	s.generation++
	s.pump.Cancel()
	s.signalLocked()
	s.mu.Unlock()

	for _, p := range dropped {
		p.resolve(nil)
	}
}

// Dispose stops the scheduler. It is idempotent. Running jobs are not
// cancelled.
func (s *Scheduler) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	dropped := s.queue
	s.queue = nil
	s.tracked = make(map[string]*Pending)
	s.inflight = make(map[string]*Pending)
	s.generation++
	s.pump.Stop()
	s.signalLocked()
	s.mu.Unlock()

	for _, p := range dropped {
		p.resolve(nil)
	}
}

// Disposed reports whether Dispose has been called.
func (s *Scheduler) Disposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}

// Wait blocks until the queue is empty and no job is running, or ctx
// is done.
func (s *Scheduler) Wait(ctx context.Context) error {
	for {
		s.mu.Lock()
		if s.running == 0 && (len(s.queue) == 0 || s.disposed) {
			s.mu.Unlock()
			return nil
		}
		ch := s.changed
		s.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Scheduler) signalLocked() {
	close(s.changed)
	s.changed = make(chan struct{})
}

// drain starts queued jobs while permits are available.
func (s *Scheduler) drain() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return
	}
	for len(s.queue) > 0 && s.sem.TryAcquire(1) {
		p := s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]
		s.inflight[p.token] = p

		job := Job{Token: p.token, Generation: s.generation}
		s.running++
		go s.execute(p, job)
	}
}

func (s *Scheduler) execute(p *Pending, job Job) {
	start := time.Now()
	s.metrics.JobStarted()
	r := s.safeRun(job)
	s.metrics.JobFinished(time.Since(start))
	s.sem.Release(1)

	s.mu.Lock()
	if s.tracked[job.Token] == p {
		delete(s.tracked, job.Token)
	}
	if s.inflight[job.Token] == p {
		delete(s.inflight, job.Token)
	}
	more := len(s.queue) > 0 && !s.disposed
	s.mu.Unlock()

	p.resolve(r)
	if more {
		s.pump.Schedule()
	}

	s.mu.Lock()
	s.running--
	s.signalLocked()
	s.mu.Unlock()
}

func (s *Scheduler) safeRun(job Job) (r *result.Result) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Warn("enrichment job panicked", "token", job.Token, "panic", rec)
			r = nil
		}
	}()
	if s.run == nil {
		return nil
	}
	return s.run(context.Background(), job)
}
