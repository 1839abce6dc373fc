// Package scholomance is the token annotation engine: fast phonetic
// classification with asynchronous, cached dictionary enrichment.
package scholomance

import (
	"context"
	"log/slog"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cognicore/scholomance/internal/logging"
	"github.com/cognicore/scholomance/pkg/scholomance/cache"
	"github.com/cognicore/scholomance/pkg/scholomance/classify"
	"github.com/cognicore/scholomance/pkg/scholomance/enrich"
	"github.com/cognicore/scholomance/pkg/scholomance/metrics"
	"github.com/cognicore/scholomance/pkg/scholomance/phoneme"
	"github.com/cognicore/scholomance/pkg/scholomance/result"
	"github.com/cognicore/scholomance/pkg/scholomance/schedule"
	"github.com/cognicore/scholomance/pkg/scholomance/token"
)

// Engine is the token annotation facade. It owns the result caches and
// the enrichment scheduler; the dictionary is shared and read-only.
type Engine struct {
	version    string
	provider   enrich.Provider
	enabled    func() bool
	onEnriched func()
	now        func() time.Time
	logger     *slog.Logger
	metrics    *metrics.Metrics

	sched    *schedule.Scheduler
	notifier *schedule.Debouncer

	mu       sync.Mutex
	dict     phoneme.Dictionary
	fast     *cache.Fast
	enriched *cache.Enriched
	disposed bool
}

// Options configures an Engine. Every field is optional.
type Options struct {
	Dictionary phoneme.Dictionary
	Provider   enrich.Provider
	// Enabled gates enrichment. When nil, a provider with an Enabled()
	// method decides; otherwise enrichment runs whenever a provider is set.
	Enabled func() bool

	Concurrency     int
	EnrichmentDelay time.Duration
	NotifyDelay     time.Duration
	// OnEnriched fires (debounced) after new enrichment lands.
	OnEnriched func()

	Now           func() time.Time
	FastCacheSize int // 0 means unbounded
	PositiveTTL   time.Duration
	NegativeTTL   time.Duration
	Version       string

	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Decoration is one annotated token of a decorated text.
type Decoration struct {
	Start   int           `json:"start"`
	End     int           `json:"end"`
	Line    int           `json:"line"`
	Token   string        `json:"token"`
	Result  result.Result `json:"result"`
	Rhyming bool          `json:"rhyming"`
}

// Decorations is the output of Decorate, in text order.
type Decorations []Decoration

// RhymeGroup is a set of tokens on one line that share a rhyme key.
type RhymeGroup struct {
	Line    int    `json:"line"`
	Key     string `json:"key"`
	Indices []int  `json:"indices"` // positions in Decorations
}

// Stats is a snapshot of engine bookkeeping.
type Stats struct {
	FastEntries     int    `json:"fastEntries"`
	EnrichedEntries int    `json:"enrichedEntries"`
	Queued          int    `json:"queued"`
	Generation      uint64 `json:"generation"`
}

// New creates an Engine.
func New(opts Options) *Engine {
	if opts.Version == "" {
		opts.Version = classify.DefaultVersion
	}
	if opts.Dictionary == nil {
		opts.Dictionary = phoneme.None{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logging.New("engine")
	}

	e := &Engine{
		version:    opts.Version,
		provider:   opts.Provider,
		enabled:    opts.Enabled,
		onEnriched: opts.OnEnriched,
		now:        opts.Now,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
		dict:       opts.Dictionary,
		fast:       cache.NewFast(opts.FastCacheSize),
		enriched:   cache.NewEnriched(opts.PositiveTTL, opts.NegativeTTL),
	}
	if e.enabled == nil {
		e.enabled = defaultEnabled(opts.Provider)
	}

	e.sched = schedule.New(schedule.Options{
		Concurrency: opts.Concurrency,
		Delay:       opts.EnrichmentDelay,
		Run:         e.runEnrichment,
		Logger:      opts.Logger,
		Metrics:     opts.Metrics,
	})
	e.notifier = schedule.NewDebouncer(opts.NotifyDelay, e.notify)
	return e
}

func defaultEnabled(p enrich.Provider) func() bool {
	if p == nil {
		return func() bool { return false }
	}
	if gate, ok := p.(interface{ Enabled() bool }); ok {
		return gate.Enabled
	}
	return func() bool { return true }
}

// Version returns the engine version used in cache keys and results.
func (e *Engine) Version() string { return e.version }

// Dictionary returns the current dictionary.
func (e *Engine) Dictionary() phoneme.Dictionary {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dict
}

// Result returns the freshest result for a token: the enriched record if
// one is live, else the fast result. It never blocks on enrichment.
func (e *Engine) Result(word string) result.Result {
	tok := token.Normalize(word)

	e.mu.Lock()
	defer e.mu.Unlock()

	if rec, ok := e.enrichedLocked(tok); ok {
		return rec.Result.Clone()
	}
	return e.fastLocked(tok).Clone()
}

// FastResult returns the fast-pass result for a token.
func (e *Engine) FastResult(word string) result.Result {
	tok := token.Normalize(word)

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fastLocked(tok).Clone()
}

// RequestEnrichment asks for a token to be enriched. The handle settles
// immediately with nil when enrichment is off or the token has no letter, and
// with the cached result when a live record exists. Concurrent requests
// for one token share a handle.
func (e *Engine) RequestEnrichment(word string) *schedule.Pending {
	return e.request(word, false)
}

// RefreshEnrichment is RequestEnrichment without the live-record
// shortcut. The record is still only replaced if the outcome differs.
func (e *Engine) RefreshEnrichment(word string) *schedule.Pending {
	return e.request(word, true)
}

func (e *Engine) request(word string, force bool) *schedule.Pending {
	tok := token.Normalize(word)
	if !token.IsWord(tok) {
		return schedule.Resolved(tok, nil)
	}
	if !e.enabled() {
		e.metrics.Request(metrics.RequestDisabled)
		return schedule.Resolved(tok, nil)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.disposed {
		return schedule.Resolved(tok, nil)
	}
	if !force {
		if rec, ok := e.enrichedLocked(tok); ok {
			e.metrics.Request(metrics.RequestCached)
			r := rec.Result.Clone()
			return schedule.Resolved(tok, &r)
		}
	}
	return e.sched.Request(tok)
}

// State reports where a token sits in the enrichment scheduler.
func (e *Engine) State(word string) schedule.State {
	return e.sched.State(token.Normalize(word))
}

// Decorate tokenizes text and annotates every token with its current
// result, requesting enrichment for each as a side effect. Tokens whose
// rhyme key repeats within a line are marked Rhyming.
func (e *Engine) Decorate(text string) Decorations {
	toks := token.Tokenize(text)
	if len(toks) == 0 {
		return nil
	}

	out := make(Decorations, 0, len(toks))
	line, pos := 0, 0
	for _, t := range toks {
		line += strings.Count(text[pos:t.Start], "\n")
		pos = t.Start

		out = append(out, Decoration{
			Start:  t.Start,
			End:    t.End,
			Line:   line,
			Token:  t.Normalized,
			Result: e.Result(t.Normalized),
		})
		e.RequestEnrichment(t.Normalized)
	}

	for _, g := range out.RhymeGroups() {
		for _, i := range g.Indices {
			out[i].Rhyming = true
		}
	}
	return out
}

// RhymeGroups lists, per line, the rhyme keys shared by two or more
// tokens, ordered by line and first occurrence.
func (d Decorations) RhymeGroups() []RhymeGroup {
	type lineKey struct {
		line int
		key  string
	}
	index := make(map[lineKey]int)
	var groups []RhymeGroup
	for i, dec := range d {
		key, ok := dec.Result.EvidenceValue(result.EvidenceRhyme)
		if !ok {
			continue
		}
		lk := lineKey{dec.Line, key}
		gi, seen := index[lk]
		if !seen {
			gi = len(groups)
			index[lk] = gi
			groups = append(groups, RhymeGroup{Line: dec.Line, Key: key})
		}
		groups[gi].Indices = append(groups[gi].Indices, i)
	}

	shared := groups[:0]
	for _, g := range groups {
		if len(g.Indices) > 1 {
			shared = append(shared, g)
		}
	}
	sort.SliceStable(shared, func(i, j int) bool {
		if shared[i].Line != shared[j].Line {
			return shared[i].Line < shared[j].Line
		}
		return shared[i].Indices[0] < shared[j].Indices[0]
	})
	return shared
}

// SetDictionary swaps the phonetic dictionary. Any change invalidates
// both caches and all scheduler state; jobs already running are fenced
// and their results discarded.
func (e *Engine) SetDictionary(next phoneme.Dictionary) {
	if next == nil {
		next = phoneme.None{}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.disposed || sameDictionary(e.dict, next) {
		return
	}
	e.dict = next
	e.fast.Clear()
	e.enriched.Clear()
	e.sched.Reset()
	e.logger.Info("dictionary swapped", "generation", e.sched.Generation())
}

func sameDictionary(a, b phoneme.Dictionary) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	return ta == tb && ta.Comparable() && a == b
}

// Wait blocks until no enrichment is queued or running, or ctx is done.
func (e *Engine) Wait(ctx context.Context) error {
	return e.sched.Wait(ctx)
}

// Stats returns a snapshot of engine bookkeeping.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Stats{
		FastEntries:     e.fast.Len(),
		EnrichedEntries: e.enriched.Len(),
		Queued:          e.sched.QueueLen(),
		Generation:      e.sched.Generation(),
	}
}

// Dispose stops enrichment, timers and notifications and releases the
// caches. It is idempotent.
func (e *Engine) Dispose() {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return
	}
	e.disposed = true
	e.fast.Clear()
	e.enriched.Clear()
	e.mu.Unlock()

	e.sched.Dispose()
	e.notifier.Stop()
	e.logger.Info("engine disposed")
}

func (e *Engine) fastLocked(tok string) result.Result {
	r, hit := e.fast.GetOrCompute(cache.Key(e.version, tok), func() result.Result {
		return classify.Classify(tok, e.dict, e.version)
	})
	e.metrics.CacheLookup(metrics.CacheFast, hit)
	return r
}

func (e *Engine) enrichedLocked(tok string) (cache.Record, bool) {
	rec, ok := e.enriched.Get(cache.Key(e.version, tok), e.now())
	e.metrics.CacheLookup(metrics.CacheEnriched, ok)
	return rec, ok
}

// runEnrichment is the scheduler job: provide, merge, then record the
// outcome unless it is stale or unchanged.
func (e *Engine) runEnrichment(ctx context.Context, job schedule.Job) *result.Result {
	e.mu.Lock()
	if e.disposed || job.Generation != e.sched.Generation() {
		e.mu.Unlock()
		e.metrics.Completion(metrics.CompletionFenced)
		return nil
	}
	base := e.fastLocked(job.Token).Clone()
	e.mu.Unlock()

	patch, err := e.provide(ctx, job.Token)
	if err != nil {
		e.logger.Debug("enrichment failed", "token", job.Token, "error", err)
		patch = nil
	}

	merged := base
	valid := false
	if patch != nil {
		merged = result.Merge(base, *patch)
		if patch.IsValid != nil {
			valid = *patch.IsValid
		} else {
			valid = len(patch.Evidence) > 0
		}
	}
	signature := result.Signature(merged)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.disposed || job.Generation != e.sched.Generation() {
		e.metrics.Completion(metrics.CompletionFenced)
		e.logger.Debug("stale enrichment dropped", "token", job.Token, "generation", job.Generation)
		return nil
	}

	switch {
	case err != nil:
		e.metrics.Completion(metrics.CompletionError)
	case valid:
		e.metrics.Completion(metrics.CompletionValid)
	default:
		e.metrics.Completion(metrics.CompletionInvalid)
	}

	key := cache.Key(e.version, job.Token)
	existing, ok := e.enriched.Get(key, e.now())
	if !ok || existing.Signature != signature {
		e.enriched.Put(key, cache.Record{
			Result:    merged,
			UpdatedAt: e.now(),
			Signature: signature,
			IsValid:   valid,
		})
		e.notifier.Schedule()
	}

	out := merged.Clone()
	return &out
}

func (e *Engine) provide(ctx context.Context, tok string) (patch *result.Patch, err error) {
	if e.provider == nil {
		return nil, nil
	}
	defer func() {
		if rec := recover(); rec != nil {
			e.logger.Warn("enrichment provider panicked", "token", tok, "panic", rec)
			patch, err = nil, nil
		}
	}()
	return e.provider.Provide(ctx, tok)
}

func (e *Engine) notify() {
	if e.onEnriched != nil {
		e.onEnriched()
	}
}
