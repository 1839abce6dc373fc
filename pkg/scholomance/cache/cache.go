// Package cache holds the engine's two result caches: a read-through
// store of fast results and a TTL store of enrichment records.
//
// Neither cache is synchronized; the owner serializes access.
package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cognicore/scholomance/pkg/scholomance/result"
)

// Default enrichment lifetimes.
const (
	DefaultPositiveTTL = 7 * 24 * time.Hour
	DefaultNegativeTTL = 24 * time.Hour
)

// Key builds the cache key "<version>::<token>".
func Key(version, token string) string {
	return version + "::" + token
}

// Fast caches fast-pass results. With Bound <= 0 it grows without limit
// until Clear; otherwise it evicts least recently used entries.
type Fast struct {
	items   map[string]result.Result
	bounded *lru.Cache[string, result.Result]
}

// NewFast returns a fast-result cache. bound <= 0 means unbounded.
func NewFast(bound int) *Fast {
	f := &Fast{}
	if bound > 0 {
		f.bounded, _ = lru.New[string, result.Result](bound)
	} else {
		f.items = make(map[string]result.Result)
	}
	return f
}

// Get returns the cached result for key.
func (f *Fast) Get(key string) (result.Result, bool) {
	if f.bounded != nil {
		return f.bounded.Get(key)
	}
	r, ok := f.items[key]
	return r, ok
}

// Put stores r under key.
func (f *Fast) Put(key string, r result.Result) {
	if f.bounded != nil {
		f.bounded.Add(key, r)
		return
	}
	f.items[key] = r
}

// GetOrCompute returns the cached result for key, computing and storing
// it on a miss. The second return reports whether it was a hit.
func (f *Fast) GetOrCompute(key string, compute func() result.Result) (result.Result, bool) {
	if r, ok := f.Get(key); ok {
		return r, true
	}
	r := compute()
	f.Put(key, r)
	return r, false
}

// Len returns the number of cached results.
func (f *Fast) Len() int {
	if f.bounded != nil {
		return f.bounded.Len()
	}
	return len(f.items)
}

// Clear drops every entry.
func (f *Fast) Clear() {
	if f.bounded != nil {
		f.bounded.Purge()
		return
	}
	clear(f.items)
}

// Record is one enrichment outcome for a token.
type Record struct {
	Result    result.Result
	UpdatedAt time.Time
	Signature string
	IsValid   bool
}

// Enriched caches enrichment records. Valid records live PositiveTTL,
// invalid ones NegativeTTL.
type Enriched struct {
	PositiveTTL time.Duration
	NegativeTTL time.Duration

	records map[string]Record
}

// NewEnriched returns an enrichment cache; zero TTLs take the defaults.
func NewEnriched(positive, negative time.Duration) *Enriched {
	if positive <= 0 {
		positive = DefaultPositiveTTL
	}
	if negative <= 0 {
		negative = DefaultNegativeTTL
	}
	return &Enriched{
		PositiveTTL: positive,
		NegativeTTL: negative,
		records:     make(map[string]Record),
	}
}

// TTL returns the lifetime of a record with the given validity.
func (e *Enriched) TTL(valid bool) time.Duration {
	if valid {
		return e.PositiveTTL
	}
	return e.NegativeTTL
}

// Get returns the record for key if it is still fresh at now. An expired
// record is evicted and reported as a miss.
func (e *Enriched) Get(key string, now time.Time) (Record, bool) {
	rec, ok := e.records[key]
	if !ok {
		return Record{}, false
	}
	if now.Sub(rec.UpdatedAt) > e.TTL(rec.IsValid) {
		delete(e.records, key)
		return Record{}, false
	}
	return rec, true
}

// Put stores rec under key, replacing any previous record.
func (e *Enriched) Put(key string, rec Record) {
	e.records[key] = rec
}

// Len returns the number of stored records, fresh or not.
func (e *Enriched) Len() int {
	return len(e.records)
}

// Clear drops every record.
func (e *Enriched) Clear() {
	clear(e.records)
}
