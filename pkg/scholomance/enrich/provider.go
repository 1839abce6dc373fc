// Package enrich defines the asynchronous enrichment capability and its
// dictionary-backed implementation.
package enrich

import (
	"context"
	"time"

	"github.com/cognicore/scholomance/pkg/scholomance/dictapi"
	"github.com/cognicore/scholomance/pkg/scholomance/result"
)

// Provider produces an enrichment patch for a normalized token. A nil
// patch means there is nothing to merge. Errors are treated the same way
// by callers; providers should honor ctx cancellation.
type Provider interface {
	Provide(ctx context.Context, token string) (*result.Patch, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, token string) (*result.Patch, error)

// Provide implements Provider.
func (f ProviderFunc) Provide(ctx context.Context, token string) (*result.Patch, error) {
	return f(ctx, token)
}

// Defaults for DictionaryProvider.
const (
	DefaultMaxDefinitions = 2
	DefaultBoost          = 0.12
	DefaultMaxAge         = 7 * 24 * time.Hour
)

// DictionaryProvider enriches tokens with dictionary definitions.
type DictionaryProvider struct {
	Client *dictapi.Client

	MaxDefinitions int
	Boost          float64
	MaxAge         time.Duration
}

// NewDictionaryProvider returns a provider with default settings.
func NewDictionaryProvider(client *dictapi.Client) *DictionaryProvider {
	return &DictionaryProvider{
		Client:         client,
		MaxDefinitions: DefaultMaxDefinitions,
		Boost:          DefaultBoost,
		MaxAge:         DefaultMaxAge,
	}
}

// Enabled reports whether lookups can run.
func (p *DictionaryProvider) Enabled() bool {
	return p != nil && p.Client.Enabled()
}

// Provide implements Provider. A fresh cached entry with definitions is
// used directly; anything else forces an upstream lookup.
func (p *DictionaryProvider) Provide(ctx context.Context, token string) (*result.Patch, error) {
	if !p.Enabled() {
		return nil, nil
	}

	if cached, ok := p.Client.Cached(ctx, token, p.MaxAge); ok && len(cached.Definitions) > 0 {
		return &result.Patch{
			Evidence:        p.definitions(cached.Definitions),
			ConfidenceBoost: p.Boost,
			Enriched:        true,
			IsValid:         result.Valid(true),
		}, nil
	}

	entry, err := p.Client.Fetch(ctx, token, dictapi.FetchOptions{MaxAge: p.MaxAge, Force: true})
	if err != nil {
		return nil, err
	}
	if len(entry.Definitions) == 0 {
		return &result.Patch{IsValid: result.Valid(false)}, nil
	}

	patch := &result.Patch{
		Evidence: p.definitions(entry.Definitions),
		Enriched: entry.IsValid,
		IsValid:  result.Valid(entry.IsValid),
	}
	if entry.IsValid {
		patch.ConfidenceBoost = p.Boost
	}
	return patch, nil
}

func (p *DictionaryProvider) definitions(defs []string) []result.Evidence {
	n := p.MaxDefinitions
	if n <= 0 || n > len(defs) {
		n = len(defs)
	}
	out := make([]result.Evidence, 0, n)
	for _, d := range defs[:n] {
		out = append(out, result.Evidence{Type: result.EvidenceDefinition, Value: d, Source: result.SourceEnriched})
	}
	return out
}

var _ Provider = (*DictionaryProvider)(nil)
var _ Provider = ProviderFunc(nil)
