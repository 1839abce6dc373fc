package config

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cognicore/scholomance/internal/logging"
	"github.com/cognicore/scholomance/pkg/scholomance"
	"github.com/cognicore/scholomance/pkg/scholomance/dictapi"
	"github.com/cognicore/scholomance/pkg/scholomance/enrich"
	"github.com/cognicore/scholomance/pkg/scholomance/lookupstore"
	"github.com/cognicore/scholomance/pkg/scholomance/lookupstore/memstore"
	"github.com/cognicore/scholomance/pkg/scholomance/lookupstore/sqlite"
	"github.com/cognicore/scholomance/pkg/scholomance/metrics"
	"github.com/cognicore/scholomance/pkg/scholomance/phoneme"
)

// Loader loads the data files named by a Config and constructs components
type Loader struct {
	Config  *Config
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Components holds everything an Engine needs
type Components struct {
	Dictionary phoneme.Dictionary
	Lexicon    *phoneme.Lexicon // nil when no phonetic data is configured
	Store      lookupstore.Store
	Client     *dictapi.Client
	Provider   *enrich.DictionaryProvider // nil when lookups are off

	config  *Config
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Load reads the dictionary files, opens the lookup store and builds the
// enrichment provider.
func (l *Loader) Load(ctx context.Context) (*Components, error) {
	cfg := l.Config
	if cfg == nil {
		cfg = Default()
	}
	logger := l.Logger
	if logger == nil {
		logger = logging.New("config")
	}

	comp := &Components{config: cfg, logger: logger, metrics: l.Metrics}

	lex, err := loadLexicon(cfg.Dictionary)
	if err != nil {
		return nil, err
	}
	if lex != nil {
		comp.Lexicon = lex
		comp.Dictionary = lex
		st := lex.Stats()
		logger.Info("phonetic dictionary loaded",
			"cmu_words", st.CMUWords, "v2_words", st.V2Words, "coda_groups", st.CodaGroups)
	} else {
		comp.Dictionary = phoneme.None{}
		logger.Info("no phonetic dictionary configured, using spelling fallback")
	}

	if !cfg.Lookup.Enabled {
		return comp, nil
	}

	if cfg.Lookup.CachePath != "" {
		st, err := sqlite.Open(ctx, cfg.Lookup.CachePath)
		if err != nil {
			return nil, fmt.Errorf("open lookup cache: %w", err)
		}
		comp.Store = st
		if cfg.Lookup.MaxAge > 0 {
			n, err := st.Prune(ctx, time.Now().Add(-cfg.Lookup.MaxAge.Std()))
			if err != nil {
				logger.Warn("lookup cache prune failed", "error", err)
			} else if n > 0 {
				logger.Info("pruned stale lookups", "count", n)
			}
		}
	} else {
		comp.Store = memstore.New()
	}

	comp.Client = &dictapi.Client{
		BaseURL:    cfg.Lookup.BaseURL,
		APIKey:     cfg.Lookup.ResolveAPIKey(),
		HTTPClient: &http.Client{Timeout: cfg.Lookup.Timeout.Std()},
		Store:      comp.Store,
		Logger:     logging.New("dictapi"),
	}
	if !comp.Client.Enabled() {
		logger.Warn("dictionary lookup enabled but no API key set", "env", cfg.Lookup.APIKeyEnv)
	}

	comp.Provider = enrich.NewDictionaryProvider(comp.Client)
	comp.Provider.MaxAge = cfg.Lookup.MaxAge.Std()
	return comp, nil
}

func loadLexicon(cfg Dictionary) (*phoneme.Lexicon, error) {
	if cfg.V2Path == "" && cfg.CMUPath == "" && cfg.CodaGroupsPath == "" {
		return nil, nil
	}

	opts := phoneme.LexiconOptions{CacheSize: cfg.WordCacheSize}
	if cfg.V2Path != "" {
		v2, err := phoneme.LoadV2(cfg.V2Path)
		if err != nil {
			return nil, fmt.Errorf("load vowel-family dictionary: %w", err)
		}
		opts.V2 = v2
	}
	if cfg.CMUPath != "" {
		cmu, err := phoneme.LoadCMU(cfg.CMUPath)
		if err != nil {
			return nil, fmt.Errorf("load CMU dictionary: %w", err)
		}
		opts.CMU = cmu
	}
	if cfg.CodaGroupsPath != "" {
		groups, err := phoneme.LoadCodaGroups(cfg.CodaGroupsPath)
		if err != nil {
			return nil, fmt.Errorf("load coda groups: %w", err)
		}
		opts.CodaGroups = groups
	}
	return phoneme.NewLexicon(opts), nil
}

// EngineOptions maps the configuration and components onto engine options.
func (c *Components) EngineOptions() scholomance.Options {
	cfg := c.config
	opts := scholomance.Options{
		Dictionary:      c.Dictionary,
		Concurrency:     cfg.Engine.Concurrency,
		EnrichmentDelay: cfg.Engine.EnrichmentDelay.Std(),
		NotifyDelay:     cfg.Engine.NotifyDelay.Std(),
		FastCacheSize:   cfg.Engine.FastCacheSize,
		PositiveTTL:     cfg.Engine.PositiveTTL.Std(),
		NegativeTTL:     cfg.Engine.NegativeTTL.Std(),
		Version:         cfg.Engine.Version,
		Logger:          logging.New("engine"),
		Metrics:         c.metrics,
	}
	if c.Provider != nil {
		opts.Provider = c.Provider
	}
	return opts
}

// NewEngine builds an Engine from the components.
func (c *Components) NewEngine() *scholomance.Engine {
	return scholomance.New(c.EngineOptions())
}

// Close releases the lookup store.
func (c *Components) Close() error {
	if c.Store == nil {
		return nil
	}
	if err := c.Store.Close(); err != nil {
		return fmt.Errorf("close lookup store: %w", err)
	}
	return nil
}
