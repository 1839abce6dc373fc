// Package dictapi is a client for the Merriam-Webster collegiate
// dictionary API with a persistent response cache.
package dictapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/html"

	"github.com/cognicore/scholomance/internal/logging"
	"github.com/cognicore/scholomance/pkg/scholomance/internalerr"
	"github.com/cognicore/scholomance/pkg/scholomance/lookupstore"
	"github.com/cognicore/scholomance/pkg/scholomance/lookupstore/memstore"
	"github.com/cognicore/scholomance/pkg/scholomance/token"
)

// DefaultBaseURL is the collegiate dictionary endpoint.
const DefaultBaseURL = "https://www.dictionaryapi.com/api/v3/references/collegiate/json"

// MaxDefinitions caps the definitions kept per entry.
const MaxDefinitions = 4

// Client looks words up and caches every response in Store.
type Client struct {
	BaseURL string
	APIKey  string

	HTTPClient *http.Client
	// Store defaults to an in-memory store.
	Store  lookupstore.Store
	Now    func() time.Time
	Logger *slog.Logger

	once sync.Once
}

// FetchOptions controls cache use for one lookup.
type FetchOptions struct {
	// MaxAge bounds how old a cached entry may be; zero accepts any age.
	MaxAge time.Duration
	// Force skips the cache and always asks upstream.
	Force bool
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.APIKey != ""
}

// Cached returns the stored entry for word if it is no older than maxAge.
func (c *Client) Cached(ctx context.Context, word string, maxAge time.Duration) (lookupstore.Entry, bool) {
	key := token.Normalize(word)
	if !token.IsWord(key) {
		return lookupstore.Entry{}, false
	}
	c.init()

	e, ok, err := c.Store.Get(ctx, key)
	if err != nil {
		c.Logger.Warn("lookup cache read failed", "word", key, "error", err)
		return lookupstore.Entry{}, false
	}
	if !ok || !e.Fresh(c.now(), maxAge) {
		return lookupstore.Entry{}, false
	}
	return e, true
}

// Fetch returns the dictionary entry for word, from the cache when
// allowed and fresh, otherwise from upstream. A word without letters
// yields ErrInvalidInput and a disabled client ErrLookupDisabled.
func (c *Client) Fetch(ctx context.Context, word string, opts FetchOptions) (lookupstore.Entry, error) {
	key := token.Normalize(word)
	if !token.IsWord(key) {
		return lookupstore.Entry{}, internalerr.ErrInvalidInput
	}
	if !c.Enabled() {
		return lookupstore.Entry{}, internalerr.ErrLookupDisabled
	}
	c.init()

	if !opts.Force {
		if e, ok := c.Cached(ctx, key, opts.MaxAge); ok {
			return e, nil
		}
	}

	body, err := c.get(ctx, key)
	if err != nil {
		return lookupstore.Entry{}, err
	}
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return lookupstore.Entry{}, fmt.Errorf("%w: malformed response: %v", internalerr.ErrUpstream, err)
	}

	entry := lookupstore.Entry{
		IsValid:     isEntryResponse(items),
		Definitions: extractDefinitions(items),
		Raw:         body,
		CachedAt:    c.now(),
	}
	if err := c.Store.Put(ctx, key, entry); err != nil {
		c.Logger.Warn("lookup cache write failed", "word", key, "error", err)
	}
	c.Logger.Debug("dictionary lookup", "word", key, "valid", entry.IsValid, "definitions", len(entry.Definitions))
	return entry, nil
}

func (c *Client) get(ctx context.Context, key string) ([]byte, error) {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	endpoint := strings.TrimRight(base, "/") + "/" + url.PathEscape(strings.ToLower(key)) +
		"?key=" + url.QueryEscape(c.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: dictionary API status %d", internalerr.ErrUpstream, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", internalerr.ErrUpstream, err)
	}
	return body, nil
}

func (c *Client) init() {
	c.once.Do(func() {
		if c.Store == nil {
			c.Store = memstore.New()
		}
		if c.Logger == nil {
			c.Logger = logging.New("dictapi")
		}
	})
}

func (c *Client) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 15 * time.Second}
}

// isEntryResponse reports whether items is a non-empty array of entry
// objects. Unknown words come back as an array of suggestion strings.
func isEntryResponse(items []json.RawMessage) bool {
	if len(items) == 0 {
		return false
	}
	first := bytes.TrimSpace(items[0])
	return len(first) > 0 && first[0] == '{'
}

func extractDefinitions(items []json.RawMessage) []string {
	if !isEntryResponse(items) {
		return nil
	}

	var defs []string
	seen := make(map[string]bool)
	for _, raw := range items {
		var entry struct {
			Shortdef []string `json:"shortdef"`
		}
		if err := json.Unmarshal(raw, &entry); err != nil {
			continue
		}
		for _, def := range entry.Shortdef {
			text := stripMarkup(def)
			if text == "" || seen[text] {
				continue
			}
			seen[text] = true
			defs = append(defs, text)
			if len(defs) == MaxDefinitions {
				return defs
			}
		}
	}
	return defs
}

func stripMarkup(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}

	var buf strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extractText(c)
		}
	}
	extractText(doc)

	return strings.Join(strings.Fields(buf.String()), " ")
}
