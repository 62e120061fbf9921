// Package scripture is a client of the api.scripture.api.bible REST api.
package scripture

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/biblia-online/biblia/internal/config"
	"github.com/biblia-online/biblia/internal/metrics"
)

const (
	apiName         = "scripture"
	maxBodyBytes    = 8 << 20
	defaultTimeout  = 15 * time.Second
	includeContent  = "include-content"
	apiKeyHeader    = "api-key"
	userAgentHeader = "biblia/1.0"
)

var (
	// ErrNoAPIKey is returned when no api key is configured.
	ErrNoAPIKey = errors.New("scripture api key is not configured")
	// ErrMissingParam is returned when a required id is empty.
	ErrMissingParam = errors.New("missing parameter")
)

// Client talks to the scripture api. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter

	mu             sync.RWMutex
	baseURL        string
	apiKey         string
	defaultBibleID string
}

// New creates a client from the [Scripture] config section.
func New(cfg config.Scripture) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &Client{
		httpClient:     &http.Client{Timeout: timeout},
		limiter:        rate.NewLimiter(limit, 1),
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:         cfg.APIKey,
		defaultBibleID: cfg.DefaultBibleID,
	}
}

// Configure replaces the connection settings, used when administrators save new ones.
func (c *Client) Configure(baseURL, apiKey, defaultBibleID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if baseURL != "" {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}

	if apiKey != "" {
		c.apiKey = apiKey
	}

	if defaultBibleID != "" {
		c.defaultBibleID = defaultBibleID
	}
}

// DefaultBibleID returns the bible used when a request names none.
func (c *Client) DefaultBibleID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.defaultBibleID
}

// Bibles lists every bible available to the api key.
func (c *Client) Bibles(ctx context.Context) ([]Bible, error) {
	var out envelope[[]Bible]
	if err := c.getJSON(ctx, "/bibles", nil, &out); err != nil {
		return nil, err
	}

	return out.Data, nil
}

// Bible returns the metadata of one bible.
func (c *Client) Bible(ctx context.Context, bibleID string) (*Bible, error) {
	if bibleID == "" {
		return nil, fmt.Errorf("%w: bibleId", ErrMissingParam)
	}

	var out envelope[Bible]
	if err := c.getJSON(ctx, "/bibles/"+url.PathEscape(bibleID), nil, &out); err != nil {
		return nil, err
	}

	return &out.Data, nil
}

// Books lists the books of a bible.
func (c *Client) Books(ctx context.Context, bibleID string) ([]Book, error) {
	if bibleID == "" {
		return nil, fmt.Errorf("%w: bibleId", ErrMissingParam)
	}

	var out envelope[[]Book]
	if err := c.getJSON(ctx, fmt.Sprintf("/bibles/%s/books", url.PathEscape(bibleID)), nil, &out); err != nil {
		return nil, err
	}

	return out.Data, nil
}

// Chapters lists the chapters of a book.
func (c *Client) Chapters(ctx context.Context, bibleID, bookID string) ([]Chapter, error) {
	if bibleID == "" || bookID == "" {
		return nil, fmt.Errorf("%w: bibleId and bookId", ErrMissingParam)
	}

	var out envelope[[]Chapter]
	p := fmt.Sprintf("/bibles/%s/books/%s/chapters", url.PathEscape(bibleID), url.PathEscape(bookID))

	if err := c.getJSON(ctx, p, nil, &out); err != nil {
		return nil, err
	}

	return out.Data, nil
}

// Verses lists the verses of a chapter, without their text.
func (c *Client) Verses(ctx context.Context, bibleID, chapterID string) ([]Verse, error) {
	if bibleID == "" || chapterID == "" {
		return nil, fmt.Errorf("%w: bibleId and chapterId", ErrMissingParam)
	}

	var out envelope[[]Verse]
	p := fmt.Sprintf("/bibles/%s/chapters/%s/verses", url.PathEscape(bibleID), url.PathEscape(chapterID))

	if err := c.getJSON(ctx, p, nil, &out); err != nil {
		return nil, err
	}

	return out.Data, nil
}

// Verse fetches one verse with its plain text content.
func (c *Client) Verse(ctx context.Context, bibleID, verseID string) (*Verse, error) {
	if bibleID == "" || verseID == "" {
		return nil, fmt.Errorf("%w: bibleId and verseId", ErrMissingParam)
	}

	var out envelope[Verse]
	p := fmt.Sprintf("/bibles/%s/verses/%s", url.PathEscape(bibleID), url.PathEscape(verseID))

	if err := c.getJSON(ctx, p, TextContent(), &out); err != nil {
		return nil, err
	}

	out.Data.Content = strings.TrimSpace(out.Data.Content)

	return &out.Data, nil
}

// Passage fetches a chapter, verse or range (JHN.3.16-JHN.3.18) with plain text content.
func (c *Client) Passage(ctx context.Context, bibleID, passageID string) (*Passage, error) {
	if bibleID == "" || passageID == "" {
		return nil, fmt.Errorf("%w: bibleId and passageId", ErrMissingParam)
	}

	var out envelope[Passage]
	p := fmt.Sprintf("/bibles/%s/passages/%s", url.PathEscape(bibleID), url.PathEscape(passageID))

	if err := c.getJSON(ctx, p, TextContent(), &out); err != nil {
		return nil, err
	}

	out.Data.Content = strings.TrimSpace(out.Data.Content)

	return &out.Data, nil
}

// Search runs a keyword search. Zero limit or offset are left to the api defaults.
func (c *Client) Search(ctx context.Context, bibleID, query string, limit, offset int) (*SearchResult, error) {
	if bibleID == "" || query == "" {
		return nil, fmt.Errorf("%w: bibleId and query", ErrMissingParam)
	}

	q := url.Values{"query": {query}}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}

	var out envelope[SearchResult]
	if err := c.getJSON(ctx, fmt.Sprintf("/bibles/%s/search", url.PathEscape(bibleID)), q, &out); err != nil {
		return nil, err
	}

	return &out.Data, nil
}

// Raw performs a GET and returns the upstream body unchanged.
// Non 2xx answers are returned as *APIError.
func (c *Client) Raw(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	return c.do(ctx, path, query)
}

// TextContent returns the query asking for plain text without notes, titles or numbers.
func TextContent() url.Values {
	return url.Values{
		"content-type":            {"text"},
		"include-notes":           {"false"},
		"include-titles":          {"false"},
		"include-chapter-numbers": {"false"},
		"include-verse-numbers":   {"false"},
		"include-verse-spans":     {"false"},
	}
}

// WithIncludeContent adds include-content=true to q, the flag the proxy sets for content endpoints.
func WithIncludeContent(q url.Values) url.Values {
	if q == nil {
		q = url.Values{}
	}

	if q.Get(includeContent) == "" {
		q.Set(includeContent, "true")
	}

	return q
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, v any) error {
	body, err := c.do(ctx, path, query)
	if err != nil {
		return err
	}

	if err = json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	return nil
}

func (c *Client) do(ctx context.Context, path string, query url.Values) ([]byte, error) {
	c.mu.RLock()
	baseURL, apiKey := c.baseURL, c.apiKey
	c.mu.RUnlock()

	if apiKey == "" {
		return nil, ErrNoAPIKey
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	u := baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set(apiKeyHeader, apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgentHeader)

	log.Debug().Str("api", apiName).Str("path", path).Msg("requesting")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RemoteRequests.WithLabelValues(apiName, "error").Inc()
		return nil, fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	metrics.RemoteRequests.WithLabelValues(apiName, strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &APIError{Status: resp.StatusCode, Body: asJSON(body)}
	}

	return body, nil
}

// asJSON keeps valid JSON bodies and quotes anything else as a JSON string.
func asJSON(body []byte) json.RawMessage {
	if json.Valid(body) {
		return body
	}

	quoted, _ := json.Marshal(string(body))

	return quoted
}
