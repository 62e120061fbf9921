// Package versesapi is a client of the free bible-api.com verse lookup.
package versesapi

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
	"time"

	"github.com/rs/zerolog/log"

	"github.com/biblia-online/biblia/internal/config"
	"github.com/biblia-online/biblia/internal/metrics"
)

const (
	apiName            = "bible-api"
	maxBodyBytes       = 2 << 20
	defaultTimeout     = 10 * time.Second
	defaultBaseURL     = "https://bible-api.com"
	DefaultTranslation = "almeida"
)

var (
	// ErrVerseNotFound is returned when bible-api.com answers 404.
	ErrVerseNotFound = errors.New("verse not found")
	// ErrEmptyReference is returned for an empty reference.
	ErrEmptyReference = errors.New("reference is required")
)

// StatusError is returned for non 2xx answers other than 404.
type StatusError struct {
	Status int
}

// Error implements error.
func (e *StatusError) Error() string {
	return "bible-api.com returned status " + strconv.Itoa(e.Status)
}

// Verse is one verse of a lookup.
type Verse struct {
	BookID   string `json:"book_id"`
	BookName string `json:"book_name"`
	Chapter  int    `json:"chapter"`
	Verse    int    `json:"verse"`
	Text     string `json:"text"`
}

// Result of a reference lookup.
type Result struct {
	Reference       string  `json:"reference"`
	Verses          []Verse `json:"verses"`
	Text            string  `json:"text"`
	TranslationID   string  `json:"translation_id"`
	TranslationName string  `json:"translation_name"`
	TranslationNote string  `json:"translation_note"`
}

// Client looks up references on bible-api.com.
type Client struct {
	httpClient         *http.Client
	baseURL            string
	defaultTranslation string
}

// New creates a client from the [SimpleVerse] config section.
func New(cfg config.SimpleVerse) *Client {
	c := &Client{
		httpClient:         &http.Client{Timeout: cfg.Timeout},
		baseURL:            strings.TrimRight(cfg.BaseURL, "/"),
		defaultTranslation: cfg.DefaultTranslation,
	}

	if c.httpClient.Timeout == 0 {
		c.httpClient.Timeout = defaultTimeout
	}

	if c.baseURL == "" {
		c.baseURL = defaultBaseURL
	}

	if c.defaultTranslation == "" {
		c.defaultTranslation = DefaultTranslation
	}

	return c
}

// DefaultTranslation returns the translation used when none is given.
func (c *Client) DefaultTranslation() string {
	return c.defaultTranslation
}

// Lookup resolves a reference like "João 3:16" in the given translation (default almeida).
func (c *Client) Lookup(ctx context.Context, reference, translation string) (*Result, error) {
	body, err := c.Raw(ctx, reference, translation)
	if err != nil {
		return nil, err
	}

	var out Result
	if err = json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode lookup: %w", err)
	}

	out.Text = strings.TrimSpace(out.Text)

	if out.Text == "" && len(out.Verses) == 0 {
		return nil, ErrVerseNotFound
	}

	return &out, nil
}

// Raw returns the upstream JSON body unchanged.
func (c *Client) Raw(ctx context.Context, reference, translation string) (json.RawMessage, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, ErrEmptyReference
	}

	if translation == "" {
		translation = c.defaultTranslation
	}

	u := fmt.Sprintf("%s/%s?translation=%s", c.baseURL, url.PathEscape(reference), url.QueryEscape(translation))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	log.Debug().Str("api", apiName).Str("reference", reference).Str("translation", translation).Msg("requesting")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RemoteRequests.WithLabelValues(apiName, "error").Inc()
		return nil, fmt.Errorf("lookup %q: %w", reference, err)
	}
	defer resp.Body.Close()

	metrics.RemoteRequests.WithLabelValues(apiName, strconv.Itoa(resp.StatusCode)).Inc()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrVerseNotFound, reference)
	case resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices:
		return nil, &StatusError{Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read lookup: %w", err)
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("lookup %q: invalid json", reference)
	}

	return body, nil
}
