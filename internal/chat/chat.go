// Package chat asks the assistant webhook bible questions.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/biblia-online/biblia/internal/config"
	"github.com/biblia-online/biblia/internal/metrics"
)

const (
	apiName        = "chat-webhook"
	maxBodyBytes   = 1 << 20
	defaultTimeout = 30 * time.Second
	minLooseAnswer = 10
)

// Answer sources.
const (
	SourceWebhook  = "webhook"
	SourceFallback = "fallback"
)

var (
	// ErrEmptyQuestion is returned for blank questions.
	ErrEmptyQuestion = errors.New("question is required")
	// ErrNoWebhook is returned by Ask when no webhook is configured.
	ErrNoWebhook = errors.New("chat webhook is not configured")
)

// answerKeys are checked in order before any other string field.
var answerKeys = []string{"answer", "response", "message", "result", "output"} //nolint:gochecknoglobals

// Answer of the assistant.
type Answer struct {
	Answer string `json:"answer"`
	Source string `json:"source"`
}

type request struct {
	Question  string `json:"question"`
	Timestamp string `json:"timestamp"`
}

// Client posts questions to the webhook.
type Client struct {
	httpClient *http.Client
	webhookURL string
	now        func() time.Time
}

// New creates a client from the [Chat] config section.
func New(cfg config.Chat) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		webhookURL: cfg.WebhookURL,
		now:        time.Now,
	}

	if c.httpClient.Timeout == 0 {
		c.httpClient.Timeout = defaultTimeout
	}

	return c
}

// Reply answers a question through the webhook, falling back to canned answers
// when the webhook is missing, fails or answers nothing.
func (c *Client) Reply(ctx context.Context, question string) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	text, err := c.Ask(ctx, question)
	if err != nil || text == "" {
		if err != nil && !errors.Is(err, ErrNoWebhook) {
			log.Warn().Err(err).Msg("chat webhook failed, answering from fallback")
		}

		return &Answer{Answer: Fallback(question), Source: SourceFallback}, nil
	}

	return &Answer{Answer: text, Source: SourceWebhook}, nil
}

// Ask posts {question, timestamp} to the webhook and extracts the answer text.
func (c *Client) Ask(ctx context.Context, question string) (string, error) {
	if c.webhookURL == "" {
		return "", ErrNoWebhook
	}

	payload, err := json.Marshal(request{Question: question, Timestamp: c.now().UTC().Format(time.RFC3339Nano)})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RemoteRequests.WithLabelValues(apiName, "error").Inc()

		return "", fmt.Errorf("chat webhook: %w", err)
	}
	defer resp.Body.Close()

	metrics.RemoteRequests.WithLabelValues(apiName, strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read chat answer: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("chat webhook returned %d", resp.StatusCode) //nolint:err113
	}

	return ExtractAnswer(body), nil
}

// ExtractAnswer picks the answer out of a webhook body: the first known answer key,
// then the first string field longer than ten characters, then the JSON itself.
// Bodies that are not JSON objects are returned as text.
func ExtractAnswer(body []byte) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return ""
	}

	var s string
	if err := json.Unmarshal(body, &s); err == nil {
		return s
	}

	fields, err := objectStrings(body)
	if err != nil {
		return text
	}

	for _, key := range answerKeys {
		for _, f := range fields {
			if f.key == key && f.value != "" {
				return f.value
			}
		}
	}

	for _, f := range fields {
		if len([]rune(f.value)) > minLooseAnswer {
			return f.value
		}
	}

	var compact bytes.Buffer
	if err = json.Compact(&compact, body); err != nil {
		return text
	}

	return compact.String()
}

type field struct {
	key   string
	value string
}

// objectStrings returns the top level string fields of a JSON object in document order.
func objectStrings(body []byte) ([]field, error) {
	dec := json.NewDecoder(bytes.NewReader(body))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("not a json object") //nolint:err113
	}

	var out []field

	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return nil, err
		}

		key, _ := tok.(string)

		var raw json.RawMessage
		if err = dec.Decode(&raw); err != nil {
			return nil, err
		}

		var value string
		if json.Unmarshal(raw, &value) == nil {
			out = append(out, field{key: key, value: value})
		}
	}

	return out, nil
}
