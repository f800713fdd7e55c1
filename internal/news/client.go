// Package news implements the client for the external news provider.
package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// Article is one normalized article record returned by the provider.
// Timestamps are parsed here so callers never see string-typed dates.
type Article struct {
	Title       string
	Description string
	URL         string
	PublishedAt time.Time
	SourceName  string
	Language    string
}

// ErrorKind classifies client failures.
type ErrorKind string

const (
	KindTimeout    ErrorKind = "timeout"
	KindBadStatus  ErrorKind = "bad_status"
	KindBadPayload ErrorKind = "bad_payload"
)

// ClientError is returned for any failed provider call. A failed call is
// never reported as an empty success list.
type ClientError struct {
	Kind   ErrorKind
	Status int // HTTP status for bad_status, zero otherwise
	Err    error
}

func (e *ClientError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("news client: %s (HTTP %d)", e.Kind, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("news client: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("news client: %s", e.Kind)
}

func (e *ClientError) Unwrap() error { return e.Err }

// Options configures the news client.
type Options struct {
	BaseURL         string
	APIKey          string
	Timeout         time.Duration
	PageSize        int
	DefaultLanguage string // applied to articles the provider returns without one
}

// Client fetches articles from a NewsAPI-compatible provider.
type Client struct {
	http            *resty.Client
	apiKey          string
	pageSize        int
	defaultLanguage string
}

// NewClient creates a news client with a bounded request timeout.
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 100
	}
	if opts.DefaultLanguage == "" {
		opts.DefaultLanguage = "en"
	}

	httpClient := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", "newstrack/1.0")

	return &Client{
		http:            httpClient,
		apiKey:          opts.APIKey,
		pageSize:        opts.PageSize,
		defaultLanguage: opts.DefaultLanguage,
	}
}

// everythingResponse mirrors the provider's /v2/everything payload.
type everythingResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
		Language    string `json:"language"`
	} `json:"articles"`
}

// Fetch queries the provider for articles matching the keyword. When from is
// set it is passed as a lower publish-time bound; the provider may still
// return older articles, so callers must dedup regardless.
func (c *Client) Fetch(ctx context.Context, keyword string, from *time.Time) ([]Article, error) {
	params := map[string]string{
		"q":        keyword,
		"sortBy":   "publishedAt",
		"pageSize": strconv.Itoa(c.pageSize),
		"apiKey":   c.apiKey,
	}
	if from != nil {
		params["from"] = from.UTC().Format(time.RFC3339)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get("/v2/everything")
	if err != nil {
		return nil, &ClientError{Kind: classifyTransport(err), Err: err}
	}

	if resp.IsError() {
		return nil, &ClientError{Kind: KindBadStatus, Status: resp.StatusCode()}
	}

	var body everythingResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, &ClientError{Kind: KindBadPayload, Err: err}
	}
	if body.Status != "ok" {
		return nil, &ClientError{
			Kind: KindBadPayload,
			Err:  fmt.Errorf("provider status %q: %s %s", body.Status, body.Code, body.Message),
		}
	}

	articles := make([]Article, 0, len(body.Articles))
	for _, raw := range body.Articles {
		if raw.Title == "" {
			slog.Warn("news client: dropping article without title", "url", raw.URL)
			continue
		}
		published, err := parsePublishedAt(raw.PublishedAt)
		if err != nil {
			slog.Warn("news client: dropping article with bad timestamp",
				"title", raw.Title, "published_at", raw.PublishedAt, "error", err)
			continue
		}

		language := raw.Language
		if language == "" {
			language = c.defaultLanguage
		}
		sourceName := raw.Source.Name
		if sourceName == "" {
			sourceName = "Unknown"
		}

		articles = append(articles, Article{
			Title:       raw.Title,
			Description: raw.Description,
			URL:         raw.URL,
			PublishedAt: published,
			SourceName:  sourceName,
			Language:    language,
		})
	}

	return articles, nil
}

func parsePublishedAt(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

func classifyTransport(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindBadStatus
}
