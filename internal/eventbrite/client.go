package eventbrite

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"eventbrite-extractor/internal/status"
	"eventbrite-extractor/models"
	"eventbrite-extractor/monitoring"
	"eventbrite-extractor/utils"
)

const searchPath = "/destination/search/"

// expandFields asks the API to inline the sub-resources the extractor
// reads instead of returning bare references.
var expandFields = []string{"primary_venue", "primary_organizer", "ticket_availability", "image"}

var validate = validator.New()

type ClientConfig struct {
	// BaseURL is the API root, e.g. https://www.eventbriteapi.com/v3.
	BaseURL string

	// Token is the private API token sent as a bearer credential.
	Token string

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// MaxRetries is how many times a rate-limited request is retried
	// before the run fails.
	MaxRetries int

	// Backoff shapes the wait between rate-limit retries.
	Backoff utils.Backoff
}

type Client struct {
	baseURL    string
	token      string
	maxRetries int
	backoff    utils.Backoff

	// sleep is swapped out in tests to observe retry delays.
	sleep utils.SleepFunc

	logger *slog.Logger
	stats  *monitoring.Stats

	hc *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func WithSleepFunc(fn utils.SleepFunc) Option {
	return func(c *Client) { c.sleep = fn }
}

func WithStats(stats *monitoring.Stats) Option {
	return func(c *Client) { c.stats = stats }
}

// New creates a search client for the destination API.
func New(cfg ClientConfig, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	backoff := cfg.Backoff
	if backoff == (utils.Backoff{}) {
		backoff = utils.DefaultBackoff()
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		maxRetries: cfg.MaxRetries,
		backoff:    backoff,
		sleep:      utils.Sleep,
		logger:     slog.Default(),
		hc: &http.Client{
			Timeout: timeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Query describes one search run.
type Query struct {
	Keyword string `validate:"required"`

	// PlaceID narrows results to a location; empty searches worldwide.
	PlaceID string

	OnlineOnly bool

	MaxPages int `validate:"gte=1"`
	PageSize int `validate:"gte=1,lte=50"`
}

// SearchEvents walks the paginated search results for q and returns the
// normalized events in first-encountered order. Records repeated across
// pages are returned once. The walk stops at MaxPages or when the API
// stops handing back a continuation token, whichever comes first.
func (c *Client) SearchEvents(ctx context.Context, q Query) ([]models.Event, error) {
	if err := validate.Struct(q); err != nil {
		return nil, fmt.Errorf("searchEvents: invalid query: %w", err)
	}

	seen := make(map[string]struct{})
	events := make([]models.Event, 0, q.PageSize)

	continuation := ""
	for page := 1; page <= q.MaxPages; page++ {
		c.logger.Info("fetching events page", "page", page, "keyword", q.Keyword)

		reply, err := c.searchPage(ctx, q, continuation)
		if err != nil {
			return nil, err
		}
		c.stats.Inc(monitoring.CounterPagesFetched)

		for _, frag := range reply.Events {
			if frag.ID == "" {
				c.stats.Inc(monitoring.CounterRecordsSkipped)
				c.logger.Warn("skipping event with no id", "title", frag.Name)
				continue
			}
			if _, dup := seen[frag.ID]; dup {
				c.stats.Inc(monitoring.CounterDuplicatesSkipped)
				continue
			}
			seen[frag.ID] = struct{}{}
			events = append(events, frag.toEvent())
		}

		if !reply.Pagination.HasMoreItems || reply.Pagination.Continuation == "" {
			break
		}
		continuation = reply.Pagination.Continuation
	}

	c.stats.Add(monitoring.CounterEventsExtracted, len(events))
	c.logger.Info("search complete", "events", len(events))
	return events, nil
}

// searchPage fetches one page, retrying with exponential backoff while
// the API answers 429. Any other failure is returned immediately: the
// same request will not do better on a second try.
func (c *Client) searchPage(ctx context.Context, q Query, continuation string) (*searchResponse, error) {
	for attempt := 0; ; attempt++ {
		reply, retryAfter, err := c.requestPage(ctx, q, continuation)
		if err == nil {
			return reply, nil
		}
		if !errors.Is(err, status.ErrRateLimited) {
			return nil, err
		}
		if attempt >= c.maxRetries {
			return nil, fmt.Errorf("searchPage: gave up after %d attempts: %w", attempt+1, status.ErrRetriesExhausted)
		}

		delay := c.backoff.Delay(attempt)
		if retryAfter > delay {
			delay = retryAfter
		}

		c.stats.Inc(monitoring.CounterRateLimitRetries)
		c.logger.Warn("rate limited by search API, backing off",
			"attempt", attempt+1,
			"delay", delay,
		)

		if err := c.sleep(ctx, delay); err != nil {
			return nil, fmt.Errorf("searchPage: %w", err)
		}
	}
}

// requestPage performs a single search request. On 429 the returned
// duration carries the server's Retry-After hint, zero when absent.
func (c *Client) requestPage(ctx context.Context, q Query, continuation string) (*searchResponse, time.Duration, error) {
	payload := searchRequest{
		EventSearch: eventSearch{
			Query:            q.Keyword,
			OnlineEventsOnly: q.OnlineOnly,
			PageSize:         q.PageSize,
			Continuation:     continuation,
		},
		Expand: expandFields,
	}
	if q.PlaceID != "" {
		payload.EventSearch.Places = []string{q.PlaceID}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("requestPage: json.Marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s%s", c.baseURL, searchPath), bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("requestPage: http.NewReq: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	c.stats.Inc(monitoring.CounterRequestsMade)
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("requestPage: http.Do: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to decode

	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, 0, fmt.Errorf("requestPage: resp.StatusCode: %d: %w", resp.StatusCode, status.ErrAuthFailed)

	case http.StatusTooManyRequests:
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		return nil, retryAfter, fmt.Errorf("requestPage: resp.StatusCode: 429: %w", status.ErrRateLimited)

	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, 0, fmt.Errorf("requestPage: resp.StatusCode: %d, resp.Body: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var reply searchResponse
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&reply); err != nil {
		return nil, 0, fmt.Errorf("requestPage: %w: %v", status.ErrMalformedReply, err)
	}

	return &reply, 0, nil
}

// parseRetryAfter reads a Retry-After header, either delay-seconds or
// an HTTP date. Unparseable values count as no hint.
func parseRetryAfter(h string) time.Duration {
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(h); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
