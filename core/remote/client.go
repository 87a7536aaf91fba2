package remote

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// Row is a single raw record as returned by the platform's table API.
// Reference fields arrive as nested {"value": ..., "link": ...} objects;
// the refdata adapter flattens them.
type Row map[string]any

// Query describes one table API request.
type Query struct {
	// Filter is the platform query string (e.g. "active=true^sys_updated_on>=...").
	Filter string
	// Fields is the column projection; empty means all fields.
	Fields []string
	// Limit overrides the configured page limit when > 0.
	Limit int
}

// CallFunc observes one HTTP attempt against the API, including retries.
// The execution ledger hooks in here.
type CallFunc func(success bool, elapsed time.Duration)

// Client provides access to the ticketing platform's REST table API.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
	onCall CallFunc

	// retry pacing, shortened in tests
	retryInterval time.Duration
}

// NewClient creates a table API client with pooled transport and strict
// timeouts.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	timeoutDuration := time.Duration(timeout) * time.Second

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeoutDuration,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeoutDuration,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: timeoutDuration,
	}
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		logger.Warn("TLS certificate verification is disabled")
	}

	return &Client{
		cfg:           cfg,
		http:          &http.Client{Transport: transport, Timeout: timeoutDuration},
		logger:        logger,
		retryInterval: 500 * time.Millisecond,
	}
}

// OnCall registers the per-attempt observer. Passing nil removes it.
func (c *Client) OnCall(fn CallFunc) {
	c.onCall = fn
}

// PageLimit returns the effective page size for paginated fetches.
func (c *Client) PageLimit() int {
	if c.cfg.PageLimit > 0 {
		return c.cfg.PageLimit
	}
	return 1000
}

// FetchPage requests one page of a table, retrying transient failures a
// bounded number of times. Permanent failures (auth, bad request) surface
// immediately. A pause between consecutive pages keeps request rate polite.
func (c *Client) FetchPage(ctx context.Context, table string, q Query, offset int) ([]Row, error) {
	if offset > 0 && c.cfg.ThrottleMillis > 0 {
		select {
		case <-time.After(time.Duration(c.cfg.ThrottleMillis) * time.Millisecond):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	var rows []Row
	op := func() error {
		var err error
		rows, err = c.fetch(ctx, table, q, offset)
		if err != nil {
			if IsPermanent(err) {
				return backoff.Permanent(err)
			}
			c.logger.Warn("Transient API failure, will retry",
				zap.String("table", table),
				zap.Int("offset", offset),
				zap.Error(err),
			)
			return err
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryInterval
	retries := c.cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(retries)), ctx)); err != nil {
		return nil, err
	}
	return rows, nil
}

// keyBatchSize bounds the number of keys per OR-joined lookup so query
// strings stay below URL length limits.
const keyBatchSize = 50

// FetchByKeys looks up specific records by key list. Keys are split into
// bounded chunks and fetched with OR-joined key filters. Keys unknown to the
// platform are simply absent from the result.
func (c *Client) FetchByKeys(ctx context.Context, table string, fields []string, keys []string) ([]Row, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	all := make([]Row, 0, len(keys))
	for start := 0; start < len(keys); start += keyBatchSize {
		end := start + keyBatchSize
		if end > len(keys) {
			end = len(keys)
		}
		chunk := keys[start:end]

		terms := make([]string, len(chunk))
		for i, key := range chunk {
			terms[i] = "sys_id=" + key
		}
		q := Query{
			Filter: strings.Join(terms, "^OR"),
			Fields: fields,
			Limit:  keyBatchSize,
		}

		rows, err := c.FetchPage(ctx, table, q, 0)
		if err != nil {
			return nil, fmt.Errorf("key lookup for %s failed: %w", table, err)
		}
		all = append(all, rows...)
	}
	return all, nil
}

func (c *Client) fetch(ctx context.Context, table string, q Query, offset int) ([]Row, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = c.PageLimit()
	}

	endpoint := fmt.Sprintf("%s/api/now/table/%s", strings.TrimRight(c.cfg.BaseURL, "/"), table)

	params := url.Values{}
	if q.Filter != "" {
		params.Set("sysparm_query", q.Filter)
	}
	if len(q.Fields) > 0 {
		params.Set("sysparm_fields", strings.Join(q.Fields, ","))
	}
	params.Set("sysparm_limit", strconv.Itoa(limit))
	params.Set("sysparm_offset", strconv.Itoa(offset))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start)

	if err != nil {
		c.record(false, elapsed)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.record(false, elapsed)
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &APIError{StatusCode: resp.StatusCode, Status: resp.Status, URL: endpoint}
	}

	var envelope struct {
		Result []Row `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		c.record(false, elapsed)
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	c.record(true, elapsed)
	return envelope.Result, nil
}

func (c *Client) record(success bool, elapsed time.Duration) {
	if c.onCall != nil {
		c.onCall(success, elapsed)
	}
}
