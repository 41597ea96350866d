// Package client talks to a kitchin server. Client implements replica.Backend so a local
// replica can sync against a remote server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/kitchin/pkg/models"
	"github.com/Ramsey-B/kitchin/pkg/tracing"
	"github.com/gorilla/websocket"
)

const (
	// DefaultTimeout is the default request timeout
	DefaultTimeout = 15 * time.Second

	// MaxResponseSize is the maximum response body size (10MB)
	MaxResponseSize = 10 * 1024 * 1024

	HeaderClientID = "X-Client-ID"

	apiPrefix = "/api/v1"
)

type Config struct {
	// BaseURL is the server root, e.g. http://localhost:8080
	BaseURL string
	// ClientID identifies this replica in change events
	ClientID        string
	Timeout         time.Duration
	MaxIdleConns    int
	IdleConnTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		BaseURL:         "http://localhost:8080",
		Timeout:         DefaultTimeout,
		MaxIdleConns:    10,
		IdleConnTimeout: 90 * time.Second,
	}
}

type Client struct {
	http     *http.Client
	dialer   *websocket.Dialer
	baseURL  *url.URL
	clientID string
	logger   ectologger.Logger
}

func NewClient(cfg Config, logger ectologger.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url must be http or https, got %q", cfg.BaseURL)
	}

	transport := &http.Transport{
		MaxIdleConns:    cfg.MaxIdleConns,
		IdleConnTimeout: cfg.IdleConnTimeout,
	}

	return &Client{
		http: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: cfg.Timeout,
		},
		baseURL:  base,
		clientID: cfg.ClientID,
		logger:   logger,
	}, nil
}

type errorBody struct {
	Message string         `json:"message"`
	Meta    map[string]any `json:"meta"`
}

// Push sends one mutation. Refusals come back as an httperror carrying the server's status.
func (c *Client) Push(ctx context.Context, mutation models.Mutation) error {
	ctx, span := tracing.StartSpan(ctx, "client.Push")
	defer span.End()

	body, err := json.Marshal(mutation)
	if err != nil {
		return fmt.Errorf("failed to marshal mutation: %w", err)
	}

	_, err = c.do(ctx, http.MethodPost, "/sync/push", body)
	return err
}

// Pull fetches the server's full snapshot.
func (c *Client) Pull(ctx context.Context) (models.Snapshot, error) {
	ctx, span := tracing.StartSpan(ctx, "client.Pull")
	defer span.End()

	data, err := c.do(ctx, http.MethodGet, "/sync/pull", nil)
	if err != nil {
		return models.Snapshot{}, err
	}

	var snapshot models.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snapshot, nil
}

// Watch streams change events to fn until ctx is done or the connection drops. It returns
// nil when ctx ends the stream.
func (c *Client) Watch(ctx context.Context, fn func(models.ChangeEvent)) error {
	wsURL := *c.baseURL
	wsURL.Scheme = "ws"
	if c.baseURL.Scheme == "https" {
		wsURL.Scheme = "wss"
	}
	wsURL.Path += apiPrefix + "/sync/watch"

	header := http.Header{}
	if c.clientID != "" {
		header.Set(HeaderClientID, c.clientID)
	}

	conn, _, err := c.dialer.DialContext(ctx, wsURL.String(), header)
	if err != nil {
		return fmt.Errorf("failed to connect to change feed: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		var event models.ChangeEvent
		if err := conn.ReadJSON(&event); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("change feed failed: %w", err)
		}
		fn(event)
	}
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+apiPrefix+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.clientID != "" {
		req.Header.Set(HeaderClientID, c.clientID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WithContext(ctx).WithError(err).Debugf("HTTP request failed: %s %s", method, path)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(data) > MaxResponseSize {
		return nil, fmt.Errorf("response body too large: %d bytes (max %d)", len(data), MaxResponseSize)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, responseError(resp.StatusCode, data)
	}

	return data, nil
}

func responseError(status int, data []byte) error {
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil || body.Message == "" {
		body.Message = http.StatusText(status)
	}

	err := httperror.NewHTTPError(status, body.Message)
	for key, value := range body.Meta {
		err = err.AddMetaValue(key, fmt.Sprint(value))
	}
	return err
}
