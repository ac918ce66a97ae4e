package scitran

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ndarimport/internal/logging"
	"ndarimport/internal/services"
)

// HTTPDoer describes the HTTP client used to reach the service.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RequestEvent describes one completed request.
type RequestEvent struct {
	Method     string
	Collection string
	StatusCode int
	Latency    time.Duration
	Err        error
}

// Observer is notified after every request, successful or not.
type Observer func(RequestEvent)

// Client issues requests against a scitran instance. Its configuration is
// fixed at construction.
type Client struct {
	baseURL    *url.URL
	params     url.Values
	httpClient HTTPDoer
	logger     *slog.Logger
	observer   Observer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client HTTPDoer) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger sets the logger used for request debug lines.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver registers a callback invoked after every request.
func WithObserver(observer Observer) Option {
	return func(c *Client) {
		c.observer = observer
	}
}

// New creates a client for the service rooted at baseURL acting as user.
func New(baseURL, user string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("scitran base url required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse scitran url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("scitran url %q must use http or https", baseURL)
	}
	user = strings.TrimSpace(user)
	if user == "" {
		return nil, errors.New("scitran user required")
	}

	params := parsed.Query()
	params.Set("root", "true")
	params.Set("user", user)
	parsed.RawQuery = ""

	client := &Client{
		baseURL:    parsed,
		params:     params,
		httpClient: http.DefaultClient,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, "scitran")
	return client, nil
}

// BaseURL returns the service root without query parameters.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Create posts payload to the named collection and returns the identifier the
// service assigned.
func (c *Client) Create(ctx context.Context, collection string, payload any) (string, error) {
	collection = strings.Trim(strings.TrimSpace(collection), "/")
	if collection == "" {
		return "", errors.New("collection must not be empty")
	}
	resp, err := c.do(ctx, http.MethodPost, collection, payload, collection)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		drain(resp.Body)
		return "", newUploadError(resp)
	}

	id, err := decodeID(resp.Body)
	if err != nil {
		return "", services.Wrap(services.ErrUpload, "scitran", "create "+singular(collection), "decode response", err)
	}
	logging.WithContext(ctx, c.logger).Debug(
		fmt.Sprintf("%s created", singular(collection)),
		logging.String("collection", collection),
		logging.String("id", id),
	)
	return id, nil
}

// CreateProject creates a project and returns its identifier.
func (c *Client) CreateProject(ctx context.Context, project Project) (string, error) {
	return c.Create(ctx, CollectionProjects, project)
}

// CreateSession creates a session and returns its identifier.
func (c *Client) CreateSession(ctx context.Context, session Session) (string, error) {
	return c.Create(ctx, CollectionSessions, session)
}

// CreateAcquisition creates an acquisition and returns its identifier.
func (c *Client) CreateAcquisition(ctx context.Context, acquisition Acquisition) (string, error) {
	return c.Create(ctx, CollectionAcquisitions, acquisition)
}

// EnsureGroup creates the named group unless the service already knows it.
func (c *Client) EnsureGroup(ctx context.Context, group string) error {
	group = strings.TrimSpace(group)
	if group == "" {
		return errors.New("group must not be empty")
	}
	logger := logging.WithContext(ctx, c.logger).With(logging.String("group", group))

	resp, err := c.do(ctx, http.MethodGet, CollectionGroups, nil, CollectionGroups, group)
	if err != nil {
		return err
	}
	drain(resp.Body)
	resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		logger.Debug("group already exists")
		return nil
	case http.StatusNotFound:
	default:
		return newUploadError(resp)
	}

	resp, err = c.do(ctx, http.MethodPost, CollectionGroups, Group{ID: group}, CollectionGroups)
	if err != nil {
		return err
	}
	drain(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return newUploadError(resp)
	}
	logger.Debug("group created")
	return nil
}

func (c *Client) do(ctx context.Context, method, collection string, payload any, segments ...string) (*http.Response, error) {
	endpoint := c.baseURL.JoinPath(segments...)
	endpoint.RawQuery = c.params.Encode()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", singular(collection), err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	event := RequestEvent{Method: method, Collection: collection, Latency: latency, Err: err}
	if resp != nil {
		event.StatusCode = resp.StatusCode
	}
	if c.observer != nil {
		c.observer(event)
	}
	if err != nil {
		return nil, fmt.Errorf("%s %s (latency=%v): %w", method, endpoint.Path, latency, err)
	}
	return resp, nil
}

func decodeID(r io.Reader) (string, error) {
	decoder := json.NewDecoder(r)
	decoder.UseNumber()
	var payload struct {
		ID any `json:"_id"`
	}
	if err := decoder.Decode(&payload); err != nil {
		return "", err
	}
	switch id := payload.ID.(type) {
	case string:
		if id != "" {
			return id, nil
		}
	case json.Number:
		return id.String(), nil
	}
	return "", errors.New("response has no _id")
}

func singular(collection string) string {
	if len(collection) == 0 {
		return collection
	}
	return collection[:len(collection)-1]
}

func drain(r io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r, 64*1024))
}
