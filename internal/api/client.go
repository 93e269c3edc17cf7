package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	csrfCookie      = "csrftoken"
	csrfHeader      = "X-CSRFToken"
	requestIDHeader = "X-Request-ID"
)

// Config holds the client's connection settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the lab backend. It keeps the session in a cookie jar and
// echoes the CSRF cookie back on every request. Safe for concurrent use.
type Client struct {
	base     *url.URL
	timeout  time.Duration
	http     *http.Client
	observer Observer

	mu             sync.RWMutex
	jar            *cookiejar.Jar
	onUnauthorized func()
}

// NewClient creates a Client for cfg.BaseURL.
func NewClient(cfg Config, observer Observer) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", cfg.BaseURL)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	if observer == nil {
		observer = NoopObserver{}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c := &Client{
		base:     base,
		timeout:  timeout,
		observer: observer,
		jar:      jar,
	}
	c.http = &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout: 5 * time.Second,
			}).DialContext,
		},
		Jar: jarFunc{c},
	}
	return c, nil
}

// jarFunc lets the http.Client see jar swaps made by ClearCookies.
type jarFunc struct{ c *Client }

func (j jarFunc) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.c.currentJar().SetCookies(u, cookies)
}

func (j jarFunc) Cookies(u *url.URL) []*http.Cookie {
	return j.c.currentJar().Cookies(u)
}

func (c *Client) currentJar() *cookiejar.Jar {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.jar
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// OnUnauthorized registers fn to run whenever the backend answers 401.
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

func (c *Client) rootURL() *url.URL {
	return &url.URL{Scheme: c.base.Scheme, Host: c.base.Host, Path: "/"}
}

// Cookies returns the session cookies currently held for the backend host.
func (c *Client) Cookies() []*http.Cookie {
	return c.currentJar().Cookies(c.base)
}

// SetCookies restores previously saved session cookies.
func (c *Client) SetCookies(cookies []*http.Cookie) {
	restored := make([]*http.Cookie, 0, len(cookies))
	for _, ck := range cookies {
		restored = append(restored, &http.Cookie{Name: ck.Name, Value: ck.Value, Path: "/"})
	}
	c.currentJar().SetCookies(c.rootURL(), restored)
}

// ClearCookies drops every cookie, ending the local side of the session.
func (c *Client) ClearCookies() {
	jar, _ := cookiejar.New(nil)
	c.mu.Lock()
	c.jar = jar
	c.mu.Unlock()
}

// CSRFToken returns the csrftoken cookie value, or "" when none is held.
func (c *Client) CSRFToken() string {
	for _, ck := range c.Cookies() {
		if ck.Name == csrfCookie {
			return ck.Value
		}
	}
	return ""
}

type requestBody interface {
	contentType() string
	payload() (io.Reader, error)
}

type jsonBody struct{ v any }

func (b jsonBody) contentType() string { return "application/json" }

func (b jsonBody) payload() (io.Reader, error) {
	data, err := json.Marshal(b.v)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}
	return bytes.NewReader(data), nil
}

type response struct {
	status int
	header http.Header
	body   []byte
}

// call performs a request and decodes a JSON response into out (if non-nil).
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body requestBody, out any) error {
	resp, err := c.do(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body requestBody) (*response, error) {
	start := time.Now()
	requestID := uuid.New().String()
	event := CallEvent{Method: method, Path: path, RequestID: requestID}
	defer func() {
		event.LatencyMs = time.Since(start).Milliseconds()
		c.observer.OnCallComplete(event)
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := *c.base
	u.Path = c.base.Path + path
	u.RawQuery = query.Encode()

	var reader io.Reader
	if body != nil {
		r, err := body.payload()
		if err != nil {
			event.ErrorCode = "ENCODE"
			return nil, err
		}
		reader = r
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		event.ErrorCode = "REQUEST"
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", body.contentType())
	}
	if token := c.CSRFToken(); token != "" {
		req.Header.Set(csrfHeader, token)
	}
	if method != http.MethodGet {
		// Django checks the referer on secure unsafe requests.
		req.Header.Set("Referer", c.rootURL().String())
	}

	httpResp, err := c.http.Do(req)
	if err != nil {
		mapped := c.transportError(ctx, err)
		event.ErrorCode = errorCode(mapped)
		return nil, mapped
	}
	defer httpResp.Body.Close()
	event.Status = httpResp.StatusCode

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		mapped := c.transportError(ctx, err)
		event.ErrorCode = errorCode(mapped)
		return nil, fmt.Errorf("reading response: %w", mapped)
	}

	if httpResp.StatusCode >= http.StatusBadRequest {
		apiErr := parseError(httpResp.StatusCode, httpResp.Header, data)
		event.ErrorCode = errorCode(apiErr)
		if httpResp.StatusCode == http.StatusUnauthorized && path != loginPath {
			apiErr.SessionLost = true
			c.unauthorized()
		}
		return nil, apiErr
	}

	event.Success = true
	return &response{status: httpResp.StatusCode, header: httpResp.Header, body: data}, nil
}

func (c *Client) unauthorized() {
	c.mu.RLock()
	fn := c.onUnauthorized
	c.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

func (c *Client) transportError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return ctx.Err()
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func errorCode(err error) string {
	var apiErr *Error
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(err, ErrForbidden):
		return "FORBIDDEN"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.As(err, &apiErr):
		if apiErr.ServerError() {
			return "SERVER"
		}
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}

// decodeList accepts either a bare JSON array or a paginated
// {"results": [...]} envelope.
func decodeList[T any](data []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decoding list: %w", err)
		}
		return items, nil
	}
	var page struct {
		Results []T `json:"results"`
	}
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, fmt.Errorf("decoding list: %w", err)
	}
	return page.Results, nil
}

func listCall[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	resp, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[T](resp.body)
}
