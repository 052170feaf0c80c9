package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// SessionCookiePrefix identifies the session cookie in the login response.
const SessionCookiePrefix = "JSESSIONID"

// Config holds the ERP connection settings.
type Config struct {
	BaseURL  string
	AuthPath string
	RestPath string
	Username string
	Password string
	APIKey   string
	Timeout  time.Duration
}

// Client is a session-authenticated ERP REST client. It logs in lazily on
// the first request, attaches the session cookie and API key to every call,
// and re-authenticates once when the ERP answers 401 mid-run. Failed
// requests are not retried beyond that; retries are a caller concern.
type Client struct {
	cfg  Config
	http *http.Client
	log  *logrus.Logger

	mu         sync.Mutex
	cookieName string
	session    string
}

func NewClient(cfg Config, log *logrus.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
		log:  log,
	}
}

// Login performs the form-encoded login and captures the session cookie.
// Safe for concurrent use; only one login runs at a time.
func (c *Client) Login(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loginLocked(ctx)
}

func (c *Client) loginLocked(ctx context.Context) error {
	form := url.Values{
		"j_username": {c.cfg.Username},
		"j_password": {c.cfg.Password},
	}

	loginURL := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/" + strings.Trim(c.cfg.AuthPath, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, loginURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body) // body is ignored, cookie is the signal

	for _, cookie := range resp.Cookies() {
		if strings.HasPrefix(cookie.Name, SessionCookiePrefix) && cookie.Value != "" {
			c.cookieName = cookie.Name
			c.session = cookie.Value
			c.log.WithField("cookie", cookie.Name).Info("erp session established")
			return nil
		}
	}

	c.log.WithField("status", resp.StatusCode).Error("erp login failed")
	return ErrLoginFailed
}

func (c *Client) ensureSession(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != "" {
		return nil
	}
	return c.loginLocked(ctx)
}

func (c *Client) clearSession() {
	c.mu.Lock()
	c.session = ""
	c.mu.Unlock()
}

func (c *Client) sessionCookie() (name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cookieName, c.session
}

func (c *Client) Get(ctx context.Context, endpoint string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, endpoint, nil)
}

func (c *Client) Post(ctx context.Context, endpoint string, body any) ([]byte, error) {
	return c.do(ctx, http.MethodPost, endpoint, body)
}

func (c *Client) Put(ctx context.Context, endpoint string, body any) ([]byte, error) {
	return c.do(ctx, http.MethodPut, endpoint, body)
}

func (c *Client) Delete(ctx context.Context, endpoint string) ([]byte, error) {
	return c.do(ctx, http.MethodDelete, endpoint, nil)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any) ([]byte, error) {
	if err := c.ensureSession(ctx); err != nil {
		return nil, err
	}

	raw, status, err := c.send(ctx, method, endpoint, body)
	if status == http.StatusUnauthorized {
		// Session lost mid-run: re-authenticate once and replay the call.
		c.log.WithFields(logrus.Fields{"method": method, "endpoint": endpoint}).
			Warn("erp session rejected, re-authenticating")
		c.clearSession()
		if err := c.ensureSession(ctx); err != nil {
			return nil, err
		}
		raw, _, err = c.send(ctx, method, endpoint, body)
	}
	return raw, err
}

func (c *Client) send(ctx context.Context, method, endpoint string, body any) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	requestURL := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/" + strings.Trim(c.cfg.RestPath, "/") + "/" + strings.TrimPrefix(endpoint, "/")
	req, err := http.NewRequestWithContext(ctx, method, requestURL, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-CustomerID", c.cfg.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if name, value := c.sessionCookie(); value != "" {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response body: %w", err)
	}

	c.log.WithFields(logrus.Fields{
		"method":     method,
		"endpoint":   endpoint,
		"status":     resp.StatusCode,
		"elapsed_ms": time.Since(start).Milliseconds(),
	}).Debug("erp request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return raw, resp.StatusCode, &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.StatusCode, raw),
			Body:       raw,
		}
	}
	return raw, resp.StatusCode, nil
}
