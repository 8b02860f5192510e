package waha

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zapdesk/zapdesk/pkg/provision"
)

// Self-hosted gateway deployments mount the sessions API under different
// prefixes depending on version; Probe tries these in order.
var apiPrefixes = []string{"/api", "", "/api/v1"}

const defaultPrefix = "/api"

// Client wraps calls to the messaging gateway's HTTP API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	mu     sync.RWMutex
	prefix string
}

// NewClient creates a gateway client authenticated with a static API key
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		prefix:     defaultPrefix,
	}
}

// Probe checks gateway connectivity by listing sessions against each known
// endpoint variant in order. The first variant answering 2xx is remembered for
// subsequent calls. Returns false when every variant fails.
func (c *Client) Probe(ctx context.Context) bool {
	for _, prefix := range apiPrefixes {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+prefix+"/sessions", nil)
		if err != nil {
			continue
		}
		req.Header.Set("X-Api-Key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			continue
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			c.mu.Lock()
			c.prefix = prefix
			c.mu.Unlock()
			return true
		}
	}
	return false
}

// GetSession fetches a session by name
func (c *Client) GetSession(ctx context.Context, name string) (*Session, error) {
	var session Session
	if err := c.doJSON(ctx, http.MethodGet, "/sessions/"+name, nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// CreateSession creates a new session on the gateway
func (c *Client) CreateSession(ctx context.Context, name string) (*Session, error) {
	body := map[string]any{"name": name}
	var session Session
	if err := c.doJSON(ctx, http.MethodPost, "/sessions", body, &session); err != nil {
		return nil, err
	}
	if session.Name == "" {
		session.Name = name
	}
	return &session, nil
}

// StartSession starts a stopped session
func (c *Client) StartSession(ctx context.Context, name string) error {
	return c.doJSON(ctx, http.MethodPost, "/sessions/"+name+"/start", nil, nil)
}

// StopSession stops a running session
func (c *Client) StopSession(ctx context.Context, name string) error {
	return c.doJSON(ctx, http.MethodPost, "/sessions/"+name+"/stop", nil, nil)
}

// DeleteSession removes a session from the gateway
func (c *Client) DeleteSession(ctx context.Context, name string) error {
	return c.doJSON(ctx, http.MethodDelete, "/sessions/"+name, nil, nil)
}

// ScanCode fetches the pairing code for a session awaiting a QR scan. The
// gateway returns either a JSON envelope with a raw value or a base64 image
// body; both are passed through untouched.
func (c *Client) ScanCode(ctx context.Context, name string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/sessions/"+name+"/auth/qr"), nil)
	if err != nil {
		return "", &provision.NetworkError{Service: "gateway", Op: "GET auth/qr", Err: err}
	}
	c.setHeaders(req)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &provision.NetworkError{Service: "gateway", Op: "GET auth/qr", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &provision.NetworkError{Service: "gateway", Op: "GET auth/qr", Err: err}
	}
	if resp.StatusCode == http.StatusNotFound {
		return "", &provision.ResourceNotFoundError{Kind: "session", ID: name}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &provision.NetworkError{
			Service: "gateway",
			Op:      "GET auth/qr",
			Err:     fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(data)),
		}
	}

	var envelope struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Value != "" {
		return envelope.Value, nil
	}
	return string(data), nil
}

// GetWebhooks returns the webhooks currently registered on a session
func (c *Client) GetWebhooks(ctx context.Context, name string) ([]Webhook, error) {
	session, err := c.GetSession(ctx, name)
	if err != nil {
		return nil, err
	}
	if session.Config == nil {
		return nil, nil
	}
	return session.Config.Webhooks, nil
}

// UpdateSession replaces a session's configuration. HTTP 409 surfaces as a
// ConflictError so callers can treat duplicate registration as a no-op.
func (c *Client) UpdateSession(ctx context.Context, name string, config SessionConfig) error {
	body := map[string]any{"config": config}
	return c.doJSON(ctx, http.MethodPut, "/sessions/"+name, body, nil)
}

// sessionFromPath extracts the session name from a request path so error
// messages name the session rather than the URL
func sessionFromPath(path string) string {
	name := strings.TrimPrefix(path, "/sessions")
	name = strings.TrimPrefix(name, "/")
	if i := strings.IndexByte(name, '/'); i >= 0 {
		name = name[:i]
	}
	return name
}

func (c *Client) endpoint(path string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL + c.prefix + path
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("X-Request-Id", uuid.NewString())
}

// doJSON performs a JSON request against the gateway and maps failure modes
// onto the shared error taxonomy
func (c *Client) doJSON(ctx context.Context, method, path string, in any, out any) error {
	op := method + " " + path

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return &provision.NetworkError{Service: "gateway", Op: op, Err: err}
		}
		body = bytes.NewBuffer(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), body)
	if err != nil {
		return &provision.NetworkError{Service: "gateway", Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &provision.NetworkError{Service: "gateway", Op: op, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &provision.ResourceNotFoundError{Kind: "session", ID: sessionFromPath(path)}
	case resp.StatusCode == http.StatusConflict:
		return &provision.ConflictError{Service: "gateway", Op: op}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		b, _ := io.ReadAll(resp.Body)
		return &provision.NetworkError{
			Service: "gateway",
			Op:      op,
			Err:     fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(b)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &provision.NetworkError{Service: "gateway", Op: op, Err: err}
	}
	return nil
}
