package n8n

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/zapdesk/zapdesk/pkg/provision"
)

// Client wraps calls to the workflow engine's public API. The base URL should
// include the engine's API prefix (e.g. https://engine.example.com/api/v1).
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates an engine client authenticated with a static API key
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// GetWorkflow fetches a workflow definition by id
func (c *Client) GetWorkflow(ctx context.Context, id string) (*Workflow, error) {
	var workflow Workflow
	if err := c.doJSON(ctx, http.MethodGet, "/workflows/"+id, nil, &workflow); err != nil {
		if provision.IsNotFound(err) {
			return nil, &provision.ResourceNotFoundError{Kind: "workflow", ID: id}
		}
		return nil, err
	}
	return &workflow, nil
}

// CreateWorkflow submits a definition as a new resource and returns it with
// the ids the engine assigned
func (c *Client) CreateWorkflow(ctx context.Context, workflow *Workflow) (*Workflow, error) {
	var created Workflow
	if err := c.doJSON(ctx, http.MethodPost, "/workflows", workflow, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateWorkflow replaces an existing workflow definition
func (c *Client) UpdateWorkflow(ctx context.Context, id string, workflow *Workflow) error {
	return c.doJSON(ctx, http.MethodPut, "/workflows/"+id, workflow, nil)
}

// Activate flips a workflow live. Some engine versions auto-activate on save,
// so callers treat failures here as warnings.
func (c *Client) Activate(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodPost, "/workflows/"+id+"/activate", nil, nil)
}

// Deactivate takes a workflow offline
func (c *Client) Deactivate(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/workflows/"+id+"/activate", nil, nil)
}

func (c *Client) doJSON(ctx context.Context, method, path string, in any, out any) error {
	op := method + " " + path

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return &provision.NetworkError{Service: "engine", Op: op, Err: err}
		}
		body = bytes.NewBuffer(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &provision.NetworkError{Service: "engine", Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-N8N-API-KEY", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &provision.NetworkError{Service: "engine", Op: op, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &provision.ResourceNotFoundError{Kind: "workflow", ID: path}
	case resp.StatusCode == http.StatusConflict:
		return &provision.ConflictError{Service: "engine", Op: op}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		b, _ := io.ReadAll(resp.Body)
		return &provision.NetworkError{
			Service: "engine",
			Op:      op,
			Err:     fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(b)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &provision.NetworkError{Service: "engine", Op: op, Err: err}
	}
	return nil
}
