package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ethanbaker/api/pkg/api_types"
	"github.com/zapdesk/zapdesk/pkg/provision"
)

// Client wraps calls to the provisioning backend
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// doJSON is a helper to perform JSON requests to the backend
func (c *Client) doJSON(ctx context.Context, method, path string, in any, out any) error {
	// Create request body if input is provided
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewBuffer(b)
	}

	// Create the request
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", c.apiKey)

	// Perform the request
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// On error, read body and return error
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("[BACKEND]: backend '%s %s' failed: %d: %s", method, path, resp.StatusCode, string(b))
	}

	// If no output expected, return early
	if out == nil {
		return nil
	}

	// Decode the response body into the output struct
	dec := json.NewDecoder(resp.Body)
	return dec.Decode(out)
}

// checkEnvelope turns a non-success envelope status into an error
func checkEnvelope[T any](out ApiResponse[T], action string) error {
	switch out.Status {
	case api_types.StatusFail:
		return fmt.Errorf("failed to %s: %s", action, out.Message)
	case api_types.StatusError:
		return fmt.Errorf("error during %s (%s): %v", action, out.Message, out.Error)
	}
	return nil
}

// PingGateway checks whether the backend can reach the messaging gateway
func (c *Client) PingGateway(ctx context.Context) (bool, error) {
	var out ApiResponse[GatewayPingResponse]
	if err := c.doJSON(ctx, http.MethodGet, "/api/connection/gateway/ping", nil, &out); err != nil {
		return false, err
	}
	return out.Data.Reachable, checkEnvelope(out, "gateway ping")
}

// ConnectSession starts or resumes the tenant's gateway session
func (c *Client) ConnectSession(ctx context.Context, tenantID string, req *ConnectSessionRequest) (*SessionInfo, error) {
	path := fmt.Sprintf("/api/connection/%s/session", tenantID)

	var out ApiResponse[SessionInfo]
	if err := c.doJSON(ctx, http.MethodPost, path, req, &out); err != nil {
		return nil, err
	}
	if err := checkEnvelope(out, "session connect"); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// PollSession waits for the tenant's session to settle
func (c *Client) PollSession(ctx context.Context, tenantID string, req *PollSessionRequest) (*SessionInfo, error) {
	path := fmt.Sprintf("/api/connection/%s/session/poll", tenantID)

	var out ApiResponse[SessionInfo]
	if err := c.doJSON(ctx, http.MethodPost, path, req, &out); err != nil {
		return nil, err
	}
	if err := checkEnvelope(out, "session poll"); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// GetStatus retrieves the tenant's full connection status
func (c *Client) GetStatus(ctx context.Context, tenantID string) (*provision.ConnectionStatus, error) {
	path := fmt.Sprintf("/api/connection/%s/status", tenantID)

	var out ApiResponse[provision.ConnectionStatus]
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	if err := checkEnvelope(out, "status fetch"); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// ProvisionWorkflow clones and wires a workflow for the tenant
func (c *Client) ProvisionWorkflow(ctx context.Context, tenantID string, req *ProvisionRequest) (*ProvisionResponse, error) {
	path := fmt.Sprintf("/api/connection/%s/workflow", tenantID)

	var out ApiResponse[ProvisionResponse]
	if err := c.doJSON(ctx, http.MethodPost, path, req, &out); err != nil {
		return nil, err
	}
	if err := checkEnvelope(out, "workflow provisioning"); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// ActivateWorkflow validates and activates the tenant's provisioned workflow
func (c *Client) ActivateWorkflow(ctx context.Context, tenantID string) (*provision.ConnectionStatus, error) {
	path := fmt.Sprintf("/api/connection/%s/workflow/activate", tenantID)

	var out ApiResponse[provision.ConnectionStatus]
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &out); err != nil {
		return nil, err
	}
	if err := checkEnvelope(out, "workflow activation"); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// Disconnect tears down the tenant's session and all dependent state
func (c *Client) Disconnect(ctx context.Context, tenantID string) error {
	path := fmt.Sprintf("/api/connection/%s", tenantID)

	var out ApiResponse[any]
	if err := c.doJSON(ctx, http.MethodDelete, path, nil, &out); err != nil {
		return err
	}
	return checkEnvelope(out, "disconnect")
}

// SaveAgentConfig stores the behavioral configuration for one agent type
func (c *Client) SaveAgentConfig(ctx context.Context, tenantID, agentType string, req *AgentConfigRequest) error {
	path := fmt.Sprintf("/api/agent/%s/%s/config", tenantID, agentType)

	var out ApiResponse[any]
	if err := c.doJSON(ctx, http.MethodPut, path, req, &out); err != nil {
		return err
	}
	return checkEnvelope(out, "agent config save")
}

// GetAgentConfig retrieves the behavioral configuration for one agent type
func (c *Client) GetAgentConfig(ctx context.Context, tenantID, agentType string) (*provision.AgentConfig, error) {
	path := fmt.Sprintf("/api/agent/%s/%s/config", tenantID, agentType)

	var out ApiResponse[provision.AgentConfig]
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	if err := checkEnvelope(out, "agent config fetch"); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// SendTestMessage runs one message through the tenant's configured agent
func (c *Client) SendTestMessage(ctx context.Context, tenantID, agentType string, req *TestMessageRequest) (*TestMessageResponse, error) {
	path := fmt.Sprintf("/api/agent/%s/%s/config/test", tenantID, agentType)

	var out ApiResponse[TestMessageResponse]
	if err := c.doJSON(ctx, http.MethodPost, path, req, &out); err != nil {
		return nil, err
	}
	if err := checkEnvelope(out, "agent test message"); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// GetReadiness reports whether the tenant's bot can go live
func (c *Client) GetReadiness(ctx context.Context, tenantID string) (*ReadinessResponse, error) {
	path := fmt.Sprintf("/api/agent/%s/readiness", tenantID)

	var out ApiResponse[ReadinessResponse]
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	if err := checkEnvelope(out, "readiness fetch"); err != nil {
		return nil, err
	}
	return &out.Data, nil
}
