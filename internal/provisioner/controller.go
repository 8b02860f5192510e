package provisioner

import (
	"context"
	"fmt"
	"log"

	"github.com/zapdesk/zapdesk/internal/stores/agentconfig"
	"github.com/zapdesk/zapdesk/internal/stores/connection"
	"github.com/zapdesk/zapdesk/internal/stores/workflow"
	"github.com/zapdesk/zapdesk/internal/waha"
	"github.com/zapdesk/zapdesk/pkg/provision"
)

// SessionController drives the messaging gateway session for a tenant through
// its lifecycle: disconnected -> connecting -> awaiting scan -> connected,
// with error as the terminal failure. connected goes back to disconnected
// only through an explicit Disconnect; there is no automatic reconnect.
type SessionController struct {
	gateway   *waha.Client
	status    connection.Store
	workflows workflow.Store
	agents    agentconfig.Store
}

// NewSessionController wires a controller over the gateway client and stores
func NewSessionController(gateway *waha.Client, status connection.Store, workflows workflow.Store, agents agentconfig.Store) *SessionController {
	return &SessionController{
		gateway:   gateway,
		status:    status,
		workflows: workflows,
		agents:    agents,
	}
}

// SessionName returns the canonical gateway session name for a tenant
func SessionName(tenantID string) string {
	return "zapdesk-" + tenantID
}

// TestConnectivity pings the gateway's list-sessions endpoint across the known
// endpoint variants. Purely a probe; nothing is mutated.
func (c *SessionController) TestConnectivity(ctx context.Context) bool {
	return c.gateway.Probe(ctx)
}

// CreateOrResumeSession fetches the tenant's session, creating it when the
// gateway has none and restarting it when stopped. The returned session
// carries the scan code while the gateway waits for a QR scan.
func (c *SessionController) CreateOrResumeSession(ctx context.Context, tenantID, sessionName string) (*waha.Session, error) {
	if sessionName == "" {
		sessionName = SessionName(tenantID)
	}

	if err := c.status.Set(ctx, tenantID, provision.Update{}.
		WithGatewayStatus(provision.GatewayConnecting).
		WithGatewaySessionName(sessionName)); err != nil {
		return nil, err
	}

	session, err := c.gateway.GetSession(ctx, sessionName)
	if provision.IsNotFound(err) {
		session, err = c.gateway.CreateSession(ctx, sessionName)
	}
	if err != nil {
		return nil, err
	}

	// A stopped session is resumable; start it and look again
	if session.Status == waha.SessionStopped {
		if err := c.gateway.StartSession(ctx, sessionName); err != nil {
			return nil, err
		}
		if session, err = c.gateway.GetSession(ctx, sessionName); err != nil {
			return nil, err
		}
	}

	switch session.Status {
	case waha.SessionWorking:
		if err := c.status.Set(ctx, tenantID, provision.Update{}.WithGatewayStatus(provision.GatewayConnected)); err != nil {
			return nil, err
		}
	case waha.SessionFailed:
		if err := c.status.Set(ctx, tenantID, provision.Update{}.WithGatewayStatus(provision.GatewayError)); err != nil {
			return nil, err
		}
	case waha.SessionScanQR:
		code, err := c.gateway.ScanCode(ctx, sessionName)
		if err != nil {
			// The session itself is fine; the user can re-request the code
			log.Printf("[GATEWAY]: could not fetch scan code for %s: %v", sessionName, err)
		} else {
			session.ScanCode = code
		}
	}

	return session, nil
}

// Disconnect stops and removes the gateway session, then resets every piece
// of tenant state that depended on it: connection record, workflow records,
// and agent configuration. Gateway cleanup is best-effort; a dead gateway
// must not block a user-initiated disconnect.
func (c *SessionController) Disconnect(ctx context.Context, tenantID, sessionName string) error {
	if sessionName == "" {
		current, err := c.status.Get(ctx, tenantID)
		if err != nil {
			return err
		}
		sessionName = current.GatewaySessionName
	}

	if sessionName != "" {
		if err := c.gateway.StopSession(ctx, sessionName); err != nil && !provision.IsNotFound(err) {
			log.Printf("[GATEWAY]: best-effort stop of %s failed: %v", sessionName, err)
		}
		if err := c.gateway.DeleteSession(ctx, sessionName); err != nil && !provision.IsNotFound(err) {
			log.Printf("[GATEWAY]: best-effort delete of %s failed: %v", sessionName, err)
		}
	}

	if err := c.status.Reset(ctx, tenantID); err != nil {
		return err
	}
	if err := c.workflows.DeleteForTenant(ctx, tenantID); err != nil {
		return fmt.Errorf("failed to clear workflow records: %w", err)
	}
	if err := c.agents.DeleteForTenant(ctx, tenantID); err != nil {
		return fmt.Errorf("failed to clear agent configuration: %w", err)
	}
	return nil
}
