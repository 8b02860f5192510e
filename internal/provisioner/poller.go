package provisioner

import (
	"context"
	"log"
	"time"

	"github.com/zapdesk/zapdesk/internal/waha"
	"github.com/zapdesk/zapdesk/pkg/provision"
)

// PollUntilTerminal re-fetches the session every interval until it reaches
// WORKING or FAILED, the timeout elapses, or ctx is cancelled. Each tick is an
// independent call; transient fetch errors are logged and polling continues.
// Hitting the timeout is not an error: the last observed session is returned
// and the caller decides whether to keep polling. Cancelling ctx stops the
// loop immediately and returns ctx's error alongside the last observation.
func (c *SessionController) PollUntilTerminal(ctx context.Context, tenantID, sessionName string, interval, timeout time.Duration) (*waha.Session, error) {
	if sessionName == "" {
		// The tenant may have connected under a custom session name
		current, err := c.status.Get(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		sessionName = current.GatewaySessionName
		if sessionName == "" {
			sessionName = SessionName(tenantID)
		}
	}
	if interval <= 0 {
		interval = 2 * time.Second
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last *waha.Session
	var lastErr error

	for {
		session, err := c.gateway.GetSession(ctx, sessionName)
		if err != nil {
			lastErr = err
			log.Printf("[GATEWAY]: poll tick for %s failed: %v", sessionName, err)
		} else {
			last = session
			if session.Status.Terminal() {
				return last, c.recordTerminal(ctx, tenantID, session)
			}
		}

		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-deadline.C:
			if last == nil {
				return nil, lastErr
			}
			return last, nil
		case <-ticker.C:
		}
	}
}

// recordTerminal persists the gateway status a terminal session implies
func (c *SessionController) recordTerminal(ctx context.Context, tenantID string, session *waha.Session) error {
	status := provision.GatewayConnected
	if session.Status == waha.SessionFailed {
		status = provision.GatewayError
	}
	return c.status.Set(ctx, tenantID, provision.Update{}.WithGatewayStatus(status))
}
