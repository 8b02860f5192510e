package provisioner

import "sync"

// tenantGuard marks provisioning as in-flight per tenant so concurrent calls
// cannot clone duplicate workflows. Sequential retries are always allowed.
type tenantGuard struct {
	mu       sync.Mutex
	inflight map[string]bool
}

func newTenantGuard() *tenantGuard {
	return &tenantGuard{inflight: make(map[string]bool)}
}

// acquire returns false when the tenant already has an operation in flight
func (g *tenantGuard) acquire(tenantID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.inflight[tenantID] {
		return false
	}
	g.inflight[tenantID] = true
	return true
}

func (g *tenantGuard) release(tenantID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inflight, tenantID)
}
