package connection

import (
	"context"
	"sort"
	"sync"

	"github.com/zapdesk/zapdesk/pkg/provision"
)

// InMemoryStore provides an in-memory implementation of Store for testing
type InMemoryStore struct {
	statuses map[string]provision.ConnectionStatus
	mutex    sync.RWMutex
}

// NewInMemoryStore creates a new in-memory connection status store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		statuses: make(map[string]provision.ConnectionStatus),
	}
}

// Get retrieves the connection status for a tenant, defaulting when absent
func (s *InMemoryStore) Get(ctx context.Context, tenantID string) (provision.ConnectionStatus, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if status, exists := s.statuses[tenantID]; exists {
		return status, nil
	}
	return provision.DefaultConnectionStatus(tenantID), nil
}

// Set merges a partial update into the tenant's record
func (s *InMemoryStore) Set(ctx context.Context, tenantID string, update provision.Update) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	status, exists := s.statuses[tenantID]
	if !exists {
		status = provision.DefaultConnectionStatus(tenantID)
	}
	update.ApplyTo(&status)
	s.statuses[tenantID] = status
	return nil
}

// Reset restores the tenant's record to its initial disconnected values
func (s *InMemoryStore) Reset(ctx context.Context, tenantID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.statuses[tenantID]; exists {
		s.statuses[tenantID] = provision.DefaultConnectionStatus(tenantID)
	}
	return nil
}

// List returns every tenant's connection status
func (s *InMemoryStore) List(ctx context.Context) ([]provision.ConnectionStatus, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	statuses := make([]provision.ConnectionStatus, 0, len(s.statuses))
	for _, status := range s.statuses {
		statuses = append(statuses, status)
	}
	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].TenantID < statuses[j].TenantID
	})
	return statuses, nil
}
