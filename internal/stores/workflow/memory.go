package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/zapdesk/zapdesk/pkg/provision"
)

// InMemoryStore provides an in-memory implementation of Store for testing
type InMemoryStore struct {
	records []Record
	mutex   sync.RWMutex
	clock   int64 // monotonic tick so same-instant saves still order deterministically
}

// NewInMemoryStore creates a new in-memory workflow record store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// Save upserts a record keyed by tenant and workflow id
func (s *InMemoryStore) Save(ctx context.Context, record Record) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.clock++
	record.UpdatedAt = time.Unix(0, s.clock)
	for i := range s.records {
		if s.records[i].TenantID == record.TenantID && s.records[i].WorkflowID == record.WorkflowID {
			s.records[i] = record
			return nil
		}
	}
	s.records = append(s.records, record)
	return nil
}

// LatestEligible returns the most recently updated record in one of the given
// statuses, or nil when the tenant has none
func (s *InMemoryStore) LatestEligible(ctx context.Context, tenantID string, statuses ...provision.WorkflowStatus) (*Record, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	eligible := map[provision.WorkflowStatus]bool{}
	for _, status := range statuses {
		eligible[status] = true
	}

	var latest *Record
	for i := range s.records {
		record := s.records[i]
		if record.TenantID != tenantID || !eligible[record.Status] {
			continue
		}
		if latest == nil || record.UpdatedAt.After(latest.UpdatedAt) {
			copied := record
			latest = &copied
		}
	}
	return latest, nil
}

// UpdateStatus sets the status of one record
func (s *InMemoryStore) UpdateStatus(ctx context.Context, tenantID, workflowID string, status provision.WorkflowStatus) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for i := range s.records {
		if s.records[i].TenantID == tenantID && s.records[i].WorkflowID == workflowID {
			s.clock++
			s.records[i].Status = status
			s.records[i].UpdatedAt = time.Unix(0, s.clock)
			return nil
		}
	}
	return &provision.ResourceNotFoundError{Kind: "workflow record", ID: workflowID}
}

// DeleteForTenant removes every workflow record a tenant owns
func (s *InMemoryStore) DeleteForTenant(ctx context.Context, tenantID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	kept := s.records[:0]
	for _, record := range s.records {
		if record.TenantID != tenantID {
			kept = append(kept, record)
		}
	}
	s.records = kept
	return nil
}
