package agentconfig

import (
	"context"
	"sync"

	"github.com/zapdesk/zapdesk/pkg/provision"
)

type key struct {
	tenantID  string
	agentType provision.AgentType
}

// InMemoryStore provides an in-memory implementation of Store for testing
type InMemoryStore struct {
	configs map[key]provision.AgentConfig
	mutex   sync.RWMutex
}

// NewInMemoryStore creates a new in-memory agent configuration store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		configs: make(map[key]provision.AgentConfig),
	}
}

// Save upserts a configuration keyed by tenant and agent type
func (s *InMemoryStore) Save(ctx context.Context, tenantID string, agentType provision.AgentType, cfg provision.AgentConfig) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	k := key{tenantID, agentType}
	if existing, exists := s.configs[k]; exists && existing.PersonalityValidated {
		cfg.PersonalityValidated = true
	}
	s.configs[k] = cfg
	return nil
}

// Load retrieves a configuration, returning the default when none exists
func (s *InMemoryStore) Load(ctx context.Context, tenantID string, agentType provision.AgentType) (provision.AgentConfig, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if cfg, exists := s.configs[key{tenantID, agentType}]; exists {
		return cfg, nil
	}
	return provision.DefaultAgentConfig(), nil
}

// MarkPersonalityValidated flips the validated flag on all of the tenant's configs
func (s *InMemoryStore) MarkPersonalityValidated(ctx context.Context, tenantID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for k, cfg := range s.configs {
		if k.tenantID == tenantID {
			cfg.PersonalityValidated = true
			s.configs[k] = cfg
		}
	}
	return nil
}

// DeleteForTenant removes every configuration a tenant owns
func (s *InMemoryStore) DeleteForTenant(ctx context.Context, tenantID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for k := range s.configs {
		if k.tenantID == tenantID {
			delete(s.configs, k)
		}
	}
	return nil
}
