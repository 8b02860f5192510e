package agentconfig

import (
	"context"
	"fmt"

	"github.com/zapdesk/zapdesk/pkg/provision"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Store interface defines methods for agent configuration persistence. Pure
// data storage; nothing here talks to external services.
type Store interface {
	Save(ctx context.Context, tenantID string, agentType provision.AgentType, cfg provision.AgentConfig) error
	Load(ctx context.Context, tenantID string, agentType provision.AgentType) (provision.AgentConfig, error)
	MarkPersonalityValidated(ctx context.Context, tenantID string) error
	DeleteForTenant(ctx context.Context, tenantID string) error
}

// MySqlStore handles agent configuration persistence using GORM
type MySqlStore struct {
	db *gorm.DB
}

// NewStore creates a new agent configuration store with MySQL connection
func NewStore(databaseURL string) (*MySqlStore, error) {
	db, err := gorm.Open(mysql.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &MySqlStore{db: db}

	// Auto-migrate tables
	if err := db.AutoMigrate(&Model{}); err != nil {
		return nil, fmt.Errorf("failed to migrate tables: %w", err)
	}

	return store, nil
}

// Save upserts a configuration keyed by tenant and agent type. Saving does not
// flip PersonalityValidated; only a test exchange does that.
func (s *MySqlStore) Save(ctx context.Context, tenantID string, agentType provision.AgentType, cfg provision.AgentConfig) error {
	if tenantID == "" {
		return &provision.StorageError{Op: "agentconfig.Save", Err: fmt.Errorf("tenant_id cannot be empty")}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model Model
		result := tx.First(&model, "tenant_id = ? AND agent_type = ?", tenantID, string(agentType))
		if result.Error != nil && result.Error != gorm.ErrRecordNotFound {
			return result.Error
		}

		// Keep a validation already earned by a previous test exchange
		validated := model.PersonalityValidated || cfg.PersonalityValidated

		model.fromDomain(tenantID, agentType, cfg)
		model.PersonalityValidated = validated
		return tx.Save(&model).Error
	})
	if err != nil {
		return &provision.StorageError{Op: "agentconfig.Save", Err: err}
	}
	return nil
}

// Load retrieves a configuration, returning the default when none exists
func (s *MySqlStore) Load(ctx context.Context, tenantID string, agentType provision.AgentType) (provision.AgentConfig, error) {
	var model Model
	result := s.db.WithContext(ctx).First(&model, "tenant_id = ? AND agent_type = ?", tenantID, string(agentType))
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return provision.DefaultAgentConfig(), nil
		}
		return provision.AgentConfig{}, &provision.StorageError{Op: "agentconfig.Load", Err: result.Error}
	}
	return model.toDomain(), nil
}

// MarkPersonalityValidated records that the tenant's configuration survived a
// test message round-trip. The store does not itself verify the exchange
// happened; callers only invoke this after one.
func (s *MySqlStore) MarkPersonalityValidated(ctx context.Context, tenantID string) error {
	result := s.db.WithContext(ctx).Model(&Model{}).
		Where("tenant_id = ?", tenantID).
		Update("personality_validated", true)
	if result.Error != nil {
		return &provision.StorageError{Op: "agentconfig.MarkPersonalityValidated", Err: result.Error}
	}
	return nil
}

// DeleteForTenant removes every configuration a tenant owns
func (s *MySqlStore) DeleteForTenant(ctx context.Context, tenantID string) error {
	result := s.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Delete(&Model{})
	if result.Error != nil {
		return &provision.StorageError{Op: "agentconfig.DeleteForTenant", Err: result.Error}
	}
	return nil
}

// Close closes the database connection
func (s *MySqlStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB from gorm.DB: %w", err)
	}
	return sqlDB.Close()
}
