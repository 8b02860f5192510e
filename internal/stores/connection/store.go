package connection

import (
	"context"
	"fmt"

	"github.com/zapdesk/zapdesk/pkg/provision"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Store interface defines methods for connection status persistence. Get never
// fails on an unknown tenant; persistence errors surface as StorageError.
type Store interface {
	Get(ctx context.Context, tenantID string) (provision.ConnectionStatus, error)
	Set(ctx context.Context, tenantID string, update provision.Update) error
	Reset(ctx context.Context, tenantID string) error
	List(ctx context.Context) ([]provision.ConnectionStatus, error)
}

// MySqlStore handles connection status persistence using GORM
type MySqlStore struct {
	db *gorm.DB
}

// NewStore creates a new connection status store with MySQL connection
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

// Get retrieves the connection status for a tenant, returning the default
// all-disconnected record when none exists yet
func (s *MySqlStore) Get(ctx context.Context, tenantID string) (provision.ConnectionStatus, error) {
	var model Model
	result := s.db.WithContext(ctx).First(&model, "tenant_id = ?", tenantID)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return provision.DefaultConnectionStatus(tenantID), nil
		}
		return provision.ConnectionStatus{}, &provision.StorageError{Op: "connection.Get", Err: result.Error}
	}
	return model.toDomain(), nil
}

// Set merges a partial update into the tenant's record, creating it from the
// defaults when absent. Last write wins; there is no optimistic locking.
func (s *MySqlStore) Set(ctx context.Context, tenantID string, update provision.Update) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model Model
		result := tx.First(&model, "tenant_id = ?", tenantID)

		status := provision.DefaultConnectionStatus(tenantID)
		if result.Error == nil {
			status = model.toDomain()
		} else if result.Error != gorm.ErrRecordNotFound {
			return result.Error
		}

		update.ApplyTo(&status)
		model.fromDomain(status)
		return tx.Save(&model).Error
	})
	if err != nil {
		return &provision.StorageError{Op: "connection.Set", Err: err}
	}
	return nil
}

// Reset restores the tenant's record to its initial disconnected values
func (s *MySqlStore) Reset(ctx context.Context, tenantID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model Model
		result := tx.First(&model, "tenant_id = ?", tenantID)
		if result.Error == gorm.ErrRecordNotFound {
			return nil
		}
		if result.Error != nil {
			return result.Error
		}

		model.fromDomain(provision.DefaultConnectionStatus(tenantID))
		return tx.Save(&model).Error
	})
	if err != nil {
		return &provision.StorageError{Op: "connection.Reset", Err: err}
	}
	return nil
}

// List returns every tenant's connection status, used by the reconciler
func (s *MySqlStore) List(ctx context.Context) ([]provision.ConnectionStatus, error) {
	var models []Model
	result := s.db.WithContext(ctx).Order("tenant_id").Find(&models)
	if result.Error != nil {
		return nil, &provision.StorageError{Op: "connection.List", Err: result.Error}
	}

	statuses := make([]provision.ConnectionStatus, len(models))
	for i := range models {
		statuses[i] = models[i].toDomain()
	}
	return statuses, nil
}

// Close closes the database connection
func (s *MySqlStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB from gorm.DB: %w", err)
	}
	return sqlDB.Close()
}
