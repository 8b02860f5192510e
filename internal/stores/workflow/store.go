package workflow

import (
	"context"
	"fmt"

	"github.com/zapdesk/zapdesk/pkg/provision"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Store interface defines methods for provisioned workflow persistence
type Store interface {
	Save(ctx context.Context, record Record) error
	LatestEligible(ctx context.Context, tenantID string, statuses ...provision.WorkflowStatus) (*Record, error)
	UpdateStatus(ctx context.Context, tenantID, workflowID string, status provision.WorkflowStatus) error
	DeleteForTenant(ctx context.Context, tenantID string) error
}

// MySqlStore handles workflow record persistence using GORM
type MySqlStore struct {
	db *gorm.DB
}

// NewStore creates a new workflow record store with MySQL connection
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

// Save upserts a record keyed by tenant and workflow id
func (s *MySqlStore) Save(ctx context.Context, record Record) error {
	if record.TenantID == "" || record.WorkflowID == "" {
		return &provision.StorageError{Op: "workflow.Save", Err: fmt.Errorf("tenant_id and workflow_id cannot be empty")}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model Model
		result := tx.First(&model, "tenant_id = ? AND workflow_id = ?", record.TenantID, record.WorkflowID)
		if result.Error != nil && result.Error != gorm.ErrRecordNotFound {
			return result.Error
		}

		model.TenantID = record.TenantID
		model.WorkflowID = record.WorkflowID
		model.Name = record.Name
		model.TriggerPath = record.TriggerPath
		model.TriggerURL = record.TriggerURL
		model.Status = string(record.Status)
		return tx.Save(&model).Error
	})
	if err != nil {
		return &provision.StorageError{Op: "workflow.Save", Err: err}
	}
	return nil
}

// LatestEligible returns the most recently updated record in one of the given
// statuses, or nil when the tenant has none
func (s *MySqlStore) LatestEligible(ctx context.Context, tenantID string, statuses ...provision.WorkflowStatus) (*Record, error) {
	values := make([]string, len(statuses))
	for i, status := range statuses {
		values[i] = string(status)
	}

	var model Model
	result := s.db.WithContext(ctx).
		Where("tenant_id = ? AND status IN ?", tenantID, values).
		Order("updated_at DESC").Order("id DESC").
		First(&model)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, &provision.StorageError{Op: "workflow.LatestEligible", Err: result.Error}
	}

	record := model.toDomain()
	return &record, nil
}

// UpdateStatus sets the status of one record
func (s *MySqlStore) UpdateStatus(ctx context.Context, tenantID, workflowID string, status provision.WorkflowStatus) error {
	result := s.db.WithContext(ctx).Model(&Model{}).
		Where("tenant_id = ? AND workflow_id = ?", tenantID, workflowID).
		Update("status", string(status))
	if result.Error != nil {
		return &provision.StorageError{Op: "workflow.UpdateStatus", Err: result.Error}
	}
	if result.RowsAffected == 0 {
		return &provision.ResourceNotFoundError{Kind: "workflow record", ID: workflowID}
	}
	return nil
}

// DeleteForTenant removes every workflow record a tenant owns
func (s *MySqlStore) DeleteForTenant(ctx context.Context, tenantID string) error {
	result := s.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Delete(&Model{})
	if result.Error != nil {
		return &provision.StorageError{Op: "workflow.DeleteForTenant", Err: result.Error}
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
