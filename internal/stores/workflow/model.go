package workflow

import (
	"time"

	"github.com/zapdesk/zapdesk/pkg/provision"
)

// Record is one provisioned workflow owned by a tenant. At most one eligible
// record should exist per tenant, but retries can leave duplicates; readers
// tie-break on the most recent update.
type Record struct {
	TenantID    string                   `json:"tenant_id"`
	WorkflowID  string                   `json:"workflow_id"`
	Name        string                   `json:"name"`
	TriggerPath string                   `json:"trigger_path"`
	TriggerURL  string                   `json:"trigger_url"`
	Status      provision.WorkflowStatus `json:"status"`
	UpdatedAt   time.Time                `json:"updated_at"`
}

// Model is the database row backing a workflow record
type Model struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`

	TenantID    string `json:"tenant_id" gorm:"column:tenant_id;not null;size:64;index"`
	WorkflowID  string `json:"workflow_id" gorm:"column:workflow_id;not null;size:64;index"`
	Name        string `json:"name" gorm:"column:name;size:255"`
	TriggerPath string `json:"trigger_path" gorm:"column:trigger_path;size:255"`
	TriggerURL  string `json:"trigger_url" gorm:"column:trigger_url;size:500"`
	Status      string `json:"status" gorm:"column:status;size:20;default:'creating'"`
}

// TableName sets the table name for GORM
func (Model) TableName() string {
	return "tenant_workflows"
}

func (m *Model) toDomain() Record {
	return Record{
		TenantID:    m.TenantID,
		WorkflowID:  m.WorkflowID,
		Name:        m.Name,
		TriggerPath: m.TriggerPath,
		TriggerURL:  m.TriggerURL,
		Status:      provision.WorkflowStatus(m.Status),
		UpdatedAt:   m.UpdatedAt,
	}
}
