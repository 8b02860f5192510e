package connection

import (
	"time"

	"github.com/zapdesk/zapdesk/pkg/provision"
)

// Model is the database row backing one tenant's connection status
type Model struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`

	TenantID           string `json:"tenant_id" gorm:"column:tenant_id;unique;not null;size:64"`
	GatewayStatus      string `json:"gateway_status" gorm:"column:gateway_status;size:20;default:'disconnected'"`
	GatewaySessionName string `json:"gateway_session_name" gorm:"column:gateway_session_name;size:255"`
	WorkflowID         string `json:"workflow_id" gorm:"column:workflow_id;size:64"`
	WebhookURL         string `json:"webhook_url" gorm:"column:webhook_url;size:500"`
	WorkflowStatus     string `json:"workflow_status" gorm:"column:workflow_status;size:20;default:'not_created'"`
	AIStatus           string `json:"ai_status" gorm:"column:ai_status;size:20;default:'not_configured'"`
}

// TableName sets the table name for GORM
func (Model) TableName() string {
	return "connection_statuses"
}

func (m *Model) toDomain() provision.ConnectionStatus {
	return provision.ConnectionStatus{
		TenantID:           m.TenantID,
		GatewayStatus:      provision.GatewayStatus(m.GatewayStatus),
		GatewaySessionName: m.GatewaySessionName,
		WorkflowID:         m.WorkflowID,
		WebhookURL:         m.WebhookURL,
		WorkflowStatus:     provision.WorkflowStatus(m.WorkflowStatus),
		AIStatus:           provision.AIStatus(m.AIStatus),
	}
}

func (m *Model) fromDomain(status provision.ConnectionStatus) {
	m.TenantID = status.TenantID
	m.GatewayStatus = string(status.GatewayStatus)
	m.GatewaySessionName = status.GatewaySessionName
	m.WorkflowID = status.WorkflowID
	m.WebhookURL = status.WebhookURL
	m.WorkflowStatus = string(status.WorkflowStatus)
	m.AIStatus = string(status.AIStatus)
}
