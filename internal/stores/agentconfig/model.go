package agentconfig

import (
	"time"

	"github.com/zapdesk/zapdesk/pkg/provision"
)

// Model is the database row backing one tenant's agent configuration
type Model struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`

	TenantID  string `json:"tenant_id" gorm:"column:tenant_id;not null;size:64;uniqueIndex:idx_tenant_agent"`
	AgentType string `json:"agent_type" gorm:"column:agent_type;not null;size:32;uniqueIndex:idx_tenant_agent"`

	Personality      string `json:"personality" gorm:"column:personality;type:text"`
	Presentation     string `json:"presentation" gorm:"column:presentation;type:text"`
	CompanyKnowledge string `json:"company_knowledge" gorm:"column:company_knowledge;type:text"`
	ProductKnowledge string `json:"product_knowledge" gorm:"column:product_knowledge;type:text"`

	Temperature          float64 `json:"temperature" gorm:"column:temperature;default:0.7"`
	ContinuousLearning   bool    `json:"continuous_learning" gorm:"column:continuous_learning;default:false"`
	PersonalityValidated bool    `json:"personality_validated" gorm:"column:personality_validated;default:false"`
}

// TableName sets the table name for GORM
func (Model) TableName() string {
	return "agent_configs"
}

func (m *Model) toDomain() provision.AgentConfig {
	return provision.AgentConfig{
		Personality:      m.Personality,
		Presentation:     m.Presentation,
		CompanyKnowledge: m.CompanyKnowledge,
		ProductKnowledge: m.ProductKnowledge,
		Technical: provision.TechnicalParameters{
			Temperature:        m.Temperature,
			ContinuousLearning: m.ContinuousLearning,
		},
		PersonalityValidated: m.PersonalityValidated,
	}
}

func (m *Model) fromDomain(tenantID string, agentType provision.AgentType, cfg provision.AgentConfig) {
	m.TenantID = tenantID
	m.AgentType = string(agentType)
	m.Personality = cfg.Personality
	m.Presentation = cfg.Presentation
	m.CompanyKnowledge = cfg.CompanyKnowledge
	m.ProductKnowledge = cfg.ProductKnowledge
	m.Temperature = cfg.Technical.Temperature
	m.ContinuousLearning = cfg.Technical.ContinuousLearning
	m.PersonalityValidated = cfg.PersonalityValidated
}
