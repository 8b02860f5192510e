package provision

// GatewayStatus is the tenant-visible state of the messaging gateway session
type GatewayStatus string

const (
	GatewayDisconnected GatewayStatus = "disconnected"
	GatewayConnecting   GatewayStatus = "connecting"
	GatewayConnected    GatewayStatus = "connected"
	GatewayError        GatewayStatus = "error"
)

// WorkflowStatus is the tenant-visible state of the cloned automation workflow
type WorkflowStatus string

const (
	WorkflowNotCreated WorkflowStatus = "not_created"
	WorkflowCreating   WorkflowStatus = "creating"
	WorkflowCreated    WorkflowStatus = "created"
	WorkflowValidated  WorkflowStatus = "validated"
	WorkflowActive     WorkflowStatus = "active"
	WorkflowError      WorkflowStatus = "error"
)

// AIStatus is the tenant-visible state of the agent configuration
type AIStatus string

const (
	AINotConfigured AIStatus = "not_configured"
	AIConfigured    AIStatus = "configured"
	AIError         AIStatus = "error"
)

// ConnectionStatus holds the provisioning state for one tenant. It is the only
// shared mutable record in the system; every controller reads it before writing
// and writes only the fields it owns.
type ConnectionStatus struct {
	TenantID           string         `json:"tenant_id"`
	GatewayStatus      GatewayStatus  `json:"gateway_status"`
	GatewaySessionName string         `json:"gateway_session_name,omitempty"`
	WorkflowID         string         `json:"workflow_id,omitempty"`
	WebhookURL         string         `json:"webhook_url,omitempty"`
	WorkflowStatus     WorkflowStatus `json:"workflow_status"`
	AIStatus           AIStatus       `json:"ai_status"`
}

// DefaultConnectionStatus returns the all-disconnected record a tenant starts
// with. Reads for unknown tenants return this instead of failing.
func DefaultConnectionStatus(tenantID string) ConnectionStatus {
	return ConnectionStatus{
		TenantID:       tenantID,
		GatewayStatus:  GatewayDisconnected,
		WorkflowStatus: WorkflowNotCreated,
		AIStatus:       AINotConfigured,
	}
}

// Update is a partial change to a connection record. Nil fields are left
// untouched; set fields win over the stored value (last write wins).
type Update struct {
	GatewayStatus      *GatewayStatus
	GatewaySessionName *string
	WorkflowID         *string
	WebhookURL         *string
	WorkflowStatus     *WorkflowStatus
	AIStatus           *AIStatus
}

// WithGatewayStatus returns a copy of the update that sets the gateway status
func (u Update) WithGatewayStatus(s GatewayStatus) Update {
	u.GatewayStatus = &s
	return u
}

// WithGatewaySessionName returns a copy of the update that sets the session name
func (u Update) WithGatewaySessionName(name string) Update {
	u.GatewaySessionName = &name
	return u
}

// WithWorkflowID returns a copy of the update that sets the workflow id
func (u Update) WithWorkflowID(id string) Update {
	u.WorkflowID = &id
	return u
}

// WithWebhookURL returns a copy of the update that sets the webhook URL
func (u Update) WithWebhookURL(url string) Update {
	u.WebhookURL = &url
	return u
}

// WithWorkflowStatus returns a copy of the update that sets the workflow status
func (u Update) WithWorkflowStatus(s WorkflowStatus) Update {
	u.WorkflowStatus = &s
	return u
}

// WithAIStatus returns a copy of the update that sets the AI status
func (u Update) WithAIStatus(s AIStatus) Update {
	u.AIStatus = &s
	return u
}

// ApplyTo merges the update into an existing record
func (u Update) ApplyTo(s *ConnectionStatus) {
	if u.GatewayStatus != nil {
		s.GatewayStatus = *u.GatewayStatus
	}
	if u.GatewaySessionName != nil {
		s.GatewaySessionName = *u.GatewaySessionName
	}
	if u.WorkflowID != nil {
		s.WorkflowID = *u.WorkflowID
	}
	if u.WebhookURL != nil {
		s.WebhookURL = *u.WebhookURL
	}
	if u.WorkflowStatus != nil {
		s.WorkflowStatus = *u.WorkflowStatus
	}
	if u.AIStatus != nil {
		s.AIStatus = *u.AIStatus
	}
}

// ReadyForAgentLoad is the gate for pushing an agent configuration into the
// live workflow: gateway connected, workflow validated or active, all four
// text fields filled in, and the personality confirmed by a test exchange.
func ReadyForAgentLoad(s ConnectionStatus, cfg AgentConfig) bool {
	if s.GatewayStatus != GatewayConnected {
		return false
	}
	if s.WorkflowStatus != WorkflowValidated && s.WorkflowStatus != WorkflowActive {
		return false
	}
	return cfg.Complete() && cfg.PersonalityValidated
}
