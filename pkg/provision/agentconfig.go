package provision

// AgentType selects which behavioral instruction block a tenant's agent uses
type AgentType string

const (
	AgentTypeSupport   AgentType = "support"
	AgentTypeScheduler AgentType = "scheduler"
)

// TechnicalParameters holds the tunable generation settings for an agent
type TechnicalParameters struct {
	Temperature        float64 `json:"temperature"`
	ContinuousLearning bool    `json:"continuous_learning"`
}

// AgentConfig is the free-text behavioral configuration injected into
// generated-text calls. It is independent of the provisioning chain except
// that loading it into the live workflow is gated behind it.
type AgentConfig struct {
	Personality      string `json:"personality"`
	Presentation     string `json:"presentation"`
	CompanyKnowledge string `json:"company_knowledge"`
	ProductKnowledge string `json:"product_knowledge"`

	Technical TechnicalParameters `json:"technical_parameters"`

	// PersonalityValidated flips true only after at least one test message
	// round-trip has succeeded with this configuration.
	PersonalityValidated bool `json:"personality_validated"`
}

// DefaultAgentConfig returns the configuration a tenant starts with
func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		Technical: TechnicalParameters{Temperature: 0.7},
	}
}

// Complete reports whether all four free-text fields are filled in
func (c AgentConfig) Complete() bool {
	return c.Personality != "" &&
		c.Presentation != "" &&
		c.CompanyKnowledge != "" &&
		c.ProductKnowledge != ""
}

// ClampedTemperature bounds the configured temperature to the valid 0-2 range
func (c AgentConfig) ClampedTemperature() float64 {
	t := c.Technical.Temperature
	if t < 0 {
		return 0
	}
	if t > 2 {
		return 2
	}
	return t
}
