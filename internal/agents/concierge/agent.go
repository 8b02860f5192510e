package concierge

import (
	"context"
	"fmt"

	"github.com/nlpodyssey/openai-agents-go/agents"
	"github.com/nlpodyssey/openai-agents-go/modelsettings"
	"github.com/openai/openai-go/v2/packages/param"
	"github.com/zapdesk/zapdesk/internal/stores/agentconfig"
	"github.com/zapdesk/zapdesk/pkg/provision"
	"github.com/zapdesk/zapdesk/pkg/utils"
)

// Concierge runs one-off test conversations against a tenant's configured
// agent personality. A successful round trip is what earns the tenant's
// configuration its validated flag.
type Concierge struct {
	config  *utils.Config
	agents  agentconfig.Store
	runFunc func(ctx context.Context, agent *agents.Agent, input string) (*agents.RunResult, error)
}

// New creates a concierge over the agent configuration store
func New(config *utils.Config, store agentconfig.Store) *Concierge {
	return &Concierge{
		config:  config,
		agents:  store,
		runFunc: agents.Run,
	}
}

// SetRunner swaps the generation call, used by tests
func (c *Concierge) SetRunner(run func(ctx context.Context, agent *agents.Agent, input string) (*agents.RunResult, error)) {
	c.runFunc = run
}

// buildAgent assembles the per-tenant agent from its stored configuration
func (c *Concierge) buildAgent(agentType provision.AgentType, cfg provision.AgentConfig) *agents.Agent {
	base := utils.LoadPromptWithFallback(
		c.config.Get("CONCIERGE_SYSPROMPT_PATH"),
		fallbackFor(agentType),
	)

	return agents.New("concierge-" + string(agentType)).
		WithInstructions(BuildInstructions(base, cfg)).
		WithModel(c.config.GetWithDefault("MODEL", "gpt-4o-mini")).
		WithModelSettings(modelsettings.ModelSettings{
			Temperature: param.NewOpt(cfg.ClampedTemperature()),
		})
}

// TestMessage runs one message through the tenant's configured agent and
// returns the generated reply. The configuration must be complete first; on
// success the tenant's personality is marked validated.
func (c *Concierge) TestMessage(ctx context.Context, tenantID string, agentType provision.AgentType, message string) (string, error) {
	cfg, err := c.agents.Load(ctx, tenantID, agentType)
	if err != nil {
		return "", err
	}
	if !cfg.Complete() {
		return "", &provision.PreconditionFailedError{
			Stage:  "agent-test",
			Reason: "agent configuration is incomplete",
		}
	}

	result, err := c.runFunc(ctx, c.buildAgent(agentType, cfg), message)
	if err != nil {
		return "", fmt.Errorf("test message failed: %w", err)
	}

	if err := c.agents.MarkPersonalityValidated(ctx, tenantID); err != nil {
		return "", err
	}
	return fmt.Sprint(result.FinalOutput), nil
}
