package agent_module

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zapdesk/zapdesk/pkg/provision"
	"github.com/zapdesk/zapdesk/pkg/sdk"
)

// SaveConfig handles PUT requests storing an agent's behavioral configuration
func SaveConfig(c *gin.Context) {
	tenantID := c.Param("tenant")
	agentType, err := parseAgentType(c.Param("type"))
	if err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Invalid agent type", err.Error()).AsGinResponse())
		return
	}

	// Parse request body
	var req sdk.AgentConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Could not parse request body", err.Error()).AsGinResponse())
		return
	}

	cfg := provision.AgentConfig{
		Personality:      req.Personality,
		Presentation:     req.Presentation,
		CompanyKnowledge: req.CompanyKnowledge,
		ProductKnowledge: req.ProductKnowledge,
		Technical:        req.Technical,
	}
	if cfg.Technical.Temperature == 0 {
		cfg.Technical.Temperature = provision.DefaultAgentConfig().Technical.Temperature
	}

	service := GetService()
	if err := service.Configs.Save(c.Request.Context(), tenantID, agentType, cfg); err != nil {
		c.JSON(sdk.NewErrorResponse(errStatus(err), "Failed to save agent configuration", err.Error()).AsGinResponse())
		return
	}

	// Record the configured state on the tenant's connection record
	if err := service.Status.Set(c.Request.Context(), tenantID, provision.Update{}.WithAIStatus(provision.AIConfigured)); err != nil {
		c.JSON(sdk.NewErrorResponse(errStatus(err), "Failed to update connection status", err.Error()).AsGinResponse())
		return
	}

	c.JSON(sdk.NewSuccess("Agent configuration saved").AsGinResponse())
}

// GetConfig handles GET requests retrieving an agent's configuration
func GetConfig(c *gin.Context) {
	tenantID := c.Param("tenant")
	agentType, err := parseAgentType(c.Param("type"))
	if err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Invalid agent type", err.Error()).AsGinResponse())
		return
	}

	service := GetService()
	cfg, err := service.Configs.Load(c.Request.Context(), tenantID, agentType)
	if err != nil {
		c.JSON(sdk.NewErrorResponse(errStatus(err), "Failed to load agent configuration", err.Error()).AsGinResponse())
		return
	}

	c.JSON(sdk.NewSuccessResponse("Agent configuration retrieved", cfg).AsGinResponse())
}

// TestMessage handles POST requests running one message through the tenant's
// configured agent
func TestMessage(c *gin.Context) {
	tenantID := c.Param("tenant")
	agentType, err := parseAgentType(c.Param("type"))
	if err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Invalid agent type", err.Error()).AsGinResponse())
		return
	}

	// Parse request body
	var req sdk.TestMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Could not parse request body", err.Error()).AsGinResponse())
		return
	}

	service := GetService()
	reply, err := service.Concierge.TestMessage(c.Request.Context(), tenantID, agentType, req.Message)
	if err != nil {
		// A generation failure marks the configuration errored; a precondition
		// failure means it was never complete, so the status stays as-is
		if !provision.IsPreconditionFailed(err) {
			if setErr := service.Status.Set(c.Request.Context(), tenantID, provision.Update{}.WithAIStatus(provision.AIError)); setErr != nil {
				log.Printf("[AGENT]: could not record agent error for %s: %v", tenantID, setErr)
			}
		}
		c.JSON(sdk.NewErrorResponse(errStatus(err), "Failed to run test message", err.Error()).AsGinResponse())
		return
	}

	if err := service.Status.Set(c.Request.Context(), tenantID, provision.Update{}.WithAIStatus(provision.AIConfigured)); err != nil {
		c.JSON(sdk.NewErrorResponse(errStatus(err), "Failed to update connection status", err.Error()).AsGinResponse())
		return
	}

	c.JSON(sdk.NewSuccessResponse("Test message processed", sdk.TestMessageResponse{Reply: reply}).AsGinResponse())
}

// GetReadiness handles GET requests for the go-live gate: connected gateway,
// validated workflow and a complete, validated configuration
func GetReadiness(c *gin.Context) {
	tenantID := c.Param("tenant")
	service := GetService()

	status, err := service.Status.Get(c.Request.Context(), tenantID)
	if err != nil {
		c.JSON(sdk.NewErrorResponse(errStatus(err), "Failed to get connection status", err.Error()).AsGinResponse())
		return
	}

	// The support configuration is the one every tenant must fill in
	cfg, err := service.Configs.Load(c.Request.Context(), tenantID, provision.AgentTypeSupport)
	if err != nil {
		c.JSON(sdk.NewErrorResponse(errStatus(err), "Failed to load agent configuration", err.Error()).AsGinResponse())
		return
	}

	resp := sdk.ReadinessResponse{
		Ready:  provision.ReadyForAgentLoad(status, cfg),
		Status: status,
	}
	c.JSON(sdk.NewSuccessResponse("Readiness evaluated", resp).AsGinResponse())
}
