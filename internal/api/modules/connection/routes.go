package connection_module

import (
	"fmt"
	"log"

	"github.com/ethanbaker/api/pkg/api_key"
	"github.com/gin-gonic/gin"
	"github.com/zapdesk/zapdesk/pkg/utils"
)

// Register routes for the connection module
func RegisterRoutes(g *gin.RouterGroup, cfg *utils.Config) {
	// Make api key validator
	validator, err := makeApiKeyValidator(cfg)
	if err != nil {
		log.Fatalf("failed to create API key validator: %v", err)
	}

	// Create base group for connection routes
	group := g.Group("/connection")
	group.Handlers = append(group.Handlers, api_key.APIKeyHeaderHandler(validator))

	// Gateway connectivity probe
	group.GET("/gateway/ping", PingGateway)

	// Session lifecycle routes
	group.POST("/:tenant/session", ConnectSession)   // Start or resume the tenant's session
	group.POST("/:tenant/session/poll", PollSession) // Wait for the session to settle
	group.GET("/:tenant/status", GetStatus)          // Full connection status
	group.DELETE("/:tenant", Disconnect)             // Tear everything down

	// Workflow provisioning routes
	group.POST("/:tenant/workflow", ProvisionWorkflow)         // Clone and wire a workflow
	group.POST("/:tenant/workflow/activate", ActivateWorkflow) // Validate and activate it
}

// makeApiKeyValidator checks if the provided API key is valid
func makeApiKeyValidator(cfg *utils.Config) (func(key string) bool, error) {
	// Get api key from config
	apiKey := cfg.Get("API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("API_KEY not set in environment")
	}

	return func(key string) bool {
		return apiKey == key
	}, nil
}
