package agent_module

import (
	"fmt"
	"log"

	"github.com/ethanbaker/api/pkg/api_key"
	"github.com/gin-gonic/gin"
	"github.com/zapdesk/zapdesk/pkg/utils"
)

// Register routes for the agent module
func RegisterRoutes(g *gin.RouterGroup, cfg *utils.Config) {
	// Make api key validator
	validator, err := makeApiKeyValidator(cfg)
	if err != nil {
		log.Fatalf("failed to create API key validator: %v", err)
	}

	// Create base group for agent routes
	group := g.Group("/agent")
	group.Handlers = append(group.Handlers, api_key.APIKeyHeaderHandler(validator))

	// Configuration routes
	group.PUT("/:tenant/:type/config", SaveConfig)        // Save an agent's behavioral configuration
	group.GET("/:tenant/:type/config", GetConfig)         // Retrieve an agent's configuration
	group.POST("/:tenant/:type/config/test", TestMessage) // Run a one-off test conversation

	// Readiness gate
	group.GET("/:tenant/readiness", GetReadiness) // Can the bot go live?
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
