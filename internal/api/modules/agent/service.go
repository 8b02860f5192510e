package agent_module

import (
	"fmt"
	"log"
	"net/http"

	"github.com/go-sql-driver/mysql"
	"github.com/zapdesk/zapdesk/internal/agents/concierge"
	"github.com/zapdesk/zapdesk/internal/stores/agentconfig"
	"github.com/zapdesk/zapdesk/internal/stores/connection"
	"github.com/zapdesk/zapdesk/pkg/provision"
	"github.com/zapdesk/zapdesk/pkg/utils"
)

// Service bundles the configuration store, the test-conversation concierge and
// the connection store the readiness gate reads from
type Service struct {
	Configs   agentconfig.Store
	Status    connection.Store
	Concierge *concierge.Concierge
}

var service *Service

// Init wires the agent service from configuration
func Init(cfg *utils.Config) {
	// Create MySQL config
	dbConfig := mysql.Config{
		User:      cfg.Get("MYSQL_USER"),
		Passwd:    cfg.Get("MYSQL_ROOT_PASSWORD"),
		Net:       "tcp",
		Addr:      fmt.Sprintf("%s:%s", cfg.Get("MYSQL_HOST"), cfg.Get("MYSQL_PORT")),
		DBName:    cfg.Get("MYSQL_DATABASE"),
		ParseTime: true,
	}

	configStore, err := agentconfig.NewStore(dbConfig.FormatDSN())
	if err != nil {
		log.Fatalf("[AGENT]: Failed to initialize agent config store: %v", err)
	}
	statusStore, err := connection.NewStore(dbConfig.FormatDSN())
	if err != nil {
		log.Fatalf("[AGENT]: Failed to initialize connection status store: %v", err)
	}

	service = &Service{
		Configs:   configStore,
		Status:    statusStore,
		Concierge: concierge.New(cfg, configStore),
	}
}

// GetService returns the service instance
func GetService() *Service {
	if service == nil {
		log.Fatal("[AGENT]: Service is not initialized")
	}
	return service
}

// SetService swaps the service instance, used by tests
func SetService(s *Service) {
	service = s
}

// parseAgentType validates the agent type path parameter
func parseAgentType(raw string) (provision.AgentType, error) {
	switch provision.AgentType(raw) {
	case provision.AgentTypeSupport:
		return provision.AgentTypeSupport, nil
	case provision.AgentTypeScheduler:
		return provision.AgentTypeScheduler, nil
	default:
		return "", fmt.Errorf("unknown agent type %q", raw)
	}
}

// errStatus maps a domain error onto the HTTP status it should surface as
func errStatus(err error) int {
	switch {
	case provision.IsPreconditionFailed(err):
		return http.StatusPreconditionFailed
	case provision.IsNotFound(err):
		return http.StatusNotFound
	case provision.IsNetwork(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
