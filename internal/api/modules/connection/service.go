package connection_module

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/zapdesk/zapdesk/internal/n8n"
	"github.com/zapdesk/zapdesk/internal/provisioner"
	"github.com/zapdesk/zapdesk/internal/stores/agentconfig"
	"github.com/zapdesk/zapdesk/internal/stores/connection"
	"github.com/zapdesk/zapdesk/internal/stores/workflow"
	"github.com/zapdesk/zapdesk/internal/waha"
	"github.com/zapdesk/zapdesk/pkg/provision"
	"github.com/zapdesk/zapdesk/pkg/utils"
)

// Coordinator bundles the session controller, provisioner and activator that
// together drive a tenant from disconnected to a live bot
type Coordinator struct {
	Sessions    *provisioner.SessionController
	Provisioner *provisioner.Provisioner
	Activator   *provisioner.Activator
	Status      connection.Store

	PollInterval time.Duration
	PollTimeout  time.Duration
}

var coordinator *Coordinator

// Init wires the coordinator from configuration: database stores, the gateway
// and engine clients and the template catalog
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

	// Initialize database connections to create stores
	statusStore, err := connection.NewStore(dbConfig.FormatDSN())
	if err != nil {
		log.Fatalf("[CONNECTION]: Failed to initialize connection status store: %v", err)
	}
	workflowStore, err := workflow.NewStore(dbConfig.FormatDSN())
	if err != nil {
		log.Fatalf("[CONNECTION]: Failed to initialize workflow store: %v", err)
	}
	agentStore, err := agentconfig.NewStore(dbConfig.FormatDSN())
	if err != nil {
		log.Fatalf("[CONNECTION]: Failed to initialize agent config store: %v", err)
	}

	// External service clients
	gateway := waha.NewClient(cfg.Get("WAHA_URL"), cfg.Get("WAHA_API_KEY"))
	engine := n8n.NewClient(cfg.Get("N8N_URL"), cfg.Get("N8N_API_KEY"))

	// Template catalog, with optional file override
	catalog, err := provision.LoadCatalog(cfg.Get("TEMPLATE_CATALOG_PATH"))
	if err != nil {
		log.Printf("[CONNECTION]: %v, using built-in templates", err)
	}

	coordinator = &Coordinator{
		Sessions: provisioner.NewSessionController(gateway, statusStore, workflowStore, agentStore),
		Provisioner: provisioner.NewProvisioner(engine, gateway, statusStore, workflowStore, catalog,
			cfg.Get("TRIGGER_PATH_PREFIX"), cfg.GetWithDefault("N8N_WEBHOOK_BASE", cfg.Get("N8N_URL"))),
		Activator:    provisioner.NewActivator(engine, statusStore, workflowStore),
		Status:       statusStore,
		PollInterval: cfg.GetDurationWithDefault("SESSION_POLL_INTERVAL", 2*time.Second),
		PollTimeout:  cfg.GetDurationWithDefault("SESSION_POLL_TIMEOUT", 60*time.Second),
	}
}

// GetCoordinator returns the coordinator instance
func GetCoordinator() *Coordinator {
	if coordinator == nil {
		log.Fatal("[CONNECTION]: Coordinator is not initialized")
	}
	return coordinator
}

// SetCoordinator swaps the coordinator instance, used by tests
func SetCoordinator(c *Coordinator) {
	coordinator = c
}

// errStatus maps a domain error onto the HTTP status it should surface as
func errStatus(err error) int {
	switch {
	case provision.IsPreconditionFailed(err):
		return http.StatusPreconditionFailed
	case provision.IsNotFound(err):
		return http.StatusNotFound
	case provision.IsConflict(err):
		return http.StatusConflict
	case provision.IsNetwork(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
