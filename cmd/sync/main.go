package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-sql-driver/mysql"
	"github.com/robfig/cron/v3"
	"github.com/zapdesk/zapdesk/internal/n8n"
	"github.com/zapdesk/zapdesk/internal/provisioner"
	"github.com/zapdesk/zapdesk/internal/stores/connection"
	"github.com/zapdesk/zapdesk/internal/stores/workflow"
	"github.com/zapdesk/zapdesk/internal/waha"
	"github.com/zapdesk/zapdesk/pkg/utils"
)

// Run the reconciliation worker: a cron-scheduled sweep that realigns stored
// tenant state with what the gateway and engine actually report
func main() {
	// Find env file
	envFile := ".env"
	if os.Getenv("ENV_FILE") != "" {
		envFile = os.Getenv("ENV_FILE")
	}

	// Load global config
	cfg := utils.NewConfigFromEnv(envFile)

	// Create MySQL config
	dbConfig := mysql.Config{
		User:      cfg.Get("MYSQL_USER"),
		Passwd:    cfg.Get("MYSQL_ROOT_PASSWORD"),
		Net:       "tcp",
		Addr:      fmt.Sprintf("%s:%s", cfg.Get("MYSQL_HOST"), cfg.Get("MYSQL_PORT")),
		DBName:    cfg.Get("MYSQL_DATABASE"),
		ParseTime: true,
	}

	statusStore, err := connection.NewStore(dbConfig.FormatDSN())
	if err != nil {
		log.Fatalf("[SYNC]: Failed to initialize connection status store: %v", err)
	}
	workflowStore, err := workflow.NewStore(dbConfig.FormatDSN())
	if err != nil {
		log.Fatalf("[SYNC]: Failed to initialize workflow store: %v", err)
	}

	gateway := waha.NewClient(cfg.Get("WAHA_URL"), cfg.Get("WAHA_API_KEY"))
	engine := n8n.NewClient(cfg.Get("N8N_URL"), cfg.Get("N8N_API_KEY"))
	reconciler := provisioner.NewReconciler(gateway, engine, statusStore, workflowStore)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Schedule the sweep
	schedule := cfg.GetWithDefault("SYNC_SCHEDULE", "@every 5m")
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(schedule, func() {
		if err := reconciler.Run(ctx); err != nil {
			log.Printf("[SYNC]: sweep failed: %v", err)
		}
	}); err != nil {
		log.Fatalf("[SYNC]: Invalid schedule %q: %v", schedule, err)
	}
	scheduler.Start()
	log.Printf("[SYNC]: reconciliation worker started with schedule %q", schedule)

	// Run once on startup so a restart repairs state immediately
	if err := reconciler.Run(ctx); err != nil {
		log.Printf("[SYNC]: initial sweep failed: %v", err)
	}

	// Block until interrupted
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Println("[SYNC]: shutting down")
	<-scheduler.Stop().Done()
}
