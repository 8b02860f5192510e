package provisioner

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/zapdesk/zapdesk/internal/n8n"
	"github.com/zapdesk/zapdesk/internal/stores/connection"
	"github.com/zapdesk/zapdesk/internal/stores/workflow"
	"github.com/zapdesk/zapdesk/internal/waha"
	"github.com/zapdesk/zapdesk/pkg/provision"
)

// Reconciler re-reads external state and repairs stale records. One-shot
// calls are fire-and-forget from the caller's perspective, so a crash or an
// abandoned request can leave a tenant stuck in connecting/creating with no
// matching resource; the stored value is never trusted over a re-fetch.
type Reconciler struct {
	gateway   *waha.Client
	engine    *n8n.Client
	status    connection.Store
	workflows workflow.Store
}

// NewReconciler wires a reconciler over both clients and the stores
func NewReconciler(gateway *waha.Client, engine *n8n.Client, status connection.Store, workflows workflow.Store) *Reconciler {
	return &Reconciler{
		gateway:   gateway,
		engine:    engine,
		status:    status,
		workflows: workflows,
	}
}

// Run reconciles every tenant once. Per-tenant failures are logged and do not
// stop the sweep.
func (r *Reconciler) Run(ctx context.Context) error {
	runID := uuid.NewString()[:8]

	statuses, err := r.status.List(ctx)
	if err != nil {
		return err
	}

	repaired := 0
	for _, status := range statuses {
		if r.reconcileGateway(ctx, status) {
			repaired++
		}
		if r.reconcileWorkflow(ctx, status) {
			repaired++
		}
	}

	log.Printf("[SYNC]: run %s reconciled %d tenants, repaired %d records", runID, len(statuses), repaired)
	return nil
}

// reconcileGateway aligns the stored gateway status with the session's real
// state; reports whether a repair was written
func (r *Reconciler) reconcileGateway(ctx context.Context, status provision.ConnectionStatus) bool {
	if status.GatewaySessionName == "" {
		return false
	}

	observed := status.GatewayStatus
	session, err := r.gateway.GetSession(ctx, status.GatewaySessionName)
	switch {
	case provision.IsNotFound(err):
		observed = provision.GatewayDisconnected
	case err != nil:
		log.Printf("[SYNC]: could not fetch session %s: %v", status.GatewaySessionName, err)
		return false
	case session.Status == waha.SessionWorking:
		observed = provision.GatewayConnected
	case session.Status == waha.SessionFailed:
		observed = provision.GatewayError
	case session.Status == waha.SessionStopped:
		observed = provision.GatewayDisconnected
	default:
		// starting / awaiting scan map onto connecting
		observed = provision.GatewayConnecting
	}

	if observed == status.GatewayStatus {
		return false
	}

	// A validated or active workflow cannot outlive its gateway session; losing
	// the session takes the workflow fields down with it, as Disconnect does
	update := provision.Update{}.WithGatewayStatus(observed)
	if observed != provision.GatewayConnected &&
		(status.WorkflowStatus == provision.WorkflowValidated || status.WorkflowStatus == provision.WorkflowActive) {
		update = update.
			WithWorkflowStatus(provision.WorkflowNotCreated).
			WithWorkflowID("").
			WithWebhookURL("")
	}

	if err := r.status.Set(ctx, status.TenantID, update); err != nil {
		log.Printf("[SYNC]: could not repair gateway status for %s: %v", status.TenantID, err)
		return false
	}
	log.Printf("[SYNC]: tenant %s gateway %s -> %s", status.TenantID, status.GatewayStatus, observed)
	return true
}

// reconcileWorkflow resolves records stuck in creating: either the engine has
// the resource (the store update was lost) or it never got created
func (r *Reconciler) reconcileWorkflow(ctx context.Context, status provision.ConnectionStatus) bool {
	if status.WorkflowStatus != provision.WorkflowCreating {
		return false
	}

	record, err := r.workflows.LatestEligible(ctx, status.TenantID,
		provision.WorkflowCreated, provision.WorkflowValidated)
	if err != nil {
		log.Printf("[SYNC]: could not load workflow records for %s: %v", status.TenantID, err)
		return false
	}

	resolved := provision.WorkflowNotCreated
	workflowID := ""
	if record != nil {
		if _, err := r.engine.GetWorkflow(ctx, record.WorkflowID); err == nil {
			resolved = record.Status
			workflowID = record.WorkflowID
		} else if !provision.IsNotFound(err) {
			log.Printf("[SYNC]: could not fetch workflow %s: %v", record.WorkflowID, err)
			return false
		}
	}

	if err := r.status.Set(ctx, status.TenantID, provision.Update{}.
		WithWorkflowStatus(resolved).
		WithWorkflowID(workflowID)); err != nil {
		log.Printf("[SYNC]: could not repair workflow status for %s: %v", status.TenantID, err)
		return false
	}
	log.Printf("[SYNC]: tenant %s workflow creating -> %s", status.TenantID, resolved)
	return true
}
