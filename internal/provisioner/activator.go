package provisioner

import (
	"context"
	"log"

	"github.com/zapdesk/zapdesk/internal/n8n"
	"github.com/zapdesk/zapdesk/internal/stores/connection"
	"github.com/zapdesk/zapdesk/internal/stores/workflow"
	"github.com/zapdesk/zapdesk/pkg/provision"
)

// Activator validates a provisioned workflow against the engine and flips it
// live. Workflow status advances not_created -> creating -> created ->
// validated -> active; nothing skips created, and error is reachable from any
// non-terminal state on unrecoverable failure.
type Activator struct {
	engine    *n8n.Client
	status    connection.Store
	workflows workflow.Store
}

// NewActivator wires an activator over the engine client and stores
func NewActivator(engine *n8n.Client, status connection.Store, workflows workflow.Store) *Activator {
	return &Activator{
		engine:    engine,
		status:    status,
		workflows: workflows,
	}
}

// ValidateAndActivate re-fetches the tenant's most recent created/validated
// workflow from the engine, re-applies the tenant-unique trigger path
// (a no-op when already applied), activates it best-effort and records the
// validated state with the final trigger URL.
func (a *Activator) ValidateAndActivate(ctx context.Context, tenantID string) error {
	record, err := a.workflows.LatestEligible(ctx, tenantID,
		provision.WorkflowCreated, provision.WorkflowValidated)
	if err != nil {
		return err
	}
	if record == nil {
		return &provision.ResourceNotFoundError{Kind: "workflow", ID: tenantID}
	}

	definition, err := a.engine.GetWorkflow(ctx, record.WorkflowID)
	if err != nil {
		if provision.IsNotFound(err) {
			// The engine-side resource is gone; nothing left to validate
			if updErr := a.workflows.UpdateStatus(ctx, tenantID, record.WorkflowID, provision.WorkflowError); updErr != nil {
				log.Printf("[PROVISION]: could not mark workflow %s errored: %v", record.WorkflowID, updErr)
			}
			if setErr := a.status.Set(ctx, tenantID, provision.Update{}.WithWorkflowStatus(provision.WorkflowError)); setErr != nil {
				log.Printf("[PROVISION]: could not record workflow error for %s: %v", tenantID, setErr)
			}
		}
		return err
	}

	if definition.RewriteTriggerPath(record.TriggerPath) {
		if err := a.engine.UpdateWorkflow(ctx, record.WorkflowID, definition); err != nil {
			return err
		}
	}

	// Some engine versions auto-activate on save, so activation failure is a
	// warning rather than a failed validation
	if err := a.engine.Activate(ctx, record.WorkflowID); err != nil {
		log.Printf("[PROVISION]: best-effort activate of %s failed: %v", record.WorkflowID, err)
	}

	if err := a.workflows.UpdateStatus(ctx, tenantID, record.WorkflowID, provision.WorkflowValidated); err != nil {
		return err
	}
	return a.status.Set(ctx, tenantID, provision.Update{}.
		WithWorkflowStatus(provision.WorkflowValidated).
		WithWorkflowID(record.WorkflowID).
		WithWebhookURL(record.TriggerURL))
}
