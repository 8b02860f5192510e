package provisioner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zapdesk/zapdesk/internal/stores/connection"
	"github.com/zapdesk/zapdesk/internal/stores/workflow"
	"github.com/zapdesk/zapdesk/pkg/provision"
)

// newTestActivator builds an activator over a fake engine and in-memory stores
func newTestActivator(t *testing.T) (*Activator, *fakeEngine, connection.Store, workflow.Store) {
	engine := newFakeEngine(t)
	status := connection.NewInMemoryStore()
	workflows := workflow.NewInMemoryStore()
	return NewActivator(engine.client(), status, workflows), engine, status, workflows
}

// seedWorkflow puts a created workflow on the engine and its record in the
// store, with the trigger path drifted or applied depending on enginePath
func seedWorkflow(t *testing.T, engine *fakeEngine, workflows workflow.Store, tenantID, enginePath string) workflow.Record {
	engine.addTemplate("wf-seed")
	definition := engine.workflow("wf-seed")
	definition.Nodes[0].Parameters["path"] = enginePath

	record := workflow.Record{
		TenantID:    tenantID,
		WorkflowID:  "wf-seed",
		Name:        "Bot Template - " + tenantID,
		TriggerPath: "zapdesk-" + tenantID + "-1",
		TriggerURL:  "https://flows.example.com/webhook/zapdesk-" + tenantID + "-1",
		Status:      provision.WorkflowCreated,
	}
	require.NoError(t, workflows.Save(context.Background(), record))
	return record
}

// TestValidateAndActivateNoEligibleWorkflow checks that a tenant without a
// created or validated workflow is reported as not found
func TestValidateAndActivateNoEligibleWorkflow(t *testing.T) {
	activator, _, _, _ := newTestActivator(t)

	err := activator.ValidateAndActivate(context.Background(), "tenant-1")
	assert.True(t, provision.IsNotFound(err))
}

// TestValidateAndActivateRepairsDriftedPath checks that a drifted trigger path
// is rewritten on the engine before activation
func TestValidateAndActivateRepairsDriftedPath(t *testing.T) {
	activator, engine, status, workflows := newTestActivator(t)
	record := seedWorkflow(t, engine, workflows, "tenant-1", "template-path")
	ctx := context.Background()

	require.NoError(t, activator.ValidateAndActivate(ctx, "tenant-1"))

	assert.Equal(t, 1, engine.updateCalls)
	assert.Contains(t, engine.activateCalls, "wf-seed")
	definition := engine.workflow("wf-seed")
	assert.Equal(t, record.TriggerPath, definition.Nodes[0].Parameters["path"])

	stored, err := workflows.LatestEligible(ctx, "tenant-1", provision.WorkflowValidated)
	require.NoError(t, err)
	require.NotNil(t, stored)

	current, err := status.Get(ctx, "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, provision.WorkflowValidated, current.WorkflowStatus)
	assert.Equal(t, "wf-seed", current.WorkflowID)
	assert.Equal(t, record.TriggerURL, current.WebhookURL)
}

// TestValidateAndActivatePathAlreadyApplied checks that validating an already
// correct workflow skips the engine update
func TestValidateAndActivatePathAlreadyApplied(t *testing.T) {
	activator, engine, status, workflows := newTestActivator(t)
	seedWorkflow(t, engine, workflows, "tenant-1", "zapdesk-tenant-1-1")
	ctx := context.Background()

	require.NoError(t, activator.ValidateAndActivate(ctx, "tenant-1"))
	assert.Equal(t, 0, engine.updateCalls)

	current, err := status.Get(ctx, "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, provision.WorkflowValidated, current.WorkflowStatus)
}

// TestValidateAndActivateActivationFailureNonFatal checks that a failed
// activation call still lets validation complete
func TestValidateAndActivateActivationFailureNonFatal(t *testing.T) {
	activator, engine, status, workflows := newTestActivator(t)
	seedWorkflow(t, engine, workflows, "tenant-1", "zapdesk-tenant-1-1")
	engine.failActivate = true

	require.NoError(t, activator.ValidateAndActivate(context.Background(), "tenant-1"))

	current, err := status.Get(context.Background(), "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, provision.WorkflowValidated, current.WorkflowStatus)
}

// TestValidateAndActivateWorkflowGone checks that a record pointing at a
// deleted engine workflow flips both record and status to error
func TestValidateAndActivateWorkflowGone(t *testing.T) {
	activator, _, status, workflows := newTestActivator(t)
	ctx := context.Background()
	require.NoError(t, workflows.Save(ctx, workflow.Record{
		TenantID:   "tenant-1",
		WorkflowID: "wf-gone",
		Status:     provision.WorkflowCreated,
	}))

	err := activator.ValidateAndActivate(ctx, "tenant-1")
	assert.True(t, provision.IsNotFound(err))

	stored, err := workflows.LatestEligible(ctx, "tenant-1", provision.WorkflowError)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, provision.WorkflowError, stored.Status)

	current, err := status.Get(ctx, "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, provision.WorkflowError, current.WorkflowStatus)
}

// TestValidateAndActivatePicksLatestRecord checks that the most recent
// eligible record wins when duplicates exist
func TestValidateAndActivatePicksLatestRecord(t *testing.T) {
	activator, engine, _, workflows := newTestActivator(t)
	ctx := context.Background()

	engine.addTemplate("wf-old")
	engine.addTemplate("wf-new")
	for _, id := range []string{"wf-old", "wf-new"} {
		require.NoError(t, workflows.Save(ctx, workflow.Record{
			TenantID:    "tenant-1",
			WorkflowID:  id,
			TriggerPath: "zapdesk-tenant-1-" + id,
			Status:      provision.WorkflowCreated,
		}))
	}

	require.NoError(t, activator.ValidateAndActivate(ctx, "tenant-1"))
	assert.Equal(t, []string{"wf-new"}, engine.activateCalls)
}
