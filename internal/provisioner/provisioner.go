package provisioner

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/zapdesk/zapdesk/internal/n8n"
	"github.com/zapdesk/zapdesk/internal/stores/connection"
	"github.com/zapdesk/zapdesk/internal/stores/workflow"
	"github.com/zapdesk/zapdesk/internal/waha"
	"github.com/zapdesk/zapdesk/pkg/provision"
)

// WorkflowRef identifies a freshly cloned workflow and its trigger endpoint
type WorkflowRef struct {
	WorkflowID  string `json:"workflow_id"`
	TriggerPath string `json:"trigger_path"`
	TriggerURL  string `json:"trigger_url"`
}

// Provisioner clones an engine template for a tenant, rewrites its trigger to
// a tenant-unique path and registers that endpoint as a webhook on the
// tenant's gateway session
type Provisioner struct {
	engine    *n8n.Client
	gateway   *waha.Client
	status    connection.Store
	workflows workflow.Store
	templates provision.TemplateCatalog

	pathPrefix  string // first segment of generated trigger paths
	webhookBase string // public engine URL trigger paths hang off of
	guard       *tenantGuard
	now         func() time.Time
}

// NewProvisioner wires a provisioner over the engine and gateway clients
func NewProvisioner(engine *n8n.Client, gateway *waha.Client, status connection.Store, workflows workflow.Store, templates provision.TemplateCatalog, pathPrefix, webhookBase string) *Provisioner {
	if pathPrefix == "" {
		pathPrefix = "zapdesk"
	}
	return &Provisioner{
		engine:      engine,
		gateway:     gateway,
		status:      status,
		workflows:   workflows,
		templates:   templates,
		pathPrefix:  pathPrefix,
		webhookBase: strings.TrimRight(webhookBase, "/"),
		guard:       newTenantGuard(),
		now:         time.Now,
	}
}

// CloneTemplate fetches the template definition, rewrites every trigger node
// to a tenant-unique path, strips engine-assigned identifiers and submits the
// result as a new workflow. The gateway session must already be connected;
// calling out of order is a caller error, not something retried here.
func (p *Provisioner) CloneTemplate(ctx context.Context, tenantID, templateID string) (*WorkflowRef, error) {
	current, err := p.status.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if current.GatewayStatus != provision.GatewayConnected {
		return nil, &provision.PreconditionFailedError{
			Stage:  "provision",
			Reason: "gateway session is not connected",
		}
	}

	template, err := p.engine.GetWorkflow(ctx, templateID)
	if err != nil {
		if provision.IsNotFound(err) {
			// Nothing to clone from; this stage cannot succeed by retrying
			if setErr := p.status.Set(ctx, tenantID, provision.Update{}.WithWorkflowStatus(provision.WorkflowError)); setErr != nil {
				log.Printf("[PROVISION]: could not record workflow error for %s: %v", tenantID, setErr)
			}
		}
		return nil, err
	}

	path := fmt.Sprintf("%s-%s-%d", p.pathPrefix, tenantID, p.now().Unix())
	template.RewriteTriggerPath(path)
	template.PrepareForClone(fmt.Sprintf("%s - %s", template.Name, tenantID))

	created, err := p.engine.CreateWorkflow(ctx, template)
	if err != nil {
		return nil, err
	}

	ref := &WorkflowRef{
		WorkflowID:  created.ID,
		TriggerPath: path,
		TriggerURL:  p.webhookBase + "/webhook/" + path,
	}

	if err := p.workflows.Save(ctx, workflow.Record{
		TenantID:    tenantID,
		WorkflowID:  ref.WorkflowID,
		Name:        created.Name,
		TriggerPath: ref.TriggerPath,
		TriggerURL:  ref.TriggerURL,
		Status:      provision.WorkflowCreated,
	}); err != nil {
		return nil, err
	}
	return ref, nil
}

// RegisterWebhook points the tenant's gateway session at a trigger URL for
// message and session-status events. Registration is idempotent: an existing
// entry with the same URL is left alone, and a 409 from a concurrent
// configuration attempt counts as success.
func (p *Provisioner) RegisterWebhook(ctx context.Context, tenantID, triggerURL string) error {
	current, err := p.status.Get(ctx, tenantID)
	if err != nil {
		return err
	}
	if current.GatewaySessionName == "" {
		return &provision.PreconditionFailedError{
			Stage:  "webhook",
			Reason: "tenant has no gateway session",
		}
	}
	sessionName := current.GatewaySessionName

	hooks, err := p.gateway.GetWebhooks(ctx, sessionName)
	if err != nil {
		return err
	}
	for _, hook := range hooks {
		if hook.URL == triggerURL {
			return nil
		}
	}

	hooks = append(hooks, waha.Webhook{
		URL:    triggerURL,
		Events: []string{waha.EventMessage, waha.EventSessionStatus},
	})
	err = p.gateway.UpdateSession(ctx, sessionName, waha.SessionConfig{Webhooks: hooks})
	if provision.IsConflict(err) {
		log.Printf("[PROVISION]: webhook for %s already configured on %s, continuing", tenantID, sessionName)
		return nil
	}
	return err
}

// Provision runs the full chain: select template by mode, clone it, then
// register its trigger as a webhook. A webhook failure after a successful
// clone leaves the workflow in created so registration can be retried without
// cloning again; the partial ref is returned alongside the error.
func (p *Provisioner) Provision(ctx context.Context, tenantID string, schedulerMode bool) (*WorkflowRef, error) {
	if !p.guard.acquire(tenantID) {
		return nil, &provision.PreconditionFailedError{
			Stage:  "provision",
			Reason: "provisioning already in progress for this tenant",
		}
	}
	defer p.guard.release(tenantID)

	// Check the gateway precondition before touching the workflow status so a
	// rejected call leaves no trace
	current, err := p.status.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if current.GatewayStatus != provision.GatewayConnected {
		return nil, &provision.PreconditionFailedError{
			Stage:  "provision",
			Reason: "gateway session is not connected",
		}
	}

	templateID := p.templates.ForMode(schedulerMode)

	if err := p.status.Set(ctx, tenantID, provision.Update{}.WithWorkflowStatus(provision.WorkflowCreating)); err != nil {
		return nil, err
	}

	ref, err := p.CloneTemplate(ctx, tenantID, templateID)
	if err != nil {
		return nil, err
	}

	if err := p.status.Set(ctx, tenantID, provision.Update{}.
		WithWorkflowStatus(provision.WorkflowCreated).
		WithWorkflowID(ref.WorkflowID)); err != nil {
		return nil, err
	}

	if err := p.RegisterWebhook(ctx, tenantID, ref.TriggerURL); err != nil {
		return ref, fmt.Errorf("workflow %s created but webhook registration failed: %w", ref.WorkflowID, err)
	}

	if err := p.status.Set(ctx, tenantID, provision.Update{}.WithWebhookURL(ref.TriggerURL)); err != nil {
		return ref, err
	}
	return ref, nil
}
