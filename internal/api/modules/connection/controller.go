package connection_module

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zapdesk/zapdesk/internal/provisioner"
	"github.com/zapdesk/zapdesk/internal/waha"
	"github.com/zapdesk/zapdesk/pkg/sdk"
)

// PingGateway handles GET requests probing the messaging gateway
func PingGateway(c *gin.Context) {
	coordinator := GetCoordinator()
	reachable := coordinator.Sessions.TestConnectivity(c.Request.Context())

	resp := sdk.GatewayPingResponse{Reachable: reachable}
	if !reachable {
		c.JSON(sdk.NewSuccessResponse("Gateway is unreachable", resp).AsGinResponse())
		return
	}
	c.JSON(sdk.NewSuccessResponse("Gateway is reachable", resp).AsGinResponse())
}

// ConnectSession handles POST requests to start or resume a tenant's session
func ConnectSession(c *gin.Context) {
	tenantID := c.Param("tenant")

	// Parse request body; the session name is optional
	var req sdk.ConnectSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Could not parse request body", err.Error()).AsGinResponse())
		return
	}

	coordinator := GetCoordinator()
	session, err := coordinator.Sessions.CreateOrResumeSession(c.Request.Context(), tenantID, req.SessionName)
	if err != nil {
		c.JSON(sdk.NewErrorResponse(errStatus(err), "Failed to connect session", err.Error()).AsGinResponse())
		return
	}

	c.JSON(sdk.NewSuccessResponse("Session connecting", toSDKSession(session)).AsGinResponse())
}

// PollSession handles POST requests waiting for a tenant's session to settle
func PollSession(c *gin.Context) {
	tenantID := c.Param("tenant")
	coordinator := GetCoordinator()

	// Parse request body; defaults come from configuration
	var req sdk.PollSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Could not parse request body", err.Error()).AsGinResponse())
		return
	}

	interval := coordinator.PollInterval
	if req.IntervalMs > 0 {
		interval = time.Duration(req.IntervalMs) * time.Millisecond
	}
	timeout := coordinator.PollTimeout
	if req.TimeoutMs > 0 {
		timeout = time.Duration(req.TimeoutMs) * time.Millisecond
	}
	// Cap client-supplied timeouts; longer waits should re-poll
	if timeout > 5*time.Minute {
		timeout = 5 * time.Minute
	}

	session, err := coordinator.Sessions.PollUntilTerminal(c.Request.Context(), tenantID, "", interval, timeout)
	if err != nil {
		c.JSON(sdk.NewErrorResponse(errStatus(err), "Failed to poll session", err.Error()).AsGinResponse())
		return
	}

	c.JSON(sdk.NewSuccessResponse("Session polled", toSDKSession(session)).AsGinResponse())
}

// GetStatus handles GET requests for a tenant's full connection status
func GetStatus(c *gin.Context) {
	tenantID := c.Param("tenant")

	coordinator := GetCoordinator()
	status, err := coordinator.Status.Get(c.Request.Context(), tenantID)
	if err != nil {
		c.JSON(sdk.NewErrorResponse(errStatus(err), "Failed to get connection status", err.Error()).AsGinResponse())
		return
	}

	c.JSON(sdk.NewSuccessResponse("Connection status retrieved", status).AsGinResponse())
}

// ProvisionWorkflow handles POST requests to clone and wire a workflow
func ProvisionWorkflow(c *gin.Context) {
	tenantID := c.Param("tenant")

	var req sdk.ProvisionRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Could not parse request body", err.Error()).AsGinResponse())
		return
	}

	coordinator := GetCoordinator()
	ref, err := coordinator.Provisioner.Provision(c.Request.Context(), tenantID, req.SchedulerMode)
	if err != nil {
		// The clone may have succeeded even when the chain failed; return the
		// partial result so the caller can retry the remaining steps
		resp := sdk.NewErrorResponse(errStatus(err), "Failed to provision workflow", err.Error())
		if ref != nil {
			resp.Data = toSDKRef(ref)
		}
		c.JSON(resp.AsGinResponse())
		return
	}

	c.JSON(sdk.NewSuccessResponse("Workflow provisioned", toSDKRef(ref)).AsGinResponse())
}

// ActivateWorkflow handles POST requests to validate and activate a workflow
func ActivateWorkflow(c *gin.Context) {
	tenantID := c.Param("tenant")
	coordinator := GetCoordinator()

	if err := coordinator.Activator.ValidateAndActivate(c.Request.Context(), tenantID); err != nil {
		c.JSON(sdk.NewErrorResponse(errStatus(err), "Failed to activate workflow", err.Error()).AsGinResponse())
		return
	}

	status, err := coordinator.Status.Get(c.Request.Context(), tenantID)
	if err != nil {
		c.JSON(sdk.NewErrorResponse(errStatus(err), "Failed to get connection status", err.Error()).AsGinResponse())
		return
	}

	c.JSON(sdk.NewSuccessResponse("Workflow activated", status).AsGinResponse())
}

// Disconnect handles DELETE requests tearing down a tenant's session and all
// dependent state
func Disconnect(c *gin.Context) {
	tenantID := c.Param("tenant")

	coordinator := GetCoordinator()
	if err := coordinator.Sessions.Disconnect(c.Request.Context(), tenantID, ""); err != nil {
		c.JSON(sdk.NewErrorResponse(errStatus(err), "Failed to disconnect", err.Error()).AsGinResponse())
		return
	}

	c.JSON(sdk.NewSuccess("Tenant disconnected").AsGinResponse())
}

// Helper method to convert a gateway session to its sdk shape
func toSDKSession(session *waha.Session) sdk.SessionInfo {
	if session == nil {
		return sdk.SessionInfo{}
	}
	return sdk.SessionInfo{
		Name:     session.Name,
		Status:   string(session.Status),
		ScanCode: session.ScanCode,
	}
}

// Helper method to convert a workflow ref to its sdk shape
func toSDKRef(ref *provisioner.WorkflowRef) sdk.ProvisionResponse {
	return sdk.ProvisionResponse{
		WorkflowID:  ref.WorkflowID,
		TriggerPath: ref.TriggerPath,
		TriggerURL:  ref.TriggerURL,
	}
}
