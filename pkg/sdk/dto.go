package sdk

import (
	"encoding/json"

	"github.com/ethanbaker/api/pkg/api_types"
	"github.com/zapdesk/zapdesk/pkg/provision"
)

// ApiResponse represents a standard API response structure
type ApiResponse[T any] struct {
	Status  api_types.StatusType `json:"status"`          // Status message
	Code    int                  `json:"code"`            // Status code
	Message string               `json:"message"`         // Human-readable message
	Data    T                    `json:"data,omitempty"`  // Optional data field for successful responses
	Error   any                  `json:"error,omitempty"` // Optional errors field for error responses
}

// AsGinResponse converts the ApiResponse to a format suitable for Gin framework
func (r ApiResponse[T]) AsGinResponse() (int, any) {
	return r.Code, r
}

// AsJSON converts the ApiResponse to a format suitable for JSON responses
func (r ApiResponse[T]) AsJSON() (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func NewSuccess(message string) ApiResponse[any] {
	return ApiResponse[any]{
		Status:  api_types.StatusSuccess,
		Code:    200,
		Message: message,
	}
}

func NewSuccessResponse[T any](message string, data T) ApiResponse[T] {
	return ApiResponse[T]{
		Status:  api_types.StatusSuccess,
		Code:    200,
		Message: message,
		Data:    data,
	}
}

func NewErrorResponse(code int, message string, err any) ApiResponse[any] {
	return ApiResponse[any]{
		Status:  api_types.StatusError,
		Code:    code,
		Message: message,
		Error:   err,
	}
}

/** Requests */

// ConnectSessionRequest represents the request body for starting or resuming a
// gateway session
type ConnectSessionRequest struct {
	SessionName string `json:"session_name"`
}

// PollSessionRequest represents the request body for polling a session until
// it settles
type PollSessionRequest struct {
	IntervalMs int `json:"interval_ms"`
	TimeoutMs  int `json:"timeout_ms"`
}

// ProvisionRequest represents the request body for provisioning a workflow
type ProvisionRequest struct {
	SchedulerMode bool `json:"scheduler_mode"`
}

// AgentConfigRequest represents the request body for saving an agent's
// behavioral configuration
type AgentConfigRequest struct {
	Personality      string                        `json:"personality"`
	Presentation     string                        `json:"presentation"`
	CompanyKnowledge string                        `json:"company_knowledge"`
	ProductKnowledge string                        `json:"product_knowledge"`
	Technical        provision.TechnicalParameters `json:"technical_parameters"`
}

// TestMessageRequest represents the request body for a one-off agent test
// conversation
type TestMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

/** Responses */

// SessionInfo represents a gateway session as reported to clients
type SessionInfo struct {
	Name     string `json:"name"`
	Status   string `json:"status"`
	ScanCode string `json:"scan_code,omitempty"`
}

// GatewayPingResponse reports whether the messaging gateway is reachable
type GatewayPingResponse struct {
	Reachable bool `json:"reachable"`
}

// ProvisionResponse identifies the provisioned workflow and its endpoint
type ProvisionResponse struct {
	WorkflowID  string `json:"workflow_id"`
	TriggerPath string `json:"trigger_path"`
	TriggerURL  string `json:"trigger_url"`
}

// TestMessageResponse carries the generated reply of a test conversation
type TestMessageResponse struct {
	Reply string `json:"reply"`
}

// ReadinessResponse reports whether the tenant's bot can go live
type ReadinessResponse struct {
	Ready  bool                       `json:"ready"`
	Status provision.ConnectionStatus `json:"status"`
}
