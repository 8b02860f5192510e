package agent_module

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nlpodyssey/openai-agents-go/agents"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zapdesk/zapdesk/internal/agents/concierge"
	"github.com/zapdesk/zapdesk/internal/stores/agentconfig"
	"github.com/zapdesk/zapdesk/internal/stores/connection"
	"github.com/zapdesk/zapdesk/pkg/provision"
	"github.com/zapdesk/zapdesk/pkg/sdk"
	"github.com/zapdesk/zapdesk/pkg/utils"
)

// newTestAgentService installs a service over in-memory stores
func newTestAgentService(t *testing.T) (*Service, *connection.InMemoryStore, *agentconfig.InMemoryStore) {
	configs := agentconfig.NewInMemoryStore()
	status := connection.NewInMemoryStore()
	svc := &Service{
		Configs:   configs,
		Status:    status,
		Concierge: concierge.New(utils.NewConfig(nil), configs),
	}
	SetService(svc)
	t.Cleanup(func() { SetService(nil) })
	return svc, status, configs
}

// perform invokes a handler with path params and an optional JSON body
func perform(handler gin.HandlerFunc, params gin.Params, body any) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	c.Request = httptest.NewRequest(http.MethodPost, "/", reader)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = params

	handler(c)
	return w
}

func fullConfigRequest() sdk.AgentConfigRequest {
	return sdk.AgentConfigRequest{
		Personality:      "friendly and direct",
		Presentation:     "I am Zap, the shop assistant",
		CompanyKnowledge: "We sell surfboards",
		ProductKnowledge: "Boards from 5'8 to 9'2",
	}
}

// TestSaveConfigMarksAIConfigured checks that a saved configuration flips the
// tenant's connection record to configured
func TestSaveConfigMarksAIConfigured(t *testing.T) {
	_, status, configs := newTestAgentService(t)
	ctx := context.Background()

	w := perform(SaveConfig, gin.Params{
		{Key: "tenant", Value: "tenant-1"},
		{Key: "type", Value: "support"},
	}, fullConfigRequest())
	assert.Equal(t, http.StatusOK, w.Code)

	current, err := status.Get(ctx, "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, provision.AIConfigured, current.AIStatus)

	saved, err := configs.Load(ctx, "tenant-1", provision.AgentTypeSupport)
	require.NoError(t, err)
	assert.Equal(t, "friendly and direct", saved.Personality)
}

// TestSaveConfigRejectsUnknownType checks that an invalid agent type is a 400
// and leaves the connection record untouched
func TestSaveConfigRejectsUnknownType(t *testing.T) {
	_, status, _ := newTestAgentService(t)

	w := perform(SaveConfig, gin.Params{
		{Key: "tenant", Value: "tenant-1"},
		{Key: "type", Value: "marketing"},
	}, fullConfigRequest())
	assert.Equal(t, http.StatusBadRequest, w.Code)

	current, err := status.Get(context.Background(), "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, provision.AINotConfigured, current.AIStatus)
}

// TestTestMessageMarksConfigured checks that a successful test exchange leaves
// the tenant both validated and configured
func TestTestMessageMarksConfigured(t *testing.T) {
	svc, status, configs := newTestAgentService(t)
	ctx := context.Background()

	req := fullConfigRequest()
	require.NoError(t, configs.Save(ctx, "tenant-1", provision.AgentTypeSupport, provision.AgentConfig{
		Personality:      req.Personality,
		Presentation:     req.Presentation,
		CompanyKnowledge: req.CompanyKnowledge,
		ProductKnowledge: req.ProductKnowledge,
	}))
	svc.Concierge.SetRunner(func(ctx context.Context, agent *agents.Agent, input string) (*agents.RunResult, error) {
		return &agents.RunResult{FinalOutput: "olá!"}, nil
	})

	w := perform(TestMessage, gin.Params{
		{Key: "tenant", Value: "tenant-1"},
		{Key: "type", Value: "support"},
	}, sdk.TestMessageRequest{Message: "oi"})
	assert.Equal(t, http.StatusOK, w.Code)

	current, err := status.Get(ctx, "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, provision.AIConfigured, current.AIStatus)

	saved, err := configs.Load(ctx, "tenant-1", provision.AgentTypeSupport)
	require.NoError(t, err)
	assert.True(t, saved.PersonalityValidated)
}

// TestTestMessageFailureMarksError checks that a generation failure records
// the errored state on the connection record
func TestTestMessageFailureMarksError(t *testing.T) {
	svc, status, configs := newTestAgentService(t)
	ctx := context.Background()

	req := fullConfigRequest()
	require.NoError(t, configs.Save(ctx, "tenant-1", provision.AgentTypeSupport, provision.AgentConfig{
		Personality:      req.Personality,
		Presentation:     req.Presentation,
		CompanyKnowledge: req.CompanyKnowledge,
		ProductKnowledge: req.ProductKnowledge,
	}))
	svc.Concierge.SetRunner(func(ctx context.Context, agent *agents.Agent, input string) (*agents.RunResult, error) {
		return nil, errors.New("model unavailable")
	})

	w := perform(TestMessage, gin.Params{
		{Key: "tenant", Value: "tenant-1"},
		{Key: "type", Value: "support"},
	}, sdk.TestMessageRequest{Message: "oi"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	current, err := status.Get(ctx, "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, provision.AIError, current.AIStatus)
}

// TestTestMessageIncompleteConfig checks that a precondition failure does not
// touch the tenant's AI status
func TestTestMessageIncompleteConfig(t *testing.T) {
	_, status, _ := newTestAgentService(t)

	w := perform(TestMessage, gin.Params{
		{Key: "tenant", Value: "tenant-1"},
		{Key: "type", Value: "support"},
	}, sdk.TestMessageRequest{Message: "oi"})
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)

	current, err := status.Get(context.Background(), "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, provision.AINotConfigured, current.AIStatus)
}
