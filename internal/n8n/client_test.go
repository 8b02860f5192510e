package n8n

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zapdesk/zapdesk/pkg/provision"
)

func templateWorkflow() *Workflow {
	return &Workflow{
		ID:     "tmpl-1",
		Name:   "WhatsApp Bot Template",
		Active: true,
		Nodes: []Node{
			{
				ID:         "node-a",
				Name:       "Webhook",
				Type:       WebhookNodeType,
				WebhookID:  "hook-123",
				Parameters: map[string]any{"path": "template-path", "httpMethod": "POST"},
			},
			{
				ID:         "node-b",
				Name:       "Respond",
				Type:       "n8n-nodes-base.respondToWebhook",
				Parameters: map[string]any{"responseCode": 200},
			},
		},
		Connections: map[string]any{"Webhook": map[string]any{}},
	}
}

func TestRewriteTriggerPath(t *testing.T) {
	t.Run("rewrites only trigger nodes", func(t *testing.T) {
		workflow := templateWorkflow()

		changed := workflow.RewriteTriggerPath("zapdesk-t1-1700000000")
		assert.True(t, changed)
		assert.Equal(t, "zapdesk-t1-1700000000", workflow.Nodes[0].Parameters["path"])
		assert.NotContains(t, workflow.Nodes[1].Parameters, "path")
	})

	t.Run("reapplying the same path is a no-op", func(t *testing.T) {
		workflow := templateWorkflow()
		workflow.RewriteTriggerPath("zapdesk-t1-1700000000")

		changed := workflow.RewriteTriggerPath("zapdesk-t1-1700000000")
		assert.False(t, changed)
	})

	t.Run("other http methods survive", func(t *testing.T) {
		workflow := templateWorkflow()
		workflow.RewriteTriggerPath("p")
		assert.Equal(t, "POST", workflow.Nodes[0].Parameters["httpMethod"])
	})
}

func TestPrepareForClone(t *testing.T) {
	workflow := templateWorkflow()
	workflow.PrepareForClone("WhatsApp Bot Template - tenant-1")

	assert.Empty(t, workflow.ID)
	assert.False(t, workflow.Active)
	assert.Empty(t, workflow.Nodes[0].WebhookID)
	assert.Equal(t, "WhatsApp Bot Template - tenant-1", workflow.Name)
}

func TestGetWorkflow(t *testing.T) {
	t.Run("returns definition", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/workflows/tmpl-1", r.URL.Path)
			assert.Equal(t, "engine-key", r.Header.Get("X-N8N-API-KEY"))
			json.NewEncoder(w).Encode(templateWorkflow())
		}))
		defer server.Close()

		client := NewClient(server.URL, "engine-key")
		workflow, err := client.GetWorkflow(context.Background(), "tmpl-1")
		require.NoError(t, err)
		assert.Equal(t, "tmpl-1", workflow.ID)
		assert.Len(t, workflow.Nodes, 2)
	})

	t.Run("404 maps to ResourceNotFound with workflow id", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := NewClient(server.URL, "engine-key")
		_, err := client.GetWorkflow(context.Background(), "gone")
		require.True(t, provision.IsNotFound(err))
		assert.Contains(t, err.Error(), "gone")
	})
}

func TestCreateWorkflow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var submitted Workflow
		require.NoError(t, json.NewDecoder(r.Body).Decode(&submitted))
		assert.Empty(t, submitted.ID, "engine ids must be stripped before cloning")

		submitted.ID = "wf-new"
		json.NewEncoder(w).Encode(submitted)
	}))
	defer server.Close()

	workflow := templateWorkflow()
	workflow.PrepareForClone("clone")

	client := NewClient(server.URL, "engine-key")
	created, err := client.CreateWorkflow(context.Background(), workflow)
	require.NoError(t, err)
	assert.Equal(t, "wf-new", created.ID)
}

func TestActivate(t *testing.T) {
	t.Run("posts to activate endpoint", func(t *testing.T) {
		var path, method string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path, method = r.URL.Path, r.Method
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := NewClient(server.URL, "engine-key")
		require.NoError(t, client.Activate(context.Background(), "wf-1"))
		assert.Equal(t, "/workflows/wf-1/activate", path)
		assert.Equal(t, http.MethodPost, method)
	})

	t.Run("deactivate deletes the activation", func(t *testing.T) {
		var method string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			method = r.Method
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := NewClient(server.URL, "engine-key")
		require.NoError(t, client.Deactivate(context.Background(), "wf-1"))
		assert.Equal(t, http.MethodDelete, method)
	})
}
