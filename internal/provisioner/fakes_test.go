package provisioner

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/zapdesk/zapdesk/internal/n8n"
	"github.com/zapdesk/zapdesk/internal/waha"
)

// fakeGateway is an httptest stand-in for the messaging gateway
type fakeGateway struct {
	mu       sync.Mutex
	sessions map[string]*waha.Session

	createStatus waha.SessionStatus // status assigned to newly created sessions
	startStatus  waha.SessionStatus // status after a start call
	conflictPut  bool               // answer PUT with 409

	startCalls  int
	stopCalls   int
	deleteCalls int
	putCalls    int

	server *httptest.Server
}

func newFakeGateway(t *testing.T) *fakeGateway {
	g := &fakeGateway{
		sessions:     make(map[string]*waha.Session),
		createStatus: waha.SessionStarting,
		startStatus:  waha.SessionStarting,
	}
	g.server = httptest.NewServer(http.HandlerFunc(g.handle))
	t.Cleanup(g.server.Close)
	return g
}

func (g *fakeGateway) client() *waha.Client {
	return waha.NewClient(g.server.URL, "test-key")
}

func (g *fakeGateway) setSession(name string, status waha.SessionStatus) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sessions[name] = &waha.Session{Name: name, Status: status}
}

func (g *fakeGateway) webhooks(name string) []waha.Webhook {
	g.mu.Lock()
	defer g.mu.Unlock()
	session := g.sessions[name]
	if session == nil || session.Config == nil {
		return nil
	}
	return session.Config.Webhooks
}

func (g *fakeGateway) handle(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	defer g.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/api")
	switch {
	case path == "/sessions" && r.Method == http.MethodGet:
		list := make([]*waha.Session, 0, len(g.sessions))
		for _, session := range g.sessions {
			list = append(list, session)
		}
		json.NewEncoder(w).Encode(list)

	case path == "/sessions" && r.Method == http.MethodPost:
		var body struct {
			Name string `json:"name"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		session := &waha.Session{Name: body.Name, Status: g.createStatus}
		g.sessions[body.Name] = session
		json.NewEncoder(w).Encode(session)

	case strings.HasSuffix(path, "/start") && r.Method == http.MethodPost:
		g.startCalls++
		name := strings.TrimSuffix(strings.TrimPrefix(path, "/sessions/"), "/start")
		if session, ok := g.sessions[name]; ok {
			session.Status = g.startStatus
		}
		w.WriteHeader(http.StatusOK)

	case strings.HasSuffix(path, "/stop") && r.Method == http.MethodPost:
		g.stopCalls++
		name := strings.TrimSuffix(strings.TrimPrefix(path, "/sessions/"), "/stop")
		if session, ok := g.sessions[name]; ok {
			session.Status = waha.SessionStopped
		}
		w.WriteHeader(http.StatusOK)

	case strings.HasSuffix(path, "/auth/qr") && r.Method == http.MethodGet:
		name := strings.TrimSuffix(strings.TrimPrefix(path, "/sessions/"), "/auth/qr")
		json.NewEncoder(w).Encode(map[string]string{"value": "qr-" + name})

	case strings.HasPrefix(path, "/sessions/") && r.Method == http.MethodGet:
		name := strings.TrimPrefix(path, "/sessions/")
		session, ok := g.sessions[name]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(session)

	case strings.HasPrefix(path, "/sessions/") && r.Method == http.MethodDelete:
		g.deleteCalls++
		name := strings.TrimPrefix(path, "/sessions/")
		delete(g.sessions, name)
		w.WriteHeader(http.StatusOK)

	case strings.HasPrefix(path, "/sessions/") && r.Method == http.MethodPut:
		g.putCalls++
		if g.conflictPut {
			w.WriteHeader(http.StatusConflict)
			return
		}
		name := strings.TrimPrefix(path, "/sessions/")
		session, ok := g.sessions[name]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var body struct {
			Config waha.SessionConfig `json:"config"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		session.Config = &body.Config
		w.WriteHeader(http.StatusOK)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// fakeEngine is an httptest stand-in for the workflow engine
type fakeEngine struct {
	mu        sync.Mutex
	workflows map[string]*n8n.Workflow
	nextID    int

	failActivate bool

	createCalls   int
	updateCalls   int
	activateCalls []string

	server *httptest.Server
}

func newFakeEngine(t *testing.T) *fakeEngine {
	e := &fakeEngine{workflows: make(map[string]*n8n.Workflow)}
	e.server = httptest.NewServer(http.HandlerFunc(e.handle))
	t.Cleanup(e.server.Close)
	return e
}

func (e *fakeEngine) client() *n8n.Client {
	return n8n.NewClient(e.server.URL, "engine-key")
}

func (e *fakeEngine) addTemplate(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.workflows[id] = &n8n.Workflow{
		ID:     id,
		Name:   "Bot Template",
		Active: true,
		Nodes: []n8n.Node{
			{
				ID:         "trigger",
				Name:       "Webhook",
				Type:       n8n.WebhookNodeType,
				WebhookID:  "hook-1",
				Parameters: map[string]any{"path": "template-path"},
			},
			{ID: "reply", Name: "Reply", Type: "n8n-nodes-base.respondToWebhook"},
		},
		Connections: map[string]any{},
	}
}

func (e *fakeEngine) workflow(id string) *n8n.Workflow {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.workflows[id]
}

func (e *fakeEngine) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.workflows)
}

func (e *fakeEngine) handle(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	defer e.mu.Unlock()

	path := r.URL.Path
	switch {
	case path == "/workflows" && r.Method == http.MethodPost:
		e.createCalls++
		var workflow n8n.Workflow
		json.NewDecoder(r.Body).Decode(&workflow)
		e.nextID++
		workflow.ID = fmt.Sprintf("wf-%d", e.nextID)
		e.workflows[workflow.ID] = &workflow
		json.NewEncoder(w).Encode(workflow)

	case strings.HasSuffix(path, "/activate") && r.Method == http.MethodPost:
		if e.failActivate {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		id := strings.TrimSuffix(strings.TrimPrefix(path, "/workflows/"), "/activate")
		e.activateCalls = append(e.activateCalls, id)
		if workflow, ok := e.workflows[id]; ok {
			workflow.Active = true
		}
		w.WriteHeader(http.StatusOK)

	case strings.HasPrefix(path, "/workflows/") && r.Method == http.MethodGet:
		id := strings.TrimPrefix(path, "/workflows/")
		workflow, ok := e.workflows[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(workflow)

	case strings.HasPrefix(path, "/workflows/") && r.Method == http.MethodPut:
		e.updateCalls++
		id := strings.TrimPrefix(path, "/workflows/")
		if _, ok := e.workflows[id]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var workflow n8n.Workflow
		json.NewDecoder(r.Body).Decode(&workflow)
		workflow.ID = id
		e.workflows[id] = &workflow
		w.WriteHeader(http.StatusOK)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}
