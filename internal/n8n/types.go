package n8n

// WebhookNodeType is the node type of a workflow's HTTP trigger
const WebhookNodeType = "n8n-nodes-base.webhook"

// Node is one node of a workflow graph. Parameters are kept as an untyped map
// because only the trigger path is ever rewritten here.
type Node struct {
	ID          string         `json:"id,omitempty"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	TypeVersion float64        `json:"typeVersion,omitempty"`
	Position    []float64      `json:"position,omitempty"`
	WebhookID   string         `json:"webhookId,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// isTrigger reports whether the node is an entry point whose path parameter
// must be unique per tenant
func (n *Node) isTrigger() bool {
	if n.Type == WebhookNodeType {
		return true
	}
	_, hasPath := n.Parameters["path"]
	return hasPath
}

// Workflow is a workflow definition as exchanged with the engine
type Workflow struct {
	ID          string         `json:"id,omitempty"`
	Name        string         `json:"name"`
	Active      bool           `json:"active"`
	Nodes       []Node         `json:"nodes"`
	Connections map[string]any `json:"connections"`
	Settings    map[string]any `json:"settings,omitempty"`
}

// RewriteTriggerPath sets the path parameter of every trigger node. Reapplying
// the same path is a no-op; the return value reports whether anything changed.
func (w *Workflow) RewriteTriggerPath(path string) bool {
	changed := false
	for i := range w.Nodes {
		node := &w.Nodes[i]
		if !node.isTrigger() {
			continue
		}
		if node.Parameters == nil {
			node.Parameters = map[string]any{}
		}
		if current, ok := node.Parameters["path"].(string); ok && current == path {
			continue
		}
		node.Parameters["path"] = path
		changed = true
	}
	return changed
}

// PrepareForClone strips engine-assigned identifiers so that submitting the
// definition creates a fresh resource with new ids
func (w *Workflow) PrepareForClone(name string) {
	w.ID = ""
	w.Active = false
	if name != "" {
		w.Name = name
	}
	for i := range w.Nodes {
		w.Nodes[i].WebhookID = ""
	}
}
