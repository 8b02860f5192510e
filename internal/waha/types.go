package waha

// SessionStatus is the gateway's own lifecycle state for a session
type SessionStatus string

const (
	SessionStopped  SessionStatus = "STOPPED"
	SessionStarting SessionStatus = "STARTING"
	SessionScanQR   SessionStatus = "SCAN_QR_CODE"
	SessionWorking  SessionStatus = "WORKING"
	SessionFailed   SessionStatus = "FAILED"
)

// Terminal reports whether the status ends a polling loop
func (s SessionStatus) Terminal() bool {
	return s == SessionWorking || s == SessionFailed
}

// Webhook event names the gateway pushes to registered endpoints
const (
	EventMessage       = "message"
	EventSessionStatus = "session.status"
)

// Session is a gateway session as returned by the sessions API. ScanCode is
// filled in separately when the session is waiting for a QR scan.
type Session struct {
	Name     string         `json:"name"`
	Status   SessionStatus  `json:"status"`
	Config   *SessionConfig `json:"config,omitempty"`
	ScanCode string         `json:"scanCode,omitempty"`
}

// SessionConfig is the mutable configuration attached to a session
type SessionConfig struct {
	Webhooks []Webhook `json:"webhooks"`
}

// Webhook is one callback registration on a session
type Webhook struct {
	URL     string            `json:"url"`
	Events  []string          `json:"events"`
	Headers map[string]string `json:"headers,omitempty"`
}
