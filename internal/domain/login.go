package domain

// Login exchange statuses as used by the backend response envelope.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// LoginRequest is the transient body submitted to the backend login
// exchange. Created and consumed within a single callback pass; never
// persisted.
type LoginRequest struct {
	Type        string `json:"type"` // "login" | "code"
	Application string `json:"application"`
	Provider    string `json:"provider"`
	Method      string `json:"method"`
	Code        string `json:"code"`
	State       string `json:"state"`
	RedirectURI string `json:"redirectUri"`
}

// LoginResult is the backend's answer to a login exchange. On ok+code,
// Data carries the authorization code to hand back to the relying party.
type LoginResult struct {
	Status string `json:"status"`
	Msg    string `json:"msg"`
	Data   string `json:"data"`
}

// UpdateResult is the backend's answer to a user update. Empty Msg means
// success.
type UpdateResult struct {
	Msg string `json:"msg"`
}
