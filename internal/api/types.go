package api

// ErrorResponse is returned on errors that produce no compile Response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthzResponse is returned by GET /healthz.
type HealthzResponse struct {
	Status        string          `json:"status"`
	UptimeSeconds int64           `json:"uptime_seconds"`
	Engines       map[string]bool `json:"engines"`
}
