package models

// HealthStatus is the health check response.
type HealthStatus struct {
	Status string `json:"status"`
}

// ServiceInfo describes the running service: which model is loaded, through
// which provider, and the embedding parameters clients can rely on.
type ServiceInfo struct {
	Model         string `json:"model"`
	Provider      string `json:"provider"`
	Dimensions    int    `json:"dimensions"`
	MaxTokens     int    `json:"max_tokens"`
	Normalize     bool   `json:"normalize"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Version       string `json:"version,omitempty"`
}
