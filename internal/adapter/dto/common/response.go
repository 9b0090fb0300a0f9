package common

// ListResponse represents a list response
type ListResponse struct {
	Data  interface{} `json:"data"`
	Count int         `json:"count"`
}

// HealthResponse represents the health check body
type HealthResponse struct {
	Status      string            `json:"status"`
	Environment string            `json:"environment"`
	Components  map[string]string `json:"components,omitempty"`
}
