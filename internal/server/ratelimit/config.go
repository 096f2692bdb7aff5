package ratelimit

import "time"

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Settings are the tunables exposed through the service configuration.
type Settings struct {
	Enabled        bool
	RequestsPerMin int
	Burst          int
	GeneratePerMin int
	GenerateBurst  int
}

// NewConfig builds a limiter configuration from settings.
func NewConfig(s Settings) *Config {
	return &Config{
		Enabled:         s.Enabled,
		DefaultLimit:    s.RequestsPerMin,
		DefaultWindow:   time.Minute,
		DefaultBurst:    s.Burst,
		CleanupInterval: 5 * time.Minute,
		IdleTimeout:     time.Hour,
		EndpointConfigs: DefaultEndpointConfigs(s),
	}
}

// DefaultEndpointConfigs returns the endpoint-specific configurations.
// Generation calls the catalog and the model, so it gets the strictest budget.
func DefaultEndpointConfigs(s Settings) []EndpointConfig {
	return []EndpointConfig{
		{Path: "/api/generate", Method: "POST", Limit: s.GeneratePerMin, Window: time.Minute, Burst: s.GenerateBurst},
		{Path: "/api/generate/stream", Method: "POST", Limit: s.GeneratePerMin, Window: time.Minute, Burst: s.GenerateBurst},
		{Path: "/api/admin/token", Method: "POST", Limit: 5, Window: time.Minute, Burst: 2},
	}
}
