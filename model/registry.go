package model

import "sync"

// Registry manages model selection based on capabilities.
// It maps capabilities to preferred models with fallback chains.
type Registry struct {
	mu           sync.RWMutex
	capabilities map[Capability]*CapabilityConfig
	endpoints    map[string]*EndpointConfig
	health       *healthState
}

// CapabilityConfig defines model preferences for a capability.
type CapabilityConfig struct {
	// Description explains what this capability is for.
	Description string `json:"description"`

	// Preferred lists models in order of preference.
	Preferred []string `json:"preferred"`

	// Fallback lists backup models if all preferred fail.
	Fallback []string `json:"fallback"`
}

// EndpointConfig defines an available hosted model endpoint.
type EndpointConfig struct {
	// Model is the hosted model identifier (e.g. "facebook/bart-large-cnn").
	Model string `json:"model"`

	// URL overrides the provider base URL. Empty uses the provider default.
	URL string `json:"url,omitempty"`

	// Task is the inference task the endpoint serves
	// ("summarization" or "zero-shot-classification").
	Task string `json:"task"`

	// MaxInputChars truncates input text before sending. 0 means no cap.
	MaxInputChars int `json:"max_input_chars,omitempty"`
}

// NewRegistry creates a new model registry with the given configuration.
func NewRegistry(caps map[Capability]*CapabilityConfig, endpoints map[string]*EndpointConfig) *Registry {
	return &Registry{
		capabilities: caps,
		endpoints:    endpoints,
	}
}

// NewDefaultRegistry creates a registry with the hosted models the demo
// backend uses by default.
func NewDefaultRegistry() *Registry {
	return &Registry{
		capabilities: map[Capability]*CapabilityConfig{
			CapabilitySummarize: {
				Description: "Full-quality summarization",
				Preferred:   []string{"bart-large-cnn"},
				Fallback:    []string{"distilbart-cnn"},
			},
			CapabilitySummarizeFast: {
				Description: "Fast summarization with a shorter input budget",
				Preferred:   []string{"distilbart-cnn"},
			},
			CapabilityClassify: {
				Description: "Zero-shot topic classification",
				Preferred:   []string{"bart-large-mnli"},
			},
		},
		endpoints: map[string]*EndpointConfig{
			"bart-large-cnn": {
				Model:         "facebook/bart-large-cnn",
				Task:          "summarization",
				MaxInputChars: 4000,
			},
			"distilbart-cnn": {
				Model:         "sshleifer/distilbart-cnn-12-6",
				Task:          "summarization",
				MaxInputChars: 2000,
			},
			"bart-large-mnli": {
				Model: "facebook/bart-large-mnli",
				Task:  "zero-shot-classification",
			},
		},
	}
}

// GetFallbackChain returns all models for a capability in order of
// preference.
func (r *Registry) GetFallbackChain(cap Capability) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.capabilities[cap]
	if !ok {
		return nil
	}
	chain := make([]string, 0, len(cfg.Preferred)+len(cfg.Fallback))
	chain = append(chain, cfg.Preferred...)
	chain = append(chain, cfg.Fallback...)
	return chain
}

// GetAvailableFallbackChain returns the fallback chain filtered to
// endpoints whose circuit breaker is not open. If every endpoint is
// unavailable the full chain is returned, since trying something beats
// trying nothing.
func (r *Registry) GetAvailableFallbackChain(cap Capability) []string {
	chain := r.GetFallbackChain(cap)
	available := make([]string, 0, len(chain))

	for _, name := range chain {
		if r.IsEndpointAvailable(name) {
			available = append(available, name)
		}
	}

	if len(available) == 0 {
		return chain
	}
	return available
}

// GetEndpoint returns the endpoint configuration for a model name.
// Returns nil if the model is not configured.
func (r *Registry) GetEndpoint(name string) *EndpointConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.endpoints[name]
}

// SetCapability updates or adds a capability configuration.
func (r *Registry) SetCapability(cap Capability, cfg *CapabilityConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.capabilities == nil {
		r.capabilities = make(map[Capability]*CapabilityConfig)
	}
	r.capabilities[cap] = cfg
}

// SetEndpoint updates or adds an endpoint configuration.
func (r *Registry) SetEndpoint(name string, cfg *EndpointConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.endpoints == nil {
		r.endpoints = make(map[string]*EndpointConfig)
	}
	r.endpoints[name] = cfg
}

// ListEndpoints returns all configured endpoint names.
func (r *Registry) ListEndpoints() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.endpoints))
	for name := range r.endpoints {
		names = append(names, name)
	}
	return names
}
