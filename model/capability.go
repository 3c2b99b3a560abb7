// Package model provides capability-based model selection for inference
// calls. Steps specify a capability (summarize, classify) and the registry
// resolves it to hosted models with fallback chains and health tracking.
package model

// Capability represents a semantic capability for model selection.
type Capability string

const (
	// CapabilitySummarize is for full-quality text summarization.
	CapabilitySummarize Capability = "summarize"

	// CapabilitySummarizeFast is for the smaller, faster summarization
	// model used as the second cascade strategy.
	CapabilitySummarizeFast Capability = "summarize-fast"

	// CapabilityClassify is for zero-shot topic classification.
	CapabilityClassify Capability = "classify"
)

// ParseCapability returns the capability for a string, or "" when unknown.
func ParseCapability(s string) Capability {
	switch Capability(s) {
	case CapabilitySummarize, CapabilitySummarizeFast, CapabilityClassify:
		return Capability(s)
	}
	return ""
}

// IsValid checks if a capability string is a known capability.
func (c Capability) IsValid() bool {
	return ParseCapability(string(c)) != ""
}
