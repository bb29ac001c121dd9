package models

// ResourceRequest asks the governor to grant an amount of a single resource
// type to a consumer. Requests are transient: one is created per call and
// never persisted.
type ResourceRequest struct {
	// ConsumerID identifies the component asking for resources.
	ConsumerID string `json:"consumer_id"`
	// Type is the resource being requested.
	Type ResourceType `json:"resource_type"`
	// RequestedAmount is the desired grant in the type's units. Must be >= 0.
	RequestedAmount float64 `json:"requested_amount"`
	// Priority is informational only; it does not affect arbitration.
	Priority Priority `json:"priority,omitempty"`
	// Reason optionally explains why the consumer needs the resources.
	Reason string `json:"reason,omitempty"`
}

// AllocationResult is the outcome of a request or release.
//
// Success means the request was satisfied in full. A partial grant is
// reported as Success=false with a nonzero AllocatedAmount, so callers must
// branch on AllocatedAmount rather than treating Success=false as "nothing
// happened". This asymmetry is a deliberate contract.
type AllocationResult struct {
	ConsumerID      string       `json:"consumer_id"`
	Type            ResourceType `json:"resource_type"`
	RequestedAmount float64      `json:"requested_amount"`
	AllocatedAmount float64      `json:"allocated_amount"`
	Success         bool         `json:"success"`
	Message         string       `json:"message,omitempty"`
}

// IsPartial reports whether the request was granted a nonzero amount that
// falls short of what was asked for.
func (r AllocationResult) IsPartial() bool {
	return !r.Success && r.AllocatedAmount > 0
}

// AllocationEvent is published on every rebalance-driven allocation change.
type AllocationEvent struct {
	ConsumerID         string       `json:"consumer_id"`
	Type               ResourceType `json:"resource_type"`
	Allocation         float64      `json:"allocation"`
	PreviousAllocation float64      `json:"previous_allocation"`
}

// ResourceUsage is a read-only snapshot of one consumer's standing for a
// single resource type.
type ResourceUsage struct {
	// Allocation is the currently granted amount.
	Allocation float64 `json:"allocation"`
	// CurrentUsage is the rolling average utilization over the last 10 seconds.
	CurrentUsage float64 `json:"current_usage"`
	// PeakUsage is the highest utilization seen in the last 60 seconds.
	PeakUsage float64 `json:"peak_usage"`
	// Trend is the least-squares slope of utilization over the last 5 minutes.
	// Positive means rising demand. Zero may also mean insufficient data.
	Trend float64 `json:"trend"`
}

// ConsumerUsage maps resource type names to the consumer's usage snapshots.
type ConsumerUsage map[string]ResourceUsage

// SystemUsage is the governor-wide snapshot returned when no consumer is
// named: total capacity per type plus a per-consumer breakdown.
type SystemUsage struct {
	SystemTotal map[string]float64       `json:"system_total"`
	Consumers   map[string]ConsumerUsage `json:"consumers"`
}
