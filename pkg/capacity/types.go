package capacity

import (
	"context"

	"github.com/quotient-project/quotient/pkg/models"
)

// Provider reports the total capacity of the resources the governor manages.
// It is queried once at startup; re-discovery is out of scope.
type Provider interface {
	// GetTotalCapacity returns the total capacity per resource type.
	GetTotalCapacity(ctx context.Context) (models.Capacities, error)

	// ResourceTypes returns human-readable descriptions of what this provider
	// can detect.
	ResourceTypes() []string
}

// Sampler supplies the latest observed utilization of a resource by a
// consumer, as an absolute amount in the resource type's units. The second
// return value is false when the sampler has no reading for the pair, in
// which case the rebalancer skips the sample rather than recording a false
// zero.
type Sampler interface {
	Sample(ctx context.Context, consumerID string, resourceType models.ResourceType) (float64, bool)
}

// SamplerFunc is a helper that implements Sampler.
type SamplerFunc func(ctx context.Context, consumerID string, resourceType models.ResourceType) (float64, bool)

func (f SamplerFunc) Sample(ctx context.Context, consumerID string, resourceType models.ResourceType) (float64, bool) {
	return f(ctx, consumerID, resourceType)
}
