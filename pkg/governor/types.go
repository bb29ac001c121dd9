package governor

import (
	"context"

	"github.com/quotient-project/quotient/pkg/models"
)

// Endpoint is the entry point to the resource governor. Consumers, whether
// through the message transport or in-process, interact with this interface
// to request, release and inspect resource grants.
type Endpoint interface {
	// Request asks for an allocation of a single resource type. A request
	// that cannot be fully satisfied under the capacity reserve is granted
	// partially: the result carries Success=false with the amount that was
	// granted. Validation failures are reported the same way and mutate no
	// state. The returned error is reserved for transport-level problems.
	Request(ctx context.Context, request models.ResourceRequest) (models.AllocationResult, error)

	// Release sets the consumer's grant for the type back to zero. Releasing
	// a grant the consumer does not hold returns Success=false and mutates
	// nothing.
	Release(ctx context.Context, request ReleaseRequest) (models.AllocationResult, error)

	// Usage returns the consumer's per-type allocation and usage statistics.
	Usage(ctx context.Context, consumerID string) (models.ConsumerUsage, error)

	// SystemUsage returns governor-wide totals and a per-consumer snapshot.
	SystemUsage(ctx context.Context) (models.SystemUsage, error)

	// OnConsumerStarted registers a consumer for tracking.
	OnConsumerStarted(ctx context.Context, consumerID string)

	// OnConsumerStopped drops all of the consumer's grants and histories
	// atomically, making its capacity immediately available.
	OnConsumerStopped(ctx context.Context, consumerID string)
}

// UsageReporter accepts externally observed utilization samples, e.g. from
// the OS metrics probe or from consumers that self-report.
type UsageReporter interface {
	// FeedSample records a utilization sample, in the resource type's units,
	// for a tracked consumer/resource pair. Negative samples are clamped to
	// zero; samples for untracked pairs are silently dropped.
	FeedSample(ctx context.Context, consumerID string, resourceType models.ResourceType, utilization float64)
}

// ReleaseRequest identifies the grant to release.
type ReleaseRequest struct {
	ConsumerID string              `json:"consumer_id"`
	Type       models.ResourceType `json:"resource_type"`
}
