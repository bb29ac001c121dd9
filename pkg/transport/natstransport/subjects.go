package natstransport

// Message surface of the governor. Request/reply subjects expect a JSON
// payload and answer on the NATS reply inbox; event subjects are
// fire-and-forget.
const (
	// RequestSubject asks for an allocation. Replies with AllocationReply.
	RequestSubject = "resource.request"
	// ReleaseSubject releases a grant. Replies with AllocationReply.
	ReleaseSubject = "resource.release"
	// UsageSubject queries usage. Replies with UsageReply.
	UsageSubject = "resource.usage"
	// UsageReportSubject carries self-reported utilization samples. No reply.
	UsageReportSubject = "resource.usage.report"

	// ConsumerStartedSubject registers a consumer for tracking. No reply.
	ConsumerStartedSubject = "component.started"
	// ConsumerStoppedSubject releases everything a consumer holds. No reply.
	ConsumerStoppedSubject = "component.stopped"

	// AllocationEventSubject carries AllocationEvent notifications for every
	// rebalance-driven allocation change.
	AllocationEventSubject = "resource.allocation"
)
