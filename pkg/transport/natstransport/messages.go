package natstransport

import (
	"github.com/quotient-project/quotient/pkg/models"
)

// Wire payloads carry resource types and priorities as strings and are
// validated at this boundary, before anything reaches the governor.

// AllocationRequestMessage is the payload of RequestSubject.
type AllocationRequestMessage struct {
	ConsumerID      string  `json:"consumer_id"`
	ResourceType    string  `json:"resource_type"`
	RequestedAmount float64 `json:"requested_amount"`
	Priority        string  `json:"priority,omitempty"`
	Reason          string  `json:"reason,omitempty"`
}

// ReleaseRequestMessage is the payload of ReleaseSubject.
type ReleaseRequestMessage struct {
	ConsumerID   string `json:"consumer_id"`
	ResourceType string `json:"resource_type"`
}

// AllocationReply answers both RequestSubject and ReleaseSubject.
//
// Success carries the governor's "fully granted" contract: a partial grant is
// Success=false with a nonzero AllocatedAmount.
type AllocationReply struct {
	ConsumerID      string  `json:"consumer_id,omitempty"`
	ResourceType    string  `json:"resource_type,omitempty"`
	RequestedAmount float64 `json:"requested_amount"`
	AllocatedAmount float64 `json:"allocated_amount"`
	Success         bool    `json:"success"`
	Message         string  `json:"message,omitempty"`
}

// UsageQueryMessage is the payload of UsageSubject. An empty ConsumerID asks
// for the system-wide snapshot.
type UsageQueryMessage struct {
	ConsumerID string `json:"consumer_id,omitempty"`
}

// UsageReply answers UsageSubject. Exactly one of Consumer or System is set
// on success.
type UsageReply struct {
	Success  bool                 `json:"success"`
	Message  string               `json:"message,omitempty"`
	Consumer models.ConsumerUsage `json:"consumer,omitempty"`
	System   *models.SystemUsage  `json:"system,omitempty"`
}

// LifecycleMessage is the payload of the component.started and
// component.stopped subjects.
type LifecycleMessage struct {
	ConsumerID string `json:"consumer_id"`
}

// UsageReportMessage is the payload of UsageReportSubject.
type UsageReportMessage struct {
	ConsumerID   string  `json:"consumer_id"`
	ResourceType string  `json:"resource_type"`
	Utilization  float64 `json:"utilization"`
}

func newAllocationReply(result models.AllocationResult) AllocationReply {
	return AllocationReply{
		ConsumerID:      result.ConsumerID,
		ResourceType:    result.Type.String(),
		RequestedAmount: result.RequestedAmount,
		AllocatedAmount: result.AllocatedAmount,
		Success:         result.Success,
		Message:         result.Message,
	}
}
