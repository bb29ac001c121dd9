package natstransport

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/quotient-project/quotient/pkg/models"
	"github.com/quotient-project/quotient/pkg/pubsub"
)

type EventPublisherParams struct {
	Conn *nats.Conn
}

// EventPublisher publishes allocation-change events to the
// resource.allocation subject.
type EventPublisher struct {
	conn *nats.Conn
}

func NewEventPublisher(params EventPublisherParams) *EventPublisher {
	return &EventPublisher{
		conn: params.Conn,
	}
}

func (p *EventPublisher) Publish(ctx context.Context, event models.AllocationEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%T: failed to marshal event: %w", event, err)
	}
	return p.conn.Publish(AllocationEventSubject, data)
}

// compile-time check that we implement the interface
var _ pubsub.Publisher[models.AllocationEvent] = (*EventPublisher)(nil)
