package natstransport

import (
	"context"
	"encoding/json"
	"reflect"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/quotient-project/quotient/pkg/governor"
	"github.com/quotient-project/quotient/pkg/models"
)

type HandlerParams struct {
	Conn     *nats.Conn
	Endpoint governor.Endpoint
	// Reporter receives self-reported utilization samples. Optional; when
	// nil, usage reports are dropped.
	Reporter governor.UsageReporter
}

// Handler subscribes to the governor's inbound subjects and delegates the
// decoded requests to the endpoint.
type Handler struct {
	conn     *nats.Conn
	endpoint governor.Endpoint
	reporter governor.UsageReporter

	subscriptions []*nats.Subscription
}

func NewHandler(params HandlerParams) (*Handler, error) {
	handler := &Handler{
		conn:     params.Conn,
		endpoint: params.Endpoint,
		reporter: params.Reporter,
	}

	for subject, callback := range map[string]nats.MsgHandler{
		RequestSubject:         handler.handleRequest,
		ReleaseSubject:         handler.handleRelease,
		UsageSubject:           handler.handleUsageQuery,
		UsageReportSubject:     handler.handleUsageReport,
		ConsumerStartedSubject: handler.handleConsumerStarted,
		ConsumerStoppedSubject: handler.handleConsumerStopped,
	} {
		subscription, err := handler.conn.Subscribe(subject, callback)
		if err != nil {
			return nil, err
		}
		handler.subscriptions = append(handler.subscriptions, subscription)
		log.Debug().Msgf("Resource handler subscribed to %s", subject)
	}
	return handler, nil
}

// Close drains the handler's subscriptions.
func (h *Handler) Close() error {
	var err error
	for _, subscription := range h.subscriptions {
		if unsubErr := subscription.Drain(); unsubErr != nil {
			err = unsubErr
		}
	}
	return err
}

func (h *Handler) handleRequest(msg *nats.Msg) {
	ctx := context.Background()

	message, decodeErr := decode[AllocationRequestMessage](ctx, msg)
	if decodeErr != nil {
		h.reply(ctx, msg, AllocationReply{Message: decodeErr.Error()})
		return
	}

	resourceType, err := models.ParseResourceType(message.ResourceType)
	if err != nil {
		h.reply(ctx, msg, AllocationReply{
			RequestedAmount: message.RequestedAmount,
			Message:         err.Error(),
		})
		return
	}
	priority, err := models.ParsePriority(message.Priority)
	if err != nil {
		h.reply(ctx, msg, AllocationReply{
			RequestedAmount: message.RequestedAmount,
			Message:         err.Error(),
		})
		return
	}

	result, err := h.endpoint.Request(ctx, models.ResourceRequest{
		ConsumerID:      message.ConsumerID,
		Type:            resourceType,
		RequestedAmount: message.RequestedAmount,
		Priority:        priority,
		Reason:          message.Reason,
	})
	if err != nil {
		h.reply(ctx, msg, AllocationReply{
			RequestedAmount: message.RequestedAmount,
			Message:         err.Error(),
		})
		return
	}
	h.reply(ctx, msg, newAllocationReply(result))
}

func (h *Handler) handleRelease(msg *nats.Msg) {
	ctx := context.Background()

	message, decodeErr := decode[ReleaseRequestMessage](ctx, msg)
	if decodeErr != nil {
		h.reply(ctx, msg, AllocationReply{Message: decodeErr.Error()})
		return
	}

	resourceType, err := models.ParseResourceType(message.ResourceType)
	if err != nil {
		h.reply(ctx, msg, AllocationReply{Message: err.Error()})
		return
	}

	result, err := h.endpoint.Release(ctx, governor.ReleaseRequest{
		ConsumerID: message.ConsumerID,
		Type:       resourceType,
	})
	if err != nil {
		h.reply(ctx, msg, AllocationReply{Message: err.Error()})
		return
	}
	h.reply(ctx, msg, newAllocationReply(result))
}

func (h *Handler) handleUsageQuery(msg *nats.Msg) {
	ctx := context.Background()

	message, decodeErr := decode[UsageQueryMessage](ctx, msg)
	if decodeErr != nil {
		h.reply(ctx, msg, UsageReply{Message: decodeErr.Error()})
		return
	}

	if message.ConsumerID != "" {
		usage, err := h.endpoint.Usage(ctx, message.ConsumerID)
		if err != nil {
			h.reply(ctx, msg, UsageReply{Message: err.Error()})
			return
		}
		h.reply(ctx, msg, UsageReply{Success: true, Consumer: usage})
		return
	}

	system, err := h.endpoint.SystemUsage(ctx)
	if err != nil {
		h.reply(ctx, msg, UsageReply{Message: err.Error()})
		return
	}
	h.reply(ctx, msg, UsageReply{Success: true, System: &system})
}

func (h *Handler) handleUsageReport(msg *nats.Msg) {
	ctx := context.Background()
	if h.reporter == nil {
		return
	}

	message, decodeErr := decode[UsageReportMessage](ctx, msg)
	if decodeErr != nil {
		return
	}
	resourceType, err := models.ParseResourceType(message.ResourceType)
	if err != nil {
		log.Ctx(ctx).Debug().Err(err).Msg("Dropping usage report for unknown resource type")
		return
	}
	h.reporter.FeedSample(ctx, message.ConsumerID, resourceType, message.Utilization)
}

func (h *Handler) handleConsumerStarted(msg *nats.Msg) {
	ctx := context.Background()
	message, decodeErr := decode[LifecycleMessage](ctx, msg)
	if decodeErr != nil || message.ConsumerID == "" {
		return
	}
	h.endpoint.OnConsumerStarted(ctx, message.ConsumerID)
}

func (h *Handler) handleConsumerStopped(msg *nats.Msg) {
	ctx := context.Background()
	message, decodeErr := decode[LifecycleMessage](ctx, msg)
	if decodeErr != nil || message.ConsumerID == "" {
		return
	}
	h.endpoint.OnConsumerStopped(ctx, message.ConsumerID)
}

func decode[Request any](ctx context.Context, msg *nats.Msg) (Request, error) {
	request := new(Request)
	if err := json.Unmarshal(msg.Data, request); err != nil {
		log.Ctx(ctx).Error().Err(err).Msgf("error decoding %s", reflect.TypeOf(request))
		return *request, err
	}
	return *request, nil
}

func (h *Handler) reply(ctx context.Context, msg *nats.Msg, response any) {
	if msg.Reply == "" {
		return
	}
	data, err := json.Marshal(response)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msgf("error encoding %s", reflect.TypeOf(response))
		return
	}
	if err := msg.Respond(data); err != nil {
		log.Ctx(ctx).Error().Err(err).Msgf("error replying on %s", msg.Subject)
	}
}
