package node

import (
	"context"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog/log"

	"github.com/quotient-project/quotient/pkg/capacity"
	"github.com/quotient-project/quotient/pkg/config"
	"github.com/quotient-project/quotient/pkg/governor"
	"github.com/quotient-project/quotient/pkg/models"
	"github.com/quotient-project/quotient/pkg/pubsub"
	"github.com/quotient-project/quotient/pkg/transport/natstransport"
)

// Node assembles a complete governor: capacity discovery, the manager, the
// rebalance loop, and the NATS message surface when configured.
type Node struct {
	Manager    *governor.Manager
	Rebalancer *governor.Rebalancer
	// Events is the in-process allocation-change bus. Transports chain onto
	// it, so in-process subscribers see the same events remote ones do.
	Events *pubsub.InMemoryPubSub[models.AllocationEvent]

	clients *natstransport.ClientManager
	handler *natstransport.Handler
}

func NewNode(ctx context.Context, cfg config.Config) (*Node, error) {
	provider := capacity.NewConfiguredProvider(cfg.Capacity, capacity.NewPhysicalProvider(capacity.PhysicalProviderParams{
		StoragePath: cfg.StoragePath,
	}))
	catalog, err := governor.NewCatalog(ctx, provider)
	if err != nil {
		return nil, err
	}

	manager, err := governor.NewManager(governor.ManagerParams{
		Catalog: catalog,
	})
	if err != nil {
		return nil, err
	}

	events := pubsub.NewInMemoryPubSub[models.AllocationEvent]()
	publisher := pubsub.NewChainedPublisher[models.AllocationEvent](true, events)

	n := &Node{
		Manager: manager,
		Events:  events,
	}

	if cfg.NatsServers != "" {
		n.clients, err = natstransport.NewClientManager(ctx, cfg.NodeName, cfg.NatsServers)
		if err != nil {
			return nil, err
		}
		n.handler, err = natstransport.NewHandler(natstransport.HandlerParams{
			Conn:     n.clients.Client,
			Endpoint: manager,
			Reporter: manager,
		})
		if err != nil {
			n.clients.Stop()
			return nil, err
		}
		publisher.Add(natstransport.NewEventPublisher(natstransport.EventPublisherParams{
			Conn: n.clients.Client,
		}))
	}

	n.Rebalancer, err = governor.NewRebalancer(governor.RebalancerParams{
		Manager:   manager,
		Sampler:   capacity.NewSystemSampler(cfg.StoragePath),
		Publisher: publisher,
		Interval:  cfg.RebalanceInterval,
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

// Start launches the rebalance loop. The message handlers are live as soon
// as NewNode returns.
func (n *Node) Start(ctx context.Context) {
	n.Rebalancer.Start(ctx)
	log.Ctx(ctx).Info().Msg("Resource governor started")
}

// Stop shuts the node down: the rebalance loop first, then the transport.
func (n *Node) Stop(ctx context.Context) error {
	var result *multierror.Error
	n.Rebalancer.Stop()
	if n.handler != nil {
		result = multierror.Append(result, n.handler.Close())
	}
	if n.clients != nil {
		n.clients.Stop()
	}
	log.Ctx(ctx).Info().Msg("Resource governor stopped")
	return result.ErrorOrNil()
}
