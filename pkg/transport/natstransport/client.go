package natstransport

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

const reconnectWait = 2 * time.Second

// ClientManager is a helper to create and hold a NATS client connection.
type ClientManager struct {
	Client *nats.Conn
}

// NewClientManager connects to the given servers string with sensible
// reconnect behavior for a long-lived node. The connection name is suffixed
// with a random id so concurrent nodes sharing a configured name stay
// distinguishable on the server.
func NewClientManager(ctx context.Context, name, servers string, options ...nats.Option) (*ClientManager, error) {
	options = append([]nats.Option{
		nats.Name(fmt.Sprintf("%s-%s", name, uuid.NewString())),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(reconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Ctx(ctx).Warn().Err(err).Msg("NATS client disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Ctx(ctx).Info().Str("Url", nc.ConnectedUrl()).Msg("NATS client reconnected")
		}),
	}, options...)

	nc, err := nats.Connect(servers, options...)
	if err != nil {
		return nil, err
	}
	return &ClientManager{
		Client: nc,
	}, nil
}

// Stop closes the NATS client.
func (cm *ClientManager) Stop() {
	cm.Client.Close()
}
