package bus

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
)

// natsBus wraps a live NATS connection as a Bus, used when the
// coordinator, agents, and projections are distributed across a real
// lattice rather than sharing one process.
type natsBus struct {
	nc *nats.Conn
}

// NewNATSBus connects to url (nats.DefaultURL if empty) and returns a
// Bus backed by that connection. The caller should Close it on
// shutdown.
func NewNATSBus(url string) (Bus, error) {
	if url == "" {
		url = nats.DefaultURL
	}
	nc, err := nats.Connect(url, nats.Name("assembly-mechs-arena"))
	if err != nil {
		return nil, fmt.Errorf("bus: connect nats %s: %w", url, err)
	}
	return &natsBus{nc: nc}, nil
}

func (b *natsBus) Publish(_ context.Context, subject string, payload []byte) error {
	if err := b.nc.Publish(subject, payload); err != nil {
		return fmt.Errorf("bus: publish %s: %w", subject, err)
	}
	return nil
}

type natsSub struct {
	sub *nats.Subscription
}

func (s *natsSub) Unsubscribe() error {
	return s.sub.Unsubscribe()
}

func (b *natsBus) Subscribe(subject string, handler func(subject string, payload []byte)) (Subscription, error) {
	sub, err := b.nc.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Subject, msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("bus: subscribe %s: %w", subject, err)
	}
	return &natsSub{sub: sub}, nil
}

func (b *natsBus) Request(ctx context.Context, subject string, payload []byte) ([]byte, error) {
	msg, err := b.nc.RequestWithContext(ctx, subject, payload)
	if err != nil {
		return nil, fmt.Errorf("bus: request %s: %w", subject, err)
	}
	return msg.Data, nil
}

func (b *natsBus) Close() error {
	b.nc.Close()
	return nil
}

var _ Bus = (*natsBus)(nil)
