// Package bus is the message-bus seam between the coordinator, bound
// agents, and anything downstream that listens for arena events
// (leaderboard, history, spectator websockets). Two implementations
// satisfy Bus: an in-process one for single-binary deployments and
// tests, and a NATS-backed one for a real lattice deployment.
package bus

import "context"

// Bus is the minimal pub/sub plus request/reply seam every backend
// implements. Publish is fire-and-forget; Request is used by the
// dispatcher to invoke a bound agent and wait for its reply.
type Bus interface {
	Publish(ctx context.Context, subject string, payload []byte) error
	Subscribe(subject string, handler func(subject string, payload []byte)) (Subscription, error)
	Request(ctx context.Context, subject string, payload []byte) ([]byte, error)
	Close() error
}

// Subscription is a handle to an active subscription; Unsubscribe is
// idempotent.
type Subscription interface {
	Unsubscribe() error
}
