// Package pubsub fans small change signals out to subscribers, in process
// or, with the redis backend, across instances. Delivery is best effort: a
// subscriber that falls behind misses signals instead of blocking the
// publisher, and consumers reload from the source of truth when a signal
// arrives.
package pubsub

import "context"

// Bus carries signals from publishers to every current subscriber.
type Bus[T any] interface {
	// Publish broadcasts v. On the redis backend this reaches the
	// subscribers of every instance sharing the channel.
	Publish(ctx context.Context, v T) error

	// Subscribe returns the signal channel and a stop function. The
	// channel closes after stop; stop must be called exactly once.
	Subscribe() (<-chan T, func())
}
