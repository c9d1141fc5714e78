package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/looplj/adminhub/internal/log"
)

type redisBus[T any] struct {
	client  *redis.Client
	channel string
	buffer  int

	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]chan T

	// The pubsub connection lives while at least one subscriber does.
	conn   *redis.PubSub
	cancel context.CancelFunc
}

// NewRedis creates a bus on a redis pubsub channel. Buses of different
// instances sharing the channel see each other's signals.
func NewRedis[T any](client *redis.Client, channel string, buffer int) (Bus[T], error) {
	if client == nil {
		return nil, errors.New("pubsub: redis client is required")
	}

	if channel == "" {
		return nil, errors.New("pubsub: channel is required")
	}

	if buffer <= 0 {
		buffer = 1
	}

	return &redisBus[T]{
		client:  client,
		channel: channel,
		buffer:  buffer,
		subs:    make(map[uint64]chan T),
	}, nil
}

func (b *redisBus[T]) Publish(ctx context.Context, v T) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return b.client.Publish(ctx, b.channel, payload).Err()
}

func (b *redisBus[T]) Subscribe() (<-chan T, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++

	ch := make(chan T, b.buffer)
	b.subs[id] = ch

	if len(b.subs) == 1 {
		b.connectLocked()
	}

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		sub, ok := b.subs[id]
		if !ok {
			return
		}

		delete(b.subs, id)
		close(sub)

		if len(b.subs) == 0 {
			b.disconnectLocked()
		}
	}
}

func (b *redisBus[T]) connectLocked() {
	if b.conn != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel

	b.conn = b.client.Subscribe(ctx, b.channel)

	// Wait for the subscription to be confirmed. Signals published after
	// Subscribe returns must not be missed.
	_, _ = b.conn.Receive(ctx)

	go b.receive(ctx, b.conn)
}

func (b *redisBus[T]) receive(ctx context.Context, conn *redis.PubSub) {
	for {
		msg, err := conn.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, redis.ErrClosed) || ctx.Err() != nil {
				return
			}

			log.Warn(context.Background(), "pubsub receive failed",
				log.String("channel", b.channel),
				log.Cause(err))

			continue
		}

		var v T
		if err := json.Unmarshal([]byte(msg.Payload), &v); err != nil {
			log.Warn(context.Background(), "pubsub decode failed",
				log.String("channel", b.channel),
				log.String("payload", msg.Payload),
				log.Cause(err))

			continue
		}

		b.mu.Lock()

		for _, sub := range b.subs {
			select {
			case sub <- v:
			default:
			}
		}

		b.mu.Unlock()
	}
}

func (b *redisBus[T]) disconnectLocked() {
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}

	if b.conn != nil {
		_ = b.conn.Close()
		b.conn = nil
	}
}
