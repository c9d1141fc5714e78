package pubsub

import (
	"errors"

	"github.com/looplj/adminhub/internal/pkg/xredis"
)

// Bus backend modes. Anything else falls back to the in-process bus.
const (
	ModeMemory = "memory"
	ModeRedis  = "redis"
)

type Config struct {
	Mode  string        `conf:"mode" yaml:"mode" json:"mode"`
	Redis xredis.Config `conf:"redis" yaml:"redis" json:"redis"`
}

// Options tune the bus built by New.
type Options struct {
	// Channel names the redis pubsub channel. Required in redis mode.
	Channel string
	// Buffer caps undelivered signals per subscriber.
	Buffer int
}

// New builds the bus the config asks for.
func New[T any](cfg Config, opts Options) (Bus[T], error) {
	switch cfg.Mode {
	case ModeRedis:
		if opts.Channel == "" {
			return nil, errors.New("pubsub: channel is required in redis mode")
		}

		client, err := xredis.NewClient(cfg.Redis)
		if err != nil {
			return nil, err
		}

		return NewRedis[T](client, opts.Channel, opts.Buffer)
	default:
		return NewMemory[T](opts.Buffer), nil
	}
}
