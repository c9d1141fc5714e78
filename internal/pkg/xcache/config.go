package xcache

import (
	"time"

	"github.com/looplj/adminhub/internal/pkg/xredis"
)

// Cache backend modes. Anything else disables the cache.
const (
	ModeMemory   = "memory"
	ModeRedis    = "redis"
	ModeTwoLevel = "two-level"
)

type Config struct {
	// Mode selects the backend: memory, redis or two-level.
	Mode string `conf:"mode" yaml:"mode" json:"mode"`

	// Memory tunes the in-process level, used in memory and two-level mode.
	Memory MemoryConfig `conf:"memory" yaml:"memory" json:"memory"`

	// Redis names the shared level, used in redis and two-level mode.
	Redis xredis.Config `conf:"redis" yaml:"redis" json:"redis"`
}

type MemoryConfig struct {
	// Expiration is the default TTL of entries written without one.
	Expiration time.Duration `conf:"expiration" yaml:"expiration" json:"expiration"`

	// CleanupInterval controls how often expired entries are swept out.
	CleanupInterval time.Duration `conf:"cleanup_interval" yaml:"cleanup_interval" json:"cleanup_interval"`
}
