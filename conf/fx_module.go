package conf

import (
	"go.uber.org/fx"

	"github.com/looplj/adminhub/internal/log"
	"github.com/looplj/adminhub/internal/metrics"
	"github.com/looplj/adminhub/internal/pkg/xcache"
	"github.com/looplj/adminhub/internal/schema"
	"github.com/looplj/adminhub/internal/server"
	"github.com/looplj/adminhub/internal/server/biz"
	"github.com/looplj/adminhub/internal/server/snapshot"
	"github.com/looplj/adminhub/internal/server/sweep"
	"github.com/looplj/adminhub/internal/storage"
)

// Module loads the configuration and hands each subsystem its own section.
var Module = fx.Options(
	fx.Provide(Load),
	fx.Provide(
		func(c Config) server.Config { return c.APIServer },
		func(c Config) log.Config { return c.Log },
		func(c Config) biz.AuthConfig { return c.Auth },
		func(c Config) storage.Config { return c.Store },
		func(c Config) xcache.Config { return c.Cache },
		func(c Config) sweep.Config { return c.Sweep },
		func(c Config) snapshot.Config { return c.Snapshot },
		func(c Config) metrics.Config { return c.Metrics },
		func(c Config) []schema.ListSpec { return c.Lists },
	),
)
