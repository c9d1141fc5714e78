package conf

import (
	"time"

	"github.com/looplj/adminhub/internal/log"
	"github.com/looplj/adminhub/internal/metrics"
	"github.com/looplj/adminhub/internal/pkg/xcache"
	"github.com/looplj/adminhub/internal/server"
	"github.com/looplj/adminhub/internal/server/biz"
	"github.com/looplj/adminhub/internal/server/snapshot"
	"github.com/looplj/adminhub/internal/server/sweep"
	"github.com/looplj/adminhub/internal/storage"
	"github.com/looplj/adminhub/internal/tracing"
)

// Default returns the configuration used when the file and environment leave
// a value unset.
func Default() Config {
	return Config{
		APIServer: server.Config{
			Host:           "0.0.0.0",
			Port:           8090,
			Name:           "adminhub",
			ReadTimeout:    30 * time.Second,
			RequestTimeout: 30 * time.Second,
			Trace: tracing.Config{
				TraceHeader:   "ADH-Trace-Id",
				RequestHeader: "ADH-Request-Id",
			},
		},
		Log: log.Config{
			Level:  "info",
			Format: "console",
			Output: "stdout",
		},
		Auth:  biz.DefaultAuthConfig(),
		Store: storage.DefaultConfig(),
		Cache: xcache.Config{
			Mode: xcache.ModeMemory,
			Memory: xcache.MemoryConfig{
				Expiration:      time.Minute,
				CleanupInterval: 10 * time.Minute,
			},
		},
		Sweep: sweep.Config{
			CRON:          "0 3 * * *",
			RetentionDays: 30,
		},
		Snapshot: snapshot.Config{
			Dir:           "snapshots",
			CRON:          "0 2 * * *",
			RetentionDays: 14,
		},
		Metrics: metrics.Config{
			Exporter: metrics.ExporterNone,
			Interval: time.Minute,
		},
	}
}
